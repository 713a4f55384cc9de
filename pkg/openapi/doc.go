// Package openapi holds the public contracts for loading and parsing agent
// OpenAPI documents, plus Locate, which finds the request-body schema that the
// generated agent form is built from. Loader and parser implementations live
// under internal/openapi so kin-openapi stays out of the public API.
package openapi
