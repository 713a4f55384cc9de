// Package template defines the engine contract used to render generated
// project files. The pongo2 implementation lives in the gotemplate
// subpackage.
package template
