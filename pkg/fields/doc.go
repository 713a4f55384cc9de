// Package fields turns a JSON Schema fragment describing request parameters
// into renderable field descriptors. Extraction never fails: absent or
// malformed input yields an empty result.
package fields
