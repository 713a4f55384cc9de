package openapi

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-agentsite/pkg/schema"
)

// Source identifies where an OpenAPI document originated so loaders can work
// on files, fs.FS entries or URLs alike.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
	// SourceKindInline marks documents handed over in memory, such as the
	// spec returned by the agent creation API.
	SourceKindInline SourceKind = "inline"
)

// Document wraps the raw OpenAPI payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("openapi: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("openapi: raw document is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// MustNewDocument panics if the document cannot be created.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Value decodes the payload (JSON or YAML) into an ordered schema.Value.
func (d Document) Value() (schema.Value, error) {
	v, err := schema.Parse(d.raw)
	if err != nil {
		return schema.Value{}, fmt.Errorf("openapi: decode %s: %w", d.Location(), err)
	}
	return v, nil
}

// Operation is the slice of operation metadata the generator cares about.
type Operation struct {
	ID             string   `json:"id"`
	Method         string   `json:"method"`
	Path           string   `json:"path"`
	Summary        string   `json:"summary,omitempty"`
	Description    string   `json:"description,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	HasRequestBody bool     `json:"hasRequestBody,omitempty"`
}

// NewOperation validates core fields.
func NewOperation(id, method, path string) (Operation, error) {
	if id == "" {
		return Operation{}, errors.New("openapi: operation id is required")
	}
	if method == "" {
		return Operation{}, errors.New("openapi: operation method is required")
	}
	if path == "" {
		return Operation{}, errors.New("openapi: operation path is required")
	}
	return Operation{ID: id, Method: method, Path: path}, nil
}
