// Package agentsite turns agent descriptions into deployable web front ends.
// The root package exposes the OpenAPI loading and form field extraction
// entry points; site generation lives in internal/pipeline and the
// agentsite command.
package agentsite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	internalLoader "github.com/goliatone/go-agentsite/internal/openapi/loader"
	internalParser "github.com/goliatone/go-agentsite/internal/openapi/parser"
	"github.com/goliatone/go-agentsite/pkg/fields"
	pkgopenapi "github.com/goliatone/go-agentsite/pkg/openapi"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	cfg := pkgopenapi.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewParser constructs a parser backed by the internal implementation.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	cfg := pkgopenapi.NewParserOptions(options...)
	return internalParser.New(cfg)
}

// ParseSource maps a CLI argument onto a file or URL source.
func ParseSource(raw string) (pkgopenapi.Source, error) {
	location := strings.TrimSpace(raw)
	if location == "" {
		return nil, errors.New("agentsite: source is empty")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return pkgopenapi.ParseURLSource(location)
	}
	return pkgopenapi.SourceFromFile(location), nil
}

// FieldsRequest describes one extraction.
type FieldsRequest struct {
	Source pkgopenapi.Source
	// Strict validates the document with kin-openapi before extraction.
	Strict        bool
	LoaderOptions []pkgopenapi.LoaderOption
	FieldOptions  []fields.Option
}

// Fields loads an agent's OpenAPI document and extracts the form fields of
// its first POST operation.
func Fields(ctx context.Context, req FieldsRequest) (pkgopenapi.RequestSchema, []fields.Descriptor, error) {
	doc, err := NewLoader(req.LoaderOptions...).Load(ctx, req.Source)
	if err != nil {
		return pkgopenapi.RequestSchema{}, nil, err
	}
	if req.Strict {
		parser := NewParser(pkgopenapi.WithStrictValidation(true))
		if _, err := parser.Operations(ctx, doc); err != nil {
			return pkgopenapi.RequestSchema{}, nil, fmt.Errorf("agentsite: %s: %w", doc.Location(), err)
		}
	}
	return pkgopenapi.ExtractDocumentFields(doc, req.FieldOptions...)
}
