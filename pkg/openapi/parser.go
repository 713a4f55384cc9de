package openapi

import "context"

// Parser enumerates the operations of a document.
type Parser interface {
	Operations(ctx context.Context, doc Document) (map[string]Operation, error)
}

// ParserOptions toggles parser behaviour.
type ParserOptions struct {
	// Strict runs the kin-openapi validator before enumerating operations.
	Strict bool

	// AllowEmptyPaths accepts documents without any operation. Agent specs
	// returned while an agent is still being provisioned can be empty.
	AllowEmptyPaths bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithStrictValidation toggles document validation.
func WithStrictValidation(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.Strict = enabled
	}
}

// WithEmptyPaths toggles acceptance of operation-less documents.
func WithEmptyPaths(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowEmptyPaths = enabled
	}
}

// NewParserOptions applies ParserOption functions over the defaults.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
