package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/goliatone/go-agentsite/pkg/openapi"
)

// Parser implements pkgopenapi.Parser using kin-openapi.
type Parser struct {
	options pkgopenapi.ParserOptions
}

var _ pkgopenapi.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ParserOptions) *Parser {
	return &Parser{options: options}
}

// Validate loads the document and runs the kin-openapi validator regardless of
// the Strict option.
func (p *Parser) Validate(ctx context.Context, doc pkgopenapi.Document) error {
	spec, err := p.load(ctx, doc)
	if err != nil {
		return err
	}
	return validate(ctx, spec)
}

// Operations converts a Document into a map keyed by operationId. Operations
// without an id are keyed "method:path".
func (p *Parser) Operations(ctx context.Context, doc pkgopenapi.Document) (map[string]pkgopenapi.Operation, error) {
	spec, err := p.load(ctx, doc)
	if err != nil {
		return nil, err
	}
	if p.options.Strict {
		if err := validate(ctx, spec); err != nil {
			return nil, err
		}
	}

	operations := make(map[string]pkgopenapi.Operation)
	if spec.Paths != nil {
		paths := spec.Paths.Map()
		keys := make([]string, 0, len(paths))
		for path := range paths {
			keys = append(keys, path)
		}
		sort.Strings(keys)
		for _, path := range keys {
			item := paths[path]
			if item == nil {
				continue
			}
			for method, operation := range item.Operations() {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				collect(operations, method, path, operation)
			}
		}
	}

	if len(operations) == 0 && !p.options.AllowEmptyPaths {
		return nil, errors.New("openapi parser: no operations extracted")
	}
	return operations, nil
}

func (p *Parser) load(ctx context.Context, doc pkgopenapi.Document) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load %s: %w", doc.Location(), err)
	}
	return spec, nil
}

func validate(ctx context.Context, spec *openapi3.T) error {
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return fmt.Errorf("openapi parser: validate: %w", err)
	}
	return nil
}

func collect(target map[string]pkgopenapi.Operation, method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	method = strings.ToUpper(method)
	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	op, err := pkgopenapi.NewOperation(id, method, path)
	if err != nil {
		return
	}
	op.Summary = operation.Summary
	op.Description = operation.Description
	if len(operation.Tags) > 0 {
		op.Tags = append([]string(nil), operation.Tags...)
	}
	op.HasRequestBody = operation.RequestBody != nil
	target[id] = op
}
