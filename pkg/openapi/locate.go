package openapi

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-agentsite/pkg/fields"
	"github.com/goliatone/go-agentsite/pkg/schema"
)

const (
	jsonMediaType = "application/json"
	paramsKey     = "params"
)

// RequestSchema is the parameter schema chosen for an agent form.
type RequestSchema struct {
	Path        string       `json:"path"`
	OperationID string       `json:"operation_id,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Schema      schema.Value `json:"schema"`
	// Prefix is the submission key the parameters live under ("params"), or
	// empty when the whole body is used.
	Prefix string `json:"prefix,omitempty"`
}

// Locate finds the first path (in document order) with a POST operation and
// returns its JSON request-body schema with local $refs inlined. When the body
// has a params object with properties, that object is the parameter schema;
// otherwise the whole body is used minus any params member.
//
// A POST without a JSON body yields a RequestSchema with an absent Schema,
// which extracts to no fields.
func Locate(doc schema.Value) (RequestSchema, error) {
	paths, _ := doc.Get("paths")

	var (
		path string
		post schema.Value
	)
	paths.Range(func(key string, item schema.Value) bool {
		if op, ok := item.Get("post"); ok && op.Kind() == schema.KindObject {
			path, post = key, op
			return false
		}
		return true
	})
	if !post.Exists() {
		return RequestSchema{}, ErrNoPostOperation
	}

	out := RequestSchema{
		Path:        path,
		OperationID: post.StringAt("operationId"),
		Summary:     post.StringAt("summary"),
	}

	r := newResolver(doc)
	requestBody, _ := post.Get("requestBody")
	body, err := r.deref(requestBody)
	if err != nil {
		return RequestSchema{}, err
	}
	raw, ok := body.Lookup("content", jsonMediaType, "schema")
	if !ok {
		return out, nil
	}
	resolved, err := r.inline(raw, nil)
	if err != nil {
		return RequestSchema{}, fmt.Errorf("openapi: %s request body: %w", path, err)
	}

	if params, ok := resolved.Lookup("properties", paramsKey); ok {
		if props, ok := params.Get("properties"); ok && props.Kind() == schema.KindObject {
			out.Schema = params
			out.Prefix = paramsKey
			return out, nil
		}
	}
	if props, ok := resolved.Get("properties"); ok && props.Kind() == schema.KindObject {
		resolved = withMember(resolved, "properties", props.Without(paramsKey))
	}
	out.Schema = resolved
	return out, nil
}

// ExtractFields locates the request schema and runs the field extractor over
// it. Descriptor paths are qualified with the schema prefix so that nested
// submissions land under params.
func ExtractFields(doc schema.Value, opts ...fields.Option) (RequestSchema, []fields.Descriptor, error) {
	req, err := Locate(doc)
	if err != nil {
		return RequestSchema{}, nil, err
	}
	descriptors := fields.Extract(req.Schema, opts...)
	if req.Prefix != "" {
		for i := range descriptors {
			descriptors[i].Path = req.Prefix + "." + descriptors[i].Path
		}
	}
	return req, descriptors, nil
}

// ExtractDocumentFields decodes doc and delegates to ExtractFields.
func ExtractDocumentFields(doc Document, opts ...fields.Option) (RequestSchema, []fields.Descriptor, error) {
	value, err := doc.Value()
	if err != nil {
		return RequestSchema{}, nil, err
	}
	return ExtractFields(value, opts...)
}

type resolver struct {
	root schema.Value
	// resolved memoizes fully inlined ref targets so shared definitions are
	// expanded once.
	resolved map[string]schema.Value
}

func newResolver(root schema.Value) *resolver {
	return &resolver{root: root, resolved: map[string]schema.Value{}}
}

// deref follows a chain of $ref pointers at the top of v.
func (r *resolver) deref(v schema.Value) (schema.Value, error) {
	seen := map[string]struct{}{}
	for {
		ref, ok := localRef(v)
		if !ok {
			return v, nil
		}
		if _, loop := seen[ref]; loop {
			return schema.Value{}, fmt.Errorf("%w: %s", ErrCyclicRef, ref)
		}
		seen[ref] = struct{}{}
		target, err := r.pointer(ref)
		if err != nil {
			return schema.Value{}, err
		}
		v = target
	}
}

// inline returns a copy of v with every local $ref replaced by its target.
// stack holds the refs currently being expanded; meeting one again is a cycle.
// Completed refs come from the memo, which keeps shared targets linear.
func (r *resolver) inline(v schema.Value, stack []string) (schema.Value, error) {
	if ref, ok := localRef(v); ok {
		for _, open := range stack {
			if open == ref {
				return schema.Value{}, fmt.Errorf("%w: %s", ErrCyclicRef, strings.Join(append(stack, ref), " -> "))
			}
		}
		if done, ok := r.resolved[ref]; ok {
			return done, nil
		}
		target, err := r.pointer(ref)
		if err != nil {
			return schema.Value{}, err
		}
		out, err := r.inline(target, append(stack, ref))
		if err != nil {
			return schema.Value{}, err
		}
		r.resolved[ref] = out
		return out, nil
	}

	switch v.Kind() {
	case schema.KindObject:
		members := make([]schema.Member, 0, v.Len())
		var err error
		v.Range(func(key string, member schema.Value) bool {
			var resolved schema.Value
			resolved, err = r.inline(member, stack)
			if err != nil {
				return false
			}
			members = append(members, schema.M(key, resolved))
			return true
		})
		if err != nil {
			return schema.Value{}, err
		}
		return schema.Object(members...), nil
	case schema.KindArray:
		items, _ := v.AsArray()
		out := make([]schema.Value, len(items))
		for i, item := range items {
			resolved, err := r.inline(item, stack)
			if err != nil {
				return schema.Value{}, err
			}
			out[i] = resolved
		}
		return schema.Array(out...), nil
	default:
		return v, nil
	}
}

// pointer evaluates a "#/a/b" JSON pointer against the document root.
func (r *resolver) pointer(ref string) (schema.Value, error) {
	current := r.root
	for _, token := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		next, ok := current.Get(token)
		if !ok {
			return schema.Value{}, fmt.Errorf("%w: %s", ErrUnresolvedRef, ref)
		}
		current = next
	}
	return current, nil
}

// localRef reports the target of an in-document $ref. External refs are left
// alone.
func localRef(v schema.Value) (string, bool) {
	ref := v.StringAt("$ref")
	if !strings.HasPrefix(ref, "#/") {
		return "", false
	}
	return ref, true
}

func withMember(v schema.Value, key string, replacement schema.Value) schema.Value {
	members := make([]schema.Member, 0, v.Len())
	v.Range(func(k string, member schema.Value) bool {
		if k == key {
			member = replacement
		}
		members = append(members, schema.M(k, member))
		return true
	})
	return schema.Object(members...)
}
