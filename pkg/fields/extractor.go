package fields

import (
	"github.com/goliatone/go-agentsite/pkg/schema"
)

const arrayPlaceholder = "Comma-separated values"

// Extract converts the properties of an object schema into descriptors, in
// declaration order. Required flags come from the schema's own required array.
func Extract(s schema.Value, options ...Option) []Descriptor {
	return ExtractWithRequired(s, RequiredNames(s), options...)
}

// ExtractWithRequired is Extract with the required list supplied by the caller,
// typically propagated from a parent schema.
func ExtractWithRequired(s schema.Value, required []string, options ...Option) []Descriptor {
	props, ok := s.Get("properties")
	if !ok || props.Kind() != schema.KindObject {
		return []Descriptor{}
	}

	opts := NewOptions(options...)
	out := make([]Descriptor, 0, props.Len())
	walk(&out, props, toSet(required), "", 0, opts)
	return out
}

// RequiredNames returns the string members of a schema's required array.
func RequiredNames(s schema.Value) []string {
	list, ok := s.Get("required")
	if !ok {
		return nil
	}
	items, ok := list.AsArray()
	if !ok {
		return nil
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if name, ok := item.AsString(); ok {
			names = append(names, name)
		}
	}
	return names
}

func walk(out *[]Descriptor, props schema.Value, required map[string]struct{}, prefix string, level int, opts Options) {
	props.Range(func(name string, prop schema.Value) bool {
		if opts.full(len(*out)) {
			return false
		}
		path := joinPath(prefix, name)
		if nested, ok := nestedProperties(prop); ok && opts.canDescend(level) {
			walk(out, nested, toSet(RequiredNames(prop)), path, level+1, opts)
			return true
		}
		*out = append(*out, describe(name, path, prop, required, level, opts))
		return true
	})
}

func describe(name, path string, prop schema.Value, required map[string]struct{}, level int, opts Options) Descriptor {
	kind, choices := inferKind(name, prop, opts.Heuristics)
	_, isRequired := required[name]

	return Descriptor{
		Name:        name,
		Path:        path,
		Label:       labelFor(name, prop, opts.Labeler),
		Kind:        kind,
		Required:    isRequired,
		Hint:        prop.StringAt("description"),
		Options:     choices,
		Placeholder: placeholderFor(prop),
		Multiple:    schemaType(prop) == "array",
		Depth:       level,
	}
}

// inferKind applies the ordered rules; the first match wins.
func inferKind(name string, prop schema.Value, heuristics bool) (Kind, []Choice) {
	format := prop.StringAt("format")
	if format == "binary" {
		return KindFile, nil
	}
	if heuristics {
		if kind, ok := heuristicKind(name, prop); ok {
			if kind == KindDropdown {
				return kind, enumChoices(prop)
			}
			return kind, nil
		}
	}

	switch schemaType(prop) {
	case "boolean":
		return KindCheckbox, nil
	case "integer", "number":
		return KindNumber, nil
	case "string":
		if maxLength(prop) > 200 || format == "textarea" {
			return KindTextarea, nil
		}
	}

	if choices := enumChoices(prop); choices != nil {
		return KindDropdown, choices
	}
	return KindText, nil
}

// schemaType resolves "type", taking the first non-null entry when it is a
// list.
func schemaType(prop schema.Value) string {
	raw, ok := prop.Get("type")
	if !ok {
		return ""
	}
	if s, ok := raw.AsString(); ok {
		return s
	}
	items, _ := raw.AsArray()
	for _, item := range items {
		if s, ok := item.AsString(); ok && s != "null" {
			return s
		}
	}
	return ""
}

func maxLength(prop schema.Value) float64 {
	raw, _ := prop.Get("maxLength")
	n, _ := raw.AsNumber()
	return n
}

func enumChoices(prop schema.Value) []Choice {
	raw, ok := prop.Get("enum")
	if !ok {
		return nil
	}
	items, ok := raw.AsArray()
	if !ok {
		return nil
	}
	choices := make([]Choice, 0, len(items))
	for _, item := range items {
		choices = append(choices, Choice{Value: item.Interface(), Label: item.Text()})
	}
	return choices
}

func placeholderFor(prop schema.Value) string {
	if def, ok := prop.Get("default"); ok && !def.IsNull() {
		return def.Text()
	}
	if schemaType(prop) == "array" {
		return arrayPlaceholder
	}
	return ""
}

func nestedProperties(prop schema.Value) (schema.Value, bool) {
	props, ok := prop.Get("properties")
	if !ok || props.Kind() != schema.KindObject || props.Len() == 0 {
		return schema.Value{}, false
	}
	return props, true
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
