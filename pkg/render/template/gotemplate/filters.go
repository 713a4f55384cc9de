package gotemplate

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
)

var builtinOnce sync.Once

func registerBuiltinFilters() {
	builtinOnce.Do(func() {
		for name, fn := range map[string]pongo2.FilterFunction{
			"trim":       filterTrim,
			"lowerfirst": filterLowerFirst,
			"jsstr":      filterJSString,
			"tojson":     filterToJSON,
		} {
			if !pongo2.FilterExists(name) {
				_ = pongo2.RegisterFilter(name, fn)
			}
		}
	})
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterLowerFirst(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	s := in.String()
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return pongo2.AsValue(s), nil
	}
	return pongo2.AsValue(strings.ToLower(string(r)) + s[size:]), nil
}

// filterJSString emits a double quoted JS string literal, marked safe so
// autoescaping leaves the quotes alone.
func filterJSString(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	out, err := encodeJSON(in.String(), 0)
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:jsstr", OrigError: err}
	}
	return pongo2.AsSafeValue(out), nil
}

// filterToJSON encodes any value. An integer parameter sets the indent.
func filterToJSON(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	indent := 0
	if param != nil && param.IsInteger() {
		indent = param.Integer()
	}
	out, err := encodeJSON(in.Interface(), indent)
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:tojson", OrigError: err}
	}
	return pongo2.AsSafeValue(out), nil
}

func encodeJSON(v any, indent int) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
