// Package submission converts between flat dot-path form values and the
// nested request bodies agents expect.
package submission

import (
	"fmt"
	"sort"
	"strings"
)

// Separator joins path segments.
const Separator = "."

// Nest expands a flat map of dotted keys into nested maps. Keys are applied in
// sorted order so the result does not depend on map iteration. A key that is
// both a value and a parent ("options" and "options.timeout") is a conflict.
func Nest(flat map[string]any) (map[string]any, error) {
	root := make(map[string]any, len(flat))
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := Set(root, key, flat[key]); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// Set writes value at a dotted path, creating intermediate maps as needed.
// Writing a non-map value onto an existing map is a conflict, as is walking
// through an existing non-map value. Map values are merged instead.
func Set(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("submission: root map is nil")
	}
	segments, err := splitPath(path)
	if err != nil {
		return err
	}

	current := root
	for i, segment := range segments {
		if i == len(segments)-1 {
			return assign(current, segment, path, deepCopy(value))
		}
		existing, present := current[segment]
		child, ok := existing.(map[string]any)
		if !ok {
			if present && existing != nil {
				return fmt.Errorf("%w: %q", ErrPathConflict, strings.Join(segments[:i+1], Separator))
			}
			child = make(map[string]any)
			current[segment] = child
		}
		current = child
	}
	return nil
}

// Get resolves a dotted path.
func Get(root map[string]any, path string) (any, bool) {
	segments, err := splitPath(path)
	if err != nil || root == nil {
		return nil, false
	}
	var current any = root
	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Flatten is the inverse of Nest: nested maps become dotted keys. Empty maps
// are kept as leaves so Nest(Flatten(x)) reproduces x.
func Flatten(nested map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", nested)
	return out
}

func flattenInto(out map[string]any, prefix string, node map[string]any) {
	for key, value := range node {
		path := key
		if prefix != "" {
			path = prefix + Separator + key
		}
		if child, ok := value.(map[string]any); ok && len(child) > 0 {
			flattenInto(out, path, child)
			continue
		}
		out[path] = deepCopy(value)
	}
}

func assign(node map[string]any, segment, path string, value any) error {
	existing, ok := node[segment].(map[string]any)
	if !ok {
		node[segment] = value
		return nil
	}
	incoming, isMap := value.(map[string]any)
	if !isMap {
		return fmt.Errorf("%w: %q", ErrPathConflict, path)
	}
	for key, v := range incoming {
		if err := assign(existing, key, path+Separator+key, v); err != nil {
			return err
		}
	}
	return nil
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidPath)
	}
	segments := strings.Split(path, Separator)
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segments, nil
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}
