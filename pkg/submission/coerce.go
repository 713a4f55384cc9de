package submission

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-agentsite/pkg/fields"
)

// Coerce converts browser style string values into the JSON types implied by
// each descriptor's kind. Keys without a descriptor pass through unchanged.
// Empty optional values are dropped so they do not override agent defaults.
func Coerce(flat map[string]any, descriptors []fields.Descriptor) (map[string]any, error) {
	byPath := make(map[string]fields.Descriptor, len(descriptors))
	for _, d := range descriptors {
		byPath[pathOf(d)] = d
	}

	out := make(map[string]any, len(flat))
	for key, value := range flat {
		d, ok := byPath[key]
		if !ok {
			out[key] = value
			continue
		}
		coerced, keep, err := coerceValue(d, value)
		if err != nil {
			return nil, err
		}
		if keep {
			out[key] = coerced
		}
	}
	return out, nil
}

// Build coerces and nests in one step, the usual path from a posted form to
// an agent request body.
func Build(flat map[string]any, descriptors []fields.Descriptor) (map[string]any, error) {
	coerced, err := Coerce(flat, descriptors)
	if err != nil {
		return nil, err
	}
	return Nest(coerced)
}

func coerceValue(d fields.Descriptor, value any) (any, bool, error) {
	text, isString := value.(string)
	if isString {
		text = strings.TrimSpace(text)
	}

	if d.Kind == fields.KindCheckbox {
		if !isString {
			return value, true, nil
		}
		switch strings.ToLower(text) {
		case "on", "true", "1", "yes":
			return true, true, nil
		case "", "off", "false", "0", "no":
			return false, true, nil
		default:
			return nil, false, fmt.Errorf("%w: %s expects a boolean, got %q", ErrInvalidValue, pathOf(d), text)
		}
	}

	if !isString {
		return value, true, nil
	}
	if text == "" {
		return "", d.Required, nil
	}

	switch {
	case d.Kind == fields.KindNumber:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false, fmt.Errorf("%w: %s expects a number, got %q", ErrInvalidValue, pathOf(d), text)
		}
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n), true, nil
		}
		return n, true, nil
	case d.Kind == fields.KindDropdown:
		for _, choice := range d.Options {
			if choice.Label == text {
				return choice.Value, true, nil
			}
		}
		return text, true, nil
	case d.Multiple:
		parts := strings.Split(text, ",")
		items := make([]any, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items, true, nil
	default:
		return text, true, nil
	}
}

func pathOf(d fields.Descriptor) string {
	if d.Path != "" {
		return d.Path
	}
	return d.Name
}
