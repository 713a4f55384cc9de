package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// DefaultMaxDepth bounds container nesting while decoding.
const DefaultMaxDepth = 64

var (
	// ErrEmptyDocument is returned when the payload is blank.
	ErrEmptyDocument = errors.New("schema: document is empty")
	// ErrDepthExceeded is returned when nesting goes past the configured limit.
	ErrDepthExceeded = errors.New("schema: maximum nesting depth exceeded")
)

type decodeConfig struct {
	maxDepth int
}

// DecodeOption tweaks Parse.
type DecodeOption func(*decodeConfig)

// WithMaxDepth overrides DefaultMaxDepth. Values below one are ignored.
func WithMaxDepth(depth int) DecodeOption {
	return func(cfg *decodeConfig) {
		if depth > 0 {
			cfg.maxDepth = depth
		}
	}
}

// Parse decodes a JSON or YAML payload into a Value, keeping object member
// order. Payloads starting with '{' or '[' go through the JSON tokenizer;
// everything else is treated as YAML.
func Parse(data []byte, options ...DecodeOption) (Value, error) {
	cfg := decodeConfig{maxDepth: DefaultMaxDepth}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Value{}, ErrEmptyDocument
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return parseJSON(trimmed, cfg.maxDepth)
	}
	return parseYAML(trimmed, cfg.maxDepth)
}

// MustParse panics on decode failures. Intended for fixtures.
func MustParse(data string) Value {
	v, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return v
}

func parseJSON(data []byte, maxDepth int) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec, 0, maxDepth)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("schema: trailing data after JSON document")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder, depth, maxDepth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("schema: decode json: %w", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth >= maxDepth {
			return Value{}, ErrDepthExceeded
		}
		switch t {
		case '{':
			members := orderedmap.New[string, Value]()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, fmt.Errorf("schema: decode json: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, errors.New("schema: object key is not a string")
				}
				member, err := decodeJSONValue(dec, depth+1, maxDepth)
				if err != nil {
					return Value{}, err
				}
				members.Set(key, member)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("schema: decode json: %w", err)
			}
			return Value{kind: KindObject, members: members}, nil
		case '[':
			var items []Value
			for dec.More() {
				item, err := decodeJSONValue(dec, depth+1, maxDepth)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("schema: decode json: %w", err)
			}
			return Value{kind: KindArray, items: items}, nil
		default:
			return Value{}, fmt.Errorf("schema: unexpected delimiter %q", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("schema: invalid number %q: %w", t, err)
		}
		return numberLiteral(f, t.String()), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("schema: unexpected token %T", tok)
	}
}

func parseYAML(data []byte, maxDepth int) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Value{}, fmt.Errorf("schema: decode yaml: %w", err)
	}
	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return Value{}, ErrEmptyDocument
		}
		node = node.Content[0]
	}
	return fromNode(node, 0, maxDepth)
}

func fromNode(node *yaml.Node, depth, maxDepth int) (Value, error) {
	if node == nil {
		return Null(), nil
	}

	switch node.Kind {
	case yaml.AliasNode:
		if depth >= maxDepth {
			return Value{}, ErrDepthExceeded
		}
		return fromNode(node.Alias, depth+1, maxDepth)
	case yaml.MappingNode:
		if depth >= maxDepth {
			return Value{}, ErrDepthExceeded
		}
		members := orderedmap.New[string, Value](len(node.Content) / 2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			member, err := fromNode(node.Content[i+1], depth+1, maxDepth)
			if err != nil {
				return Value{}, err
			}
			members.Set(key, member)
		}
		return Value{kind: KindObject, members: members}, nil
	case yaml.SequenceNode:
		if depth >= maxDepth {
			return Value{}, ErrDepthExceeded
		}
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := fromNode(child, depth+1, maxDepth)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{kind: KindArray, items: items}, nil
	case yaml.ScalarNode:
		return fromScalar(node)
	default:
		return Null(), nil
	}
}

func fromScalar(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("schema: decode bool %q: %w", node.Value, err)
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("schema: decode number %q: %w", node.Value, err)
		}
		literal := node.Value
		if _, err := strconv.ParseFloat(literal, 64); err != nil {
			literal = strconv.FormatFloat(f, 'f', -1, 64)
		}
		return numberLiteral(f, literal), nil
	default:
		return String(node.Value), nil
	}
}
