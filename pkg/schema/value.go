package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	// KindInvalid marks an absent value (the zero Value).
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Members stores object entries in declaration order.
type Members = orderedmap.OrderedMap[string, Value]

// Value is a JSON value tagged with its kind. Object members keep the order in
// which they were declared in the source document.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	text    string
	items   []Value
	members *Members
}

// Member is a key/value pair used to build objects.
type Member struct {
	Key   string
	Value Value
}

// Null returns a JSON null.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number wraps a float. The literal form is derived with strconv.
func Number(n float64) Value {
	return Value{kind: KindNumber, number: n, text: strconv.FormatFloat(n, 'f', -1, 64)}
}

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Array wraps the provided items.
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: append([]Value(nil), items...)}
}

// Object builds an object from members, keeping their order. Later duplicates
// overwrite the earlier value but keep the original position.
func Object(members ...Member) Value {
	m := orderedmap.New[string, Value](len(members))
	for _, member := range members {
		m.Set(member.Key, member.Value)
	}
	return Value{kind: KindObject, members: m}
}

// M is shorthand for Member, handy in fixtures.
func M(key string, value Value) Member { return Member{Key: key, Value: value} }

func numberLiteral(n float64, literal string) Value {
	return Value{kind: KindNumber, number: n, text: literal}
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// Exists reports whether the value is present (any kind but invalid).
func (v Value) Exists() bool { return v.kind != KindInvalid }

// IsNull reports a JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolean, true
}

// AsNumber returns the numeric payload.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.number, true
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// AsArray returns the array items.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.items, true
}

// Get looks up an object member.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject || v.members == nil {
		return Value{}, false
	}
	return v.members.Get(key)
}

// Lookup walks a chain of object keys.
func (v Value) Lookup(keys ...string) (Value, bool) {
	current := v
	for _, key := range keys {
		next, ok := current.Get(key)
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return current, true
}

// StringAt returns the string member stored under key, or "".
func (v Value) StringAt(key string) string {
	member, _ := v.Get(key)
	s, _ := member.AsString()
	return s
}

// Len returns the number of object members or array items.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		if v.members == nil {
			return 0
		}
		return v.members.Len()
	case KindArray:
		return len(v.items)
	default:
		return 0
	}
}

// Keys returns object keys in declaration order.
func (v Value) Keys() []string {
	if v.kind != KindObject || v.members == nil {
		return nil
	}
	keys := make([]string, 0, v.members.Len())
	for pair := v.members.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range visits object members in order until fn returns false.
func (v Value) Range(fn func(key string, member Value) bool) {
	if v.kind != KindObject || v.members == nil || fn == nil {
		return
	}
	for pair := v.members.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Without returns a shallow copy of the object minus the named keys. Non-object
// values are returned unchanged.
func (v Value) Without(keys ...string) Value {
	if v.kind != KindObject || v.members == nil {
		return v
	}
	drop := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		drop[key] = struct{}{}
	}
	out := orderedmap.New[string, Value](v.members.Len())
	for pair := v.members.Oldest(); pair != nil; pair = pair.Next() {
		if _, skip := drop[pair.Key]; skip {
			continue
		}
		out.Set(pair.Key, pair.Value)
	}
	return Value{kind: KindObject, members: out}
}

// Text coerces scalars to their textual form: strings verbatim, numbers in
// their source literal, booleans and null as JSON keywords. Containers render
// as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.text
	case KindNumber:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindNull:
		return "null"
	case KindArray, KindObject:
		raw, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(raw)
	default:
		return ""
	}
}

// Interface converts the value into plain Go types: map[string]any, []any,
// float64, string, bool or nil. Integral numbers become int64.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindNumber:
		if i, err := strconv.ParseInt(v.text, 10, 64); err == nil {
			return i
		}
		return v.number
	case KindString:
		return v.text
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, v.Len())
		v.Range(func(key string, member Value) bool {
			out[key] = member.Interface()
			return true
		})
		return out
	default:
		return nil
	}
}

// FromAny converts decoded Go data into a Value. Map keys are sorted because Go
// maps carry no order.
func FromAny(in any) Value {
	switch typed := in.(type) {
	case nil:
		return Null()
	case Value:
		return typed
	case bool:
		return Bool(typed)
	case string:
		return String(typed)
	case float64:
		return Number(typed)
	case float32:
		return Number(float64(typed))
	case int:
		return numberLiteral(float64(typed), strconv.Itoa(typed))
	case int64:
		return numberLiteral(float64(typed), strconv.FormatInt(typed, 10))
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return String(typed.String())
		}
		return numberLiteral(f, typed.String())
	case []any:
		items := make([]Value, len(typed))
		for i, item := range typed {
			items[i] = FromAny(item)
		}
		return Value{kind: KindArray, items: items}
	case []string:
		items := make([]Value, len(typed))
		for i, item := range typed {
			items[i] = String(item)
		}
		return Value{kind: KindArray, items: items}
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		m := orderedmap.New[string, Value](len(keys))
		for _, key := range keys {
			m.Set(key, FromAny(typed[key]))
		}
		return Value{kind: KindObject, members: m}
	default:
		raw, err := json.Marshal(typed)
		if err != nil {
			return Value{}
		}
		decoded, err := Parse(raw)
		if err != nil {
			return Value{}
		}
		return decoded
	}
}

// MarshalJSON renders the value with object members in order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes with the default depth limit.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Parse(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// ErrNonFiniteNumber is returned when marshalling NaN or an infinity, which
// JSON cannot represent. YAML's .nan and .inf decode to these.
var ErrNonFiniteNumber = errors.New("schema: number is not finite")

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindInvalid, KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
			return fmt.Errorf("%w: %s", ErrNonFiniteNumber, v.text)
		}
		if v.text != "" && json.Valid([]byte(v.text)) {
			buf.WriteString(v.text)
		} else {
			buf.WriteString(strconv.FormatFloat(v.number, 'f', -1, 64))
		}
	case KindString:
		raw, err := json.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(raw)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		first := true
		var err error
		v.Range(func(key string, member Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			var raw []byte
			raw, err = json.Marshal(key)
			if err != nil {
				return false
			}
			buf.Write(raw)
			buf.WriteByte(':')
			err = member.writeJSON(buf)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
	}
	return nil
}
