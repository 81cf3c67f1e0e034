// Package value implements the GraphQL Value algebra: an ordered,
// JSON-losslessly-projectable representation of literal and resolved
// argument/variable/default values.
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// Kind tags the variant a Value holds.
type Kind int

const (
	Null Kind = iota
	Variable
	Int
	Float
	String
	Boolean
	Enum
	List
	Object
)

// Value is the tagged union described by spec §3: Null, Variable(name),
// Int(i32), Float(f64), String, Boolean, Enum(name), List([Value]),
// Object(ordered map name->Value).
//
// Only one of the typed fields is meaningful for a given Kind:
//
//	Null                     -> (none)
//	Variable, String, Enum   -> Str
//	Int                      -> Int32
//	Float                    -> Float64
//	Boolean                  -> Bool
//	List                     -> Items
//	Object                   -> Fields (order preserved)
type Value struct {
	Kind    Kind
	Str     string
	Int32   int32
	Float64 float64
	Bool    bool
	Items   []Value
	Fields  *OrderedMap
}

// OrderedMap is an insertion-order-preserving name->Value map, used for
// Value::Object so that JSON projection and GraphQL stringification
// reproduce selection/field order deterministically.
type OrderedMap struct {
	keys   []string
	values map[string]Value
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]Value)}
}

func (m *OrderedMap) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *OrderedMap) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *OrderedMap) Keys() []string { return m.keys }

func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *OrderedMap) Clone() *OrderedMap {
	out := NewOrderedMap()
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}
	return out
}

// NullValue, Bool, helpers to build Values without sprawling struct
// literals at every call site.

func NullValue() Value { return Value{Kind: Null} }

func VariableValue(name string) Value { return Value{Kind: Variable, Str: name} }

func IntValue(i int32) Value { return Value{Kind: Int, Int32: i} }

func FloatValue(f float64) Value { return Value{Kind: Float, Float64: f} }

func StringValue(s string) Value { return Value{Kind: String, Str: s} }

func BoolValue(b bool) Value { return Value{Kind: Boolean, Bool: b} }

func EnumValue(name string) Value { return Value{Kind: Enum, Str: name} }

func ListValue(items []Value) Value { return Value{Kind: List, Items: items} }

func ObjectValue(fields *OrderedMap) Value { return Value{Kind: Object, Fields: fields} }

// IsVariable reports whether this value is an unresolved variable
// reference.
func (v Value) IsVariable() bool { return v.Kind == Variable }

// IsNull reports whether this value is the null literal.
func (v Value) IsNull() bool { return v.Kind == Null }

// FromJSON parses an arbitrary decoded JSON value (as produced by
// encoding/json, i.e. map[string]interface{}, []interface{}, float64,
// string, bool, nil) into a Value. JSON integers are represented as
// float64 by encoding/json; per spec §3 they narrow to Int by
// truncation (documented, lossy behavior) when they have no fractional
// part, otherwise they become Float.
func FromJSON(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return NullValue()
	case bool:
		return BoolValue(v)
	case string:
		return StringValue(v)
	case float64:
		if v == math.Trunc(v) {
			return IntValue(int32(int64(v)))
		}
		return FloatValue(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return IntValue(int32(i))
		}
		f, _ := v.Float64()
		return FloatValue(f)
	case int:
		return IntValue(int32(v))
	case int32:
		return IntValue(v)
	case int64:
		return IntValue(int32(v))
	case float32:
		return FloatValue(float64(v))
	case []interface{}:
		items := make([]Value, len(v))
		for i, e := range v {
			items[i] = FromJSON(e)
		}
		return ListValue(items)
	case map[string]interface{}:
		m := NewOrderedMap()
		for _, k := range sortedKeys(v) {
			m.Set(k, FromJSON(v[k]))
		}
		return ObjectValue(m)
	default:
		// Unrecognized Go type: best effort round-trip through JSON.
		b, err := json.Marshal(v)
		if err != nil {
			return NullValue()
		}
		var decoded interface{}
		if err := json.Unmarshal(b, &decoded); err != nil {
			return NullValue()
		}
		return FromJSON(decoded)
	}
}

// encoding/json does not preserve object key order (map iteration is
// randomized); FromJSON sorts keys so at least repeated calls on the
// same input are deterministic. True order preservation for object
// literals comes from FromAST, which reads gqlparser's already-ordered
// ChildValueList.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToJSON projects a Value into a plain Go value ready for
// encoding/json.Marshal. Variable is not representable in JSON output;
// callers must resolve variables before calling ToJSON (resolution
// happens in the execution context, component D).
func (v Value) ToJSON() interface{} {
	switch v.Kind {
	case Null, Variable:
		return nil
	case Int:
		return v.Int32
	case Float:
		return v.Float64
	case String, Enum:
		return v.Str
	case Boolean:
		return v.Bool
	case List:
		out := make([]interface{}, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.ToJSON()
		}
		return out
	case Object:
		out := make(map[string]interface{}, v.Fields.Len())
		for _, k := range v.Fields.Keys() {
			val, _ := v.Fields.Get(k)
			out[k] = val.ToJSON()
		}
		return out
	default:
		return nil
	}
}

// GraphQL renders the Value in GraphQL literal syntax, used for SDL
// default-value printing and error messages that echo an offending
// literal.
func (v Value) GraphQL() string {
	switch v.Kind {
	case Null:
		return "null"
	case Variable:
		return "$" + v.Str
	case Int:
		return strconv.FormatInt(int64(v.Int32), 10)
	case Float:
		return strconv.FormatFloat(v.Float64, 'g', -1, 64)
	case String:
		b, _ := json.Marshal(v.Str)
		return string(b)
	case Boolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case Enum:
		return v.Str
	case List:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.GraphQL()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Object:
		parts := make([]string, 0, v.Fields.Len())
		for _, k := range v.Fields.Keys() {
			val, _ := v.Fields.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, val.GraphQL()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "null"
	}
}

// FromAST converts a parser literal node into the core's own Value
// algebra without resolving variables — Variable placeholders are
// preserved verbatim at any nesting depth. Resolution against a
// variables environment happens later, in the execution context
// (component D), which deliberately only substitutes one level deep
// (see spec §9 Open Question 1).
func FromAST(v *ast.Value) Value {
	if v == nil {
		return NullValue()
	}
	switch v.Kind {
	case ast.Variable:
		return VariableValue(v.Raw)
	case ast.IntValue:
		i, _ := strconv.ParseInt(v.Raw, 10, 32)
		return IntValue(int32(i))
	case ast.FloatValue:
		f, _ := strconv.ParseFloat(v.Raw, 64)
		return FloatValue(f)
	case ast.StringValue, ast.BlockValue:
		return StringValue(v.Raw)
	case ast.BooleanValue:
		return BoolValue(v.Raw == "true")
	case ast.NullValue:
		return NullValue()
	case ast.EnumValue:
		return EnumValue(v.Raw)
	case ast.ListValue:
		items := make([]Value, len(v.Children))
		for i, c := range v.Children {
			items[i] = FromAST(c.Value)
		}
		return ListValue(items)
	case ast.ObjectValue:
		m := NewOrderedMap()
		for _, c := range v.Children {
			m.Set(c.Name, FromAST(c.Value))
		}
		return ObjectValue(m)
	default:
		return NullValue()
	}
}

// JSONToInterface is a convenience round-trip used by callers that
// receive raw JSON bytes for variables (spec §6: the engine receives
// an already-decoded variables tree, not raw bytes, but tests and the
// QueryBuilder surface both).
func JSONToInterface(raw []byte) (interface{}, error) {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}
