package gqlcore

import (
	"fmt"
	"strings"

	"github.com/sigilgraph/gqlcore/value"
	"github.com/vektah/gqlparser/v2/ast"
)

// Variables is logically name->Value, always materialized as a
// Value::Object.
type Variables struct {
	v value.Value
}

// NewVariables wraps a decoded JSON variables document.
func NewVariables(raw interface{}) Variables {
	v := value.FromJSON(raw)
	if v.Kind != value.Object {
		v = value.ObjectValue(value.NewOrderedMap())
	}
	return Variables{v: v}
}

// Get looks up a top-level variable by name.
func (vs Variables) Get(name string) (value.Value, bool) {
	if vs.v.Fields == nil {
		return value.Value{}, false
	}
	return vs.v.Fields.Get(name)
}

// SetUpload performs the in-place file-reference substitution: given a
// dotted path "variables.a.b.0", descend through object/list variants
// and replace the addressed scalar with the Upload wire encoding.
// Silent no-op if the path does not resolve; the first segment must be
// the literal "variables".
func (vs *Variables) SetUpload(path, name, contentType, localPath string) {
	segments := strings.Split(path, ".")
	if len(segments) < 2 || segments[0] != "variables" {
		return
	}
	encoded := Upload{Name: name, ContentType: contentType, LocalPath: localPath}.ToValue()
	setAtPath(&vs.v, segments[1:], encoded)
}

func setAtPath(v *value.Value, segments []string, replacement value.Value) {
	if len(segments) == 0 {
		*v = replacement
		return
	}
	head, rest := segments[0], segments[1:]
	switch v.Kind {
	case value.Object:
		if v.Fields == nil {
			return
		}
		child, ok := v.Fields.Get(head)
		if !ok {
			return
		}
		setAtPath(&child, rest, replacement)
		v.Fields.Set(head, child)
	case value.List:
		idx := 0
		for _, c := range head {
			if c < '0' || c > '9' {
				return
			}
		}
		for _, c := range head {
			idx = idx*10 + int(c-'0')
		}
		if idx < 0 || idx >= len(v.Items) {
			return
		}
		setAtPath(&v.Items[idx], rest, replacement)
	default:
		return
	}
}

// Value returns the underlying Value::Object representation.
func (vs Variables) Value() value.Value { return vs.v }

// Data is a type-keyed map of user values, shared without copy across
// every ContextBase in a request.
type Data struct {
	values map[string]interface{}
}

func NewData() *Data { return &Data{values: make(map[string]interface{})} }

func (d *Data) Set(key string, v interface{}) { d.values[key] = v }

func (d *Data) Get(key string) (interface{}, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

// typedDataKey derives the %T-based key QueryBuilder.Data/GetTyped use,
// an ambient per-request-typed-value convention that generalizes to
// any user value.
func typedDataKey(v interface{}) string { return fmt.Sprintf("%T", v) }

// SetTyped stores v in the Data bag keyed by its own Go type, so a
// later GetTyped[T] call on the same concrete type finds it without
// the caller having to invent a string key.
func SetTyped[T any](d *Data, v T) { d.Set(typedDataKey(v), v) }

// GetTyped looks up a value previously stored with SetTyped (or
// QueryBuilder.Data) by its static Go type.
func GetTyped[T any](d *Data) (T, bool) {
	var zero T
	raw, ok := d.Get(typedDataKey(zero))
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

const requestIDDataKey = "gqlcore.requestID"

// RequestID returns the per-request trace id Schema.Execute stamps
// into the Data bag.
func RequestID(d *Data) (string, bool) {
	v, ok := d.Get(requestIDDataKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Environment is the per-request bundle: resolved variables, variable
// definitions (from the operation), fragments, and the shared Data
// handle.
type Environment struct {
	Variables           Variables
	VariableDefinitions ast.VariableDefinitionList
	Fragments           map[string]*ast.FragmentDefinition
	Data                *Data
}

func NewEnvironment(vars Variables, defs ast.VariableDefinitionList, doc *ast.QueryDocument, data *Data) *Environment {
	frags := make(map[string]*ast.FragmentDefinition, len(doc.Fragments))
	for _, f := range doc.Fragments {
		frags[f.Name] = f
	}
	return &Environment{Variables: vars, VariableDefinitions: defs, Fragments: frags, Data: data}
}
