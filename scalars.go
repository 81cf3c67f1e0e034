package gqlcore

import (
	"context"

	"github.com/sigilgraph/gqlcore/registry"
	"github.com/sigilgraph/gqlcore/value"
	"github.com/vektah/gqlparser/v2/ast"
)

// Int, Float, String, Boolean, and ID are the hand-written built-in
// scalar InputValueType implementations the five-capability protocol
// requires every other scalar to follow the shape of.

type Int int32

func (Int) TypeName() string              { return "Int" }
func (Int) QualifiedTypeName() string     { return "Int!" }
func (Int) IntrospectionTypeName() string { return "Int" }

func (Int) CreateTypeInfo(reg *registry.Registry) (string, error) {
	return reg.CreateType("Int", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ScalarInfo{Name: "Int", Description: "The Int scalar type represents a signed 32-bit numeric value."}, nil
	})
}

func (i *Int) ParseValue(v value.Value) bool {
	if v.Kind != value.Int {
		return false
	}
	*i = Int(v.Int32)
	return true
}

func (i Int) ToValue() value.Value { return value.IntValue(int32(i)) }

// Resolve is the trivial scalar case of OutputValueType: no
// selection-set walk, just the JSON projection.
func (i Int) Resolve(context.Context, *ContextSelectionSet, ast.Position) (interface{}, error) {
	return i.ToValue().ToJSON(), nil
}

type Float float64

func (Float) TypeName() string              { return "Float" }
func (Float) QualifiedTypeName() string     { return "Float!" }
func (Float) IntrospectionTypeName() string { return "Float" }

func (Float) CreateTypeInfo(reg *registry.Registry) (string, error) {
	return reg.CreateType("Float", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ScalarInfo{Name: "Float", Description: "The Float scalar type represents signed double-precision fractional values."}, nil
	})
}

func (f *Float) ParseValue(v value.Value) bool {
	switch v.Kind {
	case value.Float:
		*f = Float(v.Float64)
		return true
	case value.Int:
		*f = Float(v.Int32)
		return true
	default:
		return false
	}
}

func (f Float) ToValue() value.Value { return value.FloatValue(float64(f)) }

func (f Float) Resolve(context.Context, *ContextSelectionSet, ast.Position) (interface{}, error) {
	return f.ToValue().ToJSON(), nil
}

type String string

func (String) TypeName() string              { return "String" }
func (String) QualifiedTypeName() string     { return "String!" }
func (String) IntrospectionTypeName() string { return "String" }

func (String) CreateTypeInfo(reg *registry.Registry) (string, error) {
	return reg.CreateType("String", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ScalarInfo{Name: "String", Description: "The String scalar type represents textual data."}, nil
	})
}

func (s *String) ParseValue(v value.Value) bool {
	if v.Kind != value.String {
		return false
	}
	*s = String(v.Str)
	return true
}

func (s String) ToValue() value.Value { return value.StringValue(string(s)) }

func (s String) Resolve(context.Context, *ContextSelectionSet, ast.Position) (interface{}, error) {
	return s.ToValue().ToJSON(), nil
}

type Boolean bool

func (Boolean) TypeName() string              { return "Boolean" }
func (Boolean) QualifiedTypeName() string     { return "Boolean!" }
func (Boolean) IntrospectionTypeName() string { return "Boolean" }

func (Boolean) CreateTypeInfo(reg *registry.Registry) (string, error) {
	return reg.CreateType("Boolean", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ScalarInfo{Name: "Boolean", Description: "The Boolean scalar type represents true or false."}, nil
	})
}

func (b *Boolean) ParseValue(v value.Value) bool {
	if v.Kind != value.Boolean {
		return false
	}
	*b = Boolean(v.Bool)
	return true
}

func (b Boolean) ToValue() value.Value { return value.BoolValue(bool(b)) }

func (b Boolean) Resolve(context.Context, *ContextSelectionSet, ast.Position) (interface{}, error) {
	return b.ToValue().ToJSON(), nil
}

type ID string

func (ID) TypeName() string              { return "ID" }
func (ID) QualifiedTypeName() string     { return "ID!" }
func (ID) IntrospectionTypeName() string { return "ID" }

func (ID) CreateTypeInfo(reg *registry.Registry) (string, error) {
	return reg.CreateType("ID", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ScalarInfo{Name: "ID", Description: "The ID scalar type represents a unique identifier."}, nil
	})
}

func (id *ID) ParseValue(v value.Value) bool {
	switch v.Kind {
	case value.String:
		*id = ID(v.Str)
		return true
	case value.Int:
		*id = ID(Int(v.Int32).ToValue().GraphQL())
		return true
	default:
		return false
	}
}

func (id ID) ToValue() value.Value { return value.StringValue(string(id)) }

func (id ID) Resolve(context.Context, *ContextSelectionSet, ast.Position) (interface{}, error) {
	return id.ToValue().ToJSON(), nil
}

// Upload is the wire-level scalar encoding a client file reference as
// the string `file:<name>[:<content-type>]|<local-path>`, parsed lazily.
type Upload struct {
	Name        string
	ContentType string
	LocalPath   string
}

func (Upload) TypeName() string              { return "Upload" }
func (Upload) QualifiedTypeName() string     { return "Upload!" }
func (Upload) IntrospectionTypeName() string { return "Upload" }

func (Upload) CreateTypeInfo(reg *registry.Registry) (string, error) {
	return reg.CreateType("Upload", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ScalarInfo{Name: "Upload", Description: "The Upload scalar type represents a file sent as part of a multipart request."}, nil
	})
}

func (u *Upload) ParseValue(v value.Value) bool {
	if v.Kind != value.String {
		return false
	}
	parsed, ok := parseUploadEncoding(v.Str)
	if !ok {
		return false
	}
	*u = parsed
	return true
}

func (u Upload) ToValue() value.Value {
	s := "file:" + u.Name
	if u.ContentType != "" {
		s += ":" + u.ContentType
	}
	s += "|" + u.LocalPath
	return value.StringValue(s)
}

func (u Upload) Resolve(context.Context, *ContextSelectionSet, ast.Position) (interface{}, error) {
	return u.ToValue().ToJSON(), nil
}

func parseUploadEncoding(raw string) (Upload, bool) {
	const prefix = "file:"
	if len(raw) <= len(prefix) || raw[:len(prefix)] != prefix {
		return Upload{}, false
	}
	rest := raw[len(prefix):]
	pipe := -1
	for i, c := range rest {
		if c == '|' {
			pipe = i
			break
		}
	}
	if pipe < 0 {
		return Upload{}, false
	}
	head, path := rest[:pipe], rest[pipe+1:]
	name, ctype := head, ""
	for i, c := range head {
		if c == ':' {
			name, ctype = head[:i], head[i+1:]
			break
		}
	}
	return Upload{Name: name, ContentType: ctype, LocalPath: path}, true
}
