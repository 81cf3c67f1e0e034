package registry

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/sigilgraph/gqlcore/value"
)

// CacheControl mirrors the `@cacheControl` directive metadata threaded
// through fields and object types (spec §3). The core only propagates
// this value; it never enforces it (spec §1 Non-goals).
type CacheControl struct {
	MaxAge int
	Public bool
}

// Merge combines two CacheControl hints the way async-graphql's
// resolution does: take the smaller max-age, and require every
// contributor to be public before the aggregate is public.
func (c CacheControl) Merge(other CacheControl) CacheControl {
	out := c
	if other.MaxAge > 0 && (out.MaxAge == 0 || other.MaxAge < out.MaxAge) {
		out.MaxAge = other.MaxAge
	}
	out.Public = out.Public && other.Public
	return out
}

// Validator validates an already-parsed Go value, used for
// InputValue.Validator (spec §3: "an optional validator").
type Validator func(parsed interface{}) error

var (
	structValidate     *validator.Validate
	structValidateOnce sync.Once
)

// structValidator returns the package-wide *validator.Validate
// instance, built once lazily.
func structValidator() *validator.Validate {
	structValidateOnce.Do(func() { structValidate = validator.New() })
	return structValidate
}

// StructValidator builds a Validator that runs go-playground/validator
// struct-tag validation (`validate:"..."` tags) against the parsed Go
// value, the same library the teacher uses to validate input structs
// built by its reflection schema builder.
func StructValidator() Validator {
	return func(parsed interface{}) error {
		return structValidator().Struct(parsed)
	}
}

// EnumValueInfo is one member of an Enum TypeInfo.
type EnumValueInfo struct {
	Name              string
	Description       string
	DeprecationReason *string
}

// InputValue carries the shape spec §3 describes: name, description,
// type string, optional default value, optional validator.
type InputValue struct {
	Name        string
	Description string
	Type        string
	Default     *value.Value
	Validator   Validator
}

// Field carries the shape spec §3 describes, plus the federation
// attributes external/provides/requires.
type Field struct {
	Name              string
	Description       string
	Args              map[string]*InputValue
	ArgOrder          []string
	Type              string
	DeprecationReason *string
	CacheControl      CacheControl

	// Federation attributes (spec §3, §6).
	External bool
	Provides string
	Requires string
}

// OrderedArgs returns Args in declaration order.
func (f *Field) OrderedArgs() []*InputValue {
	out := make([]*InputValue, 0, len(f.ArgOrder))
	for _, name := range f.ArgOrder {
		out = append(out, f.Args[name])
	}
	return out
}

// TypeInfo is the sum type described by spec §3: Scalar, Object,
// Interface, Union, Enum, or InputObject.
type TypeInfo interface {
	TypeName() string
	TypeDescription() string
	isTypeInfo()
}

// FieldHolder is implemented by the TypeInfo variants that can resolve
// a field by name (Object, Interface) — spec §4.B: "field_by_name: on
// Object/Interface/Union returns the resolvable field; returns None on
// scalars and inputs." Union in async-graphql has no own fields (only
// its members do), so it is not a FieldHolder here — callers resolve
// union fields through the concrete member Object.
type FieldHolder interface {
	TypeInfo
	FieldByName(name string) (*Field, bool)
}

type ScalarInfo struct {
	Name        string
	Description string
}

func (s *ScalarInfo) TypeName() string        { return s.Name }
func (s *ScalarInfo) TypeDescription() string { return s.Description }
func (s *ScalarInfo) isTypeInfo()             {}

type ObjectInfo struct {
	Name         string
	Description  string
	Fields       map[string]*Field
	FieldOrder   []string
	CacheControl CacheControl
	Extends      bool
	Keys         []string // federation @key(fields: ...)
	Internal     bool
}

func (o *ObjectInfo) TypeName() string        { return o.Name }
func (o *ObjectInfo) TypeDescription() string { return o.Description }
func (o *ObjectInfo) isTypeInfo()             {}

func (o *ObjectInfo) FieldByName(name string) (*Field, bool) {
	f, ok := o.Fields[name]
	return f, ok
}

func (o *ObjectInfo) OrderedFields() []*Field {
	out := make([]*Field, 0, len(o.FieldOrder))
	for _, name := range o.FieldOrder {
		out = append(out, o.Fields[name])
	}
	return out
}

type InterfaceInfo struct {
	Name          string
	Description   string
	Fields        map[string]*Field
	FieldOrder    []string
	PossibleTypes []string
	Extends       bool
	Keys          []string
}

func (i *InterfaceInfo) TypeName() string        { return i.Name }
func (i *InterfaceInfo) TypeDescription() string { return i.Description }
func (i *InterfaceInfo) isTypeInfo()             {}

func (i *InterfaceInfo) FieldByName(name string) (*Field, bool) {
	f, ok := i.Fields[name]
	return f, ok
}

func (i *InterfaceInfo) OrderedFields() []*Field {
	out := make([]*Field, 0, len(i.FieldOrder))
	for _, name := range i.FieldOrder {
		out = append(out, i.Fields[name])
	}
	return out
}

type UnionInfo struct {
	Name          string
	Description   string
	PossibleTypes []string
}

func (u *UnionInfo) TypeName() string        { return u.Name }
func (u *UnionInfo) TypeDescription() string { return u.Description }
func (u *UnionInfo) isTypeInfo()             {}

type EnumInfo struct {
	Name        string
	Description string
	EnumValues  []EnumValueInfo
}

func (e *EnumInfo) TypeName() string        { return e.Name }
func (e *EnumInfo) TypeDescription() string { return e.Description }
func (e *EnumInfo) isTypeInfo()             {}

type InputObjectInfo struct {
	Name        string
	Description string
	InputFields map[string]*InputValue
	FieldOrder  []string
}

func (i *InputObjectInfo) TypeName() string        { return i.Name }
func (i *InputObjectInfo) TypeDescription() string { return i.Description }
func (i *InputObjectInfo) isTypeInfo()             {}

func (i *InputObjectInfo) OrderedFields() []*InputValue {
	out := make([]*InputValue, 0, len(i.FieldOrder))
	for _, name := range i.FieldOrder {
		out = append(out, i.InputFields[name])
	}
	return out
}

// DirectiveLocation mirrors the teacher's DirectiveLocation naming
// (teacher's directive.go), kept as string constants for SDL/
// introspection printing of registered directive declarations.
type DirectiveLocation string

const (
	LocationField           DirectiveLocation = "FIELD"
	LocationFragmentSpread  DirectiveLocation = "FRAGMENT_SPREAD"
	LocationInlineFragment  DirectiveLocation = "INLINE_FRAGMENT"
	LocationFieldDefinition DirectiveLocation = "FIELD_DEFINITION"
	LocationEnumValue       DirectiveLocation = "ENUM_VALUE"
	LocationObject          DirectiveLocation = "OBJECT"
	LocationInterface       DirectiveLocation = "INTERFACE"
	LocationScalar          DirectiveLocation = "SCALAR"
)

// Directive is a declared directive, stored purely for SDL/
// introspection round-tripping (spec §4.D: the engine's *execution*
// semantics for directives are fixed to @skip/@include/@defer
// regardless of what is declared here).
type Directive struct {
	Name        string
	Description string
	Locations   []DirectiveLocation
	Args        map[string]*InputValue
	ArgOrder    []string
}

const (
	KindScalar      = "SCALAR"
	KindObject      = "OBJECT"
	KindInterface   = "INTERFACE"
	KindUnion       = "UNION"
	KindEnum        = "ENUM"
	KindInputObject = "INPUT_OBJECT"
	KindList        = "LIST"
	KindNonNull     = "NON_NULL"
)

// Kind reports the introspection TypeKind string for a TypeInfo value
// (teacher's introspection.go names these constants identically).
func Kind(t TypeInfo) string {
	switch t.(type) {
	case *ScalarInfo:
		return KindScalar
	case *ObjectInfo:
		return KindObject
	case *InterfaceInfo:
		return KindInterface
	case *UnionInfo:
		return KindUnion
	case *EnumInfo:
		return KindEnum
	case *InputObjectInfo:
		return KindInputObject
	default:
		return ""
	}
}
