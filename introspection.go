package gqlcore

import (
	"context"

	"github.com/sigilgraph/gqlcore/gqlerrors"
	"github.com/sigilgraph/gqlcore/registry"
	"github.com/sigilgraph/gqlcore/value"
	"github.com/vektah/gqlparser/v2/ast"
)

// The types below are hand-written ObjectType/OutputValueType
// implementations wrapping registry.IntrospectionSchema and its
// children: __schema (introspection root) and __type(name: String!)
// (single-type lookup). They let __schema/__type selections flow
// through the ordinary selection-set walk (collectFieldsInto/doResolve)
// exactly like any user-declared object type, rather than
// special-casing JSON assembly for introspection.

var includeDeprecatedDefault = value.BoolValue(false)

func includeDeprecatedArg(fc *ContextField) (bool, error) {
	var b Boolean
	err := ParamValue(fc.Env, &registry.InputValue{Name: "includeDeprecated", Type: "Boolean", Default: &includeDeprecatedDefault}, fc.Item.Arguments, fieldPos(fc), &b)
	return bool(b), err
}

type introspectionSchema struct{ s *registry.IntrospectionSchema }

func (t *introspectionSchema) TypeName() string                                   { return "__Schema" }
func (t *introspectionSchema) QualifiedTypeName() string                          { return "__Schema!" }
func (t *introspectionSchema) IntrospectionTypeName() string                      { return "__Schema" }
func (t *introspectionSchema) CreateTypeInfo(*registry.Registry) (string, error)  { return "__Schema", nil }
func (t *introspectionSchema) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doResolve(ctx, cs, t)
}
func (t *introspectionSchema) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	if name != "__Schema" {
		return nil
	}
	return collectFieldsInto(cs, t, units)
}

func (t *introspectionSchema) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	childCS := fc.withSelectionSet(&fc.Item.SelectionSet)
	switch fc.Item.Name {
	case "description":
		if t.s.Description == "" {
			return nil, nil
		}
		return t.s.Description, nil
	case "types":
		return resolveIntrospectionTypeList(ctx, childCS, t.s.Types)
	case "queryType":
		return resolveIntrospectionTypeRef(ctx, childCS, t.s.QueryType)
	case "mutationType":
		return resolveIntrospectionTypeRef(ctx, childCS, t.s.MutationType)
	case "subscriptionType":
		return resolveIntrospectionTypeRef(ctx, childCS, t.s.SubscriptionType)
	case "directives":
		out := make([]interface{}, len(t.s.Directives))
		for i, d := range t.s.Directives {
			v, err := doResolve(ctx, childCS.WithIndex(i), &introspectionDirective{d: d})
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "__Schema")
}

type introspectionType struct{ t *registry.IntrospectionType }

func (t *introspectionType) TypeName() string                                  { return "__Type" }
func (t *introspectionType) QualifiedTypeName() string                         { return "__Type!" }
func (t *introspectionType) IntrospectionTypeName() string                     { return "__Type" }
func (t *introspectionType) CreateTypeInfo(*registry.Registry) (string, error) { return "__Type", nil }
func (t *introspectionType) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doResolve(ctx, cs, t)
}
func (t *introspectionType) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	if name != "__Type" {
		return nil
	}
	return collectFieldsInto(cs, t, units)
}

func (t *introspectionType) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	childCS := fc.withSelectionSet(&fc.Item.SelectionSet)
	switch fc.Item.Name {
	case "kind":
		return t.t.Kind, nil
	case "name":
		if t.t.Name == "" {
			return nil, nil
		}
		return t.t.Name, nil
	case "description":
		if t.t.Description == "" {
			return nil, nil
		}
		return t.t.Description, nil
	case "fields":
		if t.t.Kind != registry.KindObject && t.t.Kind != registry.KindInterface {
			return nil, nil
		}
		includeDeprecated, err := includeDeprecatedArg(fc)
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, 0, len(t.t.Fields))
		idx := 0
		for _, f := range t.t.Fields {
			if f.IsDeprecated && !includeDeprecated {
				continue
			}
			v, err := doResolve(ctx, childCS.WithIndex(idx), &introspectionField{f: f})
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			idx++
		}
		return out, nil
	case "interfaces":
		if t.t.Kind != registry.KindObject {
			return nil, nil
		}
		return resolveIntrospectionTypeList(ctx, childCS, t.t.Interfaces)
	case "possibleTypes":
		if t.t.Kind != registry.KindInterface && t.t.Kind != registry.KindUnion {
			return nil, nil
		}
		return resolveIntrospectionTypeList(ctx, childCS, t.t.PossibleTypes)
	case "enumValues":
		if t.t.Kind != registry.KindEnum {
			return nil, nil
		}
		includeDeprecated, err := includeDeprecatedArg(fc)
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, 0, len(t.t.EnumValues))
		idx := 0
		for _, ev := range t.t.EnumValues {
			if ev.IsDeprecated && !includeDeprecated {
				continue
			}
			v, err := doResolve(ctx, childCS.WithIndex(idx), &introspectionEnumValue{v: ev})
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			idx++
		}
		return out, nil
	case "inputFields":
		if t.t.Kind != registry.KindInputObject {
			return nil, nil
		}
		out := make([]interface{}, len(t.t.InputFields))
		for i, f := range t.t.InputFields {
			v, err := doResolve(ctx, childCS.WithIndex(i), &introspectionInputValue{v: f})
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case "ofType":
		return resolveIntrospectionTypeRef(ctx, childCS, t.t.OfType)
	}
	return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "__Type")
}

type introspectionField struct{ f *registry.IntrospectionField }

func (t *introspectionField) TypeName() string                                  { return "__Field" }
func (t *introspectionField) QualifiedTypeName() string                         { return "__Field!" }
func (t *introspectionField) IntrospectionTypeName() string                     { return "__Field" }
func (t *introspectionField) CreateTypeInfo(*registry.Registry) (string, error) { return "__Field", nil }
func (t *introspectionField) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doResolve(ctx, cs, t)
}
func (t *introspectionField) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	if name != "__Field" {
		return nil
	}
	return collectFieldsInto(cs, t, units)
}

func (t *introspectionField) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	childCS := fc.withSelectionSet(&fc.Item.SelectionSet)
	switch fc.Item.Name {
	case "name":
		return t.f.Name, nil
	case "description":
		if t.f.Description == "" {
			return nil, nil
		}
		return t.f.Description, nil
	case "args":
		out := make([]interface{}, len(t.f.Args))
		for i, a := range t.f.Args {
			v, err := doResolve(ctx, childCS.WithIndex(i), &introspectionInputValue{v: a})
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case "type":
		return doResolve(ctx, childCS, &introspectionType{t: t.f.Type})
	case "isDeprecated":
		return t.f.IsDeprecated, nil
	case "deprecationReason":
		if t.f.DeprecationReason == "" {
			return nil, nil
		}
		return t.f.DeprecationReason, nil
	}
	return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "__Field")
}

type introspectionInputValue struct{ v *registry.IntrospectionInputValue }

func (t *introspectionInputValue) TypeName() string              { return "__InputValue" }
func (t *introspectionInputValue) QualifiedTypeName() string     { return "__InputValue!" }
func (t *introspectionInputValue) IntrospectionTypeName() string { return "__InputValue" }
func (t *introspectionInputValue) CreateTypeInfo(*registry.Registry) (string, error) {
	return "__InputValue", nil
}
func (t *introspectionInputValue) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doResolve(ctx, cs, t)
}
func (t *introspectionInputValue) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	if name != "__InputValue" {
		return nil
	}
	return collectFieldsInto(cs, t, units)
}

func (t *introspectionInputValue) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	childCS := fc.withSelectionSet(&fc.Item.SelectionSet)
	switch fc.Item.Name {
	case "name":
		return t.v.Name, nil
	case "description":
		if t.v.Description == "" {
			return nil, nil
		}
		return t.v.Description, nil
	case "type":
		return doResolve(ctx, childCS, &introspectionType{t: t.v.Type})
	case "defaultValue":
		if t.v.DefaultValue == nil {
			return nil, nil
		}
		return *t.v.DefaultValue, nil
	}
	return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "__InputValue")
}

type introspectionEnumValue struct{ v *registry.IntrospectionEnumValue }

func (t *introspectionEnumValue) TypeName() string              { return "__EnumValue" }
func (t *introspectionEnumValue) QualifiedTypeName() string     { return "__EnumValue!" }
func (t *introspectionEnumValue) IntrospectionTypeName() string { return "__EnumValue" }
func (t *introspectionEnumValue) CreateTypeInfo(*registry.Registry) (string, error) {
	return "__EnumValue", nil
}
func (t *introspectionEnumValue) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doResolve(ctx, cs, t)
}
func (t *introspectionEnumValue) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	if name != "__EnumValue" {
		return nil
	}
	return collectFieldsInto(cs, t, units)
}

func (t *introspectionEnumValue) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	switch fc.Item.Name {
	case "name":
		return t.v.Name, nil
	case "description":
		if t.v.Description == "" {
			return nil, nil
		}
		return t.v.Description, nil
	case "isDeprecated":
		return t.v.IsDeprecated, nil
	case "deprecationReason":
		if t.v.DeprecationReason == "" {
			return nil, nil
		}
		return t.v.DeprecationReason, nil
	}
	return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "__EnumValue")
}

type introspectionDirective struct{ d *registry.IntrospectionDirective }

func (t *introspectionDirective) TypeName() string              { return "__Directive" }
func (t *introspectionDirective) QualifiedTypeName() string     { return "__Directive!" }
func (t *introspectionDirective) IntrospectionTypeName() string { return "__Directive" }
func (t *introspectionDirective) CreateTypeInfo(*registry.Registry) (string, error) {
	return "__Directive", nil
}
func (t *introspectionDirective) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doResolve(ctx, cs, t)
}
func (t *introspectionDirective) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	if name != "__Directive" {
		return nil
	}
	return collectFieldsInto(cs, t, units)
}

func (t *introspectionDirective) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	childCS := fc.withSelectionSet(&fc.Item.SelectionSet)
	switch fc.Item.Name {
	case "name":
		return t.d.Name, nil
	case "description":
		if t.d.Description == "" {
			return nil, nil
		}
		return t.d.Description, nil
	case "locations":
		out := make([]interface{}, len(t.d.Locations))
		for i, l := range t.d.Locations {
			out[i] = string(l)
		}
		return out, nil
	case "args":
		out := make([]interface{}, len(t.d.Args))
		for i, a := range t.d.Args {
			v, err := doResolve(ctx, childCS.WithIndex(i), &introspectionInputValue{v: a})
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "__Directive")
}

// resolveIntrospectionTypeList resolves a []*registry.IntrospectionType
// field (e.g. __Schema.types, __Type.interfaces/possibleTypes) the way
// ResolveList's list half of OutputValueType.Resolve does: one child
// context per element, path segment Index(i), traversal order
// preserved in the output.
func resolveIntrospectionTypeList(ctx context.Context, cs *ContextSelectionSet, types []*registry.IntrospectionType) (interface{}, error) {
	out := make([]interface{}, len(types))
	for i, t := range types {
		v, err := doResolve(ctx, cs.WithIndex(i), &introspectionType{t: t})
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// resolveIntrospectionTypeRef resolves a nullable single
// *registry.IntrospectionType reference (__Schema.queryType,
// __Type.ofType, ...): nil resolves to JSON null without pushing a
// path segment.
func resolveIntrospectionTypeRef(ctx context.Context, cs *ContextSelectionSet, t *registry.IntrospectionType) (interface{}, error) {
	if t == nil {
		return nil, nil
	}
	return doResolve(ctx, cs, &introspectionType{t: t})
}
