// Package gqlcore implements the execution engine that sits between a
// validated GraphQL query document and the JSON response a GraphQL
// server returns: the type protocol schema-bound types implement, the
// per-request execution context, and the resolver engine that drives
// queries, mutations, and subscriptions.
package gqlcore

import (
	"context"

	"github.com/sigilgraph/gqlcore/gqlerrors"
	"github.com/sigilgraph/gqlcore/registry"
	"github.com/sigilgraph/gqlcore/value"
	"github.com/vektah/gqlparser/v2/ast"
)

// Type is the capability every schema-bound Go type implements: a name,
// a qualified (wrapper-annotated) name, registration into a Registry,
// and the type name used by introspection/`__typename` (which an
// interface overrides to report the active variant's name).
type Type interface {
	TypeName() string
	QualifiedTypeName() string
	CreateTypeInfo(reg *registry.Registry) (string, error)
	IntrospectionTypeName() string
}

// InputValueType is implemented by any Go type that can appear as a
// field argument, input-object field, or variable value.
type InputValueType interface {
	Type
	// ParseValue fills the receiver from v and returns false — not an
	// error — when v does not describe this type, so callers can attach
	// source-position context via gqlerrors.ExpectedTypeErr.
	ParseValue(v value.Value) (ok bool)
	ToValue() value.Value
}

// OutputValueType is implemented by any Go type that can be the result
// of resolving a field: drives selection-set resolution for composite
// values, and trivial JSON conversion for scalars.
type OutputValueType interface {
	Type
	Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error)
}

// ObjectType is implemented by schema-bound object and interface Go
// types: it resolves its own fields and decides whether it contributes
// to an inline fragment.
type ObjectType interface {
	OutputValueType
	ResolveField(ctx context.Context, fc *ContextField) (interface{}, error)
	// CollectInlineFields appends a field unit for every member of the
	// inline fragment's selection set that survives, provided name
	// equals this value's own type name or one of the interface names
	// it implements. Interface implementations forward to the active
	// variant.
	CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error
}

// SubscriptionType is implemented by the schema's subscription root.
type SubscriptionType interface {
	Type
	CreateFieldStream(ctx context.Context, fc *ContextField, reg *registry.Registry, env *Environment) (<-chan interface{}, error)
	IsEmpty() bool
}

// ResolveList resolves a list field element by element against a child
// selection-set context carrying an Index(i) path segment, assembling
// results in traversal order.
func ResolveList[T OutputValueType](ctx context.Context, items []T, cs *ContextSelectionSet, p ast.Position) (interface{}, error) {
	out := make([]interface{}, len(items))
	for i, item := range items {
		v, err := item.Resolve(ctx, cs.WithIndex(i), p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ResolveNullable resolves a nullable field: ptr == nil resolves to
// JSON null without pushing a path segment or invoking the
// selection-set walk at all.
func ResolveNullable[T OutputValueType](ctx context.Context, ptr *T, cs *ContextSelectionSet, p ast.Position) (interface{}, error) {
	if ptr == nil {
		return nil, nil
	}
	return (*ptr).Resolve(ctx, cs, p)
}

// EmptyMutation is the unit mutation root used when a schema declares
// no mutations; its Resolve, ResolveField and CollectInlineFields each
// return NotConfiguredMutations.
type EmptyMutation struct{}

func (EmptyMutation) TypeName() string              { return "EmptyMutation" }
func (EmptyMutation) QualifiedTypeName() string     { return "EmptyMutation!" }
func (EmptyMutation) IntrospectionTypeName() string { return "EmptyMutation" }

func (EmptyMutation) CreateTypeInfo(reg *registry.Registry) (string, error) {
	return reg.CreateType("EmptyMutation", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ObjectInfo{Name: "EmptyMutation", Internal: true}, nil
	})
}

func (EmptyMutation) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return nil, gqlerrors.Wrap(gqlerrors.NotConfiguredMutations, pos, "schema has no mutation root")
}

func (EmptyMutation) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	return nil, gqlerrors.Wrap(gqlerrors.NotConfiguredMutations, fieldPos(fc), "schema has no mutation root")
}

func (EmptyMutation) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	return gqlerrors.Wrap(gqlerrors.NotConfiguredMutations, pos, "schema has no mutation root")
}

// EmptySubscription is the unit subscription root used when a schema
// declares no subscriptions. TypeName reports "EmptySubscription", not
// "EmptyMutation" (see DESIGN.md).
type EmptySubscription struct{}

func (EmptySubscription) TypeName() string              { return "EmptySubscription" }
func (EmptySubscription) QualifiedTypeName() string     { return "EmptySubscription!" }
func (EmptySubscription) IntrospectionTypeName() string { return "EmptySubscription" }

func (EmptySubscription) CreateTypeInfo(reg *registry.Registry) (string, error) {
	return reg.CreateType("EmptySubscription", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ObjectInfo{Name: "EmptySubscription", Internal: true}, nil
	})
}

func (EmptySubscription) IsEmpty() bool { return true }

func (EmptySubscription) CreateFieldStream(ctx context.Context, fc *ContextField, reg *registry.Registry, env *Environment) (<-chan interface{}, error) {
	return nil, gqlerrors.Wrap(gqlerrors.NotConfiguredSubscriptions, fieldPos(fc), "schema has no subscription root")
}

