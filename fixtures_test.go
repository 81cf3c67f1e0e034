package gqlcore

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/sigilgraph/gqlcore/gqlerrors"
	"github.com/sigilgraph/gqlcore/registry"
)

// The fixtures below are a minimal object graph exercising the five
// capability interfaces end to end: a query root with a scalar field,
// an argument-bound field, an always-failing field, a list field, and
// an interface-typed field dispatching to one of two concrete object
// types; a mutation root whose fields mutate shared request-scoped
// state to make resolution order observable; and a subscription root
// streaming a handful of messages per field.

func registerPetInterface(reg *registry.Registry) (string, error) {
	return reg.CreateType("Pet", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.InterfaceInfo{
			Name:          "Pet",
			Fields:        map[string]*registry.Field{"name": {Name: "name", Type: "String!"}},
			FieldOrder:    []string{"name"},
			PossibleTypes: []string{"Dog", "Cat"},
		}, nil
	})
}

type testDog struct{ Name string }

func (testDog) TypeName() string              { return "Dog" }
func (testDog) QualifiedTypeName() string     { return "Dog!" }
func (testDog) IntrospectionTypeName() string { return "Dog" }

func (testDog) CreateTypeInfo(reg *registry.Registry) (string, error) {
	name, err := reg.CreateType("Dog", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ObjectInfo{
			Name: "Dog",
			Fields: map[string]*registry.Field{
				"name": {Name: "name", Type: "String!"},
				"bark": {Name: "bark", Type: "String!"},
			},
			FieldOrder: []string{"name", "bark"},
		}, nil
	})
	if err != nil {
		return "", err
	}
	reg.AddImplements("Dog", "Pet")
	return name, nil
}

func (d testDog) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doResolve(ctx, cs, d)
}

func (d testDog) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	switch fc.Item.Name {
	case "name":
		return String(d.Name).Resolve(ctx, nil, fieldPos(fc))
	case "bark":
		return String(d.Name + " says Woof").Resolve(ctx, nil, fieldPos(fc))
	}
	return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "Dog")
}

func (d testDog) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	if name == "Dog" || cs.Registry.Implements["Dog"][name] {
		return collectFieldsInto(cs, d, units)
	}
	return nil
}

type testCat struct{ Name string }

func (testCat) TypeName() string              { return "Cat" }
func (testCat) QualifiedTypeName() string     { return "Cat!" }
func (testCat) IntrospectionTypeName() string { return "Cat" }

func (testCat) CreateTypeInfo(reg *registry.Registry) (string, error) {
	name, err := reg.CreateType("Cat", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ObjectInfo{
			Name: "Cat",
			Fields: map[string]*registry.Field{
				"name": {Name: "name", Type: "String!"},
				"meow": {Name: "meow", Type: "String!"},
			},
			FieldOrder: []string{"name", "meow"},
		}, nil
	})
	if err != nil {
		return "", err
	}
	reg.AddImplements("Cat", "Pet")
	return name, nil
}

func (c testCat) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doResolve(ctx, cs, c)
}

func (c testCat) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	switch fc.Item.Name {
	case "name":
		return String(c.Name).Resolve(ctx, nil, fieldPos(fc))
	case "meow":
		return String(c.Name + " says Meow").Resolve(ctx, nil, fieldPos(fc))
	}
	return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "Cat")
}

func (c testCat) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	if name == "Cat" || cs.Registry.Implements["Cat"][name] {
		return collectFieldsInto(cs, c, units)
	}
	return nil
}

// testQuery is the query root fixture. PetIsDog selects which concrete
// Pet implementor the "pet" field resolves to.
type testQuery struct {
	PetIsDog bool
}

func (testQuery) TypeName() string              { return "Query" }
func (testQuery) QualifiedTypeName() string     { return "Query!" }
func (testQuery) IntrospectionTypeName() string { return "Query" }

func (testQuery) CreateTypeInfo(reg *registry.Registry) (string, error) {
	if _, err := registerPetInterface(reg); err != nil {
		return "", err
	}
	if _, err := (testDog{}).CreateTypeInfo(reg); err != nil {
		return "", err
	}
	if _, err := (testCat{}).CreateTypeInfo(reg); err != nil {
		return "", err
	}
	return reg.CreateType("Query", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ObjectInfo{
			Name: "Query",
			Fields: map[string]*registry.Field{
				"hello": {Name: "hello", Type: "String!"},
				"add": {
					Name: "add", Type: "Int!",
					Args: map[string]*registry.InputValue{
						"a": {Name: "a", Type: "Int!"},
						"b": {Name: "b", Type: "Int!"},
					},
					ArgOrder: []string{"a", "b"},
				},
				"pet":     {Name: "pet", Type: "Pet"},
				"failing": {Name: "failing", Type: "String!"},
				"items":   {Name: "items", Type: "[Int!]!"},
			},
			FieldOrder: []string{"hello", "add", "pet", "failing", "items"},
		}, nil
	})
}

func (q testQuery) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doResolve(ctx, cs, q)
}

func (q testQuery) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	if name != "Query" {
		return nil
	}
	return collectFieldsInto(cs, q, units)
}

func (q testQuery) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	switch fc.Item.Name {
	case "hello":
		return String("world").Resolve(ctx, nil, fieldPos(fc))

	case "add":
		var a, b Int
		if err := ParamValue(fc.Env, &registry.InputValue{Name: "a", Type: "Int!"}, fc.Item.Arguments, fieldPos(fc), &a); err != nil {
			return nil, err
		}
		if err := ParamValue(fc.Env, &registry.InputValue{Name: "b", Type: "Int!"}, fc.Item.Arguments, fieldPos(fc), &b); err != nil {
			return nil, err
		}
		return Int(a + b).Resolve(ctx, nil, fieldPos(fc))

	case "pet":
		var obj ObjectType
		if q.PetIsDog {
			obj = testDog{Name: "Rex"}
		} else {
			obj = testCat{Name: "Tom"}
		}
		childCS := fc.withSelectionSet(&fc.Item.SelectionSet)
		return obj.Resolve(ctx, childCS, fieldPos(fc))

	case "failing":
		return nil, gqlerrors.Wrap(gqlerrors.FieldNotFound, fieldPos(fc), "boom")

	case "items":
		return ResolveList[Int](ctx, []Int{1, 2, 3}, fc.withSelectionSet(&fc.Item.SelectionSet), fieldPos(fc))
	}
	return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "Query")
}

// orderLog records the sequence mutation fields actually ran in, shared
// through the request Data bag (QueryBuilder.Data) across every field
// resolution of a single Execute call.
type orderLog struct {
	Order []string
}

// testMutation is the mutation root fixture: each of "appendA" and
// "appendB" records its own
// invocation order into the shared *orderLog before returning the
// running count, so a test can assert fields ran strictly in source
// order rather than concurrently.
type testMutation struct{}

func (testMutation) TypeName() string              { return "Mutation" }
func (testMutation) QualifiedTypeName() string     { return "Mutation!" }
func (testMutation) IntrospectionTypeName() string { return "Mutation" }

func (testMutation) CreateTypeInfo(reg *registry.Registry) (string, error) {
	return reg.CreateType("Mutation", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ObjectInfo{
			Name: "Mutation",
			Fields: map[string]*registry.Field{
				"appendA": {Name: "appendA", Type: "Int!"},
				"appendB": {Name: "appendB", Type: "Int!"},
			},
			FieldOrder: []string{"appendA", "appendB"},
		}, nil
	})
}

func (m testMutation) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doMutationResolve(ctx, cs, m)
}

func (m testMutation) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	if name != "Mutation" {
		return nil
	}
	return collectFieldsInto(cs, m, units)
}

func (m testMutation) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	log, _ := GetTyped[*orderLog](fc.Data)
	switch fc.Item.Name {
	case "appendA":
		if log != nil {
			log.Order = append(log.Order, "appendA")
		}
		return Int(len(log.Order)).Resolve(ctx, nil, fieldPos(fc))
	case "appendB":
		if log != nil {
			log.Order = append(log.Order, "appendB")
		}
		return Int(len(log.Order)).Resolve(ctx, nil, fieldPos(fc))
	}
	return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "Mutation")
}

// testSubscription streams a fixed number of Int messages on its single
// field, then closes its channel.
type testSubscription struct{ Messages []int32 }

func (testSubscription) TypeName() string              { return "Subscription" }
func (testSubscription) QualifiedTypeName() string     { return "Subscription!" }
func (testSubscription) IntrospectionTypeName() string { return "Subscription" }
func (testSubscription) IsEmpty() bool                 { return false }

func (testSubscription) CreateTypeInfo(reg *registry.Registry) (string, error) {
	return reg.CreateType("Subscription", func(r *registry.Registry) (registry.TypeInfo, error) {
		return &registry.ObjectInfo{
			Name:       "Subscription",
			Fields:     map[string]*registry.Field{"counter": {Name: "counter", Type: "Int!"}},
			FieldOrder: []string{"counter"},
		}, nil
	})
}

func (s testSubscription) CreateFieldStream(ctx context.Context, fc *ContextField, reg *registry.Registry, env *Environment) (<-chan interface{}, error) {
	if fc.Item.Name != "counter" {
		return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "Subscription")
	}
	out := make(chan interface{})
	go func() {
		defer close(out)
		for _, m := range s.Messages {
			select {
			case out <- Int(m):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
