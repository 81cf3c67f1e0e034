package gqlcore

import (
	"fmt"

	"go.uber.org/atomic"

	"github.com/sigilgraph/gqlcore/gqlerrors"
	"github.com/sigilgraph/gqlcore/registry"
	"github.com/sigilgraph/gqlcore/value"
	"github.com/vektah/gqlparser/v2/ast"
)

// ContextBase is a per-node context parameterized by the AST item
// being resolved — either a *ast.SelectionSet or a *ast.Field. Creation
// is cheap: a child context shares every handle with its parent and
// adds one path segment, never deep-copying registry, environment, or
// data.
type ContextBase[T any] struct {
	Path       *PathNode
	ResolveID  *atomic.Uint64
	Extensions []Extension
	Registry   *registry.Registry
	Data       *Data
	Env        *Environment
	Defer      *DeferList
	Item       T
}

type ContextSelectionSet = ContextBase[*ast.SelectionSet]
type ContextField = ContextBase[*ast.Field]

// withSelectionSet derives a child context over a different selection
// set, sharing every other handle.
func (c *ContextBase[T]) withSelectionSet(item *ast.SelectionSet) *ContextSelectionSet {
	return &ContextSelectionSet{
		Path: c.Path, ResolveID: c.ResolveID, Extensions: c.Extensions,
		Registry: c.Registry, Data: c.Data, Env: c.Env, Defer: c.Defer, Item: item,
	}
}

// withField derives a child context over a field, pushing a name path
// segment.
func (c *ContextBase[T]) withField(item *ast.Field, resultKey string) *ContextField {
	return &ContextField{
		Path: c.Path.WithName(resultKey), ResolveID: c.ResolveID, Extensions: c.Extensions,
		Registry: c.Registry, Data: c.Data, Env: c.Env, Defer: c.Defer, Item: item,
	}
}

// WithIndex derives a child selection-set context pushing an index
// path segment, used when resolving one element of a list field.
func (c *ContextSelectionSet) WithIndex(i int) *ContextSelectionSet {
	return &ContextSelectionSet{
		Path: c.Path.WithIndex(i), ResolveID: c.ResolveID, Extensions: c.Extensions,
		Registry: c.Registry, Data: c.Data, Env: c.Env, Defer: c.Defer, Item: c.Item,
	}
}

// VarValue returns the named variable's value, falling back to its
// declared default, else signals VarNotDefined.
func (env *Environment) VarValue(name string, pos ast.Position) (value.Value, error) {
	if v, ok := env.Variables.Get(name); ok {
		return v, nil
	}
	for _, def := range env.VariableDefinitions {
		if def.Variable == name && def.DefaultValue != nil {
			return value.FromAST(def.DefaultValue), nil
		}
	}
	return value.Value{}, gqlerrors.VarNotDefinedErr(pos, name)
}

// ResolveInputValue substitutes Variable(name) at top level and inside
// List/Object with the resolved value. Deliberately does NOT recurse
// into nested lists/objects (see DESIGN.md Open Question 1); a
// Variable buried two levels deep is left unresolved.
func ResolveInputValue(env *Environment, v value.Value, pos ast.Position) (value.Value, error) {
	if v.IsVariable() {
		return env.VarValue(v.Str, pos)
	}
	switch v.Kind {
	case value.List:
		out := make([]value.Value, len(v.Items))
		for i, item := range v.Items {
			if item.IsVariable() {
				resolved, err := env.VarValue(item.Str, pos)
				if err != nil {
					return value.Value{}, err
				}
				out[i] = resolved
			} else {
				out[i] = item
			}
		}
		return value.ListValue(out), nil
	case value.Object:
		out := value.NewOrderedMap()
		for _, k := range v.Fields.Keys() {
			item, _ := v.Fields.Get(k)
			if item.IsVariable() {
				resolved, err := env.VarValue(item.Str, pos)
				if err != nil {
					return value.Value{}, err
				}
				out.Set(k, resolved)
			} else {
				out.Set(k, item)
			}
		}
		return value.ObjectValue(out), nil
	default:
		return v, nil
	}
}

// IsSkip enforces the directive policy: only @skip, @include, and
// @defer are recognized on selection-set members. @skip(if: true) and
// @include(if: false) both mean "omit"; any other directive is a hard
// UnknownDirective error.
func IsSkip(env *Environment, directives ast.DirectiveList) (bool, error) {
	skip := false
	for _, d := range directives {
		switch d.Name {
		case "skip":
			v, err := directiveIfArg(env, d)
			if err != nil {
				return false, err
			}
			if v {
				skip = true
			}
		case "include":
			v, err := directiveIfArg(env, d)
			if err != nil {
				return false, err
			}
			if !v {
				skip = true
			}
		case "defer":
			// handled separately by IsDefer; not a skip signal.
		default:
			return false, gqlerrors.UnknownDirectiveErr(pos(d.Position), d.Name)
		}
	}
	return skip, nil
}

// IsDefer reports whether the @defer directive is present on this
// selection.
func IsDefer(directives ast.DirectiveList) bool {
	for _, d := range directives {
		if d.Name == "defer" {
			return true
		}
	}
	return false
}

func directiveIfArg(env *Environment, d *ast.Directive) (bool, error) {
	dpos := pos(d.Position)
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, gqlerrors.RequiredDirectiveArgsErr(dpos, d.Name, "if", "Boolean!")
	}
	apos := pos(arg.Position)
	raw := value.FromAST(arg.Value)
	resolved, err := ResolveInputValue(env, raw, apos)
	if err != nil {
		return false, err
	}
	if resolved.Kind != value.Boolean {
		return false, gqlerrors.ExpectedTypeErr(apos, "Boolean!", resolved.GraphQL())
	}
	return resolved.Bool, nil
}

// ParamValue binds a declared field argument: look up the supplied
// value, resolve variables, and run InputValueType.ParseValue. If
// absent, the field's default (parsed as written, no variable
// resolution) or Null is used instead. ExpectedType is raised on
// mismatch.
func ParamValue(env *Environment, argDef *registry.InputValue, args ast.ArgumentList, pos ast.Position, dst InputValueType) error {
	var resolved value.Value
	if arg := args.ForName(argDef.Name); arg != nil {
		raw := value.FromAST(arg.Value)
		r, err := ResolveInputValue(env, raw, pos)
		if err != nil {
			return err
		}
		resolved = r
	} else if argDef.Default != nil {
		// A declared default is parsed as written, with no variable
		// substitution — only a supplied argument can reference a
		// variable.
		resolved = *argDef.Default
	} else {
		resolved = value.NullValue()
	}

	if !dst.ParseValue(resolved) {
		return gqlerrors.ExpectedTypeErr(pos, argDef.Type, resolved.GraphQL())
	}
	if argDef.Validator != nil {
		if verr := argDef.Validator(dst); verr != nil {
			return gqlerrors.Wrap(gqlerrors.ExpectedType, pos, fmt.Sprintf("argument %s: %s", argDef.Name, verr.Error()))
		}
	}
	return nil
}
