package gqlcore

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sigilgraph/gqlcore/gqlerrors"
	"github.com/vektah/gqlparser/v2/ast"
)

// fieldUnit is one produced unit of field work from the shared
// selection-set walk. resultKey is alias-or-name; resolve performs the actual field
// resolution (or, for a deferred field, is never invoked inline —
// see doResolve's @defer branch).
type fieldUnit struct {
	resultKey string
	fc        *ContextField
	// resolve takes the ContextField to resolve against explicitly
	// (rather than closing over fc directly) so a deferred unit can be
	// re-run against a copy carrying a fresh child DeferList — see
	// deferDeferredUnit.
	resolve func(ctx context.Context, fc *ContextField) (interface{}, error)
}

// collectFields walks a selection set's Field, FragmentSpread, and
// InlineFragment members, each contributing zero or more fieldUnits. root is the ObjectType (object or interface,
// possibly tagged-variant) whose fields are being resolved.
func collectFields(cs *ContextSelectionSet, root ObjectType) ([]fieldUnit, error) {
	var units []fieldUnit
	if err := collectFieldsInto(cs, root, &units); err != nil {
		return nil, err
	}
	return units, nil
}

func collectFieldsInto(cs *ContextSelectionSet, root ObjectType, units *[]fieldUnit) error {
	if len(cs.Item.Selections) == 0 {
		return gqlerrors.MustHaveSubFieldsErr(ast.Position{}, root.TypeName())
	}
	for _, sel := range cs.Item.Selections {
		switch node := sel.(type) {
		case *astField:
			skip, err := IsSkip(cs.Env, node.Directives)
			if err != nil {
				return err
			}
			if skip {
				continue
			}
			resultKey := node.Alias
			if resultKey == "" {
				resultKey = node.Name
			}
			if node.Name == "__typename" {
				typeName := root.IntrospectionTypeName()
				*units = append(*units, fieldUnit{
					resultKey: resultKey,
					fc:        cs.withField(node, resultKey),
					resolve: func(ctx context.Context, fc *ContextField) (interface{}, error) {
						return typeName, nil
					},
				})
				continue
			}
			*units = append(*units, fieldUnit{
				resultKey: resultKey,
				fc:        cs.withField(node, resultKey),
				resolve: func(ctx context.Context, fc *ContextField) (interface{}, error) {
					return root.ResolveField(ctx, fc)
				},
			})

		case *astFragmentSpread:
			skip, err := IsSkip(cs.Env, node.Directives)
			if err != nil {
				return err
			}
			if skip {
				continue
			}
			frag, ok := cs.Env.Fragments[node.Name]
			if !ok {
				return gqlerrors.UnknownFragmentErr(pos(node.Position), node.Name)
			}
			childCS := cs.withSelectionSet(&frag.SelectionSet)
			if err := collectFieldsInto(childCS, root, units); err != nil {
				return err
			}

		case *astInlineFragment:
			skip, err := IsSkip(cs.Env, node.Directives)
			if err != nil {
				return err
			}
			if skip {
				continue
			}
			childCS := cs.withSelectionSet(&node.SelectionSet)
			if node.TypeCondition != "" {
				if err := root.CollectInlineFields(node.TypeCondition, pos(node.Position), childCS, units); err != nil {
					return err
				}
			} else {
				if err := collectFieldsInto(childCS, root, units); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// doResolve resolves fields concurrently, joins them in parallel, and
// assembles the result in selection-set order, not completion order.
func doResolve(ctx context.Context, cs *ContextSelectionSet, root ObjectType) (*orderedJSONMap, error) {
	units, err := collectFields(cs, root)
	if err != nil {
		return nil, err
	}

	results := make([]interface{}, len(units))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range units {
		i, u := i, u
		if cs.Defer != nil && IsDefer(u.fc.Item.Directives) {
			deferDeferredUnit(cs.Defer, cs.Extensions, u)
			results[i] = nil
			continue
		}
		g.Go(func() error {
			val, resolveErr := resolveUnit(gctx, cs.Extensions, u)
			if resolveErr != nil {
				return resolveErr
			}
			results[i] = val
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := newOrderedJSONMap()
	for i, u := range units {
		out.Set(u.resultKey, results[i])
	}
	return out, nil
}

// doMutationResolve has identical field-unit semantics to doResolve,
// except fields run strictly sequentially in source order (a
// happens-before relation between successive fields) and @defer is
// never honored — mutation contexts are built with a nil DeferList, so
// IsDefer is never even consulted here.
func doMutationResolve(ctx context.Context, cs *ContextSelectionSet, root ObjectType) (*orderedJSONMap, error) {
	units, err := collectFields(cs, root)
	if err != nil {
		return nil, err
	}

	out := newOrderedJSONMap()
	for _, u := range units {
		val, err := resolveUnit(ctx, cs.Extensions, u)
		if err != nil {
			return nil, err
		}
		out.Set(u.resultKey, val)
	}
	return out, nil
}

// resolveUnit wraps a single field unit's execution with the
// resolve_id counter and extension lifecycle hooks.
func resolveUnit(ctx context.Context, exts []Extension, u fieldUnit) (interface{}, error) {
	return resolveUnitWith(ctx, exts, u, u.fc)
}

// resolveUnitWith is resolveUnit generalized over the ContextField to
// resolve against, so deferDeferredUnit can substitute a copy carrying
// a fresh child DeferList without re-deriving resolve_id/path twice.
func resolveUnitWith(ctx context.Context, exts []Extension, u fieldUnit, fc *ContextField) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := fc.ResolveID.Inc()
	info := ResolveInfo{
		ResolveID:  id,
		Path:       fc.Path.ToJSON(),
		FieldName:  fc.Item.Name,
		ReturnType: fieldReturnType(fc),
	}
	fireFieldStart(exts, info)
	defer fireFieldEnd(exts, id)
	val, err := u.resolve(ctx, fc)
	if err != nil {
		return nil, attachPath(err, fc.Path.ToJSON())
	}
	return val, nil
}

// attachPath serializes the path at the failure site onto an error
// that doesn't carry one yet. A *gqlerrors.Error that originated
// deeper in the tree (and already carries its own, more
// specific path) is left untouched; only the first attachment wins.
func attachPath(err error, path []interface{}) error {
	if qerr, ok := err.(*gqlerrors.Error); ok && len(qerr.Path) == 0 {
		return qerr.WithPath(path)
	}
	return err
}

func fieldReturnType(fc *ContextField) string {
	if fc.Item.Definition != nil {
		return fc.Item.Definition.Type.String()
	}
	return ""
}

// deferDeferredUnit pushes a deferred work item capturing the field
// context instead of resolving inline; the field's immediate value is
// null.
func deferDeferredUnit(dl *DeferList, exts []Extension, u fieldUnit) {
	dl.push(deferWork{
		path: u.fc.Path,
		resolve: func() (interface{}, *DeferList, error) {
			childDefer := NewDeferList()
			childFC := *u.fc
			childFC.Defer = childDefer
			val, err := resolveUnitWith(context.Background(), exts, u, &childFC)
			if err != nil {
				return nil, nil, err
			}
			return val, childDefer, nil
		},
	})
}
