package gqlcore

import (
	"context"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/sigilgraph/gqlcore/gqlerrors"
	"github.com/sigilgraph/gqlcore/registry"
)

// newResolveCounter allocates the fresh, independent resolve-id
// counter each subscription message resolution cycle uses.
func newResolveCounter() *atomic.Uint64 { return atomic.NewUint64(0) }

// subscriptionField pairs a result key with the field's source stream
// and the field context used to re-resolve every message it produces.
type subscriptionField struct {
	resultKey string
	fc        *ContextField
	source    <-chan interface{}
}

// collectSubscriptionFields runs the normal fragment/directive walk,
// except an inline fragment with a type condition is entered only if
// the condition equals the subscription type's own name — subscription
// roots are never polymorphic the way query/mutation interfaces are.
func collectSubscriptionFields(ctx context.Context, cs *ContextSelectionSet, root SubscriptionType, reg *registry.Registry) ([]subscriptionField, error) {
	var out []subscriptionField
	for _, sel := range cs.Item.Selections {
		switch node := sel.(type) {
		case *astField:
			skip, err := IsSkip(cs.Env, node.Directives)
			if err != nil {
				return nil, err
			}
			if skip {
				continue
			}
			resultKey := node.Alias
			if resultKey == "" {
				resultKey = node.Name
			}
			fc := cs.withField(node, resultKey)
			stream, err := root.CreateFieldStream(ctx, fc, reg, cs.Env)
			if err != nil {
				return nil, err
			}
			out = append(out, subscriptionField{resultKey: resultKey, fc: fc, source: stream})

		case *astFragmentSpread:
			skip, err := IsSkip(cs.Env, node.Directives)
			if err != nil {
				return nil, err
			}
			if skip {
				continue
			}
			frag, ok := cs.Env.Fragments[node.Name]
			if !ok {
				return nil, gqlerrors.UnknownFragmentErr(pos(node.Position), node.Name)
			}
			childCS := cs.withSelectionSet(&frag.SelectionSet)
			sub, err := collectSubscriptionFields(ctx, childCS, root, reg)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)

		case *astInlineFragment:
			skip, err := IsSkip(cs.Env, node.Directives)
			if err != nil {
				return nil, err
			}
			if skip {
				continue
			}
			if node.TypeCondition != "" && node.TypeCondition != root.TypeName() {
				continue
			}
			childCS := cs.withSelectionSet(&node.SelectionSet)
			sub, err := collectSubscriptionFields(ctx, childCS, root, reg)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}
	return out, nil
}

// ResolveSubscription asks each surviving field for its source stream,
// then for every message m that stream produces, builds a fresh context
// (fresh resolve-id counter, no defer list, the captured selection set)
// and runs OutputValueType.Resolve(m, ctx, pos). The result is wrapped
// as {resultKey: value}. A message whose resolution fails is dropped
// silently from the wire contract — logged at Warn so the ambient
// stack still surfaces it operationally.
func ResolveSubscription(ctx context.Context, cs *ContextSelectionSet, root SubscriptionType, reg *registry.Registry, logger *zap.Logger) (<-chan map[string]interface{}, error) {
	fields, err := collectSubscriptionFields(ctx, cs, root, reg)
	if err != nil {
		return nil, err
	}
	out := make(chan map[string]interface{})

	if len(fields) == 0 {
		close(out)
		return out, nil
	}

	var wg sync.WaitGroup
	wg.Add(len(fields))
	for _, f := range fields {
		f := f
		go func() {
			defer wg.Done()
			pumpSubscriptionField(ctx, f, reg, logger, out)
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

// pumpSubscriptionField drains a single field's source stream,
// resolving each message independently — each source stream is
// independent, cross-field ordering is never promised — and writes
// each resolved message directly onto the shared merged channel. The
// channel itself is closed once by ResolveSubscription after every
// field's pump has returned, never by an individual pump.
func pumpSubscriptionField(ctx context.Context, f subscriptionField, reg *registry.Registry, logger *zap.Logger, merged chan<- map[string]interface{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-f.source:
			if !ok {
				return
			}
			msgCS := &ContextSelectionSet{
				Path: f.fc.Path, ResolveID: newResolveCounter(), Extensions: f.fc.Extensions,
				Registry: reg, Data: f.fc.Data, Env: f.fc.Env, Defer: nil, Item: &f.fc.Item.SelectionSet,
			}
			ov, ok := m.(OutputValueType)
			if !ok {
				if logger != nil {
					logger.Warn("subscription message does not implement OutputValueType; dropped",
						zap.String("field", f.resultKey))
				}
				continue
			}
			val, err := ov.Resolve(ctx, msgCS, fieldPos(f.fc))
			if err != nil {
				if logger != nil {
					logger.Warn("subscription message resolve failed; dropped",
						zap.String("field", f.resultKey), zap.Error(err))
				}
				continue
			}
			select {
			case merged <- map[string]interface{}{f.resultKey: val}:
			case <-ctx.Done():
				return
			}
		}
	}
}
