package gqlcore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/sigilgraph/gqlcore/federation"
	"github.com/sigilgraph/gqlcore/gqlerrors"
	"github.com/sigilgraph/gqlcore/qcache"
	"github.com/sigilgraph/gqlcore/registry"
	"github.com/sigilgraph/gqlcore/value"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// loggingExtension is the ambient *zap.Logger-backed Extension every
// Schema installs by default (SPEC_FULL.md §3 "Ambient addition —
// structured logging"): it logs each field resolution's start/end at
// Debug level, tagged with the per-request id so concurrent field
// goroutines are correlatable in the log stream.
type loggingExtension struct {
	logger    *zap.Logger
	requestID string
}

func (e *loggingExtension) ResolveFieldStart(info ResolveInfo) {
	e.logger.Debug("resolve_field_start",
		zap.String("requestId", e.requestID),
		zap.Uint64("resolveId", info.ResolveID),
		zap.String("field", info.FieldName),
		zap.String("returnType", info.ReturnType),
		zap.Any("path", info.Path),
	)
}

func (e *loggingExtension) ResolveFieldEnd(resolveID uint64) {
	e.logger.Debug("resolve_field_end",
		zap.String("requestId", e.requestID),
		zap.Uint64("resolveId", resolveID),
	)
}

// Schema binds a registered, validated set of root types to the
// resolver engine (spec.md's `Schema<Query, Mutation, Subscription>`,
// realized here as a Go-generic type per SPEC_FULL.md §6: "gqlcore.Schema[Q,
// M, S]... constrained to Q, M ObjectType and S SubscriptionType").
type Schema[Q ObjectType, M ObjectType, S SubscriptionType] struct {
	Registry     *registry.Registry
	Query        Q
	Mutation     M
	Subscription S

	logger   *zap.Logger
	cache    *qcache.Cache
	entities federation.EntityResolver

	description string
}

// NewSchema registers query/mutation/subscription against a fresh
// Registry (spec.md §3 Lifecycle: "built once per schema by invoking
// create_type_info on each root"), validates the four registry
// invariants, and returns a ready-to-execute Schema. It installs a
// no-op logger until WithLogger is called; cache defaults to disabled
// (size 0) until WithCacheSize is called.
func NewSchema[Q ObjectType, M ObjectType, S SubscriptionType](query Q, mutation M, subscription S) (*Schema[Q, M, S], error) {
	reg := registry.New()

	queryName, err := query.CreateTypeInfo(reg)
	if err != nil {
		return nil, fmt.Errorf("gqlcore: registering query root: %w", err)
	}
	mutationName, err := mutation.CreateTypeInfo(reg)
	if err != nil {
		return nil, fmt.Errorf("gqlcore: registering mutation root: %w", err)
	}
	subscriptionName, err := subscription.CreateTypeInfo(reg)
	if err != nil {
		return nil, fmt.Errorf("gqlcore: registering subscription root: %w", err)
	}
	reg.QueryTypeName = queryName
	reg.MutationTypeName = mutationName
	reg.SubscriptionTypeName = subscriptionName

	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("gqlcore: invalid schema: %w", err)
	}

	noopCache, _ := qcache.New(0)
	return &Schema[Q, M, S]{
		Registry:     reg,
		Query:        query,
		Mutation:     mutation,
		Subscription: subscription,
		logger:       zap.NewNop(),
		cache:        noopCache,
	}, nil
}

// WithLogger installs the *zap.Logger used for extension-lifecycle
// logging; nil restores the no-op logger.
func (s *Schema[Q, M, S]) WithLogger(logger *zap.Logger) *Schema[Q, M, S] {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
	return s
}

// WithCacheSize enables (or, with size<=0, disables) the parsed-query
// LRU cache qcache wraps (SPEC_FULL.md §4.E "domain-stack wiring").
func (s *Schema[Q, M, S]) WithCacheSize(size int) *Schema[Q, M, S] {
	c, err := qcache.New(size)
	if err == nil {
		s.cache = c
	}
	return s
}

// WithEntities installs the federation `_entities` dispatch table
// (spec.md §4.E "Federation hooks on the query root").
func (s *Schema[Q, M, S]) WithEntities(entities federation.EntityResolver) *Schema[Q, M, S] {
	s.entities = entities
	return s
}

// WithDescription sets the schema description exposed as
// `__schema.description`.
func (s *Schema[Q, M, S]) WithDescription(description string) *Schema[Q, M, S] {
	s.description = description
	return s
}

// WithLimits installs the complexity/depth guard (spec.md §6 "Validator
// interface": "complexity/depth overruns raise TooComplex/TooDeep").
func (s *Schema[Q, M, S]) WithLimits(limits registry.Limits) *Schema[Q, M, S] {
	s.Registry.Limits = limits
	return s
}

// WithIntrospectionDisabled implements spec.md §4.E: "Introspection may
// be globally disabled, in which case __schema errors with FieldNotFound."
func (s *Schema[Q, M, S]) WithIntrospectionDisabled(disabled bool) *Schema[Q, M, S] {
	s.Registry.DisableIntrospection = disabled
	return s
}

// uploadSpec captures one QueryBuilder.SetUpload call, applied to the
// resolved Variables document once it is parsed (spec.md §3 "in-place
// file-reference substitution").
type uploadSpec struct {
	path, name, contentType, localPath string
}

// QueryBuilder is the inbound surface spec.md §6 names: "QueryBuilder
// with setters: new(source), operation_name(n), variables(v), data(d),
// set_files_holder(dir), set_upload(path, filename, content_type,
// localpath)".
type QueryBuilder struct {
	source        string
	operationName string
	variablesRaw  interface{}
	data          *Data
	filesDir      string
	uploads       []uploadSpec
	extensions    []Extension
}

// NewQueryBuilder starts a builder for the given GraphQL source text.
func NewQueryBuilder(source string) *QueryBuilder {
	return &QueryBuilder{source: source, data: NewData()}
}

// OperationName selects which operation in a multi-operation document
// to execute; leave empty when the document has exactly one operation.
func (b *QueryBuilder) OperationName(name string) *QueryBuilder {
	b.operationName = name
	return b
}

// Variables attaches the decoded JSON variables document (a
// map[string]interface{}, typically the transport's JSON-decoded
// request body field).
func (b *QueryBuilder) Variables(v interface{}) *QueryBuilder {
	b.variablesRaw = v
	return b
}

// Data stores v in the per-request Data bag keyed by its own Go type
// (spec.md §6 "data(d)"), so a resolver can retrieve it later with
// GetTyped[T].
func (b *QueryBuilder) Data(v interface{}) *QueryBuilder {
	SetTyped(b.data, v)
	return b
}

// SetFilesHolder records the directory multipart uploads were decoded
// into; purely informational context for SetUpload callers (spec.md
// §6 "set_files_holder(dir)").
func (b *QueryBuilder) SetFilesHolder(dir string) *QueryBuilder {
	b.filesDir = dir
	return b
}

// SetUpload queues one in-place file-reference substitution, applied
// to the resolved Variables document inside Execute/ExecuteStream
// (spec.md §3, §6 "set_upload(path, filename, content_type, localpath)").
func (b *QueryBuilder) SetUpload(path, filename, contentType, localPath string) *QueryBuilder {
	b.uploads = append(b.uploads, uploadSpec{path: path, name: filename, contentType: contentType, localPath: localPath})
	return b
}

// Extensions attaches additional Extension lifecycle hooks alongside
// the ambient logging extension every Schema installs.
func (b *QueryBuilder) Extensions(exts ...Extension) *QueryBuilder {
	b.extensions = append(b.extensions, exts...)
	return b
}

// parse resolves a QueryDocument for b.source, consulting s.cache
// first (SPEC_FULL.md §4.E: "Parsed query documents are cached by
// source text").
func (s *Schema[Q, M, S]) parse(source string) (*ast.QueryDocument, error) {
	if doc, ok := s.cache.Get(source); ok {
		return doc, nil
	}
	doc, err := parser.ParseQuery(&ast.Source{Name: "query", Input: source})
	if err != nil {
		return nil, gqlerrors.WrapCause(gqlerrors.ParseError, ast.Position{}, err.Error(), err)
	}
	s.cache.Add(source, doc)
	return doc, nil
}

// selectOperation implements the operation-matching half of spec.md
// §6's MissingOperation taxonomy member: an explicit operationName
// must match one of the document's operations; an empty one only
// resolves unambiguously when the document declares exactly one.
func selectOperation(doc *ast.QueryDocument, operationName string) (*ast.OperationDefinition, error) {
	if operationName != "" {
		op := doc.Operations.ForName(operationName)
		if op == nil {
			return nil, gqlerrors.Wrap(gqlerrors.MissingOperation, ast.Position{}, fmt.Sprintf("no operation named %q", operationName))
		}
		return op, nil
	}
	if len(doc.Operations) == 1 {
		return doc.Operations[0], nil
	}
	return nil, gqlerrors.Wrap(gqlerrors.MissingOperation, ast.Position{}, "operationName is required when a document declares more than one operation")
}

// buildEnvironment resolves variables (applying queued upload
// substitutions first) and assembles the per-request Environment plus
// the ambient request-id-stamped logging extension.
func (s *Schema[Q, M, S]) buildEnvironment(b *QueryBuilder, doc *ast.QueryDocument, op *ast.OperationDefinition) (*Environment, []Extension, string) {
	vars := NewVariables(b.variablesRaw)
	for _, u := range b.uploads {
		vars.SetUpload(u.path, u.name, u.contentType, u.localPath)
	}

	requestID := uuid.NewString()
	b.data.Set(requestIDDataKey, requestID)

	env := NewEnvironment(vars, op.VariableDefinitions, doc, b.data)
	exts := append([]Extension{&loggingExtension{logger: s.logger, requestID: requestID}}, b.extensions...)
	return env, exts, requestID
}

// rootContext builds the root ContextSelectionSet for an operation:
// no parent path, a fresh resolve-id counter, defer installed only
// when withDefer is true (spec.md §4.E: "@defer is not honored for
// mutation root fields (defer list is not installed)").
func rootContext(reg *registry.Registry, env *Environment, exts []Extension, selectionSet *ast.SelectionSet, withDefer bool) *ContextSelectionSet {
	var dl *DeferList
	if withDefer {
		dl = NewDeferList()
	}
	return &ContextSelectionSet{
		Path: nil, ResolveID: atomic.NewUint64(0), Extensions: exts,
		Registry: reg, Data: env.Data, Env: env, Defer: dl, Item: selectionSet,
	}
}

// Execute implements spec.md §6: "execute(&schema) -> Result<QueryResponse>
// — collapses the defer stream into a merged final response."
func (s *Schema[Q, M, S]) Execute(ctx context.Context, b *QueryBuilder) (*QueryResponse, error) {
	doc, err := s.parse(b.source)
	if err != nil {
		return nil, err
	}
	check, err := registry.Validate(s.Registry, doc, registry.ValidationExecute)
	if err != nil {
		return nil, err
	}
	op, err := selectOperation(doc, b.operationName)
	if err != nil {
		return nil, err
	}
	env, exts, _ := s.buildEnvironment(b, doc, op)

	var data *orderedJSONMap
	var defers *DeferList

	switch op.Operation {
	case ast.Query:
		cs := rootContext(s.Registry, env, exts, &op.SelectionSet, true)
		root := s.queryRoot()
		data, err = doResolve(ctx, cs, root)
		defers = cs.Defer
	case ast.Mutation:
		cs := rootContext(s.Registry, env, exts, &op.SelectionSet, false)
		data, err = doMutationResolve(ctx, cs, s.Mutation)
	case ast.Subscription:
		return nil, gqlerrors.Wrap(gqlerrors.NotSupported, ast.Position{}, "use Schema.Subscribe for subscription operations")
	default:
		return nil, gqlerrors.Wrap(gqlerrors.NotSupported, ast.Position{}, fmt.Sprintf("unknown operation type %q", op.Operation))
	}
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("gqlcore: marshaling response data: %w", err)
	}
	resp := &QueryResponse{Data: raw, CacheControl: &check.CacheControl}

	if defers != nil {
		if err := s.drainDefers(ctx, resp, defers); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// drainDefers implements spec.md §5's defer batch semantics: each
// batch is resolved concurrently (errgroup, no ordering within a
// batch) and merged into primary immediately; nested defers pushed by
// a batch's own resolution become the next batch, so "each emitted
// response is chronologically after the one before it" across batches.
func (s *Schema[Q, M, S]) drainDefers(ctx context.Context, primary *QueryResponse, dl *DeferList) error {
	var mu sync.Mutex
	for {
		items := dl.drain()
		if len(items) == 0 {
			return nil
		}
		var g errgroup.Group
		for _, it := range items {
			it := it
			g.Go(func() error {
				val, childDefer, err := it.resolve()
				if err != nil {
					return err
				}
				raw, err := json.Marshal(val)
				if err != nil {
					return err
				}
				incremental := &QueryResponse{Path: it.path.ToJSON(), Data: raw}

				mu.Lock()
				mergeErr := primary.Merge(incremental)
				mu.Unlock()
				if mergeErr != nil {
					return mergeErr
				}
				if childDefer != nil {
					for _, childItem := range childDefer.drain() {
						dl.push(childItem)
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
}

// StreamItem is one element of the Stream<Result<QueryResponse>>
// spec.md §6's execute_stream produces: the primary response, then one
// per resolved @defer item.
type StreamItem struct {
	Response *QueryResponse
	Err      error
}

// ExecuteStream implements spec.md §6's execute_stream: emits the
// primary response first (deferred fields present as null), then one
// incremental QueryResponse per drained @defer item, batch by batch.
func (s *Schema[Q, M, S]) ExecuteStream(ctx context.Context, b *QueryBuilder) <-chan StreamItem {
	out := make(chan StreamItem)
	go func() {
		defer close(out)

		doc, err := s.parse(b.source)
		if err != nil {
			out <- StreamItem{Err: err}
			return
		}
		check, err := registry.Validate(s.Registry, doc, registry.ValidationExecute)
		if err != nil {
			out <- StreamItem{Err: err}
			return
		}
		op, err := selectOperation(doc, b.operationName)
		if err != nil {
			out <- StreamItem{Err: err}
			return
		}
		env, exts, _ := s.buildEnvironment(b, doc, op)

		var data *orderedJSONMap
		var defers *DeferList

		switch op.Operation {
		case ast.Query:
			cs := rootContext(s.Registry, env, exts, &op.SelectionSet, true)
			data, err = doResolve(ctx, cs, s.queryRoot())
			defers = cs.Defer
		case ast.Mutation:
			cs := rootContext(s.Registry, env, exts, &op.SelectionSet, false)
			data, err = doMutationResolve(ctx, cs, s.Mutation)
		default:
			out <- StreamItem{Err: gqlerrors.Wrap(gqlerrors.NotSupported, ast.Position{}, "use Schema.Subscribe for subscription operations")}
			return
		}
		if err != nil {
			out <- StreamItem{Err: err}
			return
		}

		raw, err := json.Marshal(data)
		if err != nil {
			out <- StreamItem{Err: fmt.Errorf("gqlcore: marshaling response data: %w", err)}
			return
		}
		select {
		case out <- StreamItem{Response: &QueryResponse{Data: raw, CacheControl: &check.CacheControl}}:
		case <-ctx.Done():
			return
		}

		if defers == nil {
			return
		}
		for {
			items := defers.drain()
			if len(items) == 0 {
				return
			}
			for _, it := range items {
				val, childDefer, err := it.resolve()
				if err != nil {
					select {
					case out <- StreamItem{Err: err}:
					case <-ctx.Done():
					}
					return
				}
				raw, err := json.Marshal(val)
				if err != nil {
					select {
					case out <- StreamItem{Err: err}:
					case <-ctx.Done():
					}
					return
				}
				select {
				case out <- StreamItem{Response: &QueryResponse{Path: it.path.ToJSON(), Data: raw}}:
				case <-ctx.Done():
					return
				}
				if childDefer != nil {
					for _, childItem := range childDefer.drain() {
						defers.push(childItem)
					}
				}
			}
		}
	}()
	return out
}

// Subscribe implements spec.md §6: "Subscription clients call into the
// SubscriptionType capability and receive a Stream<JSON>" — wrapped
// here as a Stream<QueryResponse> for transport convenience.
func (s *Schema[Q, M, S]) Subscribe(ctx context.Context, b *QueryBuilder) (<-chan StreamItem, error) {
	doc, err := s.parse(b.source)
	if err != nil {
		return nil, err
	}
	if _, err := registry.Validate(s.Registry, doc, registry.ValidationExecute); err != nil {
		return nil, err
	}
	op, err := selectOperation(doc, b.operationName)
	if err != nil {
		return nil, err
	}
	if op.Operation != ast.Subscription {
		return nil, gqlerrors.Wrap(gqlerrors.NotSupported, ast.Position{}, "Subscribe requires a subscription operation")
	}
	env, exts, _ := s.buildEnvironment(b, doc, op)
	cs := rootContext(s.Registry, env, exts, &op.SelectionSet, false)

	messages, err := ResolveSubscription(ctx, cs, s.Subscription, s.Registry, s.logger)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamItem)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-messages:
				if !ok {
					return
				}
				raw, err := json.Marshal(m)
				item := StreamItem{Err: err}
				if err == nil {
					item.Response = &QueryResponse{Data: raw}
				}
				select {
				case out <- item:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// queryRoot wraps s.Query with the four reserved top-level fields
// spec.md §4.E names: "__schema (introspection root), __type(name:
// String!) (single-type lookup), _entities(representations: [_Any!]!)
// (federation entity resolution...), and _service (returns { sdl })."
func (s *Schema[Q, M, S]) queryRoot() ObjectType {
	return &queryRootWrapper{
		inner:       s.Query,
		reg:         s.Registry,
		description: s.description,
		entities:    s.entities,
	}
}

// queryRootWrapper is the engine-owned interception point for the
// federation/introspection hooks: these are never declared on the
// user's own Query ObjectType, so the resolver engine recognizes them
// by name before ever calling through to the user's ResolveField.
type queryRootWrapper struct {
	inner       ObjectType
	reg         *registry.Registry
	description string
	entities    federation.EntityResolver
}

func (w *queryRootWrapper) TypeName() string              { return w.inner.TypeName() }
func (w *queryRootWrapper) QualifiedTypeName() string     { return w.inner.QualifiedTypeName() }
func (w *queryRootWrapper) IntrospectionTypeName() string { return w.inner.IntrospectionTypeName() }

func (w *queryRootWrapper) CreateTypeInfo(reg *registry.Registry) (string, error) {
	return w.inner.CreateTypeInfo(reg)
}

func (w *queryRootWrapper) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doResolve(ctx, cs, w)
}

func (w *queryRootWrapper) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	return w.inner.CollectInlineFields(name, pos, cs, units)
}

func (w *queryRootWrapper) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	switch fc.Item.Name {
	case "__schema":
		if w.reg.DisableIntrospection {
			return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), "__schema", w.inner.TypeName())
		}
		schema := w.reg.BuildIntrospection(w.description)
		childCS := fc.withSelectionSet(&fc.Item.SelectionSet)
		return doResolve(ctx, childCS, &introspectionSchema{s: schema})

	case "__type":
		if w.reg.DisableIntrospection {
			return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), "__type", w.inner.TypeName())
		}
		var name String
		if err := ParamValue(fc.Env, &registry.InputValue{Name: "name", Type: "String!"}, fc.Item.Arguments, fieldPos(fc), &name); err != nil {
			return nil, err
		}
		schema := w.reg.BuildIntrospection(w.description)
		for _, t := range schema.Types {
			if t.Name == string(name) {
				childCS := fc.withSelectionSet(&fc.Item.SelectionSet)
				return doResolve(ctx, childCS, &introspectionType{t: t})
			}
		}
		return nil, nil

	case "_entities":
		return w.resolveEntities(ctx, fc)

	case "_service":
		sdl := w.reg.CreateFederationSDL()
		childCS := fc.withSelectionSet(&fc.Item.SelectionSet)
		return doResolve(ctx, childCS, &federationServiceType{sdl: sdl})
	}
	return w.inner.ResolveField(ctx, fc)
}

// resolveEntities implements spec.md §4.E's `_entities` federation
// hook: each representation's __typename selects the constructor
// federation.EntityResolver dispatches to, and the remaining keys
// drive it; each resulting entity is then resolved against the
// field's own selection set exactly like any _Entity union member
// (inline fragments decide inclusion via CollectInlineFields).
func (w *queryRootWrapper) resolveEntities(ctx context.Context, fc *ContextField) (interface{}, error) {
	argNode := fc.Item.Arguments.ForName("representations")
	if argNode == nil {
		return nil, gqlerrors.RequiredDirectiveArgsErr(fieldPos(fc), "_entities", "representations", "[_Any!]!")
	}
	raw := value.FromAST(argNode.Value)
	resolved, err := ResolveInputValue(fc.Env, raw, fieldPos(fc))
	if err != nil {
		return nil, err
	}
	reps, parseErr := federation.ParseRepresentations(resolved)
	if parseErr != nil {
		return nil, gqlerrors.Wrap(gqlerrors.ExpectedType, fieldPos(fc), parseErr.Error())
	}

	childCS := fc.withSelectionSet(&fc.Item.SelectionSet)
	out := make([]interface{}, len(reps))
	for i, rep := range reps {
		entity, err := w.entities.FindEntity(rep)
		if err != nil {
			return nil, gqlerrors.Wrap(gqlerrors.FieldNotFound, fieldPos(fc), err.Error())
		}
		obj, ok := entity.(ObjectType)
		if !ok {
			return nil, gqlerrors.Wrap(gqlerrors.ExpectedType, fieldPos(fc), fmt.Sprintf("entity %q does not implement ObjectType", rep.TypeName))
		}
		v, err := doResolve(ctx, childCS.WithIndex(i), obj)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// federationServiceType is the `_Service { sdl: String! }` object the
// `_service` field resolves (spec.md §6 "Federation SDL": "emitted by
// _service.sdl").
type federationServiceType struct{ sdl string }

func (federationServiceType) TypeName() string                                  { return "_Service" }
func (federationServiceType) QualifiedTypeName() string                         { return "_Service!" }
func (federationServiceType) IntrospectionTypeName() string                     { return "_Service" }
func (federationServiceType) CreateTypeInfo(*registry.Registry) (string, error) { return "_Service", nil }

func (t *federationServiceType) Resolve(ctx context.Context, cs *ContextSelectionSet, pos ast.Position) (interface{}, error) {
	return doResolve(ctx, cs, t)
}

func (t *federationServiceType) CollectInlineFields(name string, pos ast.Position, cs *ContextSelectionSet, units *[]fieldUnit) error {
	if name != "_Service" {
		return nil
	}
	return collectFieldsInto(cs, t, units)
}

func (t *federationServiceType) ResolveField(ctx context.Context, fc *ContextField) (interface{}, error) {
	if fc.Item.Name == "sdl" {
		return t.sdl, nil
	}
	return nil, gqlerrors.FieldNotFoundErr(fieldPos(fc), fc.Item.Name, "_Service")
}
