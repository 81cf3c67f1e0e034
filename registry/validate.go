package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/sigilgraph/gqlcore/gqlerrors"
)

// ValidationMode distinguishes a full operation validation pass from an
// introspection-only one (spec §6 "check_rules(&Registry, &Document,
// mode)"); introspection-only skips the complexity/depth walk for
// mutation/subscription operations the caller never intends to run.
type ValidationMode int

const (
	ValidationExecute ValidationMode = iota
	ValidationIntrospectionOnly
)

// CheckResult is the Go form of spec §6's `CheckResult { cache_control,
// complexity, depth }`.
type CheckResult struct {
	CacheControl CacheControl
	Complexity   int
	Depth        int
}

// preludeDirectiveNames are directives gqlparser's own schema prelude
// already declares; re-declaring them while compiling the registry to
// an ast.Schema would collide.
var preludeDirectiveNames = map[string]bool{
	"skip": true, "include": true, "deprecated": true, "specifiedBy": true,
}

// validationSDL renders the full registry (internal types included,
// unlike CreateFederationSDL) as SDL text gqlparser can compile into an
// ast.Schema, skipping the five built-in scalars and the directives the
// parser's own prelude already provides.
func (r *Registry) validationSDL() string {
	var b strings.Builder

	names := make([]string, 0, len(r.Types))
	for name := range r.Types {
		if builtinScalarNames[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch info := r.Types[name].(type) {
		case *ObjectInfo:
			writeObjectSDL(&b, info, r)
		case *InterfaceInfo:
			writeInterfaceSDL(&b, info)
		case *UnionInfo:
			fmt.Fprintf(&b, "union %s = %s\n\n", info.Name, strings.Join(info.PossibleTypes, " | "))
		case *EnumInfo:
			writeEnumSDL(&b, info)
		case *InputObjectInfo:
			writeInputObjectSDL(&b, info)
		case *ScalarInfo:
			fmt.Fprintf(&b, "scalar %s\n\n", info.Name)
		}
	}

	dirNames := make([]string, 0, len(r.Directives))
	for name := range r.Directives {
		if preludeDirectiveNames[name] {
			continue
		}
		dirNames = append(dirNames, name)
	}
	sort.Strings(dirNames)
	for _, name := range dirNames {
		d := r.Directives[name]
		fmt.Fprintf(&b, "directive @%s", d.Name)
		if len(d.ArgOrder) > 0 {
			parts := make([]string, 0, len(d.ArgOrder))
			for _, argName := range d.ArgOrder {
				parts = append(parts, inputValueSDL(d.Args[argName]))
			}
			fmt.Fprintf(&b, "(%s)", strings.Join(parts, ", "))
		}
		locs := make([]string, len(d.Locations))
		for i, l := range d.Locations {
			locs[i] = string(l)
		}
		fmt.Fprintf(&b, " on %s\n", strings.Join(locs, " | "))
	}

	if r.QueryTypeName != "" || r.MutationTypeName != "" || r.SubscriptionTypeName != "" {
		b.WriteString("schema {\n")
		if r.QueryTypeName != "" {
			fmt.Fprintf(&b, "  query: %s\n", r.QueryTypeName)
		}
		if r.MutationTypeName != "" {
			fmt.Fprintf(&b, "  mutation: %s\n", r.MutationTypeName)
		}
		if r.SubscriptionTypeName != "" {
			fmt.Fprintf(&b, "  subscription: %s\n", r.SubscriptionTypeName)
		}
		b.WriteString("}\n")
	}

	// The query root's `_entities`/`_service` hooks (spec §4.E
	// "Federation hooks on the query root") are resolved by
	// queryRootWrapper without ever being declared on the user's Query
	// TypeInfo, so gqlparser's validator would otherwise reject any
	// query that selects them. Declare them via `extend type` whenever
	// the registry carries federation @key metadata.
	if r.QueryTypeName != "" {
		entityNames := r.federationEntityTypeNames()
		if len(entityNames) > 0 {
			b.WriteString("scalar _Any\n\n")
			fmt.Fprintf(&b, "union _Entity = %s\n\n", strings.Join(entityNames, " | "))
			b.WriteString("type _Service {\n  sdl: String!\n}\n\n")
			fmt.Fprintf(&b, "extend type %s {\n  _entities(representations: [_Any!]!): [_Entity]!\n  _service: _Service!\n}\n\n", r.QueryTypeName)
		}
	}

	return b.String()
}

// federationEntityTypeNames lists every Object type name carrying at
// least one federation @key, the members of the synthesized _Entity
// union (spec §6 "Federation SDL").
func (r *Registry) federationEntityTypeNames() []string {
	var names []string
	for name, t := range r.Types {
		if obj, ok := t.(*ObjectInfo); ok && len(obj.Keys) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// BuildASTSchema compiles the registry into gqlparser's own *ast.Schema,
// the representation gqlparser/v2/validator.Validate requires. Query
// parsing/validation internals are an explicit Non-goal of this module
// (spec §1) — this is the glue that hands the registry to that external
// collaborator, not a reimplementation of its rules.
func (r *Registry) BuildASTSchema() (*ast.Schema, error) {
	src := &ast.Source{Name: "registry.graphql", Input: r.validationSDL()}
	schema, err := gqlparser.LoadSchema(src)
	if err != nil {
		return nil, fmt.Errorf("registry: compiling ast.Schema: %w", err)
	}
	return schema, nil
}

// Validate implements spec §6's Validator interface: rule validation is
// delegated to gqlparser/v2/validator; complexity and depth are small
// tree walks this module owns directly (no suitable third-party
// complexity walker exists in the retrieval pack — see DESIGN.md).
func Validate(r *Registry, doc *ast.QueryDocument, mode ValidationMode) (CheckResult, error) {
	schema, err := r.BuildASTSchema()
	if err != nil {
		return CheckResult{}, gqlerrors.WrapCause(gqlerrors.ParseError, ast.Position{}, "compiling registry to ast.Schema", err)
	}

	if errs := validator.Validate(schema, doc); errs != nil {
		return CheckResult{}, gqlerrors.WrapCause(gqlerrors.ParseError, ast.Position{}, errs.Error(), errs)
	}

	var result CheckResult
	for _, op := range doc.Operations {
		if mode == ValidationIntrospectionOnly && op.Operation != ast.Query {
			continue
		}
		if d := selectionDepth(op.SelectionSet, doc, 1); d > result.Depth {
			result.Depth = d
		}
		result.Complexity += selectionComplexity(op.SelectionSet, doc)
	}

	if r.Limits.MaxDepth > 0 && result.Depth > r.Limits.MaxDepth {
		return result, gqlerrors.Wrap(gqlerrors.TooDeep, ast.Position{}, fmt.Sprintf("query depth %d exceeds limit %d", result.Depth, r.Limits.MaxDepth))
	}
	if r.Limits.MaxComplexity > 0 && result.Complexity > r.Limits.MaxComplexity {
		return result, gqlerrors.Wrap(gqlerrors.TooComplex, ast.Position{}, fmt.Sprintf("query complexity %d exceeds limit %d", result.Complexity, r.Limits.MaxComplexity))
	}
	return result, nil
}

func selectionDepth(set ast.SelectionSet, doc *ast.QueryDocument, depth int) int {
	max := depth
	for _, sel := range set {
		switch node := sel.(type) {
		case *ast.Field:
			if len(node.SelectionSet) > 0 {
				if d := selectionDepth(node.SelectionSet, doc, depth+1); d > max {
					max = d
				}
			}
		case *ast.InlineFragment:
			if d := selectionDepth(node.SelectionSet, doc, depth); d > max {
				max = d
			}
		case *ast.FragmentSpread:
			if frag := findFragment(doc, node.Name); frag != nil {
				if d := selectionDepth(frag.SelectionSet, doc, depth); d > max {
					max = d
				}
			}
		}
	}
	return max
}

func selectionComplexity(set ast.SelectionSet, doc *ast.QueryDocument) int {
	total := 0
	for _, sel := range set {
		switch node := sel.(type) {
		case *ast.Field:
			total += 1 + selectionComplexity(node.SelectionSet, doc)
		case *ast.InlineFragment:
			total += selectionComplexity(node.SelectionSet, doc)
		case *ast.FragmentSpread:
			if frag := findFragment(doc, node.Name); frag != nil {
				total += selectionComplexity(frag.SelectionSet, doc)
			}
		}
	}
	return total
}

func findFragment(doc *ast.QueryDocument, name string) *ast.FragmentDefinition {
	for _, f := range doc.Fragments {
		if f.Name == name {
			return f
		}
	}
	return nil
}
