package registry

import (
	"fmt"
	"sync"
)

// placeholderInfo reserves a type-name slot during CreateType so that
// cyclic type graphs (an Object referencing itself, directly or
// through an Interface) do not recurse forever (spec §4.B).
type placeholderInfo struct{ name string }

func (p *placeholderInfo) TypeName() string        { return p.name }
func (p *placeholderInfo) TypeDescription() string { return "" }
func (p *placeholderInfo) isTypeInfo()             {}

// builtinScalarNames are recognized without requiring registration
// (spec §3 invariant 2: "every type string... is either a built-in
// scalar or is present as a key in the registry").
var builtinScalarNames = map[string]bool{
	"Int": true, "Float": true, "String": true, "Boolean": true, "ID": true,
}

// Registry is the immutable-after-construction type catalog described
// by spec §3: a mapping type-name -> TypeInfo plus side tables
// implements, directives, and subscription-type.
type Registry struct {
	mu sync.Mutex // held only during schema construction (CreateType)

	Types      map[string]TypeInfo
	Implements map[string]map[string]bool // type-name -> set of interface-name
	Directives map[string]*Directive

	QueryTypeName        string
	MutationTypeName     string
	SubscriptionTypeName string

	// DisableIntrospection, when true, makes __schema/__type resolve to
	// FieldNotFound (spec §4.E "Federation hooks on the query root").
	DisableIntrospection bool

	// Limits bounds the pre-execution complexity/depth guard Validate
	// enforces (spec §6 "Validator interface"). Zero disables a check.
	Limits Limits
}

// Limits bounds the pre-execution complexity/depth guard (spec §6:
// "complexity/depth overruns raise TooComplex/TooDeep").
type Limits struct {
	MaxComplexity int
	MaxDepth      int
}

// New creates an empty Registry pre-seeded with the three directives
// the engine's execution semantics recognize.
func New() *Registry {
	return &Registry{
		Types:      make(map[string]TypeInfo),
		Implements: make(map[string]map[string]bool),
		Directives: map[string]*Directive{
			"skip": {
				Name:      "skip",
				Locations: []DirectiveLocation{LocationField, LocationFragmentSpread, LocationInlineFragment},
				Args: map[string]*InputValue{
					"if": {Name: "if", Type: "Boolean!"},
				},
				ArgOrder: []string{"if"},
			},
			"include": {
				Name:      "include",
				Locations: []DirectiveLocation{LocationField, LocationFragmentSpread, LocationInlineFragment},
				Args: map[string]*InputValue{
					"if": {Name: "if", Type: "Boolean!"},
				},
				ArgOrder: []string{"if"},
			},
			"defer": {
				Name:      "defer",
				Locations: []DirectiveLocation{LocationField},
			},
		},
	}
}

// CreateType implements the idempotent create_type<T,F>(builder)
// operation of spec §4.B: if name is already present, return it
// unchanged; otherwise reserve a placeholder (breaking cycles), invoke
// builder (which may recursively register dependent types), then
// install the returned TypeInfo.
func (r *Registry) CreateType(name string, builder func(*Registry) (TypeInfo, error)) (string, error) {
	r.mu.Lock()
	if _, ok := r.Types[name]; ok {
		r.mu.Unlock()
		return name, nil
	}
	r.Types[name] = &placeholderInfo{name: name}
	r.mu.Unlock()

	info, err := builder(r)
	if err != nil {
		r.mu.Lock()
		delete(r.Types, name)
		r.mu.Unlock()
		return "", err
	}

	r.mu.Lock()
	r.Types[name] = info
	r.mu.Unlock()
	return info.TypeName(), nil
}

// AddImplements records that typeName implements interfaceName, used
// by Interface possible_types lookups (spec §4.B).
func (r *Registry) AddImplements(typeName, interfaceName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.Implements[typeName]
	if !ok {
		set = make(map[string]bool)
		r.Implements[typeName] = set
	}
	set[interfaceName] = true
}

// Implementors reports every interface name typeName implements.
func (r *Registry) Implementors(typeName string) []string {
	set := r.Implements[typeName]
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	return out
}

// FieldByName returns the resolvable field on an Object/Interface;
// returns (nil, false) on scalars, enums, unions, and inputs (spec
// §4.B).
func (r *Registry) FieldByName(typeName, fieldName string) (*Field, bool) {
	t, ok := r.Types[typeName]
	if !ok {
		return nil, false
	}
	holder, ok := t.(FieldHolder)
	if !ok {
		return nil, false
	}
	return holder.FieldByName(fieldName)
}

// stripWrappers removes trailing "!" and surrounding "[...]" to reach
// the named type at the core of a GraphQL type string such as
// "[Foo!]!".
func stripWrappers(ty string) string {
	for len(ty) > 0 && ty[len(ty)-1] == '!' {
		ty = ty[:len(ty)-1]
	}
	for len(ty) >= 2 && ty[0] == '[' && ty[len(ty)-1] == ']' {
		ty = ty[1 : len(ty)-1]
		for len(ty) > 0 && ty[len(ty)-1] == '!' {
			ty = ty[:len(ty)-1]
		}
	}
	return ty
}

// Validate checks the four registry invariants from spec §3.
func (r *Registry) Validate() error {
	checkTypeString := func(ty string) error {
		name := stripWrappers(ty)
		if builtinScalarNames[name] {
			return nil
		}
		if _, ok := r.Types[name]; !ok {
			return fmt.Errorf("registry: type %q referenced but not registered", name)
		}
		return nil
	}

	for typeName, t := range r.Types {
		switch info := t.(type) {
		case *placeholderInfo:
			return fmt.Errorf("registry: type %q left as an unresolved placeholder", typeName)
		case *ObjectInfo:
			if err := checkUniqueFieldNames(info.FieldOrder); err != nil {
				return fmt.Errorf("registry: object %s: %w", typeName, err)
			}
			for _, f := range info.Fields {
				if err := checkTypeString(f.Type); err != nil {
					return err
				}
				for _, a := range f.Args {
					if err := checkTypeString(a.Type); err != nil {
						return err
					}
				}
			}
		case *InterfaceInfo:
			if err := checkUniqueFieldNames(info.FieldOrder); err != nil {
				return fmt.Errorf("registry: interface %s: %w", typeName, err)
			}
			for _, f := range info.Fields {
				if err := checkTypeString(f.Type); err != nil {
					return err
				}
			}
			for _, possible := range info.PossibleTypes {
				obj, ok := r.Types[possible]
				if !ok {
					return fmt.Errorf("registry: interface %s possible type %q not registered", typeName, possible)
				}
				objInfo, ok := obj.(*ObjectInfo)
				if !ok {
					return fmt.Errorf("registry: interface %s possible type %q is not an object", typeName, possible)
				}
				_ = objInfo
				if !r.Implements[possible][typeName] {
					return fmt.Errorf("registry: object %q does not declare implements %q", possible, typeName)
				}
			}
		case *InputObjectInfo:
			for _, f := range info.InputFields {
				if err := checkTypeString(f.Type); err != nil {
					return err
				}
			}
		}
	}

	for _, root := range []string{r.QueryTypeName, r.MutationTypeName, r.SubscriptionTypeName} {
		if root == "" {
			continue
		}
		if _, ok := r.Types[root]; !ok {
			return fmt.Errorf("registry: root type %q not registered", root)
		}
	}
	return nil
}

func checkUniqueFieldNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return fmt.Errorf("duplicate field name %q", n)
		}
		seen[n] = true
	}
	return nil
}
