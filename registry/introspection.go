package registry

import "sort"

// The types below mirror the GraphQL introspection schema
// (__Schema/__Type/__Field/__InputValue/__EnumValue/__Directive), built
// directly from a Registry rather than walked via reflection — teacher's
// introspection.go builds the same shapes off its own Schema/TypeMap.

type IntrospectionSchema struct {
	Description      string
	Types            []*IntrospectionType
	QueryType        *IntrospectionType
	MutationType     *IntrospectionType
	SubscriptionType *IntrospectionType
	Directives       []*IntrospectionDirective
}

type IntrospectionType struct {
	Kind          string
	Name          string
	Description   string
	Fields        []*IntrospectionField
	Interfaces    []*IntrospectionType
	PossibleTypes []*IntrospectionType
	EnumValues    []*IntrospectionEnumValue
	InputFields   []*IntrospectionInputValue

	// OfType is set for LIST/NON_NULL wrapper types synthesized while
	// walking a field's type string; nil for named types.
	OfType *IntrospectionType
}

type IntrospectionField struct {
	Name              string
	Description       string
	Args              []*IntrospectionInputValue
	Type              *IntrospectionType
	IsDeprecated      bool
	DeprecationReason string
}

type IntrospectionInputValue struct {
	Name         string
	Description  string
	Type         *IntrospectionType
	DefaultValue *string
}

type IntrospectionEnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

type IntrospectionDirective struct {
	Name        string
	Description string
	Locations   []DirectiveLocation
	Args        []*IntrospectionInputValue
}

// BuildIntrospection walks the Registry once and returns the full
// __Schema value a transport can serialize directly in response to an
// `__schema`/`__type` field resolution (spec §4.E federation hooks).
func (r *Registry) BuildIntrospection(description string) *IntrospectionSchema {
	b := &introspectionBuilder{r: r, built: make(map[string]*IntrospectionType)}

	names := make([]string, 0, len(r.Types))
	for name := range r.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	schema := &IntrospectionSchema{Description: description}
	for _, name := range names {
		schema.Types = append(schema.Types, b.namedType(name))
	}
	for name := range builtinScalarNames {
		schema.Types = append(schema.Types, b.namedType(name))
	}
	if r.QueryTypeName != "" {
		schema.QueryType = b.namedType(r.QueryTypeName)
	}
	if r.MutationTypeName != "" {
		schema.MutationType = b.namedType(r.MutationTypeName)
	}
	if r.SubscriptionTypeName != "" {
		schema.SubscriptionType = b.namedType(r.SubscriptionTypeName)
	}

	dirNames := make([]string, 0, len(r.Directives))
	for name := range r.Directives {
		dirNames = append(dirNames, name)
	}
	sort.Strings(dirNames)
	for _, name := range dirNames {
		d := r.Directives[name]
		id := &IntrospectionDirective{Name: d.Name, Description: d.Description, Locations: d.Locations}
		for _, argName := range d.ArgOrder {
			id.Args = append(id.Args, b.inputValue(d.Args[argName]))
		}
		schema.Directives = append(schema.Directives, id)
	}
	return schema
}

type introspectionBuilder struct {
	r     *Registry
	built map[string]*IntrospectionType
}

func (b *introspectionBuilder) namedType(name string) *IntrospectionType {
	if t, ok := b.built[name]; ok {
		return t
	}
	if builtinScalarNames[name] {
		t := &IntrospectionType{Kind: KindScalar, Name: name}
		b.built[name] = t
		return t
	}

	info, ok := b.r.Types[name]
	if !ok {
		return nil
	}

	t := &IntrospectionType{Kind: Kind(info), Name: name, Description: info.TypeDescription()}
	b.built[name] = t // reserve before recursing, for cyclic field references

	switch v := info.(type) {
	case *ObjectInfo:
		for _, f := range v.OrderedFields() {
			t.Fields = append(t.Fields, b.field(f))
		}
		for _, iface := range b.r.Implementors(name) {
			t.Interfaces = append(t.Interfaces, b.namedType(iface))
		}
	case *InterfaceInfo:
		for _, f := range v.OrderedFields() {
			t.Fields = append(t.Fields, b.field(f))
		}
		for _, p := range v.PossibleTypes {
			t.PossibleTypes = append(t.PossibleTypes, b.namedType(p))
		}
	case *UnionInfo:
		for _, p := range v.PossibleTypes {
			t.PossibleTypes = append(t.PossibleTypes, b.namedType(p))
		}
	case *EnumInfo:
		for _, ev := range v.EnumValues {
			iv := &IntrospectionEnumValue{Name: ev.Name, Description: ev.Description}
			if ev.DeprecationReason != nil {
				iv.IsDeprecated = true
				iv.DeprecationReason = *ev.DeprecationReason
			}
			t.EnumValues = append(t.EnumValues, iv)
		}
	case *InputObjectInfo:
		for _, f := range v.OrderedFields() {
			t.InputFields = append(t.InputFields, b.inputValue(f))
		}
	}
	return t
}

func (b *introspectionBuilder) field(f *Field) *IntrospectionField {
	iv := &IntrospectionField{Name: f.Name, Description: f.Description, Type: b.typeRef(f.Type)}
	for _, a := range f.OrderedArgs() {
		iv.Args = append(iv.Args, b.inputValue(a))
	}
	if f.DeprecationReason != nil {
		iv.IsDeprecated = true
		iv.DeprecationReason = *f.DeprecationReason
	}
	return iv
}

func (b *introspectionBuilder) inputValue(a *InputValue) *IntrospectionInputValue {
	iv := &IntrospectionInputValue{Name: a.Name, Description: a.Description, Type: b.typeRef(a.Type)}
	if a.Default != nil {
		s := a.Default.GraphQL()
		iv.DefaultValue = &s
	}
	return iv
}

// typeRef parses a type string such as "[Foo!]!" into the nested
// NON_NULL/LIST/named __Type chain introspection expects.
func (b *introspectionBuilder) typeRef(ty string) *IntrospectionType {
	if len(ty) > 0 && ty[len(ty)-1] == '!' {
		return &IntrospectionType{Kind: KindNonNull, OfType: b.typeRef(ty[:len(ty)-1])}
	}
	if len(ty) >= 2 && ty[0] == '[' && ty[len(ty)-1] == ']' {
		return &IntrospectionType{Kind: KindList, OfType: b.typeRef(ty[1 : len(ty)-1])}
	}
	return b.namedType(ty)
}
