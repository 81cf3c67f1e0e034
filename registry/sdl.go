package registry

import (
	"fmt"
	"sort"
	"strings"
)

// CreateFederationSDL renders the registry's public (non-Internal)
// types as a GraphQL SDL document annotated with the federation
// directives async-graphql's federation support emits: @key,
// @external, @provides, @requires, and `extend type` for types marked
// Extends (spec §6 "Federation SDL").
func (r *Registry) CreateFederationSDL() string {
	var b strings.Builder

	names := make([]string, 0, len(r.Types))
	for name := range r.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := r.Types[name]
		switch info := t.(type) {
		case *ObjectInfo:
			if info.Internal {
				continue
			}
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

	writeDirectiveSDL(&b, r)
	return b.String()
}

func writeObjectSDL(b *strings.Builder, info *ObjectInfo, r *Registry) {
	if info.Extends {
		b.WriteString("extend ")
	}
	fmt.Fprintf(b, "type %s", info.Name)

	implements := r.Implementors(info.Name)
	if len(implements) > 0 {
		sort.Strings(implements)
		fmt.Fprintf(b, " implements %s", strings.Join(implements, " & "))
	}

	if len(info.Keys) > 0 {
		for _, k := range info.Keys {
			fmt.Fprintf(b, " @key(fields: %q)", k)
		}
	}
	b.WriteString(" {\n")
	for _, f := range info.OrderedFields() {
		writeFieldSDL(b, f)
	}
	b.WriteString("}\n\n")
}

func writeInterfaceSDL(b *strings.Builder, info *InterfaceInfo) {
	if info.Extends {
		b.WriteString("extend ")
	}
	fmt.Fprintf(b, "interface %s {\n", info.Name)
	for _, f := range info.OrderedFields() {
		writeFieldSDL(b, f)
	}
	b.WriteString("}\n\n")
}

func writeFieldSDL(b *strings.Builder, f *Field) {
	fmt.Fprintf(b, "  %s", f.Name)
	if len(f.ArgOrder) > 0 {
		parts := make([]string, 0, len(f.ArgOrder))
		for _, a := range f.OrderedArgs() {
			parts = append(parts, inputValueSDL(a))
		}
		fmt.Fprintf(b, "(%s)", strings.Join(parts, ", "))
	}
	fmt.Fprintf(b, ": %s", f.Type)

	if f.External {
		b.WriteString(" @external")
	}
	if f.Provides != "" {
		fmt.Fprintf(b, " @provides(fields: %q)", f.Provides)
	}
	if f.Requires != "" {
		fmt.Fprintf(b, " @requires(fields: %q)", f.Requires)
	}
	if f.DeprecationReason != nil {
		fmt.Fprintf(b, " @deprecated(reason: %q)", *f.DeprecationReason)
	}
	b.WriteString("\n")
}

func inputValueSDL(a *InputValue) string {
	s := fmt.Sprintf("%s: %s", a.Name, a.Type)
	if a.Default != nil {
		s += " = " + a.Default.GraphQL()
	}
	return s
}

func writeEnumSDL(b *strings.Builder, info *EnumInfo) {
	fmt.Fprintf(b, "enum %s {\n", info.Name)
	for _, v := range info.EnumValues {
		fmt.Fprintf(b, "  %s", v.Name)
		if v.DeprecationReason != nil {
			fmt.Fprintf(b, " @deprecated(reason: %q)", *v.DeprecationReason)
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func writeInputObjectSDL(b *strings.Builder, info *InputObjectInfo) {
	fmt.Fprintf(b, "input %s {\n", info.Name)
	for _, f := range info.OrderedFields() {
		b.WriteString("  " + inputValueSDL(f) + "\n")
	}
	b.WriteString("}\n\n")
}

func writeDirectiveSDL(b *strings.Builder, r *Registry) {
	names := make([]string, 0, len(r.Directives))
	for name := range r.Directives {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		d := r.Directives[name]
		fmt.Fprintf(b, "directive @%s", d.Name)
		if len(d.ArgOrder) > 0 {
			parts := make([]string, 0, len(d.ArgOrder))
			for _, argName := range d.ArgOrder {
				parts = append(parts, inputValueSDL(d.Args[argName]))
			}
			fmt.Fprintf(b, "(%s)", strings.Join(parts, ", "))
		}
		locs := make([]string, len(d.Locations))
		for i, l := range d.Locations {
			locs[i] = string(l)
		}
		fmt.Fprintf(b, " on %s\n", strings.Join(locs, " | "))
	}
}
