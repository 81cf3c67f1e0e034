// Package federation implements the in-process federation hooks
// reserved on the query root: parsing `_entities` representations and
// dispatching them to a per-type constructor, and rendering the
// `_service { sdl }` response. Query planning across services, schema
// merging, and any RPC transport between subgraphs are out of scope —
// this package only covers the single-subgraph surface the core itself
// must implement.
package federation

import (
	"fmt"

	"github.com/sigilgraph/gqlcore/value"
)

// Representation is one entity representation from a federated
// `_entities(representations: [_Any!]!)` call: a JSON object whose
// `__typename` selects the concrete type and whose remaining keys
// drive FindEntity.
type Representation struct {
	TypeName string
	Fields   *value.OrderedMap
}

// ParseRepresentations decodes the resolved `representations` argument
// value (a Value::List of Value::Object) into Representations,
// extracting and stripping `__typename`.
func ParseRepresentations(arg value.Value) ([]Representation, error) {
	if arg.Kind != value.List {
		return nil, fmt.Errorf("federation: representations must be a list")
	}
	out := make([]Representation, 0, len(arg.Items))
	for i, item := range arg.Items {
		if item.Kind != value.Object {
			return nil, fmt.Errorf("federation: representations[%d] must be an object", i)
		}
		typeNameVal, ok := item.Fields.Get("__typename")
		if !ok || typeNameVal.Kind != value.String {
			return nil, fmt.Errorf("federation: representations[%d] missing __typename", i)
		}
		fields := value.NewOrderedMap()
		for _, k := range item.Fields.Keys() {
			if k == "__typename" {
				continue
			}
			fv, _ := item.Fields.Get(k)
			fields.Set(k, fv)
		}
		out = append(out, Representation{TypeName: typeNameVal.Str, Fields: fields})
	}
	return out, nil
}

// EntityConstructor builds a concrete ObjectType value (as an
// interface{} to avoid importing package gqlcore's Type Protocol here
// — the resolver engine performs the type assertion) from a
// representation's remaining fields.
type EntityConstructor func(fields *value.OrderedMap) (interface{}, error)

// EntityResolver maps a __typename to the constructor that can turn
// its representation into a concrete entity.
type EntityResolver map[string]EntityConstructor

// FindEntity dispatches a single representation to its registered
// constructor.
func (r EntityResolver) FindEntity(rep Representation) (interface{}, error) {
	ctor, ok := r[rep.TypeName]
	if !ok {
		return nil, fmt.Errorf("federation: no entity resolver registered for type %q", rep.TypeName)
	}
	return ctor(rep.Fields)
}
