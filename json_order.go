package gqlcore

import (
	"bytes"
	"encoding/json"
)

// orderedJSONMap is an insertion-order-preserving string-keyed map used
// to assemble a resolved selection set's result object: encoding/json's
// map[string]interface{} does not preserve key order, but a response
// object's fields must come back in selection-set order.
type orderedJSONMap struct {
	keys   []string
	values map[string]interface{}
}

func newOrderedJSONMap() *orderedJSONMap {
	return &orderedJSONMap{values: make(map[string]interface{})}
}

func (m *orderedJSONMap) Set(key string, v interface{}) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *orderedJSONMap) Get(key string) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *orderedJSONMap) Keys() []string { return m.keys }

// MarshalJSON implements json.Marshaler, emitting fields in insertion
// order rather than the sorted order encoding/json would otherwise
// apply to a plain map.
func (m *orderedJSONMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
