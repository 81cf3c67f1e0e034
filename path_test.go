package gqlcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathNode_ToJSON_RootToLeafOrder(t *testing.T) {
	var root *PathNode
	p := root.WithName("pets").WithIndex(2).WithName("name")
	assert.Equal(t, []interface{}{"pets", 2, "name"}, p.ToJSON())
}

func TestPathNode_ToJSON_NilIsEmpty(t *testing.T) {
	var root *PathNode
	assert.Empty(t, root.ToJSON())
}

func TestPathNode_FieldName_SkipsIndexSegments(t *testing.T) {
	var root *PathNode
	p := root.WithName("pets").WithIndex(0)
	name, ok := p.FieldName()
	assert.True(t, ok)
	assert.Equal(t, "pets", name)
}

func TestPathNode_FieldName_NoneWhenOnlyIndices(t *testing.T) {
	var root *PathNode
	p := root.WithIndex(0).WithIndex(1)
	_, ok := p.FieldName()
	assert.False(t, ok)
}

func TestPathNode_ChildDoesNotMutateParent(t *testing.T) {
	var root *PathNode
	base := root.WithName("a")
	child1 := base.WithIndex(0)
	child2 := base.WithIndex(1)
	assert.Equal(t, []interface{}{"a", 0}, child1.ToJSON())
	assert.Equal(t, []interface{}{"a", 1}, child2.ToJSON())
	assert.Equal(t, []interface{}{"a"}, base.ToJSON())
}
