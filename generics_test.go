package gqlcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vektah/gqlparser/v2/ast"
)

func TestResolveList_AssemblesInTraversalOrderWithIndexSegments(t *testing.T) {
	cs := &ContextSelectionSet{}
	items := []Int{Int(10), Int(20), Int(30)}
	out, err := ResolveList[Int](context.Background(), items, cs, ast.Position{})
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{int32(10), int32(20), int32(30)}, out)
}

func TestResolveList_EmptySliceYieldsEmptyResult(t *testing.T) {
	cs := &ContextSelectionSet{}
	out, err := ResolveList[Int](context.Background(), []Int{}, cs, ast.Position{})
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{}, out)
}

func TestResolveNullable_NilPointerYieldsJSONNullWithoutResolving(t *testing.T) {
	cs := &ContextSelectionSet{}
	out, err := ResolveNullable[String](context.Background(), nil, cs, ast.Position{})
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestResolveNullable_NonNilPointerResolves(t *testing.T) {
	cs := &ContextSelectionSet{}
	v := String("hi")
	out, err := ResolveNullable[String](context.Background(), &v, cs, ast.Position{})
	assert.NoError(t, err)
	assert.Equal(t, "hi", out)
}
