package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func schemaWithQuery() *Registry {
	r := New()
	r.Types["Query"] = &ObjectInfo{
		Name: "Query",
		Fields: map[string]*Field{
			"hello": {Name: "hello", Type: "String!"},
			"nested": {
				Name: "nested",
				Type: "Query!",
			},
		},
		FieldOrder: []string{"hello", "nested"},
	}
	r.QueryTypeName = "Query"
	return r
}

func mustParse(t *testing.T, source string) *ast.QueryDocument {
	t.Helper()
	doc, err := parser.ParseQuery(&ast.Source{Name: "query", Input: source})
	assert.NoError(t, err)
	return doc
}

func TestValidate_AcceptsWellFormedQuery(t *testing.T) {
	r := schemaWithQuery()
	doc := mustParse(t, `{ hello }`)
	result, err := Validate(r, doc, ValidationExecute)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Complexity)
	assert.Equal(t, 1, result.Depth)
}

func TestValidate_RejectsUnknownField(t *testing.T) {
	r := schemaWithQuery()
	doc := mustParse(t, `{ doesNotExist }`)
	_, err := Validate(r, doc, ValidationExecute)
	assert.Error(t, err)
}

func TestValidate_ComplexityCountsEveryField(t *testing.T) {
	r := schemaWithQuery()
	doc := mustParse(t, `{ hello nested { hello } }`)
	result, err := Validate(r, doc, ValidationExecute)
	assert.NoError(t, err)
	assert.Equal(t, 3, result.Complexity)
	assert.Equal(t, 2, result.Depth)
}

func TestValidate_TooDeepErrorsWhenLimitExceeded(t *testing.T) {
	r := schemaWithQuery()
	r.Limits.MaxDepth = 1
	doc := mustParse(t, `{ nested { hello } }`)
	_, err := Validate(r, doc, ValidationExecute)
	assert.Error(t, err)
}

func TestValidate_TooComplexErrorsWhenLimitExceeded(t *testing.T) {
	r := schemaWithQuery()
	r.Limits.MaxComplexity = 1
	doc := mustParse(t, `{ hello nested { hello } }`)
	_, err := Validate(r, doc, ValidationExecute)
	assert.Error(t, err)
}

func TestValidate_FragmentSpreadCountsTowardDepthAndComplexity(t *testing.T) {
	r := schemaWithQuery()
	doc := mustParse(t, `
		{ nested { ...Frag } }
		fragment Frag on Query { hello }
	`)
	result, err := Validate(r, doc, ValidationExecute)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Complexity)
	assert.Equal(t, 2, result.Depth)
}

func TestBuildASTSchema_CompilesFederationEntityHooksWhenKeysPresent(t *testing.T) {
	r := schemaWithQuery()
	r.Types["User"] = &ObjectInfo{
		Name:       "User",
		Fields:     map[string]*Field{"id": {Name: "id", Type: "ID!"}},
		FieldOrder: []string{"id"},
		Keys:       []string{"id"},
	}
	schema, err := r.BuildASTSchema()
	assert.NoError(t, err)
	assert.NotNil(t, schema.Types["_Service"])
	assert.NotNil(t, schema.Types["_Entity"])
}
