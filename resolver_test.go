package gqlcore

import (
	"context"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/sigilgraph/gqlcore/gqlerrors"
)

func newTestSchema(t *testing.T, petIsDog bool) *Schema[testQuery, testMutation, testSubscription] {
	t.Helper()
	schema, err := NewSchema[testQuery, testMutation, testSubscription](
		testQuery{PetIsDog: petIsDog}, testMutation{}, testSubscription{Messages: []int32{1, 2, 3}},
	)
	assert.NoError(t, err)
	return schema
}

func TestExecute_ScalarFieldAndArgumentBoundAddition(t *testing.T) {
	schema := newTestSchema(t, true)
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`{ hello add(a: 10, b: 20) }`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"hello":"world","add":30}`, string(resp.Data))
}

// TestExecute_ResultObjectKeyOrderMatchesSelectionSetOrder pins down
// spec.md §8's ordering invariant with a textual diff rather than
// assert.JSONEq (which is key-order-insensitive and would not catch a
// regression that reordered the response object).
func TestExecute_ResultObjectKeyOrderMatchesSelectionSetOrder(t *testing.T) {
	schema := newTestSchema(t, true)
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`{ add(a: 10, b: 20) hello }`))
	assert.NoError(t, err)
	if diff := pretty.Compare(string(resp.Data), `{"add":30,"hello":"world"}`); diff != "" {
		t.Fatalf("response key order diverged from selection-set order:\n%s", diff)
	}
}

func TestExecute_AliasedFieldsShareOneResolutionPerAlias(t *testing.T) {
	schema := newTestSchema(t, true)
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`{ h1: hello h2: hello }`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"h1":"world","h2":"world"}`, string(resp.Data))
}

func TestExecute_InlineFragmentDispatchesToDogVariant(t *testing.T) {
	schema := newTestSchema(t, true)
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`
		{ pet { name ... on Dog { bark } ... on Cat { meow } } }
	`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"pet":{"name":"Rex","bark":"Rex says Woof"}}`, string(resp.Data))
}

func TestExecute_InlineFragmentDispatchesToCatVariant(t *testing.T) {
	schema := newTestSchema(t, false)
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`
		{ pet { name ... on Dog { bark } ... on Cat { meow } } }
	`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"pet":{"name":"Tom","meow":"Tom says Meow"}}`, string(resp.Data))
}

func TestExecute_InterfaceFragmentSpreadSeesSharedField(t *testing.T) {
	schema := newTestSchema(t, true)
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`
		{ pet { ... on Pet { name } ... on Dog { bark } } }
	`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"pet":{"name":"Rex","bark":"Rex says Woof"}}`, string(resp.Data))
}

func TestExecute_TypenameReportsTheConcreteVariant(t *testing.T) {
	schema := newTestSchema(t, true)
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`{ pet { __typename name } }`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"pet":{"__typename":"Dog","name":"Rex"}}`, string(resp.Data))
}

func TestExecute_ListFieldPreservesTraversalOrder(t *testing.T) {
	schema := newTestSchema(t, true)
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`{ items }`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"items":[1,2,3]}`, string(resp.Data))
}

func TestExecute_FieldErrorPropagatesWithPath(t *testing.T) {
	schema := newTestSchema(t, true)
	_, err := schema.Execute(context.Background(), NewQueryBuilder(`{ failing }`))
	if assert.Error(t, err) {
		qerr, ok := err.(*gqlerrors.Error)
		assert.True(t, ok)
		assert.Equal(t, gqlerrors.FieldNotFound, qerr.Kind)
		assert.Equal(t, []interface{}{"failing"}, qerr.Path)
	}
}

func TestExecute_SkipDirectiveOmitsField(t *testing.T) {
	schema := newTestSchema(t, true)
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`{ hello @skip(if: true) items }`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"items":[1,2,3]}`, string(resp.Data))
}

func TestExecute_MissingVariableWithNoDefaultErrors(t *testing.T) {
	schema := newTestSchema(t, true)
	_, err := schema.Execute(context.Background(), NewQueryBuilder(`query($a: Int!) { add(a: $a, b: 1) }`))
	if assert.Error(t, err) {
		qerr, ok := err.(*gqlerrors.Error)
		assert.True(t, ok)
		assert.Equal(t, gqlerrors.VarNotDefined, qerr.Kind)
	}
}

func TestExecute_VariableSuppliesArgument(t *testing.T) {
	schema := newTestSchema(t, true)
	b := NewQueryBuilder(`query($a: Int!) { add(a: $a, b: 1) }`).Variables(map[string]interface{}{"a": float64(9)})
	resp, err := schema.Execute(context.Background(), b)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"add":10}`, string(resp.Data))
}

func TestExecute_IntrospectionDisabledErrorsFieldNotFound(t *testing.T) {
	schema := newTestSchema(t, true).WithIntrospectionDisabled(true)
	_, err := schema.Execute(context.Background(), NewQueryBuilder(`{ __schema { queryType { name } } }`))
	if assert.Error(t, err) {
		qerr, ok := err.(*gqlerrors.Error)
		assert.True(t, ok)
		assert.Equal(t, gqlerrors.FieldNotFound, qerr.Kind)
	}
}

func TestExecute_IntrospectionSchemaReportsQueryTypeName(t *testing.T) {
	schema := newTestSchema(t, true)
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`{ __schema { queryType { name } } }`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"__schema":{"queryType":{"name":"Query"}}}`, string(resp.Data))
}

func TestExecute_MutationFieldsRunStrictlySequentially(t *testing.T) {
	schema := newTestSchema(t, true)
	log := &orderLog{}
	b := NewQueryBuilder(`mutation { appendA appendB }`).Data(log)
	resp, err := schema.Execute(context.Background(), b)
	assert.NoError(t, err)
	assert.Equal(t, []string{"appendA", "appendB"}, log.Order)
	assert.JSONEq(t, `{"appendA":1,"appendB":2}`, string(resp.Data))
}

func TestEmptyMutation_RejectsEveryEntryPointWithNotConfiguredMutations(t *testing.T) {
	m := EmptyMutation{}
	_, err := m.Resolve(context.Background(), &ContextSelectionSet{}, ast.Position{})
	assertNotConfiguredMutations(t, err)

	_, err = m.ResolveField(context.Background(), &ContextField{Item: &ast.Field{}})
	assertNotConfiguredMutations(t, err)

	err = m.CollectInlineFields("Mutation", ast.Position{}, &ContextSelectionSet{}, &[]fieldUnit{})
	assertNotConfiguredMutations(t, err)
}

func assertNotConfiguredMutations(t *testing.T, err error) {
	t.Helper()
	if assert.Error(t, err) {
		qerr, ok := err.(*gqlerrors.Error)
		assert.True(t, ok)
		assert.Equal(t, gqlerrors.NotConfiguredMutations, qerr.Kind)
	}
}

func TestEmptySubscription_ReportsEmptyAndRejectsStreamCreation(t *testing.T) {
	s := EmptySubscription{}
	assert.True(t, s.IsEmpty())
	assert.Equal(t, "EmptySubscription", s.TypeName())

	_, err := s.CreateFieldStream(context.Background(), &ContextField{Item: &ast.Field{}}, nil, nil)
	if assert.Error(t, err) {
		qerr, ok := err.(*gqlerrors.Error)
		assert.True(t, ok)
		assert.Equal(t, gqlerrors.NotConfiguredSubscriptions, qerr.Kind)
	}
}

func TestSubscribe_StreamsOneMessagePerSourceItem(t *testing.T) {
	schema := newTestSchema(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := schema.Subscribe(ctx, NewQueryBuilder(`subscription { counter }`))
	assert.NoError(t, err)

	var got []string
	for item := range stream {
		assert.NoError(t, item.Err)
		got = append(got, string(item.Response.Data))
	}
	assert.Equal(t, []string{`{"counter":1}`, `{"counter":2}`, `{"counter":3}`}, got)
}

func TestQueryBuilder_MissingOperationNameWithMultipleOperationsErrors(t *testing.T) {
	schema := newTestSchema(t, true)
	b := NewQueryBuilder(`query A { hello } query B { items }`)
	_, err := schema.Execute(context.Background(), b)
	if assert.Error(t, err) {
		qerr, ok := err.(*gqlerrors.Error)
		assert.True(t, ok)
		assert.Equal(t, gqlerrors.MissingOperation, qerr.Kind)
	}
}

func TestExecute_DeferredFieldMergesIntoFinalResponse(t *testing.T) {
	schema := newTestSchema(t, true)
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`{ hello @defer items }`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"hello":"world","items":[1,2,3]}`, string(resp.Data))
}

func TestExecuteStream_PrimaryResponseNullsDeferredFieldThenFollowUpPatchesItIn(t *testing.T) {
	schema := newTestSchema(t, true)
	stream := schema.ExecuteStream(context.Background(), NewQueryBuilder(`{ hello @defer items }`))

	primary := <-stream
	assert.NoError(t, primary.Err)
	assert.JSONEq(t, `{"hello":null,"items":[1,2,3]}`, string(primary.Response.Data))

	followUp := <-stream
	assert.NoError(t, followUp.Err)
	assert.Equal(t, []interface{}{"hello"}, followUp.Response.Path)
	assert.JSONEq(t, `"world"`, string(followUp.Response.Data))

	_, more := <-stream
	assert.False(t, more, "exactly one incremental response is expected for a single @defer field")
}

func TestQueryBuilder_OperationNameSelectsNamedOperation(t *testing.T) {
	schema := newTestSchema(t, true)
	b := NewQueryBuilder(`query A { hello } query B { items }`).OperationName("B")
	resp, err := schema.Execute(context.Background(), b)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"items":[1,2,3]}`, string(resp.Data))
}
