package gqlcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sigilgraph/gqlcore/registry"
)

func TestSchema_ParseCachesDocumentBySourceTextWhenCacheEnabled(t *testing.T) {
	schema := newTestSchema(t, true).WithCacheSize(8)
	const src = `{ hello }`
	first, err := schema.parse(src)
	assert.NoError(t, err)
	second, err := schema.parse(src)
	assert.NoError(t, err)
	assert.Same(t, first, second, "a cached source string must return the identical parsed document")
}

func TestSchema_ParseDoesNotCacheWhenDisabled(t *testing.T) {
	schema := newTestSchema(t, true) // NewSchema installs a disabled (size-0) cache by default
	const src = `{ hello }`
	first, err := schema.parse(src)
	assert.NoError(t, err)
	second, err := schema.parse(src)
	assert.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestSchema_WithCacheSizeZeroDisablesCaching(t *testing.T) {
	schema := newTestSchema(t, true).WithCacheSize(8).WithCacheSize(0)
	const src = `{ hello }`
	first, _ := schema.parse(src)
	second, _ := schema.parse(src)
	assert.NotSame(t, first, second)
}

func TestSchema_WithLimits_TooDeepRejectsOverLimitQuery(t *testing.T) {
	schema := newTestSchema(t, true).WithLimits(registry.Limits{MaxDepth: 1})
	_, err := schema.Execute(context.Background(), NewQueryBuilder(`{ pet { name } }`))
	assert.Error(t, err)
}

func TestSchema_WithLimits_TooComplexRejectsOverLimitQuery(t *testing.T) {
	schema := newTestSchema(t, true).WithLimits(registry.Limits{MaxComplexity: 1})
	_, err := schema.Execute(context.Background(), NewQueryBuilder(`{ hello items }`))
	assert.Error(t, err)
}

func TestSchema_WithLimits_WithinLimitQuerySucceeds(t *testing.T) {
	schema := newTestSchema(t, true).WithLimits(registry.Limits{MaxDepth: 5, MaxComplexity: 20})
	resp, err := schema.Execute(context.Background(), NewQueryBuilder(`{ pet { name } }`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"pet":{"name":"Rex"}}`, string(resp.Data))
}

// spyExtension counts field resolution start/end calls, confirming
// QueryBuilder.Extensions installs additional hooks alongside the
// ambient logging extension every Schema carries.
type spyExtension struct {
	starts, ends int
}

func (s *spyExtension) ResolveFieldStart(ResolveInfo) { s.starts++ }
func (s *spyExtension) ResolveFieldEnd(uint64)        { s.ends++ }

func TestQueryBuilder_ExtensionsFireAlongsideAmbientLogging(t *testing.T) {
	schema := newTestSchema(t, true)
	spy := &spyExtension{}
	b := NewQueryBuilder(`{ hello add(a: 1, b: 2) }`).Extensions(spy)
	_, err := schema.Execute(context.Background(), b)
	assert.NoError(t, err)
	assert.Equal(t, 2, spy.starts)
	assert.Equal(t, spy.starts, spy.ends)
}

func TestQueryBuilder_SettersReturnSameBuilderForChaining(t *testing.T) {
	b := NewQueryBuilder(`{ hello }`)
	chained := b.OperationName("Q").Variables(map[string]interface{}{}).SetFilesHolder("/tmp").
		SetUpload("variables.file", "a.png", "image/png", "/tmp/a.png").Extensions()
	assert.Same(t, b, chained)
}

func TestQueryBuilder_DataRoundTripsByType(t *testing.T) {
	b := NewQueryBuilder(`{ hello }`)
	log := &orderLog{Order: []string{"seed"}}
	b.Data(log)
	got, ok := GetTyped[*orderLog](b.data)
	assert.True(t, ok)
	assert.Same(t, log, got)
}
