package gqlcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/sigilgraph/gqlcore/value"
)

func TestInt_ParseValueAndRoundTrip(t *testing.T) {
	var i Int
	assert.True(t, i.ParseValue(value.IntValue(7)))
	assert.EqualValues(t, 7, i)
	assert.Equal(t, value.IntValue(7), i.ToValue())
	assert.False(t, i.ParseValue(value.StringValue("nope")))
}

func TestInt_Resolve_ProjectsToJSON(t *testing.T) {
	out, err := Int(42).Resolve(context.Background(), nil, ast.Position{})
	assert.NoError(t, err)
	assert.EqualValues(t, 42, out)
}

func TestFloat_ParseValue_AcceptsIntAndFloat(t *testing.T) {
	var f Float
	assert.True(t, f.ParseValue(value.FloatValue(1.5)))
	assert.EqualValues(t, 1.5, f)
	assert.True(t, f.ParseValue(value.IntValue(3)))
	assert.EqualValues(t, 3, f)
	assert.False(t, f.ParseValue(value.BoolValue(true)))
}

func TestString_ParseValueAndRoundTrip(t *testing.T) {
	var s String
	assert.True(t, s.ParseValue(value.StringValue("hi")))
	assert.EqualValues(t, "hi", s)
	assert.False(t, s.ParseValue(value.IntValue(1)))
}

func TestBoolean_ParseValueAndRoundTrip(t *testing.T) {
	var b Boolean
	assert.True(t, b.ParseValue(value.BoolValue(true)))
	assert.True(t, bool(b))
}

func TestID_ParseValue_AcceptsStringAndInt(t *testing.T) {
	var id ID
	assert.True(t, id.ParseValue(value.StringValue("abc")))
	assert.EqualValues(t, "abc", id)
	assert.True(t, id.ParseValue(value.IntValue(9)))
	assert.EqualValues(t, "9", id)
}

func TestUpload_ToValueAndParseValueRoundTrip(t *testing.T) {
	u := Upload{Name: "a.png", ContentType: "image/png", LocalPath: "/tmp/a.png"}
	encoded := u.ToValue()
	assert.Equal(t, "file:a.png:image/png|/tmp/a.png", encoded.Str)

	var parsed Upload
	assert.True(t, parsed.ParseValue(encoded))
	assert.Equal(t, u, parsed)
}

func TestUpload_ParseValue_RejectsMalformedEncoding(t *testing.T) {
	var u Upload
	assert.False(t, u.ParseValue(value.StringValue("not-a-file-ref")))
}

func TestUpload_ParseValue_OmittedContentType(t *testing.T) {
	var u Upload
	assert.True(t, u.ParseValue(value.StringValue("file:a.txt|/tmp/a.txt")))
	assert.Equal(t, Upload{Name: "a.txt", LocalPath: "/tmp/a.txt"}, u)
}
