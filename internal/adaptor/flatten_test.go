package adaptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonadaptor/internal/jsonvalue"
)

// ─────────────────────────────────────────────────────────────
// Flatten / Unfold / keyFilter internals
// ─────────────────────────────────────────────────────────────

func mustObject(t *testing.T, raw string) jsonvalue.Object {
	t.Helper()
	v, err := jsonvalue.Parse([]byte(raw))
	require.NoError(t, err)
	obj, ok := v.(jsonvalue.Object)
	require.True(t, ok, "expected object, got %s", v.Kind())
	return obj
}

func scalarAt(t *testing.T, r Record, path string) jsonvalue.Value {
	t.Helper()
	v, ok := r.Get(path)
	require.True(t, ok, "missing path %q", path)
	require.False(t, v.IsGroup(), "path %q holds a group", path)
	return v.Scalar
}

func TestFlatten_NestedObject(t *testing.T) {
	rec := Flatten(mustObject(t, `{"a":{"b":"v"}}`), "")

	assert.Equal(t, []string{"a.b"}, rec.Keys())
	assert.Equal(t, jsonvalue.String("v"), scalarAt(t, rec, "a.b"))
}

func TestFlatten_Prefix(t *testing.T) {
	rec := Flatten(mustObject(t, `{"x":1,"y":{"z":null}}`), "root")

	assert.Equal(t, []string{"root.x", "root.y.z"}, rec.Keys())
	assert.Equal(t, jsonvalue.Null{}, scalarAt(t, rec, "root.y.z"))
}

func TestFlatten_EmptyArrayLeavesNoEntry(t *testing.T) {
	rec := Flatten(mustObject(t, `{"arr":[],"x":true}`), "")

	assert.Equal(t, []string{"x"}, rec.Keys())
	_, ok := rec.Get("arr")
	assert.False(t, ok)
}

func TestFlatten_ScalarArray(t *testing.T) {
	rec := Flatten(mustObject(t, `{"arr":["a1","a2"]}`), "")

	v, ok := rec.Get("arr")
	require.True(t, ok)
	require.True(t, v.IsGroup())
	require.Len(t, v.Group, 2)
	assert.Equal(t, jsonvalue.String("a1"), scalarAt(t, v.Group[0], "arr"))
	assert.Equal(t, jsonvalue.String("a2"), scalarAt(t, v.Group[1], "arr"))
}

func TestFlatten_ObjectArray(t *testing.T) {
	rec := Flatten(mustObject(t, `{"arr":[{"id":1,"tag":{"k":"v"}}]}`), "")

	v, _ := rec.Get("arr")
	require.Len(t, v.Group, 1)
	assert.Equal(t, []string{"arr.id", "arr.tag.k"}, v.Group[0].Keys())
	assert.Equal(t, jsonvalue.Number("1"), scalarAt(t, v.Group[0], "arr.id"))
}

func TestFlatten_NestedArrays(t *testing.T) {
	rec := Flatten(mustObject(t, `{"arr":[[1,2],[3],[]]}`), "")

	v, _ := rec.Get("arr")
	require.Len(t, v.Group, 3)

	inner, ok := v.Group[0].Get("arr")
	require.True(t, ok)
	require.True(t, inner.IsGroup())
	assert.Len(t, inner.Group, 2)

	// an empty nested array contributes an empty sub-record
	assert.Equal(t, 0, v.Group[2].Len())
}

func TestFlatten_CollisionOverwrites(t *testing.T) {
	rec := Flatten(mustObject(t, `{"a.b":1,"a":{"b":2}}`), "")

	assert.Equal(t, 1, rec.Len())
	assert.Equal(t, jsonvalue.Number("2"), scalarAt(t, rec, "a.b"))
}

// ─────────────────────────────────────────────────────────────
// Unfold
// ─────────────────────────────────────────────────────────────

func TestUnfold_EmptyRecordDropped(t *testing.T) {
	assert.Empty(t, Unfold(NewRecord()))
	assert.Empty(t, Unfold(Flatten(mustObject(t, `{"arr":[]}`), "")))
}

func TestUnfold_NoArrays(t *testing.T) {
	rec := Flatten(mustObject(t, `{"a":1,"b":"x"}`), "")
	out := Unfold(rec)

	require.Len(t, out, 1)
	assert.Equal(t, []string{"a", "b"}, out[0].Keys())
}

func TestUnfold_CartesianProduct(t *testing.T) {
	rec := Flatten(mustObject(t, `{"name":"abc","telephone":[123,456],"address":["a","b"]}`), "")
	out := Unfold(rec)

	require.Len(t, out, 4)
	want := [][2]string{{"123", "a"}, {"123", "b"}, {"456", "a"}, {"456", "b"}}
	for i, w := range want {
		assert.Equal(t, jsonvalue.String("abc"), scalarAt(t, out[i], "name"))
		assert.Equal(t, w[0], scalarAt(t, out[i], "telephone").Text(), "row %d", i)
		assert.Equal(t, w[1], scalarAt(t, out[i], "address").Text(), "row %d", i)
	}
}

func TestUnfold_NestedArrays(t *testing.T) {
	rec := Flatten(mustObject(t, `{"arr":[[1,2],[3]]}`), "")
	out := Unfold(rec)

	require.Len(t, out, 3)
	for i, want := range []string{"1", "2", "3"} {
		assert.Equal(t, want, scalarAt(t, out[i], "arr").Text())
	}
}

func TestUnfold_EmptyGroupKeepsRecord(t *testing.T) {
	rec := NewRecord()
	rec.SetScalar("x", jsonvalue.Number("7"))
	rec.SetGroup("arr", ArrayGroup{})

	out := Unfold(rec)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"x"}, out[0].Keys())
}

func TestUnfold_DoesNotMutateInput(t *testing.T) {
	rec := Flatten(mustObject(t, `{"a":1,"arr":[2,3]}`), "")
	_ = Unfold(rec)

	assert.Equal(t, []string{"a", "arr"}, rec.Keys())
}

// ─────────────────────────────────────────────────────────────
// keyFilter
// ─────────────────────────────────────────────────────────────

func TestKeyFilter_PrefixBothDirections(t *testing.T) {
	f := newKeyFilter([]string{"arr.id", "ab"})

	rec := NewRecord()
	rec.SetGroup("arr", ArrayGroup{NewRecord()})
	rec.SetScalar("abc.def", jsonvalue.Number("1"))
	rec.SetScalar("other", jsonvalue.Number("2"))
	f.apply(&rec)

	assert.Equal(t, []string{"arr", "abc.def"}, rec.Keys())
}

func TestKeyFilter_Memoizes(t *testing.T) {
	f := newKeyFilter([]string{"name"})

	rec := Flatten(mustObject(t, `{"name":"a","extra":1}`), "")
	f.apply(&rec)

	assert.Equal(t, []string{"name"}, rec.Keys())

	// with no paths left only remembered verdicts can keep a key, even
	// when the value changes kind
	f.paths = nil
	rec = Flatten(mustObject(t, `{"name":[1,2],"extra":{"x":1},"fresh":2}`), "")
	f.apply(&rec)
	assert.Equal(t, []string{"name"}, rec.Keys())
}
