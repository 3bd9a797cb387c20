package casedata

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KeepsObjectOrderAndNumberText(t *testing.T) {
	v := decode(t, `{"b": 1, "a": {"y": 0.50, "x": "é"}, "c": [1, "two", null, true]}`)

	assert.Equal(t, []string{"b", "a", "c"}, keys(t, v))
	obj := v.(*Object)

	b, _ := obj.Get("b")
	assert.Equal(t, json.Number("1"), b)

	a, _ := obj.Get("a")
	assert.Equal(t, []string{"y", "x"}, keys(t, a))
	y, _ := a.(*Object).Get("y")
	assert.Equal(t, json.Number("0.50"), y)
	x, _ := a.(*Object).Get("x")
	assert.Equal(t, "é", x)

	c, _ := obj.Get("c")
	assert.Equal(t, []any{json.Number("1"), "two", nil, true}, c)
}

func TestDecode_Scalars(t *testing.T) {
	assert.Nil(t, decode(t, `null`))
	assert.Equal(t, "s", decode(t, `"s"`))
	assert.Equal(t, false, decode(t, `false`))
	assert.Equal(t, []any{}, decode(t, `[]`))
}

func TestDecode_Invalid(t *testing.T) {
	for _, doc := range []string{``, `{`, `{"a":}`, `[1,]`, `nope`} {
		_, err := Decode([]byte(doc))
		require.Error(t, err, "doc %q", doc)
		assert.True(t, errors.Is(err, ErrInvalidJSON), "doc %q: %v", doc, err)
	}
}

func TestDecode_EscapedKeys(t *testing.T) {
	for _, doc := range []string{
		`{"A\\1": ["hit"]}`,
		`{"C:\\dir": 1}`,
		`{"tab\\t": 1}`,
		`{"\\u0041": 1}`,
		`{"\u0041\t\"q\"": 1}`,
	} {
		var want map[string]any
		require.NoError(t, json.Unmarshal([]byte(doc), &want), "doc %s", doc)

		v, err := Decode([]byte(doc))
		require.NoError(t, err, "doc %s", doc)
		got := keys(t, v)
		require.Len(t, got, 1, "doc %s", doc)
		_, ok := want[got[0]]
		assert.True(t, ok, "doc %s: key %q not among %v", doc, got[0], want)
	}
}

func TestDecode_NestedErrorIsInvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{"a": [1, }`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidJSON), "%v", err)
}

func TestIndex_ResolveOrder(t *testing.T) {
	idx := NewIndex()
	idx.Set("123", "string-key")
	idx.Set(json.Number("123"), "number-key")

	got, ok := idx.Resolve(json.Number("123"))
	require.True(t, ok)
	assert.Equal(t, "string-key", got, "string form is tried first")

	idx = NewIndex()
	idx.Set(json.Number("77"), "number-key")
	got, ok = idx.Resolve(json.Number("77"))
	require.True(t, ok)
	assert.Equal(t, "number-key", got, "raw form is the fallback")

	_, ok = idx.Resolve("77")
	assert.True(t, ok, "canonical digits match a string case number to a numeric key")
}

func TestIndex_CanonicalFallback(t *testing.T) {
	idx := NewIndex()
	idx.Set("0009", "first")
	idx.Set("09", "second")
	idx.Set("CASE-9", "other")

	got, ok := idx.Resolve(9)
	require.True(t, ok)
	assert.Equal(t, "first", got, "earliest inserted key wins")

	got, ok = idx.Resolve("09")
	require.True(t, ok)
	assert.Equal(t, "second", got, "exact string form beats canonical match")

	_, ok = idx.Resolve("CASE-09")
	assert.False(t, ok, "non-digit case numbers match exactly only")
}

func TestIndex_CanonicalNeedsANumericSide(t *testing.T) {
	idx := NewIndex()
	idx.Set("123", "string-key")

	_, ok := idx.Resolve("0123")
	assert.False(t, ok, "two strings differing in leading zeros are different cases")
	got, ok := idx.Resolve(json.Number("0123"))
	require.True(t, ok)
	assert.Equal(t, "string-key", got)

	idx = NewIndex()
	idx.Set("0123", "padded")
	_, ok = idx.Resolve("123")
	assert.False(t, ok)
	got, ok = idx.Resolve(123)
	require.True(t, ok)
	assert.Equal(t, "padded", got)

	idx.Set(json.Number("123"), "number")
	got, ok = idx.Resolve("00123")
	require.True(t, ok, "a numeric key still matches a padded string")
	assert.Equal(t, "number", got)
}

func TestIndex_CanonicalRebuiltAfterSet(t *testing.T) {
	idx := NewIndex()
	idx.Set("001", "a")
	_, ok := idx.Resolve(2)
	require.False(t, ok)

	idx.Set("002", "b")
	got, ok := idx.Resolve(2)
	require.True(t, ok)
	assert.Equal(t, "b", got)
}

func TestIndex_NilCases(t *testing.T) {
	var nilIdx *Index
	_, ok := nilIdx.Resolve("1")
	assert.False(t, ok)
	assert.Equal(t, 0, nilIdx.Len())
	assert.False(t, nilIdx.Degraded())

	idx := NewIndex()
	idx.Set("null", "trap")
	_, ok = idx.Resolve(nil)
	assert.False(t, ok, "nil case numbers never resolve")
}

func TestIndex_SetKeepsPosition(t *testing.T) {
	idx := NewIndex()
	idx.Set("1", "a")
	idx.Set("2", "b")
	idx.Set("1", "c")

	assert.Equal(t, 2, idx.Len())
	got, _ := idx.Resolve("1")
	assert.Equal(t, "c", got)
	assert.Equal(t, []any{"1", "2"}, idx.order)
}

func TestSameCase(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{"1", "1", true},
		{"1", json.Number("1"), true},
		{"001", json.Number("1"), true},
		{json.Number("1"), "001", true},
		{"0123", "123", false},
		{"00042", 42, true},
		{"A-1", "A-01", false},
		{nil, nil, false},
		{nil, "1", false},
		{true, "true", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SameCase(tt.a, tt.b), "SameCase(%v, %v)", tt.a, tt.b)
	}
}

func TestNormalize_Cases(t *testing.T) {
	t.Run("keyed by internal id drops entries without case_number", func(t *testing.T) {
		idx := Normalize(decode(t, `{"x": {"case_number": "1"}, "y": {"owner": "none"}, "z": {"case_number": null}, "w": "scalar"}`), RoleCase)
		assert.Equal(t, 1, idx.Len())
		assert.True(t, idx.Has("1"))
		assert.False(t, idx.Has("x"))
		assert.False(t, idx.Degraded())
	})

	t.Run("later duplicate replaces earlier", func(t *testing.T) {
		idx := Normalize(decode(t, `{"x": {"case_number": "1", "v": 1}, "y": {"case_number": "1", "v": 2}}`), RoleCase)
		got, _ := idx.Resolve("1")
		v, _ := got.(*Object).Get("v")
		assert.Equal(t, json.Number("2"), v)
	})

	t.Run("keyed by case number passes through", func(t *testing.T) {
		idx := Normalize(decode(t, `{"00123": {"owner": "x"}, "456": "scalar"}`), RoleCase)
		assert.Equal(t, 2, idx.Len())
		got, ok := idx.Resolve(123)
		require.True(t, ok)
		assert.Equal(t, []string{"owner"}, keys(t, got))
		got, _ = idx.Resolve("456")
		assert.Equal(t, "scalar", got)
	})

	t.Run("list", func(t *testing.T) {
		idx := Normalize(decode(t, `[{"case_number": 5}, "skip", {"id": 1}, {"case_number": "6"}]`), RoleCase)
		assert.Equal(t, 2, idx.Len())
		assert.True(t, idx.Has("5"))
		assert.True(t, idx.Has(json.Number("6")))
	})

	t.Run("empty mapping", func(t *testing.T) {
		idx := Normalize(decode(t, `{}`), RoleCase)
		assert.Equal(t, 0, idx.Len())
		assert.False(t, idx.Degraded())
	})

	t.Run("scalar degrades", func(t *testing.T) {
		idx := Normalize(decode(t, `"nope"`), RoleCase)
		assert.Equal(t, 0, idx.Len())
		assert.True(t, idx.Degraded())
	})
}

func TestNormalize_Escalations(t *testing.T) {
	idx := Normalize(decode(t, `[{"case_number": 1}, {"other": 2}, "3", 4, {"case_number": null}]`), RoleEscalation)

	assert.Equal(t, 3, idx.Len())
	for _, cn := range []any{"1", "3", json.Number("4")} {
		assert.True(t, idx.Has(cn), "expected %v escalated", cn)
	}
	assert.False(t, idx.Has("2"))

	assert.True(t, Normalize(decode(t, `{"1": true}`), RoleEscalation).Degraded())
}

func TestNormalize_KeyedByCase(t *testing.T) {
	idx := Normalize(decode(t, `{"1": ["a"], "2": null}`), RoleKeyedByCase)
	assert.Equal(t, 2, idx.Len())
	got, ok := idx.Resolve("2")
	assert.True(t, ok, "present keys with null payloads still resolve")
	assert.Nil(t, got)

	for _, doc := range []string{`[]`, `null`, `"x"`, `3`} {
		idx := Normalize(decode(t, doc), RoleKeyedByCase)
		assert.True(t, idx.Degraded(), "doc %s", doc)
		assert.Equal(t, 0, idx.Len())
	}
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "case", RoleCase.String())
	assert.Equal(t, "escalation", RoleEscalation.String())
	assert.Equal(t, "keyed-by-case", RoleKeyedByCase.String())
	assert.Equal(t, "unknown", Role(99).String())
}
