package casedata

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, doc string) any {
	t.Helper()
	v, err := Decode([]byte(doc))
	require.NoError(t, err)
	return v
}

func encode(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func keys(t *testing.T, v any) []string {
	t.Helper()
	obj, ok := v.(*Object)
	require.True(t, ok, "expected *Object, got %T", v)
	var out []string
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func enrich(t *testing.T, cards, cases, escalations, issues, bugs, details string) any {
	t.Helper()
	return enrichMerged(t, cards, cases, escalations, issues, bugs, details).Output
}

func enrichMerged(t *testing.T, cards, cases, escalations, issues, bugs, details string) Merged {
	t.Helper()
	return Enrich(Sources{
		Cards:       decode(t, cards),
		Cases:       decode(t, cases),
		Escalations: decode(t, escalations),
		Issues:      decode(t, issues),
		Bugs:        decode(t, bugs),
		Details:     decode(t, details),
	})
}

func TestEnrich_FullJoin(t *testing.T) {
	out := enrich(t,
		`{"CARD-1": {"key": "CARD-1", "case_number": "00123"}, "CARD-2": {"key": "CARD-2", "case_number": 456}}`,
		`{"abc": {"case_number": "00123", "owner": "x"}, "def": {"case_number": 456, "owner": "y"}}`,
		`[{"case_number": "456"}]`,
		`{"00123": ["issue-a"]}`,
		`{"456": [{"id": "BUG-9"}]}`,
		`{"00123": {"severity": "high"}}`,
	)

	assert.JSONEq(t, `{
		"CARD-1": {"key": "CARD-1", "case_number": "00123",
			"case": {"case_number": "00123", "owner": "x"},
			"escalated": false, "issues": ["issue-a"], "bugs": null,
			"details": {"severity": "high"}},
		"CARD-2": {"key": "CARD-2", "case_number": 456,
			"case": {"case_number": 456, "owner": "y"},
			"escalated": true, "issues": null, "bugs": [{"id": "BUG-9"}],
			"details": null}
	}`, encode(t, out))
}

func TestEnrich_PreservesCardOrderAndFieldOrder(t *testing.T) {
	out := enrich(t,
		`{"z": {"b": 1, "case_number": "1", "a": 2}, "a": {"case_number": "2"}, "m": {"case_number": null}}`,
		`{}`, `[]`, `{}`, `{}`, `{}`,
	)

	if diff := cmp.Diff([]string{"z", "a", "m"}, keys(t, out)); diff != "" {
		t.Errorf("card order mismatch (-want +got):\n%s", diff)
	}

	first, _ := out.(*Object).Get("z")
	want := []string{"b", "case_number", "a", "case", "escalated", "issues", "bugs", "details"}
	if diff := cmp.Diff(want, keys(t, first)); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}
}

func TestEnrich_NullOrMissingCaseNumber(t *testing.T) {
	out := enrich(t,
		`{"a": {"case_number": null}, "b": {"title": "no key"}}`,
		`{"null": {"owner": "trap"}}`,
		`[null, "null"]`,
		`{"null": "trap"}`,
		`{"null": "trap"}`,
		`{"null": "trap"}`,
	)

	assert.JSONEq(t, `{
		"a": {"case_number": null, "case": null, "escalated": false, "issues": null, "bugs": null, "details": null},
		"b": {"title": "no key", "case": null, "escalated": false, "issues": null, "bugs": null, "details": null}
	}`, encode(t, out))
}

func TestEnrich_EscalationForms(t *testing.T) {
	tests := []struct {
		name        string
		escalations string
		caseNumber  string
		want        bool
	}{
		{"record with string", `[{"case_number": "42"}]`, `"42"`, true},
		{"record with number", `[{"case_number": 42}]`, `"42"`, true},
		{"primitive number", `[42]`, `"42"`, true},
		{"primitive string vs numeric card", `["42"]`, `42`, true},
		{"leading zeros", `["0042"]`, `42`, true},
		{"leading zeros on two strings", `["0042"]`, `"42"`, false},
		{"null primitive", `[null]`, `"null"`, false},
		{"record without case_number", `[{"id": 1}]`, `"42"`, false},
		{"absent", `["7", 8]`, `"42"`, false},
		{"not a list", `{"42": true}`, `"42"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := enrich(t,
				`[{"case_number": `+tt.caseNumber+`}]`,
				`{}`, tt.escalations, `{}`, `{}`, `{}`,
			)
			items, _ := out.(*Object).Get(ItemsField)
			card := items.([]any)[0].(*Object)
			got, _ := card.Get(FieldEscalated)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnrich_CasesKeyedByInternalID(t *testing.T) {
	out := enrich(t,
		`[{"case_number": "00123"}]`,
		`{"abc123": {"case_number": "00123", "owner": "x"}}`,
		`[]`, `{}`, `{}`, `{}`,
	)

	assert.JSONEq(t, `{"items": [{"case_number": "00123",
		"case": {"case_number": "00123", "owner": "x"},
		"escalated": false, "issues": null, "bugs": null, "details": null}]}`, encode(t, out))
}

func TestEnrich_NumericCardMatchesZeroPaddedIssues(t *testing.T) {
	out := enrich(t,
		`[{"case_number": 123}]`,
		`{}`, `[]`,
		`{"00123": ["i-1", "i-2"]}`,
		`{}`, `{}`,
	)

	items, _ := out.(*Object).Get(ItemsField)
	card := items.([]any)[0].(*Object)
	issues, _ := card.Get(FieldIssues)
	assert.Equal(t, []any{"i-1", "i-2"}, issues)
}

func TestEnrich_ZeroPaddedStringCardDoesNotMatchShorterStringKey(t *testing.T) {
	out := enrich(t,
		`[{"case_number": "0123"}]`,
		`[{"case_number": "123", "owner": "someone else"}]`,
		`["123"]`,
		`{"123": ["wrong"]}`,
		`{}`, `{}`,
	)

	assert.JSONEq(t, `{"items": [{"case_number": "0123",
		"case": null, "escalated": false, "issues": null, "bugs": null, "details": null}]}`, encode(t, out))
}

func TestEnrich_EmptyAuxiliarySourcesRoundTrip(t *testing.T) {
	cards := `{"c1": {"case_number": "1", "summary": "s"}, "c2": {"case_number": 2}}`
	out := enrich(t, cards, `{}`, `[]`, `{}`, `{}`, `{}`)

	assert.JSONEq(t, `{
		"c1": {"case_number": "1", "summary": "s", "case": null, "escalated": false, "issues": null, "bugs": null, "details": null},
		"c2": {"case_number": 2, "case": null, "escalated": false, "issues": null, "bugs": null, "details": null}
	}`, encode(t, out))
}

func TestEnrich_MalformedAuxiliarySources(t *testing.T) {
	out := enrich(t,
		`{"c1": {"case_number": "1"}}`,
		`"oops"`, `{"not": "a list"}`, `[1, 2]`, `42`, `null`,
	)

	assert.JSONEq(t, `{"c1": {"case_number": "1", "case": null, "escalated": false, "issues": null, "bugs": null, "details": null}}`,
		encode(t, out))
}

func TestEnrich_ListPrimaryWrapsItemsInOrder(t *testing.T) {
	out := enrich(t,
		`[{"case_number": "3"}, "loose", {"case_number": "1"}]`,
		`[{"case_number": "1", "owner": "o"}]`,
		`[]`, `{}`, `{}`, `{}`,
	)

	assert.JSONEq(t, `{"items": [
		{"case_number": "3", "case": null, "escalated": false, "issues": null, "bugs": null, "details": null},
		"loose",
		{"case_number": "1", "case": {"case_number": "1", "owner": "o"}, "escalated": false, "issues": null, "bugs": null, "details": null}
	]}`, encode(t, out))
}

func TestEnrich_ScalarCardsInMappingPassThrough(t *testing.T) {
	out := enrich(t, `{"a": 1, "b": {"case_number": "9"}, "c": "text"}`, `{}`, `[]`, `{}`, `{}`, `{}`)

	assert.JSONEq(t, `{"a": 1, "b": {"case_number": "9", "case": null, "escalated": false, "issues": null, "bugs": null, "details": null}, "c": "text"}`,
		encode(t, out))
}

func TestEnrich_NonCollectionPrimaryPassesThrough(t *testing.T) {
	tests := []struct {
		name  string
		cards string
	}{
		{"null", `null`},
		{"string", `"maintenance"`},
		{"number", `7`},
		{"bool", `true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := decode(t, tt.cards)
			m := enrichMerged(t, tt.cards, `{}`, `["1"]`, `{"1": 1}`, `{}`, `{}`)
			assert.Equal(t, raw, m.Output)
			assert.Equal(t, ShapePassthrough, m.Shape)
			assert.Equal(t, ShapePassthrough, Summarize(m).Shape)
		})
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	cards := decode(t, `{"c": {"case_number": "1"}}`)
	before := encode(t, cards)

	_ = Merge(cards, NewIndex(), NewIndex(), NewIndex(), NewIndex(), NewIndex())

	assert.Equal(t, before, encode(t, cards))
}

func TestMerge_NilIndexesYieldNulls(t *testing.T) {
	m := Merge(decode(t, `[{"case_number": "1"}]`), nil, nil, nil, nil, nil)

	assert.Equal(t, ShapeItems, m.Shape)
	assert.JSONEq(t, `{"items": [{"case_number": "1", "case": null, "escalated": false, "issues": null, "bugs": null, "details": null}]}`,
		encode(t, m.Output))
}

func TestMerge_ExistingDerivedFieldIsReplacedInPlace(t *testing.T) {
	out := Merge(decode(t, `[{"escalated": "yes", "case_number": "1"}]`), nil, nil, nil, nil, nil).Output

	items, _ := out.(*Object).Get(ItemsField)
	card := items.([]any)[0]
	want := []string{"escalated", "case_number", "case", "issues", "bugs", "details"}
	if diff := cmp.Diff(want, keys(t, card)); diff != "" {
		t.Errorf("field order mismatch (-want +got):\n%s", diff)
	}
	v, _ := card.(*Object).Get(FieldEscalated)
	assert.Equal(t, false, v)
}

func TestSummarize(t *testing.T) {
	out := enrichMerged(t,
		`{"a": {"case_number": "1"}, "b": {"case_number": "2"}, "c": {"title": "x"}, "d": 5}`,
		`[{"case_number": "1"}]`,
		`["2"]`,
		`{"1": []}`,
		`{"2": ["b"]}`,
		`{"1": {}, "2": {}}`,
	)

	want := Stats{Shape: ShapeKeyed, Cards: 4, WithCase: 1, Escalated: 1, WithIssues: 1, WithBugs: 1, WithDetails: 2}
	if diff := cmp.Diff(want, Summarize(out)); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, Summarize(out).Enriched())
}

func TestSummarize_ItemsKeyedCardsAreNotMistakenForList(t *testing.T) {
	m := enrichMerged(t, `{"items": [{"case_number": 1}]}`, `{}`, `[]`, `{}`, `{}`, `{}`)

	assert.Equal(t, ShapeKeyed, m.Shape)
	want := Stats{Shape: ShapeKeyed, Cards: 1}
	if diff := cmp.Diff(want, Summarize(m)); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, FindByCaseNumber(m, json.Number("1")), "the card is the list itself, not a record")
}

func TestFindByCaseNumber(t *testing.T) {
	out := enrichMerged(t,
		`[{"id": 1, "case_number": "00042"}, {"id": 2, "case_number": 7}, {"id": 3, "case_number": 42}, {"id": 4, "case_number": "042"}]`,
		`{}`, `[]`, `{}`, `{}`, `{}`,
	)

	found := FindByCaseNumber(out, json.Number("42"))
	require.Len(t, found, 3)
	var ids []any
	for _, rec := range found {
		id, _ := rec.Get("id")
		ids = append(ids, id)
	}
	assert.Equal(t, []any{json.Number("1"), json.Number("3"), json.Number("4")}, ids)

	found = FindByCaseNumber(out, "42")
	require.Len(t, found, 1, "a string query matches zero-padded strings only through a numeric side")
	id, _ := found[0].Get("id")
	assert.Equal(t, json.Number("3"), id)

	assert.Empty(t, FindByCaseNumber(out, "999"))
	assert.Empty(t, FindByCaseNumber(Merged{Output: "passthrough", Shape: ShapePassthrough}, "42"))
}
