package casedata

// Fields attached to every merged card.
const (
	FieldCase      = "case"
	FieldEscalated = "escalated"
	FieldIssues    = "issues"
	FieldBugs      = "bugs"
	FieldDetails   = "details"

	// ItemsField wraps the merged cards when the primary source is a list.
	ItemsField = "items"
)

// Sources holds the six decoded dashboard payloads.
type Sources struct {
	Cards       any
	Cases       any
	Escalations any
	Issues      any
	Bugs        any
	Details     any
}

// Indexes holds the normalized auxiliary sources.
type Indexes struct {
	Cases       *Index
	Escalations *Index
	Issues      *Index
	Bugs        *Index
	Details     *Index
}

// NormalizeAll normalizes the five auxiliary sources.
func NormalizeAll(src Sources) Indexes {
	return Indexes{
		Cases:       Normalize(src.Cases, RoleCase),
		Escalations: Normalize(src.Escalations, RoleEscalation),
		Issues:      Normalize(src.Issues, RoleKeyedByCase),
		Bugs:        Normalize(src.Bugs, RoleKeyedByCase),
		Details:     Normalize(src.Details, RoleKeyedByCase),
	}
}

// Merged is a Merge result together with the shape it was built in. The
// shape comes from the cards payload, never from the output.
type Merged struct {
	Output any
	Shape  Shape
}

// Enrich normalizes the auxiliary sources and merges them into the cards.
func Enrich(src Sources) Merged {
	idx := NormalizeAll(src)
	return Merge(src.Cards, idx.Cases, idx.Escalations, idx.Issues, idx.Bugs, idx.Details)
}

// Merge attaches case, escalated, issues, bugs and details to every
// record-shaped card.
//
// A mapping of cards yields a mapping under the same ids, in the same
// order. A list of cards yields {"items": [...]}. Any other value is
// returned unchanged. Non-record cards inside a mapping or list pass
// through untouched.
func Merge(cards any, cases, escalations, issues, bugs, details *Index) Merged {
	entries, keyed, ok := primaryEntries(cards)
	if !ok {
		return Merged{Output: cards, Shape: ShapePassthrough}
	}

	m := merger{
		cases:       cases,
		escalations: escalations,
		issues:      issues,
		bugs:        bugs,
		details:     details,
	}
	for i := range entries {
		entries[i].card = m.enrich(entries[i].card)
	}

	if keyed {
		out := NewObject()
		for _, e := range entries {
			out.Set(e.key, e.card)
		}
		return Merged{Output: out, Shape: ShapeKeyed}
	}

	items := make([]any, len(entries))
	for i, e := range entries {
		items[i] = e.card
	}
	out := NewObject()
	out.Set(ItemsField, items)
	return Merged{Output: out, Shape: ShapeItems}
}

type entry struct {
	key  string
	card any
}

// primaryEntries flattens a mapping or list of cards into one ordered
// slice so both shapes share the merge loop.
func primaryEntries(cards any) (entries []entry, keyed, ok bool) {
	switch src := cards.(type) {
	case *Object:
		if src == nil {
			return nil, false, false
		}
		entries = make([]entry, 0, src.Len())
		for pair := src.Oldest(); pair != nil; pair = pair.Next() {
			entries = append(entries, entry{key: pair.Key, card: pair.Value})
		}
		return entries, true, true
	case []any:
		entries = make([]entry, len(src))
		for i, card := range src {
			entries[i] = entry{card: card}
		}
		return entries, false, true
	}
	return nil, false, false
}

type merger struct {
	cases       *Index
	escalations *Index
	issues      *Index
	bugs        *Index
	details     *Index
}

func (m merger) enrich(card any) any {
	rec, ok := asObject(card)
	if !ok {
		return card
	}

	cn, _ := rec.Get(CaseNumberField)

	merged := NewObject()
	for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
		merged.Set(pair.Key, pair.Value)
	}
	merged.Set(FieldCase, lookup(m.cases, cn))
	merged.Set(FieldEscalated, cn != nil && m.escalations.Has(cn))
	merged.Set(FieldIssues, lookup(m.issues, cn))
	merged.Set(FieldBugs, lookup(m.bugs, cn))
	merged.Set(FieldDetails, lookup(m.details, cn))
	return merged
}

func lookup(idx *Index, cn any) any {
	v, _ := idx.Resolve(cn)
	return v
}
