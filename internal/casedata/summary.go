package casedata

// Shape describes what Merge produced.
type Shape string

const (
	ShapeKeyed       Shape = "keyed"
	ShapeItems       Shape = "items"
	ShapePassthrough Shape = "passthrough"
)

// Stats counts what an enrichment run attached.
type Stats struct {
	Shape       Shape `json:"shape"`
	Cards       int   `json:"cards"`
	WithCase    int   `json:"with_case"`
	Escalated   int   `json:"escalated"`
	WithIssues  int   `json:"with_issues"`
	WithBugs    int   `json:"with_bugs"`
	WithDetails int   `json:"with_details"`
}

// Enriched reports whether Merge did any work.
func (s Stats) Enriched() bool {
	return s.Shape != ShapePassthrough
}

// Summarize counts what a Merge result attached.
func Summarize(m Merged) Stats {
	stats := Stats{Shape: m.Shape}
	records := m.records()
	for _, card := range records {
		stats.Cards++
		rec, ok := asObject(card)
		if !ok {
			continue
		}
		if v, _ := rec.Get(FieldCase); v != nil {
			stats.WithCase++
		}
		if v, _ := rec.Get(FieldEscalated); v == true {
			stats.Escalated++
		}
		if v, _ := rec.Get(FieldIssues); v != nil {
			stats.WithIssues++
		}
		if v, _ := rec.Get(FieldBugs); v != nil {
			stats.WithBugs++
		}
		if v, _ := rec.Get(FieldDetails); v != nil {
			stats.WithDetails++
		}
	}
	return stats
}

// FindByCaseNumber returns the merged records whose case_number matches
// caseNumber, in output order.
func FindByCaseNumber(m Merged, caseNumber any) []*Object {
	var found []*Object
	for _, card := range m.records() {
		rec, ok := asObject(card)
		if !ok {
			continue
		}
		cn, _ := rec.Get(CaseNumberField)
		if SameCase(cn, caseNumber) {
			found = append(found, rec)
		}
	}
	return found
}

// records lists the merged cards in output order.
func (m Merged) records() []any {
	obj, ok := asObject(m.Output)
	if !ok {
		return nil
	}
	switch m.Shape {
	case ShapeItems:
		list, _ := obj.Get(ItemsField)
		items, _ := list.([]any)
		return items
	case ShapeKeyed:
		out := make([]any, 0, obj.Len())
		for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, pair.Value)
		}
		return out
	}
	return nil
}
