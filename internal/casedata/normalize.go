package casedata

// Role selects the normalization rule for a source.
type Role int

const (
	// RoleCase indexes customer cases by case number.
	RoleCase Role = iota
	// RoleEscalation builds the set of escalated case numbers.
	RoleEscalation
	// RoleKeyedByCase passes through a mapping already keyed by case number
	// (issues, bugs, details).
	RoleKeyedByCase
)

func (r Role) String() string {
	switch r {
	case RoleCase:
		return "case"
	case RoleEscalation:
		return "escalation"
	case RoleKeyedByCase:
		return "keyed-by-case"
	}
	return "unknown"
}

// CaseNumberField is the join key attribute on every record-shaped source.
const CaseNumberField = "case_number"

// Normalize converts a decoded payload into an Index according to role.
// It never fails: a payload of the wrong shape yields an empty, degraded
// Index.
func Normalize(raw any, role Role) *Index {
	switch role {
	case RoleCase:
		return normalizeCases(raw)
	case RoleEscalation:
		return normalizeEscalations(raw)
	default:
		return normalizeKeyed(raw)
	}
}

func normalizeCases(raw any) *Index {
	switch src := raw.(type) {
	case *Object:
		if src == nil {
			return degradedIndex()
		}
		idx := NewIndex()
		if !keyedByInternalID(src) {
			// Keys are taken to be case numbers already.
			for pair := src.Oldest(); pair != nil; pair = pair.Next() {
				idx.Set(pair.Key, pair.Value)
			}
			return idx
		}
		for pair := src.Oldest(); pair != nil; pair = pair.Next() {
			indexByCaseNumber(idx, pair.Value)
		}
		return idx

	case []any:
		idx := NewIndex()
		for _, item := range src {
			indexByCaseNumber(idx, item)
		}
		return idx
	}
	return degradedIndex()
}

// keyedByInternalID inspects the first value: a record carrying a
// case_number field means the mapping is keyed by something else.
func keyedByInternalID(src *Object) bool {
	first := src.Oldest()
	if first == nil {
		return false
	}
	rec, ok := asObject(first.Value)
	if !ok {
		return false
	}
	_, has := rec.Get(CaseNumberField)
	return has
}

func indexByCaseNumber(idx *Index, item any) {
	rec, ok := asObject(item)
	if !ok {
		return
	}
	cn, _ := rec.Get(CaseNumberField)
	if cn == nil {
		return
	}
	idx.Set(cn, rec)
}

func normalizeEscalations(raw any) *Index {
	list, ok := raw.([]any)
	if !ok {
		return degradedIndex()
	}
	idx := NewIndex()
	for _, item := range list {
		if rec, ok := asObject(item); ok {
			cn, _ := rec.Get(CaseNumberField)
			if cn == nil {
				continue
			}
			idx.Set(stringForm(cn), true)
			continue
		}
		if item == nil {
			continue
		}
		idx.Set(stringForm(item), true)
	}
	return idx
}

func normalizeKeyed(raw any) *Index {
	src, ok := raw.(*Object)
	if !ok || src == nil {
		return degradedIndex()
	}
	idx := NewIndex()
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		idx.Set(pair.Key, pair.Value)
	}
	return idx
}
