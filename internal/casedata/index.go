package casedata

// Index maps case numbers to source payloads. Keys keep the type they had
// in the source (string or number); lookups go through Resolve, which
// tolerates the two disagreeing. An Index is not safe for concurrent use.
type Index struct {
	entries  map[any]any
	order    []any
	canon    *canonView
	degraded bool
}

// canonView holds the leading-zero-insensitive lookups. all covers every
// all-digit key; numeric only keys that were numbers in the source.
type canonView struct {
	all     map[string]any
	numeric map[string]any
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{entries: make(map[any]any)}
}

func degradedIndex() *Index {
	idx := NewIndex()
	idx.degraded = true
	return idx
}

// Set stores value under key. Re-setting a key replaces its value but keeps
// its original position.
func (idx *Index) Set(key, value any) {
	k := rawKey(key)
	if _, ok := idx.entries[k]; !ok {
		idx.order = append(idx.order, k)
	}
	idx.entries[k] = value
	idx.canon = nil
}

// Len returns the number of keys.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Degraded reports whether the source had a shape the normalizer could not
// use. A degraded index is always empty.
func (idx *Index) Degraded() bool {
	return idx != nil && idx.degraded
}

// Resolve finds the payload for a case number of unknown representation.
// Order: string form, raw form, then all-digit form with leading zeros
// removed. The last step needs a number on at least one side, so "0123"
// never finds "123". A nil case number never matches.
func (idx *Index) Resolve(caseNumber any) (any, bool) {
	if idx == nil || caseNumber == nil || len(idx.entries) == 0 {
		return nil, false
	}

	s := stringForm(caseNumber)
	if v, ok := idx.entries[s]; ok {
		return v, true
	}
	if v, ok := idx.entries[rawKey(caseNumber)]; ok {
		return v, true
	}

	c := canonicalDigits(s)
	if c == "" {
		return nil, false
	}
	view := idx.canonical()
	table := view.numeric
	if isNumeric(caseNumber) {
		table = view.all
	}
	v, ok := table[c]
	return v, ok
}

// Has reports whether the case number resolves to anything.
func (idx *Index) Has(caseNumber any) bool {
	_, ok := idx.Resolve(caseNumber)
	return ok
}

// canonical builds the leading-zero-insensitive views lazily. The earliest
// inserted key wins when two keys collapse to the same digits.
func (idx *Index) canonical() *canonView {
	if idx.canon != nil {
		return idx.canon
	}
	view := &canonView{all: make(map[string]any), numeric: make(map[string]any)}
	for _, k := range idx.order {
		c := canonicalDigits(stringForm(k))
		if c == "" {
			continue
		}
		if _, seen := view.all[c]; !seen {
			view.all[c] = idx.entries[k]
		}
		if _, seen := view.numeric[c]; !seen && isNumeric(k) {
			view.numeric[c] = idx.entries[k]
		}
	}
	idx.canon = view
	return view
}

// SameCase reports whether two case numbers identify the same case under
// the rules Resolve uses.
func SameCase(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	sa, sb := stringForm(a), stringForm(b)
	if sa == sb || rawKey(a) == rawKey(b) {
		return true
	}
	if !isNumeric(a) && !isNumeric(b) {
		return false
	}
	ca := canonicalDigits(sa)
	return ca != "" && ca == canonicalDigits(sb)
}
