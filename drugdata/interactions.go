package drugdata

import "strings"

// Placeholder is the positional marker used by the interaction dataset
// descriptions. Each occurrence is substituted with a drug display name
// in query order, left to right.
const Placeholder = "(.*)"

// pairKey identifies an unordered identifier pair. Identifiers are
// stored in lexicographic order so lookups are symmetric.
type pairKey struct {
	low  string
	high string
}

func newPairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{low: a, high: b}
}

// InteractionTable holds known interacting identifier pairs with their
// description templates. Immutable after construction.
type InteractionTable struct {
	pairs     map[pairKey]string
	ids       map[string]struct{}
	rows      int
	selfPairs int
}

// NewInteractionTable builds a table from raw dataset rows. The first
// row wins when the same unordered pair appears more than once.
func NewInteractionTable(records []InteractionRecord) *InteractionTable {
	t := &InteractionTable{
		pairs: make(map[pairKey]string, len(records)),
		ids:   make(map[string]struct{}),
		rows:  len(records),
	}
	for _, r := range records {
		if r.Drug1ID == r.Drug2ID {
			t.selfPairs++
		}
		t.ids[r.Drug1ID] = struct{}{}
		t.ids[r.Drug2ID] = struct{}{}
		key := newPairKey(r.Drug1ID, r.Drug2ID)
		if _, exists := t.pairs[key]; !exists {
			t.pairs[key] = r.Description
		}
	}
	return t
}

// InteractionRecord is a single parsed dataset row.
type InteractionRecord struct {
	Drug1ID     string
	Drug2ID     string
	Description string
}

// Lookup returns the interaction description for an identifier pair.
// The lookup is symmetric: Lookup(a, b) == Lookup(b, a).
func (t *InteractionTable) Lookup(a, b string) (string, bool) {
	desc, ok := t.pairs[newPairKey(a, b)]
	return desc, ok
}

// Count returns the number of distinct interacting pairs.
func (t *InteractionTable) Count() int {
	return len(t.pairs)
}

// RowCount returns the number of rows in the source dataset, including
// duplicates that were dropped during indexing.
func (t *InteractionTable) RowCount() int {
	return t.rows
}

// SelfPairCount returns the number of source rows pairing an identifier
// with itself.
func (t *InteractionTable) SelfPairCount() int {
	return t.selfPairs
}

// IDs returns the distinct identifiers referenced by the table.
func (t *InteractionTable) IDs() []string {
	ids := make([]string, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	return ids
}

// RenderDescription substitutes the placeholders in a description with
// the display names of the two drugs in query order. At most one
// substitution happens per occurrence.
func RenderDescription(desc, firstName, secondName string) string {
	desc = strings.Replace(desc, Placeholder, firstName, 1)
	desc = strings.Replace(desc, Placeholder, secondName, 1)
	return desc
}
