package drugdata

import (
	"sort"
	"strings"
)

// MaxSearchResults caps the number of partial matches returned by Search.
const MaxSearchResults = 10

// SearchMatch is a single partial-match result from the synonym index.
type SearchMatch struct {
	DrugID      string `json:"drug_id"`
	PrimaryName string `json:"primary_name"`
	MatchedName string `json:"matched_name"`
}

// SynonymIndex maps drug names and synonyms to canonical DrugBank
// identifiers. It is immutable after construction and safe for
// concurrent readers.
type SynonymIndex struct {
	nameToID map[string]string
	idToName map[string]string
}

// NewSynonymIndex builds an index from the id -> synonym list mapping.
// The first synonym of each identifier becomes its primary display name.
// Every synonym maps to exactly one identifier; on collisions the first
// entry wins.
func NewSynonymIndex(synonyms map[string][]string) *SynonymIndex {
	idx := &SynonymIndex{
		nameToID: make(map[string]string),
		idToName: make(map[string]string, len(synonyms)),
	}

	for id, names := range synonyms {
		if len(names) == 0 {
			continue
		}
		idx.idToName[id] = names[0]
		for _, name := range names {
			key := NormalizeName(name)
			if key == "" {
				continue
			}
			if _, exists := idx.nameToID[key]; !exists {
				idx.nameToID[key] = id
			}
		}
	}

	return idx
}

// Resolve maps a drug name to its canonical identifier. The match is
// case-insensitive and exact; no fuzzy matching is attempted.
func (idx *SynonymIndex) Resolve(name string) (string, bool) {
	id, ok := idx.nameToID[NormalizeName(name)]
	return id, ok
}

// PrimaryName returns the display name for an identifier, falling back
// to the identifier itself when unknown.
func (idx *SynonymIndex) PrimaryName(id string) string {
	if name, ok := idx.idToName[id]; ok {
		return name
	}
	return id
}

// Search returns up to MaxSearchResults synonyms containing fragment as
// a case-insensitive substring. Results are sorted by matched synonym
// then identifier so the order is deterministic across runs.
func (idx *SynonymIndex) Search(fragment string) []SearchMatch {
	fragment = NormalizeName(fragment)
	if fragment == "" {
		return nil
	}

	var matches []SearchMatch
	for name, id := range idx.nameToID {
		if strings.Contains(name, fragment) {
			matches = append(matches, SearchMatch{
				DrugID:      id,
				PrimaryName: idx.PrimaryName(id),
				MatchedName: name,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].MatchedName != matches[j].MatchedName {
			return matches[i].MatchedName < matches[j].MatchedName
		}
		return matches[i].DrugID < matches[j].DrugID
	})

	if len(matches) > MaxSearchResults {
		matches = matches[:MaxSearchResults]
	}
	return matches
}

// DrugCount returns the number of distinct canonical identifiers.
func (idx *SynonymIndex) DrugCount() int {
	return len(idx.idToName)
}

// SynonymCount returns the number of indexed names.
func (idx *SynonymIndex) SynonymCount() int {
	return len(idx.nameToID)
}
