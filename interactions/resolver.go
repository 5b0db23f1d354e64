// Package interactions implements the drug-pair interaction resolution
// engine: it maps free-text drug names to canonical identifiers,
// enumerates every unordered pair and reports the known interactions.
package interactions

import (
	"errors"
	"fmt"
	"sort"

	"github.com/giygas/interactions-api/drugdata"
	"github.com/giygas/interactions-api/interfaces"
)

// ErrTooFewDrugs is returned when fewer than two drug names are given.
// No resolution is attempted in that case.
var ErrTooFewDrugs = errors.New("at least two drugs are required")

// ErrNotEnoughResolved is returned when fewer than two of the given
// names could be mapped to known drugs. Distinct from a safe result.
var ErrNotEnoughResolved = errors.New("could not identify at least two of the provided drugs")

// Finding is a single detected interaction. Pair holds the two display
// names sorted lexicographically, independent of query order.
type Finding struct {
	Pair        []string `json:"pair"`
	Description string   `json:"description"`
}

// Result is the outcome of one interaction check. Built fresh per
// request and never cached.
type Result struct {
	IsSafe       bool      `json:"is_safe"`
	Message      string    `json:"message"`
	CheckedDrugs []string  `json:"checked_drugs"`
	Unresolved   []string  `json:"unresolved_drugs,omitempty"`
	Interactions []Finding `json:"interactions"`
}

// Resolver runs interaction checks against the current dataset snapshot.
type Resolver struct {
	store interfaces.DataStore
}

// NewResolver creates a resolver backed by the given data store.
func NewResolver(store interfaces.DataStore) *Resolver {
	return &Resolver{store: store}
}

// Check resolves the given drug names and reports every interaction
// among the C(n,2) unordered pairs of the resolved identifiers.
func (r *Resolver) Check(names []string) (*Result, error) {
	if len(names) < 2 {
		return nil, ErrTooFewDrugs
	}

	index := r.store.GetSynonymIndex()
	table := r.store.GetInteractionTable()

	// Resolve every name, de-duplicating identifiers while preserving
	// first-seen order so a name given twice is paired only once.
	var resolved []string
	var unresolved []string
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		id, ok := index.Resolve(name)
		if !ok {
			unresolved = append(unresolved, name)
			continue
		}
		if !seen[id] {
			seen[id] = true
			resolved = append(resolved, id)
		}
	}

	if len(resolved) < 2 {
		return nil, ErrNotEnoughResolved
	}

	findings := make([]Finding, 0)
	for i := 0; i < len(resolved); i++ {
		for j := i + 1; j < len(resolved); j++ {
			desc, ok := table.Lookup(resolved[i], resolved[j])
			if !ok {
				continue
			}

			firstName := index.PrimaryName(resolved[i])
			secondName := index.PrimaryName(resolved[j])

			pair := []string{firstName, secondName}
			sort.Strings(pair)

			findings = append(findings, Finding{
				Pair:        pair,
				Description: drugdata.RenderDescription(desc, firstName, secondName),
			})
		}
	}

	checked := make([]string, len(resolved))
	for i, id := range resolved {
		checked[i] = index.PrimaryName(id)
	}

	result := &Result{
		IsSafe:       len(findings) == 0,
		CheckedDrugs: checked,
		Unresolved:   unresolved,
		Interactions: findings,
	}
	if result.IsSafe {
		result.Message = "No interactions found. This combination appears to be safe."
	} else {
		result.Message = fmt.Sprintf("Found %d potential interaction(s).", len(findings))
	}

	return result, nil
}
