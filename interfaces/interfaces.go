// Package interfaces defines core abstractions for the interactions API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"time"

	"github.com/giygas/interactions-api/drugdata"
)

// DataStore defines the contract for dataset storage operations.
// It provides lock-free access to the synonym index and interaction
// table with atomic snapshot swaps for zero-downtime reloads.
type DataStore interface {
	GetSynonymIndex() *drugdata.SynonymIndex
	GetInteractionTable() *drugdata.InteractionTable
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	UpdateData(index *drugdata.SynonymIndex, table *drugdata.InteractionTable)
	BeginUpdate() bool
	EndUpdate()
}

// DatasetParser defines the contract for loading the drug datasets from
// their on-disk representation.
type DatasetParser interface {
	// Load parses both datasets and returns the built lookup structures.
	Load() (*drugdata.SynonymIndex, *drugdata.InteractionTable, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated dataset reloads and staleness checks.
type Scheduler interface {
	Start() error
	Stop()
}
