// Package data provides thread-safe storage for the loaded drug
// datasets. The DataContainer holds atomic snapshots of the synonym
// index and interaction table so reloads never block readers.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/interactions-api/drugdata"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds the datasets with atomic pointers for zero-downtime reloads
type DataContainer struct {
	synonymIndex     atomic.Value // *drugdata.SynonymIndex
	interactionTable atomic.Value // *drugdata.InteractionTable
	lastUpdated      atomic.Value // time.Time
	updating         atomic.Bool
	serverStartTime  atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.synonymIndex.Store(drugdata.NewSynonymIndex(nil))
	dc.interactionTable.Store(drugdata.NewInteractionTable(nil))
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Thread-safe getters with type check

// GetSynonymIndex returns the current synonym index snapshot
func (dc *DataContainer) GetSynonymIndex() *drugdata.SynonymIndex {
	if v := dc.synonymIndex.Load(); v != nil {
		if idx, ok := v.(*drugdata.SynonymIndex); ok {
			return idx
		}
	}

	logging.Warn("Synonym index is empty or invalid")
	return drugdata.NewSynonymIndex(nil)
}

// GetInteractionTable returns the current interaction table snapshot
func (dc *DataContainer) GetInteractionTable() *drugdata.InteractionTable {
	if v := dc.interactionTable.Load(); v != nil {
		if table, ok := v.(*drugdata.InteractionTable); ok {
			return table
		}
	}

	logging.Warn("Interaction table is empty or invalid")
	return drugdata.NewInteractionTable(nil)
}

// GetLastUpdated returns the timestamp of the last dataset load
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a dataset reload is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically swaps in freshly loaded datasets
func (dc *DataContainer) UpdateData(index *drugdata.SynonymIndex, table *drugdata.InteractionTable) {
	dc.synonymIndex.Store(index)
	dc.interactionTable.Store(table)
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a dataset reload.
// Returns true if the reload can proceed, false if another is in progress.
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a dataset reload
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
