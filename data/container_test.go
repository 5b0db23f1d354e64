package data

import (
	"sync"
	"testing"
	"time"

	"github.com/giygas/interactions-api/drugdata"
)

func TestNewDataContainerEmpty(t *testing.T) {
	dc := NewDataContainer()

	if dc.GetSynonymIndex().DrugCount() != 0 {
		t.Error("Fresh container should hold an empty index")
	}
	if dc.GetInteractionTable().Count() != 0 {
		t.Error("Fresh container should hold an empty table")
	}
	if !dc.GetLastUpdated().IsZero() {
		t.Error("Fresh container should have a zero last-updated time")
	}
	if dc.IsUpdating() {
		t.Error("Fresh container should not be updating")
	}
}

func TestUpdateDataSwapsSnapshot(t *testing.T) {
	dc := NewDataContainer()

	index := drugdata.NewSynonymIndex(map[string][]string{"DB1": {"Aspirin"}})
	table := drugdata.NewInteractionTable([]drugdata.InteractionRecord{
		{Drug1ID: "DB1", Drug2ID: "DB2", Description: "x"},
	})

	before := time.Now()
	dc.UpdateData(index, table)

	if dc.GetSynonymIndex().DrugCount() != 1 {
		t.Error("Index snapshot not swapped in")
	}
	if dc.GetInteractionTable().Count() != 1 {
		t.Error("Table snapshot not swapped in")
	}
	if dc.GetLastUpdated().Before(before) {
		t.Error("LastUpdated should be refreshed by the swap")
	}
}

func TestBeginEndUpdate(t *testing.T) {
	dc := NewDataContainer()

	if !dc.BeginUpdate() {
		t.Fatal("First BeginUpdate should succeed")
	}
	if dc.BeginUpdate() {
		t.Error("Concurrent BeginUpdate should be rejected")
	}
	if !dc.IsUpdating() {
		t.Error("IsUpdating should report the in-progress reload")
	}

	dc.EndUpdate()
	if dc.IsUpdating() {
		t.Error("EndUpdate should clear the flag")
	}
	if !dc.BeginUpdate() {
		t.Error("BeginUpdate should succeed again after EndUpdate")
	}
}

func TestServerStartTime(t *testing.T) {
	dc := NewDataContainer()

	start := time.Now()
	dc.SetServerStartTime(start)
	if !dc.GetServerStartTime().Equal(start) {
		t.Error("Server start time not stored")
	}
}

func TestConcurrentReadsDuringSwap(t *testing.T) {
	dc := NewDataContainer()
	index := drugdata.NewSynonymIndex(map[string][]string{"DB1": {"Aspirin"}})
	table := drugdata.NewInteractionTable(nil)
	dc.UpdateData(index, table)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					// Readers must always see a usable snapshot
					if dc.GetSynonymIndex() == nil || dc.GetInteractionTable() == nil {
						t.Error("Reader observed a nil snapshot")
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		dc.UpdateData(drugdata.NewSynonymIndex(map[string][]string{"DB1": {"Aspirin"}}),
			drugdata.NewInteractionTable(nil))
	}
	close(stop)
	wg.Wait()
}
