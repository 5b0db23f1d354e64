// Package scheduler provides automated dataset reloads and staleness
// monitoring for the interactions API. The datasets on disk are
// refreshed by an external pipeline; the scheduler picks up new
// versions without downtime.
package scheduler

import (
	"fmt"
	"time"

	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/validation"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements the Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// reloadTime is when the daily dataset reload runs.
const reloadTime = "06:00"

// Scheduler handles dataset reloads and health monitoring using dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	parser    interfaces.DatasetParser
	scheduler *gocron.Scheduler
	stopCh    chan struct{}
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.DatasetParser) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		parser:    parser,
		scheduler: gocron.NewScheduler(time.Local),
		stopCh:    make(chan struct{}),
	}
}

// Start performs the initial synchronous load and schedules the daily
// reload. The initial load failing is fatal to the caller: the service
// must not start serving without data.
func (s *Scheduler) Start() error {
	if err := s.reload(); err != nil {
		logging.Error("Failed to perform initial dataset load", "error", err)
		return fmt.Errorf("initial dataset load failed: %w", err)
	}

	_, err := s.scheduler.Every(1).Days().At(reloadTime).Do(func() {
		if err := s.reload(); err != nil {
			logging.Error("Failed to reload datasets", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule dataset reloads", "error", err)
		return fmt.Errorf("failed to schedule dataset reloads: %w", err)
	}

	s.scheduler.StartAsync()
	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler and the health monitor
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.scheduler.Stop()
}

// CalculateNextUpdate returns the next scheduled reload time.
func CalculateNextUpdate() time.Time {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// reload performs a complete dataset reload using the injected parser
func (s *Scheduler) reload() error {
	// Prevent concurrent reloads
	if !s.dataStore.BeginUpdate() {
		logging.Info("Reload already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	start := time.Now()

	index, table, err := s.parser.Load()
	if err != nil {
		return err
	}

	validation.LogDataQuality(validation.ReportDataQuality(index, table))

	// Atomic swap, readers are never blocked
	s.dataStore.UpdateData(index, table)

	logging.Info("Dataset reload completed",
		"duration", time.Since(start).String(),
		"drugs", index.DrugCount(),
		"pairs", table.Count())
	return nil
}

// startHealthMonitoring warns when the data has not been refreshed for
// longer than a full reload cycle.
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				lastUpdate := s.dataStore.GetLastUpdated()
				if time.Since(lastUpdate) > 25*time.Hour {
					logging.Warn("Datasets have not been reloaded in over 25 hours",
						"last_update", lastUpdate.Format(time.RFC3339))
				}
			}
		}
	}()
}
