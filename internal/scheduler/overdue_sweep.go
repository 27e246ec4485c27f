// Package scheduler runs the periodic overdue sweep on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookshelf/internal/catalog"
)

// Sweeper is the catalog operation the scheduler drives.
type Sweeper interface {
	CheckAndUpdateOverdueBooks() (catalog.SweepResult, error)
}

// SweepStatus describes the most recent sweep.
type SweepStatus struct {
	LastRun    *time.Time           `json:"last_run,omitempty"`
	LastResult *catalog.SweepResult `json:"last_result,omitempty"`
	LastError  string               `json:"last_error,omitempty"`
	NextRun    *time.Time           `json:"next_run,omitempty"`
}

// OverdueSweepScheduler marks past-due books as OVERDUE on a schedule
type OverdueSweepScheduler struct {
	sweeper  Sweeper
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc

	statusMu sync.RWMutex
	status   SweepStatus
	sweeping sync.Mutex
}

// NewOverdueSweepScheduler creates a new scheduler instance
func NewOverdueSweepScheduler(sweeper Sweeper, schedule string) *OverdueSweepScheduler {
	return &OverdueSweepScheduler{
		sweeper:  sweeper,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start registers the sweep job and starts the cron loop. Cancelling ctx stops it.
func (s *OverdueSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule overdue sweep: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.schedule, time.Now())
	log.Info("overdue sweep scheduler started",
		"schedule", s.schedule,
		"description", DescribeSchedule(s.schedule),
		"next_run", next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running sweep to finish and stops the scheduler
func (s *OverdueSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Info("overdue sweep scheduler stopped")
}

// RunNow sweeps synchronously, outside the schedule.
func (s *OverdueSweepScheduler) RunNow() (catalog.SweepResult, error) {
	return s.runSweep()
}

// IsRunning returns whether the scheduler is active
func (s *OverdueSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur
func (s *OverdueSweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID && !entry.Next.IsZero() {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// Status returns the outcome of the last sweep and the next planned run.
func (s *OverdueSweepScheduler) Status() SweepStatus {
	s.statusMu.RLock()
	status := s.status
	s.statusMu.RUnlock()

	status.NextRun = s.GetNextRunTime()
	return status
}

// runSweep serialises sweeps so a slow run never overlaps the next tick.
func (s *OverdueSweepScheduler) runSweep() (catalog.SweepResult, error) {
	s.sweeping.Lock()
	defer s.sweeping.Unlock()

	started := time.Now()
	result, err := s.sweeper.CheckAndUpdateOverdueBooks()

	s.statusMu.Lock()
	s.status.LastRun = &started
	if err != nil {
		s.status.LastError = err.Error()
		s.status.LastResult = nil
	} else {
		s.status.LastError = ""
		s.status.LastResult = &result
	}
	s.statusMu.Unlock()

	if err != nil {
		log.Error("overdue sweep failed", "err", err)
		return result, err
	}

	log.Info("overdue sweep finished",
		"scanned", result.Scanned,
		"updated", result.Updated,
		"failed", result.Failed,
		"duration", time.Since(started).Round(time.Millisecond))
	return result, nil
}
