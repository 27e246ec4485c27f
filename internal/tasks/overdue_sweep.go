package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshelf/internal/catalog"
)

// OverdueSweeper runs the overdue sweep.
type OverdueSweeper interface {
	CheckAndUpdateOverdueBooks() (catalog.SweepResult, error)
}

// OverdueSweepTask marks every past-due, unfinished book as OVERDUE.
type OverdueSweepTask struct {
	RequestedBy string `json:"requested_by,omitempty"`
}

// Config returns the queue configuration for overdue sweeps.
func (t OverdueSweepTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "overdue_sweep",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// OverdueSweepProcessor creates a processor function for OverdueSweepTask.
func OverdueSweepProcessor(sweeper OverdueSweeper) backlite.QueueProcessor[OverdueSweepTask] {
	return func(ctx context.Context, task OverdueSweepTask) error {
		if sweeper == nil {
			return fmt.Errorf("overdue sweeper not configured")
		}

		result, err := sweeper.CheckAndUpdateOverdueBooks()
		if err != nil {
			return fmt.Errorf("overdue sweep: %w", err)
		}

		log.Info("overdue sweep task finished",
			"requested_by", task.RequestedBy,
			"scanned", result.Scanned,
			"updated", result.Updated,
			"failed", result.Failed)
		return nil
	}
}

// NewOverdueSweepQueue creates a backlite queue for overdue sweeps.
func NewOverdueSweepQueue(sweeper OverdueSweeper) backlite.Queue {
	return backlite.NewQueue(OverdueSweepProcessor(sweeper))
}
