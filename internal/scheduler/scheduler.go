// Package scheduler runs housekeeping tasks on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/verigen/internal/model"
)

// Task is one unit of periodic work. A failing task is logged and retried on
// the next tick.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler owns the loop: ticks on an interval and runs each task sequentially.
type Scheduler struct {
	tasks    []Task
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs tasks at the given interval.
func NewScheduler(tasks []Task, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		interval: interval,
		logger:   logger,
	}
}

// Run runs one immediate cycle, then ticks on the configured interval. It
// returns nil when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %v", s.interval)
	}

	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"tasks", len(s.tasks),
	)

	s.runAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Scheduler) runAll(ctx context.Context) {
	for _, t := range s.tasks {
		if ctx.Err() != nil {
			return
		}
		if err := t.Run(ctx); err != nil {
			s.logger.Error("task failed", "task", t.Name, "error", err)
		}
	}
}

// PruneTask deletes stored results older than retention.
func PruneTask(results model.ResultStore, retention time.Duration, logger *slog.Logger) Task {
	return Task{
		Name: "prune-results",
		Run: func(ctx context.Context) error {
			n, err := results.PruneResults(ctx, retention)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("pruned old results", "count", n, "retention", retention.String())
			}
			return nil
		},
	}
}
