// Package scheduler drives the recurring refresh cycle. One cron entry
// fires the daily task; whether that task runs a full rebuild or a cheap
// incremental top-up is decided by checkpoint age, so restarts never
// trigger redundant rebuilds.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"LiquidLeaders/internal/refresh"
)

// Scheduler owns the cron loop and the refresh policy around it.
type Scheduler struct {
	Cron       *cron.Cron
	Engine     *refresh.Engine
	Checkpoint refresh.Checkpoint
	FailedPath string
	MaxAge     time.Duration // full rebuild at most this often
	Ctx        context.Context

	// Tickers supplies the catalog at task time, so catalog-file edits are
	// picked up without a restart.
	Tickers func() ([]string, error)
}

// New creates a scheduler. maxAge bounds how often a full rebuild runs;
// between rebuilds the daily task tops up incrementally.
func New(ctx context.Context, engine *refresh.Engine, cp refresh.Checkpoint, failedPath string, maxAge time.Duration, tickers func() ([]string, error)) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Engine:     engine,
		Checkpoint: cp,
		FailedPath: failedPath,
		MaxAge:     maxAge,
		Ctx:        ctx,
		Tickers:    tickers,
	}
}

// Register wires the daily refresh task onto the given cron spec.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily refresh: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the daily task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	tickers, err := s.Tickers()
	if err != nil {
		log.Printf("[ERROR] daily refresh: load catalog: %v", err)
		return
	}

	if s.Checkpoint.Stale(s.MaxAge) {
		log.Println("[INFO] running full rebuild (checkpoint stale)")
		sum, err := s.Engine.FullRebuild(s.Ctx, tickers)
		if err != nil {
			log.Printf("[ERROR] full rebuild: %v", err)
			return
		}
		// Checkpoint and failure log are only rewritten by the full path:
		// they describe complete-rebuild outcomes, not daily top-ups.
		if err := s.Checkpoint.Write(time.Now()); err != nil {
			log.Printf("[ERROR] write checkpoint: %v", err)
		}
		if s.FailedPath != "" {
			if err := refresh.WriteFailed(s.FailedPath, sum.FailedTickers); err != nil {
				log.Printf("[ERROR] write failure log: %v", err)
			}
		}
		return
	}

	log.Println("[INFO] running incremental refresh")
	if _, err := s.Engine.Incremental(s.Ctx, tickers); err != nil {
		log.Printf("[ERROR] incremental refresh: %v", err)
	}
}
