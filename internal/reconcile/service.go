// Package reconcile retries day summaries whose synchronization failed.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/journal"
	"github.com/ahsanfayaz52/hopperhelps/internal/logging"
	rcron "github.com/robfig/cron/v3"
)

type Syncer interface {
	Synchronize(ctx context.Context, userID, dateKey string) (*journal.SyncResult, error)
}

// Result counts one reconciliation pass.
type Result struct {
	Attempted int
	Repaired  int
	Failed    int
}

// Service drains the stale set on a cron schedule.
type Service struct {
	stale    *journal.StaleSet
	syncer   Syncer
	schedule string
	log      logging.Logger

	mu     sync.Mutex
	cron   *rcron.Cron
	cancel context.CancelFunc
	stopCh chan struct{}
}

func NewService(stale *journal.StaleSet, syncer Syncer, schedule string, log logging.Logger) *Service {
	return &Service{
		stale:    stale,
		syncer:   syncer,
		schedule: schedule,
		log:      log.With("component", "reconcile"),
	}
}

// Start schedules reconciliation and returns. It stops on its own when ctx is
// cancelled.
func (s *Service) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c := rcron.New(rcron.WithChain(rcron.SkipIfStillRunning(rcron.DiscardLogger)))
	if _, err := c.AddFunc(s.schedule, func() { s.RunOnce(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("reconcile schedule %q: %w", s.schedule, err)
	}

	stopCh := make(chan struct{})
	s.mu.Lock()
	s.cron = c
	s.cancel = cancel
	s.stopCh = stopCh
	s.mu.Unlock()

	c.Start()
	s.log.Info(ctx, "reconciler started", "schedule", s.schedule)

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-stopCh:
		}
	}()
	return nil
}

// Stop halts the schedule and waits briefly for a running pass. It is safe to
// call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	c, cancel, stopCh := s.cron, s.cancel, s.stopCh
	s.cron, s.cancel, s.stopCh = nil, nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	close(stopCh)
	stopCtx := c.Stop()
	cancel()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn(context.Background(), "reconciler stop timed out waiting for a running pass")
	}
	s.log.Info(context.Background(), "reconciler stopped")
}

// RunOnce synchronizes every stale day. Days that still fail go back into the
// set for the next pass.
func (s *Service) RunOnce(ctx context.Context) Result {
	var res Result
	for _, day := range s.stale.Drain() {
		if ctx.Err() != nil {
			s.stale.Mark(day.UserID, day.DateKey)
			res.Failed++
			continue
		}
		res.Attempted++
		if _, err := s.syncer.Synchronize(ctx, day.UserID, day.DateKey); err != nil {
			s.stale.Mark(day.UserID, day.DateKey)
			res.Failed++
			s.log.Warn(ctx, "day summary still stale", "user", day.UserID, "date", day.DateKey, "err", err)
			continue
		}
		res.Repaired++
	}
	if res.Attempted > 0 {
		s.log.Info(ctx, "reconcile pass", "repaired", res.Repaired, "failed", res.Failed)
	}
	return res
}
