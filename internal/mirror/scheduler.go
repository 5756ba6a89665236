package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Scheduler drives reconciliation passes at a fixed cadence. Passes never
// overlap and are never interrupted; cancellation is observed before a pass
// and during the wait between passes.
type Scheduler struct {
	runner   PassRunner
	interval time.Duration
	log      *slog.Logger
	newID    func() string
}

func NewScheduler(runner PassRunner, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		log:      log,
		newID:    uuid.NewString,
	}, nil
}

// Run loops until ctx is done. Cancellation is a normal exit and returns nil.
// A failed pass is already logged by the runner and does not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("mirror scheduler start", "interval", s.interval)
	defer s.log.Info("mirror scheduler stopped")

	// a timer and not a ticker, so a pass slower than the interval
	// does not queue up the next one
	timer := time.NewTimer(s.interval)
	timer.Stop()
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		_, _ = s.runner.Reconcile(s.newID())

		timer.Reset(s.interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce runs a single pass unless ctx is already done.
func (s *Scheduler) RunOnce(ctx context.Context) (*PassResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.runner.Reconcile(s.newID())
}
