package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openmined/syftmirror/internal/config"
	"golang.org/x/sync/errgroup"
)

// Mirror wires a validated config into a locked, scheduled reconciler.
type Mirror struct {
	config    *config.Config
	lock      *ReplicaLock
	scheduler *Scheduler
	log       *slog.Logger
}

func New(cfg *config.Config, log *slog.Logger) (*Mirror, error) {
	if log == nil {
		log = slog.Default()
	}

	comparator, err := NewDigestComparator(cfg.Hash)
	if err != nil {
		return nil, err
	}

	reconciler := NewReconciler(cfg.SourceDir, cfg.ReplicaDir,
		WithComparator(comparator),
		WithLogger(log),
	)

	scheduler, err := NewScheduler(reconciler, cfg.Interval(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Mirror{
		config:    cfg,
		lock:      NewReplicaLock(cfg.LockDir, cfg.ReplicaDir),
		scheduler: scheduler,
		log:       log,
	}, nil
}

// Start holds the replica lock for the lifetime of the call. In once mode it
// runs a single pass and returns its error, otherwise it mirrors until ctx is done.
func (m *Mirror) Start(ctx context.Context) error {
	if err := m.lock.Lock(); err != nil {
		return err
	}
	defer func() {
		if err := m.lock.Unlock(); err != nil {
			m.log.Warn("failed to release replica lock", "path", m.lock.Path(), "error", err)
		}
	}()

	m.log.Info("mirror start",
		"source", m.config.SourceDir,
		"replica", m.config.ReplicaDir,
		"interval", m.config.Interval(),
		"hash", m.config.Hash,
	)

	if m.config.Once {
		_, err := m.scheduler.RunOnce(ctx)
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return m.scheduler.Run(egCtx)
	})

	eg.Go(func() error {
		<-egCtx.Done()
		if ctx.Err() != nil {
			m.log.Info("received interrupt signal, stopping mirror")
		}
		return nil
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
