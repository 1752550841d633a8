package store

import (
	"context"
	"fmt"
	"time"

	"github.com/DoyleJ11/teambot/internal/engine"
	"go.uber.org/zap"
)

// Syncer copies live session snapshots into a SnapshotStore on an
// interval, and back into the Source at boot.
type Syncer struct {
	src      Source
	store    SnapshotStore
	interval time.Duration
	log      *zap.Logger

	saved map[string]int // session id -> last persisted version
}

func NewSyncer(src Source, st SnapshotStore, interval time.Duration, log *zap.Logger) *Syncer {
	return &Syncer{
		src:      src,
		store:    st,
		interval: interval,
		log:      log,
		saved:    make(map[string]int),
	}
}

// Restore loads every stored snapshot into the source. Snapshots the
// source rejects are logged and skipped; only a failed read is an error.
func (s *Syncer) Restore(ctx context.Context) error {
	snaps, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load snapshots: %w", err)
	}

	n, err := s.src.Restore(ctx, snaps)
	if err != nil {
		s.log.Warn("some sessions were not restored", zap.Error(err))
	}
	for _, snap := range snaps {
		s.saved[snap.SessionID] = snap.Version
	}
	s.log.Info("sessions restored", zap.Int("restored", n), zap.Int("stored", len(snaps)))
	return nil
}

// Flush saves the sessions whose version moved since the last flush.
// Not safe for concurrent use; Run is the only caller once started.
func (s *Syncer) Flush(ctx context.Context) error {
	snaps, err := s.src.Export(ctx)
	if err != nil {
		return fmt.Errorf("export sessions: %w", err)
	}

	var dirty []engine.Snapshot
	for _, snap := range snaps {
		if v, ok := s.saved[snap.SessionID]; ok && v == snap.Version {
			continue
		}
		dirty = append(dirty, snap)
	}
	if len(dirty) == 0 {
		return nil
	}

	if err := s.store.Save(ctx, dirty); err != nil {
		return fmt.Errorf("save snapshots: %w", err)
	}
	for _, snap := range dirty {
		s.saved[snap.SessionID] = snap.Version
	}
	s.log.Debug("snapshots flushed", zap.Int("sessions", len(dirty)))
	return nil
}

// Run flushes every interval until ctx is done, then flushes once more
// with a short detached deadline so the last commands are not lost.
func (s *Syncer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := s.Flush(final); err != nil {
				return fmt.Errorf("final flush: %w", err)
			}
			return nil

		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.log.Error("snapshot flush failed", zap.Error(err))
			}
		}
	}
}
