//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
package store

import (
	"context"
	"fmt"

	"github.com/DoyleJ11/teambot/internal/config"
	"github.com/DoyleJ11/teambot/internal/engine"
	"github.com/DoyleJ11/teambot/internal/store/badgerstore"
	"github.com/DoyleJ11/teambot/internal/store/pgstore"
	"go.uber.org/zap"
)

// SnapshotStore persists session snapshots. Save upserts by session id;
// Load returns apperrors.ErrNotFound for an unknown id.
type SnapshotStore interface {
	Save(ctx context.Context, snaps []engine.Snapshot) error
	Load(ctx context.Context, sessionID string) (engine.Snapshot, error)
	LoadAll(ctx context.Context) ([]engine.Snapshot, error)
	Close() error
}

// Source is where live sessions come from; hub.Hub implements it.
type Source interface {
	Export(ctx context.Context) ([]engine.Snapshot, error)
	Restore(ctx context.Context, snaps []engine.Snapshot) (int, error)
}

// Open builds the store selected by cfg.Store.
func Open(cfg config.Config, log *zap.Logger) (SnapshotStore, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return NewMemory(), nil
	case config.StoreBadger:
		return badgerstore.Open(cfg.BadgerPath, log)
	case config.StorePostgres:
		return pgstore.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
