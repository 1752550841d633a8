// Package badgerstore keeps session snapshots in an embedded BadgerDB.
// Each session is one key, "session:<id>", holding the JSON snapshot.
package badgerstore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/DoyleJ11/teambot/internal/engine"
	apperrors "github.com/DoyleJ11/teambot/internal/errors"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const keyPrefix = "session:"

type Store struct {
	db *badger.DB
}

func Open(path string, log *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{log.Named("badger").Sugar()}).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return New(db), nil
}

func New(db *badger.DB) *Store {
	return &Store{db: db}
}

func key(sessionID string) []byte {
	return []byte(keyPrefix + sessionID)
}

// Save writes all snapshots in one transaction.
func (s *Store) Save(_ context.Context, snaps []engine.Snapshot) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, snap := range snaps {
			data, err := json.Marshal(snap)
			if err != nil {
				return fmt.Errorf("encode session %s: %w", snap.SessionID, err)
			}
			if err := txn.Set(key(snap.SessionID), data); err != nil {
				return fmt.Errorf("write session %s: %w", snap.SessionID, err)
			}
		}
		return nil
	})
}

func (s *Store) Load(_ context.Context, sessionID string) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(sessionID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return engine.Snapshot{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
	}
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("read session %s: %w", sessionID, err)
	}
	return snap, nil
}

func (s *Store) LoadAll(_ context.Context) ([]engine.Snapshot, error) {
	var out []engine.Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var snap engine.Snapshot
				if err := json.Unmarshal(val, &snap); err != nil {
					return fmt.Errorf("decode %s: %w", item.Key(), err)
				}
				out = append(out, snap)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's own logging into zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.Warnf(format, args...)
}
