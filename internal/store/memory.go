package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/DoyleJ11/teambot/internal/engine"
	apperrors "github.com/DoyleJ11/teambot/internal/errors"
)

// Memory keeps encoded snapshots in a map. Nothing survives a restart; it
// is the default for local runs and tests.
type Memory struct {
	mu    sync.RWMutex
	snaps map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{snaps: make(map[string][]byte)}
}

func (m *Memory) Save(_ context.Context, snaps []engine.Snapshot) error {
	encoded := make(map[string][]byte, len(snaps))
	for _, s := range snaps {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", s.SessionID, err)
		}
		encoded[s.SessionID] = data
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, data := range encoded {
		m.snaps[id] = data
	}
	return nil
}

func (m *Memory) Load(_ context.Context, sessionID string) (engine.Snapshot, error) {
	m.mu.RLock()
	data, ok := m.snaps[sessionID]
	m.mu.RUnlock()
	if !ok {
		return engine.Snapshot{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
	}

	var s engine.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return engine.Snapshot{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return s, nil
}

func (m *Memory) LoadAll(ctx context.Context) ([]engine.Snapshot, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.snaps))
	for id := range m.snaps {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)

	out := make([]engine.Snapshot, 0, len(ids))
	for _, id := range ids {
		s, err := m.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
