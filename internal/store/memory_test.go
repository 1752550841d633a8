package store

import (
	"context"
	"testing"

	"github.com/DoyleJ11/teambot/internal/config"
	"github.com/DoyleJ11/teambot/internal/engine"
	apperrors "github.com/DoyleJ11/teambot/internal/errors"
	"github.com/DoyleJ11/teambot/internal/roster"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemory_SaveLoad(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := NewMemory()

	s := engine.Snapshot{SessionID: "b", State: engine.PhaseOpen, Version: 1, RosterVersion: 1,
		Roster: []roster.Participant{{ID: "A"}}}
	req.NoError(m.Save(ctx, []engine.Snapshot{s, snap("a", 0)}))

	// Later edits by the caller do not reach the store.
	s.Roster[0].ID = "Z"

	got, err := m.Load(ctx, "b")
	req.NoError(err)
	req.Equal("A", got.Roster[0].ID)

	all, err := m.LoadAll(ctx)
	req.NoError(err)
	req.Len(all, 2)
	req.Equal("a", all[0].SessionID)

	_, err = m.Load(ctx, "zzz")
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func TestOpen(t *testing.T) {
	req := require.New(t)

	st, err := Open(config.Config{Store: config.StoreMemory}, zap.NewNop())
	req.NoError(err)
	req.IsType(&Memory{}, st)

	st, err = Open(config.Config{Store: config.StoreBadger, BadgerPath: t.TempDir()}, zap.NewNop())
	req.NoError(err)
	req.NoError(st.Close())

	_, err = Open(config.Config{Store: "redis"}, zap.NewNop())
	req.Error(err)
}
