package pgstore

import (
	"context"
	"os"
	"testing"

	"github.com/DoyleJ11/teambot/internal/engine"
	apperrors "github.com/DoyleJ11/teambot/internal/errors"
	"github.com/DoyleJ11/teambot/internal/roster"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Runs against a real database only when TEAMBOT_TEST_DATABASE_URL is set.
func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEAMBOT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEAMBOT_TEST_DATABASE_URL not set")
	}
	s, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveLoad_KeepsNewestVersion(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := openStore(t)

	id := "test-" + uuid.NewString()
	t.Cleanup(func() { s.db.Delete(&sessionRecord{SessionID: id}) })

	newer := engine.Snapshot{SessionID: id, State: engine.PhaseOpen, Version: 5, RosterVersion: 5,
		Roster: []roster.Participant{{ID: "A", JoinOrder: 0}}}
	older := engine.Snapshot{SessionID: id, State: engine.PhaseOpen, Version: 2, RosterVersion: 2}

	req.NoError(s.Save(ctx, []engine.Snapshot{newer}))
	req.NoError(s.Save(ctx, []engine.Snapshot{older}))

	got, err := s.Load(ctx, id)
	req.NoError(err)
	req.Equal(newer, got)
}

func TestStore_LoadUnknown(t *testing.T) {
	s := openStore(t)
	_, err := s.Load(context.Background(), "missing-"+uuid.NewString())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
