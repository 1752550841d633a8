package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DoyleJ11/teambot/internal/engine"
	"github.com/DoyleJ11/teambot/internal/store/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func snap(id string, version int) engine.Snapshot {
	return engine.Snapshot{SessionID: id, State: engine.PhaseOpen, Version: version, RosterVersion: version}
}

func TestSyncer_Flush_OnlySavesChangedSessions(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	st := mocks.NewMockSnapshotStore(ctrl)
	s := NewSyncer(src, st, time.Minute, zap.NewNop())
	ctx := context.Background()
	req := require.New(t)

	gomock.InOrder(
		src.EXPECT().Export(gomock.Any()).Return([]engine.Snapshot{snap("a", 1), snap("b", 2)}, nil),
		st.EXPECT().Save(gomock.Any(), []engine.Snapshot{snap("a", 1), snap("b", 2)}).Return(nil),

		src.EXPECT().Export(gomock.Any()).Return([]engine.Snapshot{snap("a", 1), snap("b", 3)}, nil),
		st.EXPECT().Save(gomock.Any(), []engine.Snapshot{snap("b", 3)}).Return(nil),

		// Nothing moved: the store is not touched.
		src.EXPECT().Export(gomock.Any()).Return([]engine.Snapshot{snap("a", 1), snap("b", 3)}, nil),
	)

	req.NoError(s.Flush(ctx))
	req.NoError(s.Flush(ctx))
	req.NoError(s.Flush(ctx))
}

func TestSyncer_Flush_RetriesAfterSaveFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	st := mocks.NewMockSnapshotStore(ctrl)
	s := NewSyncer(src, st, time.Minute, zap.NewNop())
	ctx := context.Background()
	req := require.New(t)

	src.EXPECT().Export(gomock.Any()).Return([]engine.Snapshot{snap("a", 1)}, nil).Times(2)
	gomock.InOrder(
		st.EXPECT().Save(gomock.Any(), gomock.Len(1)).Return(errors.New("disk full")),
		st.EXPECT().Save(gomock.Any(), gomock.Len(1)).Return(nil),
	)

	req.Error(s.Flush(ctx))
	req.NoError(s.Flush(ctx))
}

func TestSyncer_Restore(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	st := mocks.NewMockSnapshotStore(ctrl)
	s := NewSyncer(src, st, time.Minute, zap.NewNop())
	ctx := context.Background()
	req := require.New(t)

	stored := []engine.Snapshot{snap("a", 4)}
	st.EXPECT().LoadAll(gomock.Any()).Return(stored, nil)
	src.EXPECT().Restore(gomock.Any(), stored).Return(1, nil)
	req.NoError(s.Restore(ctx))

	// A restored session that has not changed is not written back.
	src.EXPECT().Export(gomock.Any()).Return(stored, nil)
	req.NoError(s.Flush(ctx))
}

func TestSyncer_Restore_LoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockSnapshotStore(ctrl)
	s := NewSyncer(mocks.NewMockSource(ctrl), st, time.Minute, zap.NewNop())

	st.EXPECT().LoadAll(gomock.Any()).Return(nil, errors.New("boom"))
	require.Error(t, s.Restore(context.Background()))
}

func TestSyncer_Run_FlushesOnShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockSource(ctrl)
	st := NewMemory()
	s := NewSyncer(src, st, time.Hour, zap.NewNop())
	req := require.New(t)

	src.EXPECT().Export(gomock.Any()).Return([]engine.Snapshot{snap("a", 2)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req.NoError(s.Run(ctx))

	got, err := st.Load(context.Background(), "a")
	req.NoError(err)
	req.Equal(2, got.Version)
}
