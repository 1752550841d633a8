package main

import (
	"bytes"
	"testing"

	"github.com/DoyleJ11/teambot/internal/engine"
	"github.com/DoyleJ11/teambot/internal/roster"
	"github.com/DoyleJ11/teambot/internal/teams"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() engine.Snapshot {
	seed := int64(7)
	return engine.Snapshot{
		SessionID:     "chan-1",
		State:         engine.PhaseTeamsGenerated,
		Version:       6,
		RosterVersion: 5,
		Roster: []roster.Participant{
			{ID: "ana", JoinOrder: 0}, {ID: "bo", JoinOrder: 1}, {ID: "cy", JoinOrder: 2},
		},
		Assignment: &engine.Assignment{
			Teams:     []teams.Team{{"ana", "cy"}, {"bo"}},
			TeamCount: 2,
			Seed:      &seed,
			Version:   5,
		},
	}
}

func TestRenderList(t *testing.T) {
	stale := sampleSnapshot()
	stale.SessionID = "chan-2"
	stale.State = engine.PhaseOpen
	stale.RosterVersion = 7
	stale.Version = 7

	var buf bytes.Buffer
	renderList(&buf, []engine.Snapshot{sampleSnapshot(), stale})

	out := buf.String()
	require.Contains(t, out, "chan-1")
	require.Contains(t, out, "teams_generated")
	require.Contains(t, out, "chan-2")
	require.Regexp(t, `chan-2\s+open\s+7\s+3\s+-`, out)
}

func TestRenderSession(t *testing.T) {
	var buf bytes.Buffer
	renderSession(&buf, sampleSnapshot())

	out := buf.String()
	require.Contains(t, out, "Roster:  ana, bo, cy")
	require.Contains(t, out, "ana, cy")
	require.Contains(t, out, "Seed: 7")
}

func TestRenderSession_NoTeams(t *testing.T) {
	snap := sampleSnapshot()
	snap.Assignment = nil
	snap.State = engine.PhaseOpen

	var buf bytes.Buffer
	renderSession(&buf, snap)
	require.Contains(t, buf.String(), "No current teams.")
}
