package engine

import (
	"fmt"
	"slices"

	apperrors "github.com/DoyleJ11/teambot/internal/errors"
	"github.com/DoyleJ11/teambot/internal/roster"
	"github.com/DoyleJ11/teambot/internal/teams"
)

// Snapshot is the export shape of one session, used to persist and restore
// state across restarts. It shares no memory with the State it came from.
type Snapshot struct {
	SessionID     string               `json:"session_id"`
	State         Phase                `json:"state"`
	Version       int                  `json:"version"`
	RosterVersion int                  `json:"roster_version"`
	Roster        []roster.Participant `json:"roster"`
	Assignment    *Assignment          `json:"team_assignment,omitempty"`
}

func (s State) Snapshot() Snapshot {
	return Snapshot{
		SessionID:     s.SessionID,
		State:         s.Phase,
		Version:       s.Version,
		RosterVersion: s.RosterVersion,
		Roster:        s.Roster.Participants(),
		Assignment:    s.Assignment.clone(),
	}
}

// FromSnapshot rebuilds a State and checks every invariant a committed
// state holds, so a corrupted or hand-edited snapshot is rejected.
func FromSnapshot(snap Snapshot) (State, error) {
	if snap.SessionID == "" {
		return State{}, fmt.Errorf("%w: snapshot without session id", apperrors.ErrInvalidArgument)
	}
	if _, ok := Transitions[snap.State]; !ok {
		return State{}, fmt.Errorf("%w: unknown state %q", apperrors.ErrInvalidArgument, snap.State)
	}
	if snap.RosterVersion < 0 || snap.Version < snap.RosterVersion {
		return State{}, fmt.Errorf("%w: version %d behind roster version %d", apperrors.ErrInvalidArgument, snap.Version, snap.RosterVersion)
	}

	r, err := roster.FromParticipants(snap.Roster)
	if err != nil {
		return State{}, fmt.Errorf("session %s: %w", snap.SessionID, err)
	}

	s := State{
		SessionID:     snap.SessionID,
		Phase:         snap.State,
		Version:       snap.Version,
		RosterVersion: snap.RosterVersion,
		Roster:        r,
		Assignment:    snap.Assignment.clone(),
	}

	current, ok := s.CurrentAssignment()
	switch {
	case s.Phase == PhaseTeamsGenerated && !ok:
		return State{}, fmt.Errorf("%w: session %s has teams_generated state without a current assignment", apperrors.ErrInvalidArgument, s.SessionID)
	case s.Phase == PhaseOpen && ok:
		// Generating leaves the open phase; only a roster change reopens,
		// and that makes the assignment stale.
		return State{}, fmt.Errorf("%w: session %s is open with current teams", apperrors.ErrInvalidArgument, s.SessionID)
	}
	if ok {
		if err := checkAssignment(r.IDs(), current); err != nil {
			return State{}, fmt.Errorf("session %s: %w", s.SessionID, err)
		}
	}
	return s, nil
}

// checkAssignment verifies the team count fits the roster, the teams cover
// ids exactly once each and sizes differ by at most one.
func checkAssignment(ids []string, a *Assignment) error {
	if a.TeamCount < 1 || a.TeamCount > len(ids) {
		return fmt.Errorf("%w: assignment team count %d for %d participants", apperrors.ErrInvalidArgument, a.TeamCount, len(ids))
	}
	if len(a.Teams) != a.TeamCount {
		return fmt.Errorf("%w: assignment has %d teams, want %d", apperrors.ErrInvalidArgument, len(a.Teams), a.TeamCount)
	}

	var members []string
	minSize, maxSize := len(a.Teams[0]), len(a.Teams[0])
	for _, t := range a.Teams {
		minSize, maxSize = min(minSize, len(t)), max(maxSize, len(t))
		members = append(members, t...)
	}
	if maxSize-minSize > 1 {
		return fmt.Errorf("%w: team sizes range %d..%d", apperrors.ErrInvalidArgument, minSize, maxSize)
	}

	want := slices.Clone(ids)
	slices.Sort(want)
	slices.Sort(members)
	if !slices.Equal(want, members) {
		return fmt.Errorf("%w: assignment members do not match roster", apperrors.ErrInvalidArgument)
	}
	return nil
}

func (a *Assignment) clone() *Assignment {
	if a == nil {
		return nil
	}
	out := *a
	out.Seed = copySeed(a.Seed)
	out.Teams = make([]teams.Team, len(a.Teams))
	for i, t := range a.Teams {
		out.Teams[i] = slices.Clone(t)
	}
	return &out
}
