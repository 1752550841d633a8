package engine

import (
	"fmt"

	apperrors "github.com/DoyleJ11/teambot/internal/errors"
	"github.com/DoyleJ11/teambot/internal/roster"
	"github.com/DoyleJ11/teambot/internal/teams"
)

var (
	ErrSessionClosed      = fmt.Errorf("%w: session is closed", apperrors.ErrInvalidTransition)
	ErrEmptyRoster        = fmt.Errorf("%w: roster is empty", apperrors.ErrInvalidTransition)
	ErrAlreadyClosed      = fmt.Errorf("%w: session already closed", apperrors.ErrInvalidTransition)
	ErrMissingParticipant = fmt.Errorf("%w: participant id is required", apperrors.ErrInvalidArgument)
	ErrUnsupportedCommand = fmt.Errorf("%w: unsupported command", apperrors.ErrInvalidArgument)
)

type Phase string

const (
	PhaseOpen           Phase = "open"
	PhaseTeamsGenerated Phase = "teams_generated"
	PhaseClosed         Phase = "closed"
)

type CommandType string

const (
	CmdJoin     CommandType = "Join"
	CmdLeave    CommandType = "Leave"
	CmdGenerate CommandType = "Generate"
	CmdClose    CommandType = "Close"
	CmdReset    CommandType = "Reset"
	CmdQuery    CommandType = "Query"
)

/*
	CmdJoin     -> EvtParticipantJoined (+ EvtAssignmentInvalidated when teams existed)
	CmdLeave    -> EvtParticipantLeft   (+ EvtAssignmentInvalidated when teams existed)
	CmdGenerate -> EvtTeamsGenerated
	CmdClose    -> EvtSessionClosed
	CmdReset    -> EvtSessionReset
	CmdQuery    -> nothing, never mutates

	A no-op join/leave produces no events and leaves the version alone.
*/

type Command struct {
	Type          CommandType
	ParticipantID string
	TeamCount     int
	Seed          *int64 // nil: generate in join order
}

type EventType string

const (
	EvtParticipantJoined     EventType = "ParticipantJoined"
	EvtParticipantLeft       EventType = "ParticipantLeft"
	EvtTeamsGenerated        EventType = "TeamsGenerated"
	EvtAssignmentInvalidated EventType = "AssignmentInvalidated"
	EvtSessionClosed         EventType = "SessionClosed"
	EvtSessionReset          EventType = "SessionReset"
)

type Event struct {
	Type          EventType
	ParticipantID string
	Version       int
}

// Assignment is one generated split. Version is the roster version it was
// computed from.
type Assignment struct {
	Teams     []teams.Team `json:"teams"`
	TeamCount int          `json:"team_count"`
	Seed      *int64       `json:"seed,omitempty"`
	Version   int          `json:"version"`
}

// State is one session as the engine sees it. Apply treats it as a value.
type State struct {
	SessionID string
	Phase     Phase
	// Version counts every committed mutation. RosterVersion is the
	// Version at which the roster last changed.
	Version       int
	RosterVersion int
	Roster        roster.Roster
	Assignment    *Assignment
}

// Apply validates cmd against s and returns the resulting state. s itself
// is never modified; on error the returned state is s.
func Apply(s State, cmd Command) ([]Event, State, error) {
	if err := checkTransition(s.Phase, cmd.Type); err != nil {
		return nil, s, err
	}

	newState := s

	switch cmd.Type {
	case CmdJoin, CmdLeave:
		if cmd.ParticipantID == "" {
			return nil, s, ErrMissingParticipant
		}

		var changed bool
		evt := EvtParticipantJoined
		if cmd.Type == CmdJoin {
			newState.Roster, changed = s.Roster.Join(cmd.ParticipantID)
		} else {
			newState.Roster, changed = s.Roster.Leave(cmd.ParticipantID)
			evt = EvtParticipantLeft
		}
		if !changed {
			return nil, s, nil
		}

		newState.Version++
		newState.RosterVersion = newState.Version
		events := []Event{{Type: evt, ParticipantID: cmd.ParticipantID, Version: newState.Version}}

		// Any roster change reopens a generated session.
		if s.Phase == PhaseTeamsGenerated {
			newState.Phase = PhaseOpen
			events = append(events, Event{Type: EvtAssignmentInvalidated, Version: newState.Version})
		}
		return events, newState, nil

	case CmdGenerate:
		if s.Roster.Len() == 0 {
			return nil, s, ErrEmptyRoster
		}

		split, err := teams.Generate(s.Roster.IDs(), cmd.TeamCount, cmd.Seed)
		if err != nil {
			return nil, s, err
		}

		newState.Version++
		newState.Phase = PhaseTeamsGenerated
		newState.Assignment = &Assignment{
			Teams:     split,
			TeamCount: cmd.TeamCount,
			Seed:      copySeed(cmd.Seed),
			Version:   s.RosterVersion,
		}
		return []Event{{Type: EvtTeamsGenerated, Version: newState.Version}}, newState, nil

	case CmdClose:
		newState.Version++
		newState.Phase = PhaseClosed
		return []Event{{Type: EvtSessionClosed, Version: newState.Version}}, newState, nil

	case CmdReset:
		newState.Version++
		newState.RosterVersion = newState.Version
		newState.Phase = PhaseOpen
		newState.Roster = s.Roster.Reset()
		newState.Assignment = nil
		return []Event{{Type: EvtSessionReset, Version: newState.Version}}, newState, nil

	case CmdQuery:
		return nil, s, nil

	default:
		return nil, s, fmt.Errorf("%w: %q", ErrUnsupportedCommand, cmd.Type)
	}
}

// CurrentAssignment returns the assignment only while it still matches
// the roster.
func (s State) CurrentAssignment() (*Assignment, bool) {
	if s.Assignment == nil || s.Assignment.Version != s.RosterVersion {
		return nil, false
	}
	return s.Assignment, true
}

func copySeed(seed *int64) *int64 {
	if seed == nil {
		return nil
	}
	v := *seed
	return &v
}
