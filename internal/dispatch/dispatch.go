// Package dispatch is the entry point the chat transport calls. It finds
// (or creates) the session actor for a command and hands the command to
// it; the actor's inbox gives the per-session ordering.
package dispatch

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/DoyleJ11/teambot/internal/engine"
	apperrors "github.com/DoyleJ11/teambot/internal/errors"
	"github.com/DoyleJ11/teambot/internal/random"
	"github.com/DoyleJ11/teambot/internal/session"
	"github.com/DoyleJ11/teambot/internal/teams"
	"github.com/DoyleJ11/teambot/pkg/types"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Sessions is the part of the hub the dispatcher needs.
type Sessions interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	Ensure(ctx context.Context, id string) (*session.Session, error)
}

type Dispatcher struct {
	sessions Sessions
	log      *zap.Logger
	validate *validator.Validate
	newSeed  func() (int64, error)
}

func New(sessions Sessions, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		log:      log,
		validate: validator.New(),
		newSeed:  random.NewSeed,
	}
}

type Result struct {
	SessionID string
	State     engine.State
	Events    []engine.Event
}

var commandTypes = map[string]engine.CommandType{
	types.CommandJoin:     engine.CmdJoin,
	types.CommandLeave:    engine.CmdLeave,
	types.CommandGenerate: engine.CmdGenerate,
	types.CommandClose:    engine.CmdClose,
	types.CommandReset:    engine.CmdReset,
	types.CommandQuery:    engine.CmdQuery,
}

// Join, Leave and Reset create a session on first reference; everything
// else needs one to exist already.
func createsSession(cmd engine.CommandType) bool {
	return cmd == engine.CmdJoin || cmd == engine.CmdLeave || cmd == engine.CmdReset
}

// Handle applies cmd to the session. On error the returned Result carries
// the session's unchanged state when the session exists.
func (d *Dispatcher) Handle(ctx context.Context, sessionID string, cmd engine.Command) (Result, error) {
	if sessionID == "" {
		return Result{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidArgument)
	}
	// Reject what the engine would reject before a session gets created
	// for it.
	if !lo.Contains(lo.Values(commandTypes), cmd.Type) {
		return Result{}, fmt.Errorf("%w: %q", engine.ErrUnsupportedCommand, cmd.Type)
	}
	if (cmd.Type == engine.CmdJoin || cmd.Type == engine.CmdLeave) && cmd.ParticipantID == "" {
		return Result{}, engine.ErrMissingParticipant
	}

	var (
		s   *session.Session
		err error
	)
	if createsSession(cmd.Type) {
		s, err = d.sessions.Ensure(ctx, sessionID)
	} else {
		s, err = d.sessions.Get(ctx, sessionID)
	}
	if err != nil {
		return Result{}, fmt.Errorf("lookup session %s: %w", sessionID, err)
	}
	if s == nil {
		return Result{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
	}

	reply, err := s.Do(ctx, cmd)
	if err != nil {
		d.log.Warn("command not delivered",
			zap.String("session_id", sessionID),
			zap.String("command", string(cmd.Type)),
			zap.Error(err))
		return Result{}, fmt.Errorf("session %s: %w", sessionID, err)
	}

	res := Result{SessionID: sessionID, State: reply.State, Events: reply.Events}
	return res, reply.Err
}

// HandleRecord is Handle for a transport record. It never fails; problems
// are reported inside the ResultRecord.
func (d *Dispatcher) HandleRecord(ctx context.Context, rec types.CommandRecord) types.ResultRecord {
	rec.Command = strings.ToLower(strings.TrimSpace(rec.Command))
	if err := d.validate.Struct(rec); err != nil {
		return errorRecord(rec.SessionID, Result{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
	}

	cmd := engine.Command{
		Type:          commandTypes[rec.Command],
		ParticipantID: rec.ParticipantID,
		TeamCount:     rec.TeamCount,
		Seed:          rec.Seed,
	}
	if cmd.Type == engine.CmdGenerate && rec.Shuffle && cmd.Seed == nil {
		seed, err := d.newSeed()
		if err != nil {
			return errorRecord(rec.SessionID, Result{}, err)
		}
		cmd.Seed = &seed
	}

	res, err := d.Handle(ctx, rec.SessionID, cmd)
	if err != nil {
		return errorRecord(rec.SessionID, res, err)
	}
	return ToRecord(res)
}

func ToRecord(res Result) types.ResultRecord {
	st := res.State
	out := types.ResultRecord{
		OK:        true,
		SessionID: res.SessionID,
		Version:   st.Version,
		State:     string(st.Phase),
		Roster:    st.Roster.IDs(),
	}
	if a, ok := st.CurrentAssignment(); ok {
		out.Teams = lo.Map(a.Teams, func(t teams.Team, _ int) []string { return slices.Clone([]string(t)) })
		if a.Seed != nil {
			seed := *a.Seed
			out.Seed = &seed
		}
	}
	return out
}

func errorRecord(sessionID string, res Result, err error) types.ResultRecord {
	out := types.ResultRecord{
		SessionID: sessionID,
		Error:     string(apperrors.KindOf(err)),
		Message:   err.Error(),
	}
	if res.SessionID != "" {
		out.Version = res.State.Version
		out.State = string(res.State.Phase)
	}
	return out
}
