// Package session runs one actor goroutine per chat session. The actor owns
// the session's engine.State; every command for the session goes through
// its inbox, so commands apply one at a time in arrival order.
package session

import (
	"context"
	"errors"

	"github.com/DoyleJ11/teambot/internal/engine"
	"go.uber.org/zap"
)

var ErrStopped = errors.New("session stopped")

type Msg interface{ isSessionMsg() }

// Apply runs Cmd through the engine. Reply must have room for one value.
type Apply struct {
	Cmd   engine.Command
	Reply chan Reply
}

func (Apply) isSessionMsg() {}

type Reply struct {
	Events []engine.Event
	State  engine.State
	Err    error
}

type Subscribe struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Subscribe) isSessionMsg() {}

type Unsubscribe struct{ ClientID string }

func (Unsubscribe) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

// Snapshot is what subscribers receive after each committed mutation.
type Snapshot struct {
	Version int
	Events  []engine.Event
	State   engine.Snapshot
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type Session struct {
	id      string
	inbox   chan Msg
	state   engine.State
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
}

func New(parent context.Context, initial engine.State, inboxSize int, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		id:      initial.SessionID,
		inbox:   make(chan Msg, inboxSize),
		state:   initial,
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With(zap.String("session_id", initial.SessionID)),
	}

	go s.loop()
	return s
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Apply:
				events, next, err := engine.Apply(s.state, msg.Cmd)
				if err != nil {
					s.log.Debug("command rejected",
						zap.String("command", string(msg.Cmd.Type)),
						zap.Int("version", s.state.Version),
						zap.Error(err))
					msg.Reply <- Reply{State: s.state, Err: err}
					break
				}

				s.state = next
				msg.Reply <- Reply{Events: events, State: s.state}
				if len(events) == 0 {
					break
				}

				s.log.Info("command applied",
					zap.String("command", string(msg.Cmd.Type)),
					zap.String("phase", string(s.state.Phase)),
					zap.Int("version", s.state.Version),
					zap.Int("participants", s.state.Roster.Len()))
				s.broadcast(Snapshot{Version: s.state.Version, Events: events, State: s.state.Snapshot()})

			case Subscribe:
				// Register client + send current snapshot immediately
				s.clients[msg.ClientID] = msg.Outbox
				s.send(msg.ClientID, msg.Outbox, Snapshot{Version: s.state.Version, State: s.state.Snapshot()})

			case Unsubscribe:
				if ch, ok := s.clients[msg.ClientID]; ok {
					close(ch)
					delete(s.clients, msg.ClientID)
				}

			case GetState:
				msg.Reply <- View{
					Version:    s.state.Version,
					NumClients: len(s.clients),
					State:      s.state,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch) // Tell client no more snapshots
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) broadcast(snap Snapshot) {
	for id, ch := range s.clients {
		s.send(id, ch, snap)
	}
}

func (s *Session) send(id string, ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
	default:
		// Client is slow/full - drop them.
		s.log.Warn("dropping slow subscriber", zap.String("client_id", id))
		close(ch)
		delete(s.clients, id)
	}
}

func (s *Session) ID() string { return s.id }

// Inbox is exposed so tests and the hub can talk to the actor directly.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the actor has stopped.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Do applies cmd and waits for the result. A command whose ctx is already
// done is never enqueued. Once enqueued it is applied in full even if ctx
// expires while waiting; the caller then just doesn't see the reply.
func (s *Session) Do(ctx context.Context, cmd engine.Command) (Reply, error) {
	reply := make(chan Reply, 1)
	if err := s.enqueue(ctx, Apply{Cmd: cmd, Reply: reply}); err != nil {
		return Reply{}, err
	}

	select {
	case r := <-reply:
		return r, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	case <-s.ctx.Done():
		return Reply{}, ErrStopped
	}
}

// View reads the actor's state through its inbox.
func (s *Session) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := s.enqueue(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}

	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-s.ctx.Done():
		return View{}, ErrStopped
	}
}

func (s *Session) enqueue(ctx context.Context, m Msg) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrStopped
	}
}
