// Package hub keeps the registry of live session actors. Lookups go
// through the hub's own loop; commands never do, they go straight to the
// session actor, so distinct sessions run in parallel.
package hub

import (
	"context"
	"errors"
	"fmt"

	"github.com/DoyleJ11/teambot/internal/engine"
	"github.com/DoyleJ11/teambot/internal/session"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrHubStopped = errors.New("hub stopped")

type HubMsg interface{ isHubMsg() }

type GetSession struct {
	ID    string
	Reply chan *session.Session
}

// EnsureSession returns the session, creating an empty one if absent.
type EnsureSession struct {
	ID    string
	Reply chan *session.Session
}

type ListSessions struct {
	Reply chan []*session.Session
}

// RestoreSession installs a session from a validated state unless one
// with the same id already exists. Reply receives true when installed.
type RestoreSession struct {
	State engine.State
	Reply chan bool
}

type ShutdownHub struct{}

func (GetSession) isHubMsg()     {}
func (EnsureSession) isHubMsg()  {}
func (ListSessions) isHubMsg()   {}
func (RestoreSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()    {}

type Hub struct {
	inbox     chan HubMsg
	sessions  map[string]*session.Session
	inboxSize int
	ctx       context.Context
	cancel    context.CancelFunc
	log       *zap.Logger
}

func NewHub(parent context.Context, sessionInbox int, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:     make(chan HubMsg, 64),
		sessions:  make(map[string]*session.Session),
		inboxSize: sessionInbox,
		ctx:       ctx,
		cancel:    cancel,
		log:       log,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetSession:
				msg.Reply <- h.sessions[msg.ID] // May be nil

			case EnsureSession:
				if s := h.sessions[msg.ID]; s != nil {
					msg.Reply <- s
					break
				}
				s := session.New(h.ctx, engine.NewState(msg.ID), h.inboxSize, h.log)
				h.sessions[msg.ID] = s
				h.log.Info("session created", zap.String("session_id", msg.ID))
				msg.Reply <- s

			case ListSessions:
				out := make([]*session.Session, 0, len(h.sessions))
				for _, s := range h.sessions {
					out = append(out, s)
				}
				msg.Reply <- out

			case RestoreSession:
				id := msg.State.SessionID
				if h.sessions[id] != nil {
					msg.Reply <- false
					break
				}
				h.sessions[id] = session.New(h.ctx, msg.State, h.inboxSize, h.log)
				msg.Reply <- true

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, s := range h.sessions {
		select {
		case s.Inbox() <- session.Shutdown{}:
		default:
			// inbox full; cancelling h.ctx below stops it anyway
		}
	}
	clear(h.sessions)
	h.cancel()
}

func ask[T any](ctx context.Context, h *Hub, build func(chan T) HubMsg) (T, error) {
	var zero T
	reply := make(chan T, 1)
	select {
	case h.inbox <- build(reply):
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.ctx.Done():
		return zero, ErrHubStopped
	}

	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.ctx.Done():
		return zero, ErrHubStopped
	}
}

// Get returns nil when no session with id exists.
func (h *Hub) Get(ctx context.Context, id string) (*session.Session, error) {
	return ask(ctx, h, func(r chan *session.Session) HubMsg { return GetSession{ID: id, Reply: r} })
}

func (h *Hub) Ensure(ctx context.Context, id string) (*session.Session, error) {
	return ask(ctx, h, func(r chan *session.Session) HubMsg { return EnsureSession{ID: id, Reply: r} })
}

func (h *Hub) List(ctx context.Context) ([]*session.Session, error) {
	return ask(ctx, h, func(r chan []*session.Session) HubMsg { return ListSessions{Reply: r} })
}

// Export snapshots every live session. Each snapshot is read through the
// session's own inbox, so it is consistent with that session's order.
func (h *Hub) Export(ctx context.Context) ([]engine.Snapshot, error) {
	sessions, err := h.List(ctx)
	if err != nil {
		return nil, err
	}

	snaps := make([]engine.Snapshot, len(sessions))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sessions {
		g.Go(func() error {
			view, err := s.View(gctx)
			if err != nil {
				return fmt.Errorf("export session %s: %w", s.ID(), err)
			}
			snaps[i] = view.State.Snapshot()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snaps, nil
}

// Restore installs sessions from snapshots. Invalid snapshots and ids that
// are already live are skipped; the returned error lists every skip
// caused by a bad snapshot.
func (h *Hub) Restore(ctx context.Context, snaps []engine.Snapshot) (int, error) {
	var errs error
	restored := 0
	for _, snap := range snaps {
		st, err := engine.FromSnapshot(snap)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("restore session %q: %w", snap.SessionID, err))
			continue
		}

		ok, err := ask(ctx, h, func(r chan bool) HubMsg { return RestoreSession{State: st, Reply: r} })
		if err != nil {
			return restored, multierr.Append(errs, err)
		}
		if ok {
			restored++
		}
	}
	return restored, errs
}

func (h *Hub) Shutdown() {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }
