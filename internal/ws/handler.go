// Package ws streams session snapshots to websocket subscribers and accepts
// command records over the same connection.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoyleJ11/teambot/internal/dispatch"
	"github.com/DoyleJ11/teambot/internal/hub"
	"github.com/DoyleJ11/teambot/internal/session"
	"github.com/DoyleJ11/teambot/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const writeTimeout = 3 * time.Second

func Handler(h *hub.Hub, d *dispatch.Dispatcher, conns *Conns, timeout time.Duration, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("session")
		if id == "" {
			http.Error(w, "missing session", http.StatusBadRequest)
			return
		}

		s, err := h.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if s == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		if !conns.add() {
			http.Error(w, "server shutting down", http.StatusServiceUnavailable)
			return
		}
		defer conns.done()

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Snapshot, 8)
		clientID := uuid.NewString()
		clog := log.With(zap.String("session_id", id), zap.String("client_id", clientID))

		if !deliver(r.Context(), s, session.Subscribe{ClientID: clientID, Outbox: out}) {
			return
		}
		defer deliver(context.Background(), s, session.Unsubscribe{ClientID: clientID})
		clog.Debug("subscriber connected")

		// Writer goroutine. out is closed by the session on unsubscribe,
		// shutdown or when this client falls behind.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				write(writeCtx, conn, types.ServerMessage{
					Type:    types.MsgStateSnapshot,
					Version: snap.Version,
					State:   &snap.State,
				})
			}
			conn.Close(websocket.StatusGoingAway, "subscription ended")
		}()
		go func() {
			select {
			case <-conns.Closing():
				conn.Close(websocket.StatusGoingAway, "server shutting down")
			case <-writeCtx.Done():
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					clog.Debug("websocket read ended", zap.Error(err))
				}
				return
			}

			var rec types.CommandRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				write(r.Context(), conn, types.ServerMessage{Type: types.MsgError, Error: "bad json"})
				continue
			}
			// A connection only ever drives its own session.
			rec.SessionID = id

			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			res := d.HandleRecord(ctx, rec)
			cancel()
			write(r.Context(), conn, types.ServerMessage{Type: types.MsgResult, Version: res.Version, Result: &res})
		}
	}
}

// deliver hands m to the session unless it or ctx is done first.
func deliver(ctx context.Context, s *session.Session, m session.Msg) bool {
	select {
	case s.Inbox() <- m:
		return true
	case <-s.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(ctx, websocket.MessageText, payload)
}
