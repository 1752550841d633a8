package httpapi

import (
	"net/http"
	"time"

	"github.com/DoyleJ11/teambot/internal/dispatch"
	"github.com/DoyleJ11/teambot/internal/hub"
	"github.com/DoyleJ11/teambot/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func SetupRoutes(h *hub.Hub, d *dispatch.Dispatcher, conns *ws.Conns, timeout time.Duration, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", Healthz)
	r.Post("/commands", PostCommand(d, timeout))
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", GetSession(d, timeout))
		r.Post("/commands", PostSessionCommand(d, timeout))
	})
	r.Get("/ws", ws.Handler(h, d, conns, timeout, log))
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
