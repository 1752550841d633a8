package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoyleJ11/teambot/internal/dispatch"
	apperrors "github.com/DoyleJ11/teambot/internal/errors"
	"github.com/DoyleJ11/teambot/pkg/types"
	"github.com/go-chi/chi/v5"
)

// maxBody caps a command record; real ones are a few hundred bytes.
const maxBody = 16 << 10

// PostCommand accepts a full command record.
func PostCommand(d *dispatch.Dispatcher, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec types.CommandRecord
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&rec); err != nil {
			writeResult(w, types.ResultRecord{
				Error:   string(apperrors.KindInvalidArgument),
				Message: "bad json: " + err.Error(),
			})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		writeResult(w, d.HandleRecord(ctx, rec))
	}
}

// PostSessionCommand is PostCommand with the session id taken from the path.
func PostSessionCommand(d *dispatch.Dispatcher, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec types.CommandRecord
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&rec); err != nil {
			writeResult(w, types.ResultRecord{
				Error:   string(apperrors.KindInvalidArgument),
				Message: "bad json: " + err.Error(),
			})
			return
		}
		rec.SessionID = chi.URLParam(r, "sessionID")

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		writeResult(w, d.HandleRecord(ctx, rec))
	}
}

func GetSession(d *dispatch.Dispatcher, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		writeResult(w, d.HandleRecord(ctx, types.CommandRecord{
			SessionID: chi.URLParam(r, "sessionID"),
			Command:   types.CommandQuery,
		}))
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeResult(w http.ResponseWriter, res types.ResultRecord) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.Kind(res.Error).HTTPStatus())
	_ = json.NewEncoder(w).Encode(res)
}
