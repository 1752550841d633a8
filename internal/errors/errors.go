// Package errors defines the error kinds the engine reports to callers.
//
// Errors are plain sentinels wrapped with fmt.Errorf("%w: ...") at the
// point of failure; KindOf recovers the kind for the outbound result.
package errors

import (
	stderrors "errors"
	"net/http"
)

type Kind string

const (
	KindNone              Kind = ""
	KindInvalidArgument   Kind = "invalid_argument"
	KindInvalidTransition Kind = "invalid_transition"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal"
)

var (
	ErrInvalidArgument   = stderrors.New("invalid argument")
	ErrInvalidTransition = stderrors.New("invalid transition")
	ErrNotFound          = stderrors.New("not found")
)

// KindOf classifies err. Anything that is not one of the sentinels above
// (context cancellation, a stopped session, storage failures) is internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case stderrors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case stderrors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case stderrors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}

// HTTPStatus maps a kind to the status code the HTTP transport answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNone:
		return http.StatusOK
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindInvalidTransition:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
