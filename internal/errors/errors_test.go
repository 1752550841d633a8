package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindNone},
		{name: "wrapped invalid argument", err: fmt.Errorf("%w: team count 0", ErrInvalidArgument), want: KindInvalidArgument},
		{name: "wrapped invalid transition", err: fmt.Errorf("%w: session closed", ErrInvalidTransition), want: KindInvalidTransition},
		{name: "double wrapped not found", err: fmt.Errorf("dispatch: %w", fmt.Errorf("%w: session s1", ErrNotFound)), want: KindNotFound},
		{name: "context error", err: context.DeadlineExceeded, want: KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("KindOf: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKind_HTTPStatus(t *testing.T) {
	if got := KindInvalidTransition.HTTPStatus(); got != http.StatusConflict {
		t.Fatalf("got %d, want %d", got, http.StatusConflict)
	}
	if got := KindInternal.HTTPStatus(); got != http.StatusInternalServerError {
		t.Fatalf("got %d, want %d", got, http.StatusInternalServerError)
	}
}
