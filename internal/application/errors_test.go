package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/mechanicshop/internal/persistence"
	"github.com/example/mechanicshop/internal/workshop"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not found", err: ErrNotFound, want: "not_found"},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", ErrNotFound), want: "not_found"},
		{name: "store unavailable", err: ErrStoreUnavailable, want: "store_unavailable"},
		{name: "slot", err: &SlotError{FieldErrors: map[string]string{"time": "start must be before end"}}, want: "invalid_slot"},
		{name: "conflict", err: &ConflictError{}, want: "resource_conflict"},
		{name: "transition", err: &TransitionError{From: workshop.StatusCompleted, To: workshop.StatusInProgress}, want: "invalid_transition"},
		{name: "unexpected", err: errors.New("boom"), want: "unexpected"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ErrorKind(tc.err); got != tc.want {
				t.Errorf("ErrorKind = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMapRepoError(t *testing.T) {
	if got := mapRepoError(nil); got != nil {
		t.Errorf("mapRepoError(nil) = %v", got)
	}
	if got := mapRepoError(persistence.ErrNotFound); !errors.Is(got, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", got)
	}
	if got := mapRepoError(persistence.ErrUnavailable); !errors.Is(got, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", got)
	}
	var conflictErr *ConflictError
	if got := mapRepoError(persistence.ErrConflict); !errors.As(got, &conflictErr) {
		t.Errorf("expected ConflictError, got %v", got)
	}
	passthrough := errors.New("boom")
	if got := mapRepoError(passthrough); !errors.Is(got, passthrough) {
		t.Errorf("expected passthrough, got %v", got)
	}
}

func TestTransitionErrorMessages(t *testing.T) {
	terminal := &TransitionError{From: workshop.StatusCancelled}
	if terminal.Error() != "work order in terminal state cancelled cannot be modified" {
		t.Errorf("terminal message = %q", terminal.Error())
	}
	illegal := &TransitionError{From: workshop.StatusScheduled, To: workshop.StatusCompleted}
	if illegal.Error() != "illegal transition from scheduled to completed" {
		t.Errorf("illegal message = %q", illegal.Error())
	}
}
