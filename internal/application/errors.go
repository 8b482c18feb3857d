package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/mechanicshop/internal/persistence"
	"github.com/example/mechanicshop/internal/workshop"
)

var (
	// ErrNotFound is returned when the referenced work order does not exist.
	ErrNotFound = errors.New("application: work order not found")
	// ErrStoreUnavailable is returned when the persistence layer failed
	// transiently. Callers may retry the whole operation.
	ErrStoreUnavailable = errors.New("application: store unavailable")
)

// SlotError reports a proposed interval that violates the business-hours
// policy or is otherwise malformed. It is never retried automatically.
type SlotError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (e *SlotError) Error() string {
	if e == nil || len(e.FieldErrors) == 0 {
		return "invalid slot"
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	return "invalid slot: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (e *SlotError) HasErrors() bool {
	return e != nil && len(e.FieldErrors) > 0
}

// add records a field level slot error.
func (e *SlotError) add(field, message string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string]string)
	}
	e.FieldErrors[field] = message
}

// ConflictError reports that the requested interval overlaps existing
// non-terminal bookings for the same mechanic or bay. It carries the
// colliding orders so callers can offer alternatives.
type ConflictError struct {
	Conflicts []workshop.Conflict
	Orders    []WorkOrder
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil || len(e.Conflicts) == 0 {
		return "resource conflict"
	}
	return fmt.Sprintf("resource conflict with %d existing booking(s)", len(e.Conflicts))
}

// TransitionError reports a status change rejected by the work order state
// machine. A zero To means the order's terminal state forbids any mutation.
type TransitionError struct {
	From workshop.Status
	To   workshop.Status
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	if e == nil {
		return "invalid transition"
	}
	if e.From == "" {
		return fmt.Sprintf("unknown target status %q", string(e.To))
	}
	if e.To == "" {
		return fmt.Sprintf("work order in terminal state %s cannot be modified", e.From)
	}
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// mapRepoError translates persistence sentinels into the application error
// taxonomy. Store-level booking conflicts surface without detail; they only
// occur when a concurrent writer slipped past the service-level check.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConflict):
		return &ConflictError{}
	case errors.Is(err, persistence.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
