package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record with the same identity already exists.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrConflict is returned when a write would double-book a mechanic or a
	// bay. It is the store's last line of defense behind the service-level
	// conflict check.
	ErrConflict = errors.New("persistence: booking conflict")
	// ErrUnavailable is returned when the underlying store cannot be reached.
	ErrUnavailable = errors.New("persistence: store unavailable")
)
