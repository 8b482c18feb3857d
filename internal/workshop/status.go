package workshop

import "fmt"

// Status identifies a work order's position in its lifecycle.
type Status string

const (
	// StatusScheduled marks a booked work order that has not started yet.
	StatusScheduled Status = "scheduled"
	// StatusInProgress marks a work order currently being serviced.
	StatusInProgress Status = "in_progress"
	// StatusCompleted marks a work order finished by the shop.
	StatusCompleted Status = "completed"
	// StatusOverdue marks a work order whose scheduled end passed without completion.
	StatusOverdue Status = "overdue"
	// StatusCancelled marks a work order withdrawn by an operator.
	StatusCancelled Status = "cancelled"
)

// transitions is the single source of truth for legal status changes.
// Terminal states carry no entry and therefore permit nothing.
var transitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled, StatusOverdue},
	StatusInProgress: {StatusCompleted, StatusCancelled, StatusOverdue},
}

// ParseStatus converts the stored string form back into a Status.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusOverdue, StatusCancelled:
		return Status(value), nil
	}
	return "", fmt.Errorf("workshop: unknown status %q", value)
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// CanTransition reports whether the status machine allows moving from one
// status to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
