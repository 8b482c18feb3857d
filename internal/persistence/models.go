package persistence

import "time"

// WorkOrder represents a stored service booking occupying a mechanic and a
// bay for a time interval.
type WorkOrder struct {
	ID         string
	MechanicID string
	BayID      string
	Start      time.Time
	End        time.Time
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
