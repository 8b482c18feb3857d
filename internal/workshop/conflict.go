package workshop

import "time"

// Slot represents one work order's resource reservation as seen by the
// conflict engine.
type Slot struct {
	WorkOrderID string
	MechanicID  string
	BayID       string
	Start       time.Time
	End         time.Time
	Status      Status
}

// ConflictType describes which resource a conflicting booking shares.
type ConflictType string

const (
	// ConflictTypeMechanic indicates the mechanic is double-booked.
	ConflictTypeMechanic ConflictType = "mechanic"
	// ConflictTypeBay indicates the bay is double-booked.
	ConflictTypeBay ConflictType = "bay"
)

// Conflict details an overlapping booking that callers can present to users.
type Conflict struct {
	WithWorkOrderID string
	Type            ConflictType
	MechanicID      string
	BayID           string
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not count.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DetectConflicts identifies double-bookings for the candidate slot against
// existing ones. Terminal bookings no longer hold their resources and are
// skipped, as is the candidate's own record when rescheduling in place.
func DetectConflicts(existing []Slot, candidate Slot) []Conflict {
	var conflicts []Conflict

	for _, slot := range existing {
		if slot.WorkOrderID == candidate.WorkOrderID && candidate.WorkOrderID != "" {
			continue
		}
		if slot.Status.IsTerminal() {
			continue
		}
		if !Overlaps(slot.Start, slot.End, candidate.Start, candidate.End) {
			continue
		}

		if slot.MechanicID != "" && slot.MechanicID == candidate.MechanicID {
			conflicts = append(conflicts, Conflict{
				WithWorkOrderID: slot.WorkOrderID,
				Type:            ConflictTypeMechanic,
				MechanicID:      slot.MechanicID,
			})
		}
		if slot.BayID != "" && slot.BayID == candidate.BayID {
			conflicts = append(conflicts, Conflict{
				WithWorkOrderID: slot.WorkOrderID,
				Type:            ConflictTypeBay,
				BayID:           slot.BayID,
			})
		}
	}

	return conflicts
}
