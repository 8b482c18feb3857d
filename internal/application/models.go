package application

import (
	"time"

	"github.com/example/mechanicshop/internal/workshop"
)

// WorkOrder represents a service booking exposed by the application services.
type WorkOrder struct {
	ID         string
	MechanicID string
	BayID      string
	Start      time.Time
	End        time.Time
	Status     workshop.Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SlotInput captures caller provided booking fields.
type SlotInput struct {
	MechanicID string
	BayID      string
	Start      time.Time
	End        time.Time
}

// BookWorkOrderParams wraps the data required to book a new work order.
type BookWorkOrderParams struct {
	Input SlotInput
}

// RescheduleWorkOrderParams wraps the data required to move an existing work
// order to a new time slot. The mechanic and bay stay as booked.
type RescheduleWorkOrderParams struct {
	WorkOrderID string
	Start       time.Time
	End         time.Time
}

// TransitionWorkOrderParams wraps the data required to advance a work order
// through its lifecycle.
type TransitionWorkOrderParams struct {
	WorkOrderID string
	Target      workshop.Status
}

// ListWorkOrdersParams wraps the filters accepted when listing work orders.
type ListWorkOrdersParams struct {
	MechanicID   string
	BayID        string
	Statuses     []workshop.Status
	StartsBefore *time.Time
	EndsAfter    *time.Time
}
