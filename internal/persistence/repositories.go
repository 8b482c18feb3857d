package persistence

import (
	"context"
	"time"
)

// WorkOrderFilter narrows work order queries.
type WorkOrderFilter struct {
	MechanicID   string
	BayID        string
	Statuses     []string
	StartsBefore *time.Time
	EndsAfter    *time.Time
}

// WorkOrderRepository stores work order records.
//
// CreateWorkOrder and UpdateWorkOrder must execute their write together with
// an overlap re-check against non-terminal bookings of the same mechanic or
// bay, under whatever isolation the store provides, and return ErrConflict
// when the re-check fails.
type WorkOrderRepository interface {
	CreateWorkOrder(ctx context.Context, order WorkOrder) (WorkOrder, error)
	UpdateWorkOrder(ctx context.Context, order WorkOrder) (WorkOrder, error)
	GetWorkOrder(ctx context.Context, id string) (WorkOrder, error)
	ListWorkOrders(ctx context.Context, filter WorkOrderFilter) ([]WorkOrder, error)
	// ListOverdueWorkOrders returns non-terminal work orders whose scheduled
	// end is strictly before the reference time.
	ListOverdueWorkOrders(ctx context.Context, reference time.Time) ([]WorkOrder, error)
}
