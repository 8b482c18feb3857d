package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/mechanicshop/internal/workshop"
)

// WorkOrderRepository captures the persistence interactions needed by the
// booking and sweep services.
type WorkOrderRepository interface {
	CreateWorkOrder(ctx context.Context, order WorkOrder) (WorkOrder, error)
	UpdateWorkOrder(ctx context.Context, order WorkOrder) (WorkOrder, error)
	GetWorkOrder(ctx context.Context, id string) (WorkOrder, error)
	ListWorkOrders(ctx context.Context, filter WorkOrderRepositoryFilter) ([]WorkOrder, error)
	ListOverdueWorkOrders(ctx context.Context, reference time.Time) ([]WorkOrder, error)
}

// WorkOrderRepositoryFilter narrows queries issued to the work order repository.
type WorkOrderRepositoryFilter struct {
	MechanicID   string
	BayID        string
	Statuses     []workshop.Status
	StartsBefore *time.Time
	EndsAfter    *time.Time
}

// BookingService orchestrates validation, conflict detection and persistence
// for work order bookings.
type BookingService struct {
	orders      WorkOrderRepository
	hours       workshop.BusinessHours
	locks       *resourceLocker
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(orders WorkOrderRepository, hours workshop.BusinessHours, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(orders, hours, idGenerator, now, nil)
}

// NewBookingServiceWithLogger wires dependencies for booking operations with
// an explicit logger.
func NewBookingServiceWithLogger(orders WorkOrderRepository, hours workshop.BusinessHours, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		orders:      orders,
		hours:       hours,
		locks:       newResourceLocker(),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// BookWorkOrder validates the requested slot, checks for double-bookings and
// persists a new work order in the scheduled state. The advisory locks for
// the mechanic and the bay are held across the conflict-check-then-write
// sequence so concurrent requests for the same resources serialize here.
func (s *BookingService) BookWorkOrder(ctx context.Context, params BookWorkOrderParams) (WorkOrder, error) {
	if s == nil || s.orders == nil {
		return WorkOrder{}, fmt.Errorf("booking service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "book",
		"mechanic_id", params.Input.MechanicID, "bay_id", params.Input.BayID)

	input := params.Input
	if err := s.validateSlot(input.MechanicID, input.BayID, input.Start, input.End); err != nil {
		logger.InfoContext(ctx, "booking rejected", "kind", ErrorKind(err))
		return WorkOrder{}, err
	}

	unlock := s.locks.lock(resourceKeyMechanic(input.MechanicID), resourceKeyBay(input.BayID))
	defer unlock()

	if err := s.ensureSlotFree(ctx, workshop.Slot{
		MechanicID: input.MechanicID,
		BayID:      input.BayID,
		Start:      input.Start,
		End:        input.End,
	}); err != nil {
		logger.InfoContext(ctx, "booking rejected", "kind", ErrorKind(err))
		return WorkOrder{}, err
	}

	createdAt := s.now()
	order := WorkOrder{
		ID:         s.idGenerator(),
		MechanicID: input.MechanicID,
		BayID:      input.BayID,
		Start:      input.Start,
		End:        input.End,
		Status:     workshop.StatusScheduled,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	persisted, err := s.orders.CreateWorkOrder(ctx, order)
	if err != nil {
		mapped := mapRepoError(err)
		logger.ErrorContext(ctx, "booking failed", "kind", ErrorKind(mapped), "error", mapped)
		return WorkOrder{}, mapped
	}

	logger.InfoContext(ctx, "work order booked", "work_order_id", persisted.ID)
	return persisted, nil
}

// RescheduleWorkOrder moves an existing, non-terminal work order to a new
// time slot, keeping its mechanic and bay. The order's own booking is
// excluded from the conflict query.
func (s *BookingService) RescheduleWorkOrder(ctx context.Context, params RescheduleWorkOrderParams) (WorkOrder, error) {
	if s == nil || s.orders == nil {
		return WorkOrder{}, fmt.Errorf("booking service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "reschedule", "work_order_id", params.WorkOrderID)

	existing, err := s.orders.GetWorkOrder(ctx, params.WorkOrderID)
	if err != nil {
		return WorkOrder{}, mapRepoError(err)
	}

	if existing.Status.IsTerminal() {
		err := &TransitionError{From: existing.Status}
		logger.InfoContext(ctx, "reschedule rejected", "kind", ErrorKind(err))
		return WorkOrder{}, err
	}

	if err := s.validateSlot(existing.MechanicID, existing.BayID, params.Start, params.End); err != nil {
		logger.InfoContext(ctx, "reschedule rejected", "kind", ErrorKind(err))
		return WorkOrder{}, err
	}

	unlock := s.locks.lock(resourceKeyMechanic(existing.MechanicID), resourceKeyBay(existing.BayID))
	defer unlock()

	if err := s.ensureSlotFree(ctx, workshop.Slot{
		WorkOrderID: existing.ID,
		MechanicID:  existing.MechanicID,
		BayID:       existing.BayID,
		Start:       params.Start,
		End:         params.End,
	}); err != nil {
		logger.InfoContext(ctx, "reschedule rejected", "kind", ErrorKind(err))
		return WorkOrder{}, err
	}

	updated := existing
	updated.Start = params.Start
	updated.End = params.End
	updated.UpdatedAt = s.now()

	persisted, err := s.orders.UpdateWorkOrder(ctx, updated)
	if err != nil {
		mapped := mapRepoError(err)
		logger.ErrorContext(ctx, "reschedule failed", "kind", ErrorKind(mapped), "error", mapped)
		return WorkOrder{}, mapped
	}

	logger.InfoContext(ctx, "work order rescheduled", "start", persisted.Start, "end", persisted.End)
	return persisted, nil
}

// TransitionWorkOrder advances a work order through its lifecycle, enforcing
// the status machine's transition table.
func (s *BookingService) TransitionWorkOrder(ctx context.Context, params TransitionWorkOrderParams) (WorkOrder, error) {
	if s == nil || s.orders == nil {
		return WorkOrder{}, fmt.Errorf("booking service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "transition",
		"work_order_id", params.WorkOrderID, "target", params.Target)

	if !params.Target.Valid() {
		return WorkOrder{}, &TransitionError{From: "", To: params.Target}
	}

	existing, err := s.orders.GetWorkOrder(ctx, params.WorkOrderID)
	if err != nil {
		return WorkOrder{}, mapRepoError(err)
	}

	if !workshop.CanTransition(existing.Status, params.Target) {
		err := &TransitionError{From: existing.Status, To: params.Target}
		logger.InfoContext(ctx, "transition rejected", "kind", ErrorKind(err))
		return WorkOrder{}, err
	}

	updated := existing
	updated.Status = params.Target
	updated.UpdatedAt = s.now()

	persisted, err := s.orders.UpdateWorkOrder(ctx, updated)
	if err != nil {
		mapped := mapRepoError(err)
		logger.ErrorContext(ctx, "transition failed", "kind", ErrorKind(mapped), "error", mapped)
		return WorkOrder{}, mapped
	}

	logger.InfoContext(ctx, "work order transitioned", "from", existing.Status, "to", persisted.Status)
	return persisted, nil
}

// GetWorkOrder retrieves a single work order by ID.
func (s *BookingService) GetWorkOrder(ctx context.Context, id string) (WorkOrder, error) {
	if s == nil || s.orders == nil {
		return WorkOrder{}, fmt.Errorf("booking service not configured")
	}
	order, err := s.orders.GetWorkOrder(ctx, id)
	if err != nil {
		return WorkOrder{}, mapRepoError(err)
	}
	return order, nil
}

// ListWorkOrders enumerates work orders matching the supplied filters,
// ordered by start time.
func (s *BookingService) ListWorkOrders(ctx context.Context, params ListWorkOrdersParams) ([]WorkOrder, error) {
	if s == nil || s.orders == nil {
		return nil, fmt.Errorf("booking service not configured")
	}
	orders, err := s.orders.ListWorkOrders(ctx, WorkOrderRepositoryFilter{
		MechanicID:   params.MechanicID,
		BayID:        params.BayID,
		Statuses:     params.Statuses,
		StartsBefore: params.StartsBefore,
		EndsAfter:    params.EndsAfter,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return orders, nil
}

// validateSlot applies the slot-shape and business-hours checks that gate
// every booking and reschedule.
func (s *BookingService) validateSlot(mechanicID, bayID string, start, end time.Time) error {
	slotErr := &SlotError{}

	if strings.TrimSpace(mechanicID) == "" {
		slotErr.add("mechanic_id", "mechanic is required")
	}
	if strings.TrimSpace(bayID) == "" {
		slotErr.add("bay_id", "bay is required")
	}
	if start.IsZero() {
		slotErr.add("start", "start is required")
	}
	if end.IsZero() {
		slotErr.add("end", "end is required")
	}
	if !start.IsZero() && !end.IsZero() {
		if !start.Before(end) {
			slotErr.add("time", "start must be before end")
		} else if !s.hours.IsSchedulable(start, end) {
			slotErr.add("slot", fmt.Sprintf("slot must fall within business hours %s-%s on a single day", s.hours.Opening, s.hours.Closing))
		}
	}

	if slotErr.HasErrors() {
		return slotErr
	}
	return nil
}

// ensureSlotFree queries non-terminal bookings overlapping the candidate
// window and runs conflict detection over them. It must be called with the
// candidate's resource locks held.
func (s *BookingService) ensureSlotFree(ctx context.Context, candidate workshop.Slot) error {
	start := candidate.Start
	end := candidate.End
	existing, err := s.orders.ListWorkOrders(ctx, WorkOrderRepositoryFilter{
		Statuses:     []workshop.Status{workshop.StatusScheduled, workshop.StatusInProgress},
		StartsBefore: &end,
		EndsAfter:    &start,
	})
	if err != nil {
		return mapRepoError(err)
	}

	candidate.Status = workshop.StatusScheduled
	conflicts := workshop.DetectConflicts(toSlots(existing), candidate)
	if len(conflicts) == 0 {
		return nil
	}

	return &ConflictError{
		Conflicts: conflicts,
		Orders:    conflictingOrders(existing, conflicts),
	}
}

func toSlots(orders []WorkOrder) []workshop.Slot {
	slots := make([]workshop.Slot, len(orders))
	for i, order := range orders {
		slots[i] = workshop.Slot{
			WorkOrderID: order.ID,
			MechanicID:  order.MechanicID,
			BayID:       order.BayID,
			Start:       order.Start,
			End:         order.End,
			Status:      order.Status,
		}
	}
	return slots
}

func conflictingOrders(orders []WorkOrder, conflicts []workshop.Conflict) []WorkOrder {
	ids := make(map[string]struct{}, len(conflicts))
	for _, conflict := range conflicts {
		ids[conflict.WithWorkOrderID] = struct{}{}
	}
	matched := make([]WorkOrder, 0, len(ids))
	for _, order := range orders {
		if _, ok := ids[order.ID]; ok {
			matched = append(matched, order)
		}
	}
	return matched
}

// The lock key space is shared between mechanics and bays; prefixes keep a
// mechanic and a bay with the same raw identifier from aliasing.
func resourceKeyMechanic(id string) string { return "mechanic:" + id }
func resourceKeyBay(id string) string      { return "bay:" + id }
