package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/mechanicshop/internal/persistence"
	"github.com/example/mechanicshop/internal/workshop"
)

// Store provides an in-memory persistence.WorkOrderRepository implementation.
// It applies the same overlap re-check on writes as the SQLite store so the
// application layer behaves identically against either backend.
type Store struct {
	mu     sync.RWMutex
	orders map[string]persistence.WorkOrder
}

// NewStore returns an empty in-memory work order store.
func NewStore() *Store {
	return &Store{orders: make(map[string]persistence.WorkOrder)}
}

// CreateWorkOrder stores a new work order after re-checking resource overlap.
func (s *Store) CreateWorkOrder(ctx context.Context, order persistence.WorkOrder) (persistence.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; ok {
		return persistence.WorkOrder{}, persistence.ErrDuplicate
	}
	if s.hasOverlapLocked(order) {
		return persistence.WorkOrder{}, persistence.ErrConflict
	}

	s.orders[order.ID] = order
	return order, nil
}

// UpdateWorkOrder replaces an existing work order after re-checking overlap.
func (s *Store) UpdateWorkOrder(ctx context.Context, order persistence.WorkOrder) (persistence.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; !ok {
		return persistence.WorkOrder{}, persistence.ErrNotFound
	}
	if s.hasOverlapLocked(order) {
		return persistence.WorkOrder{}, persistence.ErrConflict
	}

	s.orders[order.ID] = order
	return order, nil
}

// GetWorkOrder retrieves a work order by ID.
func (s *Store) GetWorkOrder(ctx context.Context, id string) (persistence.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return persistence.WorkOrder{}, persistence.ErrNotFound
	}
	return order, nil
}

// ListWorkOrders returns work orders matching the filter ordered by start
// time, then ID for a stable tiebreak.
func (s *Store) ListWorkOrders(ctx context.Context, filter persistence.WorkOrderFilter) ([]persistence.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]persistence.WorkOrder, 0, len(s.orders))
	for _, order := range s.orders {
		if !matchesFilter(order, filter) {
			continue
		}
		matches = append(matches, order)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start.Equal(matches[j].Start) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Start.Before(matches[j].Start)
	})

	return matches, nil
}

// ListOverdueWorkOrders returns non-terminal work orders whose scheduled end
// is strictly before the reference time.
func (s *Store) ListOverdueWorkOrders(ctx context.Context, reference time.Time) ([]persistence.WorkOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var overdue []persistence.WorkOrder
	for _, order := range s.orders {
		if workshop.Status(order.Status).IsTerminal() {
			continue
		}
		if order.End.Before(reference) {
			overdue = append(overdue, order)
		}
	}

	sort.Slice(overdue, func(i, j int) bool {
		if overdue[i].End.Equal(overdue[j].End) {
			return overdue[i].ID < overdue[j].ID
		}
		return overdue[i].End.Before(overdue[j].End)
	})

	return overdue, nil
}

func (s *Store) hasOverlapLocked(candidate persistence.WorkOrder) bool {
	if workshop.Status(candidate.Status).IsTerminal() {
		return false
	}
	for _, existing := range s.orders {
		if existing.ID == candidate.ID {
			continue
		}
		if workshop.Status(existing.Status).IsTerminal() {
			continue
		}
		if existing.MechanicID != candidate.MechanicID && existing.BayID != candidate.BayID {
			continue
		}
		if workshop.Overlaps(existing.Start, existing.End, candidate.Start, candidate.End) {
			return true
		}
	}
	return false
}

func matchesFilter(order persistence.WorkOrder, filter persistence.WorkOrderFilter) bool {
	if filter.MechanicID != "" && order.MechanicID != filter.MechanicID {
		return false
	}
	if filter.BayID != "" && order.BayID != filter.BayID {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if order.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.StartsBefore != nil && !order.Start.Before(*filter.StartsBefore) {
		return false
	}
	if filter.EndsAfter != nil && !order.End.After(*filter.EndsAfter) {
		return false
	}
	return true
}
