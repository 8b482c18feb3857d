package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/mechanicshop/internal/persistence"
	"github.com/example/mechanicshop/internal/workshop"
)

// timeLayout pads fractional seconds to a fixed nine digits. Unlike
// time.RFC3339Nano it never trims trailing zeros, so stored UTC strings stay
// fixed width and sub-second precision survives the round trip.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// activeStatuses are the statuses that hold their resources. Stored UTC
// timestamp strings compare lexicographically in chronological order, which
// the overlap and overdue queries rely on.
var activeStatuses = []string{
	string(workshop.StatusScheduled),
	string(workshop.StatusInProgress),
}

const workOrderColumns = "id, mechanic_id, bay_id, start_time, end_time, status, created_at, updated_at"

// CreateWorkOrder inserts a new work order. The insert and the overlap
// re-check run in the same transaction so a concurrent writer cannot slip a
// colliding booking in between.
func (s *Store) CreateWorkOrder(ctx context.Context, order persistence.WorkOrder) (persistence.WorkOrder, error) {
	if order.ID == "" {
		return persistence.WorkOrder{}, fmt.Errorf("sqlite: work order id is required")
	}

	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		if err := ensureNoOverlap(tx, order); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO work_orders (`+workOrderColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			order.ID,
			order.MechanicID,
			order.BayID,
			formatTime(order.Start),
			formatTime(order.End),
			order.Status,
			formatTime(order.CreatedAt),
			formatTime(order.UpdatedAt),
		)
		return mapSQLiteError(err)
	})
	if err != nil {
		return persistence.WorkOrder{}, err
	}

	return order, nil
}

// UpdateWorkOrder replaces the mutable fields of an existing work order after
// re-checking overlap against every other active booking.
func (s *Store) UpdateWorkOrder(ctx context.Context, order persistence.WorkOrder) (persistence.WorkOrder, error) {
	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM work_orders WHERE id = ?", order.ID).Scan(&exists); err != nil {
			return mapSQLiteError(err)
		}
		if exists == 0 {
			return persistence.ErrNotFound
		}

		if err := ensureNoOverlap(tx, order); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE work_orders
			SET mechanic_id = ?, bay_id = ?, start_time = ?, end_time = ?, status = ?, updated_at = ?
			WHERE id = ?
		`,
			order.MechanicID,
			order.BayID,
			formatTime(order.Start),
			formatTime(order.End),
			order.Status,
			formatTime(order.UpdatedAt),
			order.ID,
		)
		return mapSQLiteError(err)
	})
	if err != nil {
		return persistence.WorkOrder{}, err
	}

	return order, nil
}

// GetWorkOrder retrieves a work order by ID.
func (s *Store) GetWorkOrder(ctx context.Context, id string) (persistence.WorkOrder, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+workOrderColumns+" FROM work_orders WHERE id = ?", id)
	order, err := scanWorkOrder(row.Scan)
	if err != nil {
		return persistence.WorkOrder{}, mapSQLiteError(err)
	}
	return order, nil
}

// ListWorkOrders returns work orders matching the filter ordered by start
// time, then ID for a stable tiebreak.
func (s *Store) ListWorkOrders(ctx context.Context, filter persistence.WorkOrderFilter) ([]persistence.WorkOrder, error) {
	query := "SELECT " + workOrderColumns + " FROM work_orders"
	var clauses []string
	var args []any

	if filter.MechanicID != "" {
		clauses = append(clauses, "mechanic_id = ?")
		args = append(args, filter.MechanicID)
	}
	if filter.BayID != "" {
		clauses = append(clauses, "bay_id = ?")
		args = append(args, filter.BayID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Statuses))
		clauses = append(clauses, "status IN ("+placeholders[:len(placeholders)-1]+")")
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
	}
	if filter.StartsBefore != nil {
		clauses = append(clauses, "start_time < ?")
		args = append(args, formatTime(*filter.StartsBefore))
	}
	if filter.EndsAfter != nil {
		clauses = append(clauses, "end_time > ?")
		args = append(args, formatTime(*filter.EndsAfter))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY start_time, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	return collectWorkOrders(rows)
}

// ListOverdueWorkOrders returns non-terminal work orders whose scheduled end
// is strictly before the reference time, oldest first.
func (s *Store) ListOverdueWorkOrders(ctx context.Context, reference time.Time) ([]persistence.WorkOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+workOrderColumns+`
		FROM work_orders
		WHERE status IN (?, ?) AND end_time < ?
		ORDER BY end_time, id
	`, activeStatuses[0], activeStatuses[1], formatTime(reference))
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	return collectWorkOrders(rows)
}

// ensureNoOverlap fails with persistence.ErrConflict when another active
// booking for the same mechanic or bay intersects the order's interval.
// Terminal orders no longer hold resources and skip the check.
func ensureNoOverlap(tx *sql.Tx, order persistence.WorkOrder) error {
	if workshop.Status(order.Status).IsTerminal() {
		return nil
	}

	var count int
	err := tx.QueryRow(`
		SELECT COUNT(1)
		FROM work_orders
		WHERE id != ?
		  AND status IN (?, ?)
		  AND (mechanic_id = ? OR bay_id = ?)
		  AND start_time < ?
		  AND end_time > ?
	`,
		order.ID,
		activeStatuses[0], activeStatuses[1],
		order.MechanicID, order.BayID,
		formatTime(order.End), formatTime(order.Start),
	).Scan(&count)
	if err != nil {
		return mapSQLiteError(err)
	}
	if count > 0 {
		return persistence.ErrConflict
	}
	return nil
}

func collectWorkOrders(rows *sql.Rows) ([]persistence.WorkOrder, error) {
	var orders []persistence.WorkOrder
	for rows.Next() {
		order, err := scanWorkOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	return orders, nil
}

func scanWorkOrder(scan func(dest ...any) error) (persistence.WorkOrder, error) {
	var order persistence.WorkOrder
	var start, end, createdAt, updatedAt string

	if err := scan(&order.ID, &order.MechanicID, &order.BayID, &start, &end, &order.Status, &createdAt, &updatedAt); err != nil {
		return persistence.WorkOrder{}, err
	}

	var err error
	if order.Start, err = parseTime(start); err != nil {
		return persistence.WorkOrder{}, err
	}
	if order.End, err = parseTime(end); err != nil {
		return persistence.WorkOrder{}, err
	}
	if order.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.WorkOrder{}, err
	}
	if order.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.WorkOrder{}, err
	}
	return order, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: malformed timestamp %q: %w", value, err)
	}
	return parsed, nil
}
