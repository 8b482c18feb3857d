package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/mechanicshop/internal/workshop"
)

// SweepService reconciles stored work orders against wall-clock time. On a
// fixed interval it marks non-terminal orders whose scheduled end has passed
// as overdue. A failing record is logged and retried on the next cycle; a
// cycle failure never stops the loop.
type SweepService struct {
	orders   WorkOrderRepository
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	running  atomic.Bool
	starting sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// DefaultSweepInterval is used when no interval is configured.
const DefaultSweepInterval = time.Minute

// NewSweepService wires dependencies for the overdue sweep.
func NewSweepService(orders WorkOrderRepository, interval time.Duration, now func() time.Time, logger *slog.Logger) *SweepService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if now == nil {
		now = time.Now
	}
	return &SweepService{
		orders:   orders,
		interval: interval,
		now:      now,
		logger:   defaultLogger(logger),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the periodic sweep loop. It returns immediately; the loop
// runs until Stop is called or the context is cancelled. Calling Start more
// than once is a no-op.
func (s *SweepService) Start(ctx context.Context) {
	if s == nil || s.orders == nil {
		return
	}
	s.starting.Do(func() {
		go s.loop(ctx)
	})
}

// Stop signals the loop to finish and waits for it to drain, bounded by the
// supplied context. An in-flight cycle observes the signal between records.
func (s *SweepService) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sweep service did not stop in time: %w", ctx.Err())
	}
}

func (s *SweepService) loop(ctx context.Context) {
	defer close(s.done)

	logger := serviceLogger(ctx, s.logger, "sweep", "")
	logger.InfoContext(ctx, "overdue sweep started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "overdue sweep stopped", "reason", "context cancelled")
			return
		case <-s.stop:
			logger.InfoContext(ctx, "overdue sweep stopped", "reason", "stop requested")
			return
		case <-ticker.C:
			marked, err := s.RunOnce(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "sweep cycle failed", "kind", ErrorKind(err), "error", err)
				continue
			}
			if marked > 0 {
				logger.InfoContext(ctx, "sweep cycle completed", "marked_overdue", marked)
			}
		}
	}
}

// RunOnce executes a single sweep cycle: it queries work orders whose
// scheduled end precedes the current clock and transitions each to overdue.
// Only one cycle runs at a time; a call arriving while another cycle is in
// flight returns without doing work. Failures on individual records are
// logged and left for the next cycle.
func (s *SweepService) RunOnce(ctx context.Context) (int, error) {
	if s == nil || s.orders == nil {
		return 0, fmt.Errorf("sweep service not configured")
	}
	if !s.running.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer s.running.Store(false)

	logger := serviceLogger(ctx, s.logger, "sweep", "run_once")

	reference := s.now()
	candidates, err := s.orders.ListOverdueWorkOrders(ctx, reference)
	if err != nil {
		return 0, mapRepoError(err)
	}

	marked := 0
	for _, order := range candidates {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "sweep cycle abandoned", "marked_overdue", marked, "remaining", len(candidates)-marked)
			return marked, ctx.Err()
		case <-s.stop:
			logger.InfoContext(ctx, "sweep cycle abandoned", "marked_overdue", marked, "remaining", len(candidates)-marked)
			return marked, nil
		default:
		}

		if !workshop.CanTransition(order.Status, workshop.StatusOverdue) {
			// The query should only yield active orders; skip anything else
			// rather than forcing an illegal transition.
			logger.WarnContext(ctx, "skipping non-transitionable work order",
				"work_order_id", order.ID, "status", order.Status)
			continue
		}

		updated := order
		updated.Status = workshop.StatusOverdue
		updated.UpdatedAt = s.now()

		if _, err := s.orders.UpdateWorkOrder(ctx, updated); err != nil {
			mapped := mapRepoError(err)
			logger.ErrorContext(ctx, "failed to mark work order overdue",
				"work_order_id", order.ID, "kind", ErrorKind(mapped), "error", mapped)
			continue
		}

		marked++
		logger.InfoContext(ctx, "work order marked overdue",
			"work_order_id", order.ID, "scheduled_end", order.End)
	}

	return marked, nil
}
