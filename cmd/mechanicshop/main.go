package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/mechanicshop/internal/application"
	"github.com/example/mechanicshop/internal/config"
	httptransport "github.com/example/mechanicshop/internal/http"
	"github.com/example/mechanicshop/internal/persistence"
	"github.com/example/mechanicshop/internal/persistence/sqlite"
	"github.com/example/mechanicshop/internal/workshop"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	orders := newWorkOrderRepositoryAdapter(store)
	bookingService := application.NewBookingServiceWithLogger(orders, cfg.Hours, idGenerator, now, logger)
	sweepService := application.NewSweepService(orders, cfg.SweepInterval, now, logger)
	sweepService.Start(ctx)

	workOrderHandler := httptransport.NewWorkOrderHandler(bookingService, logger)
	handler := httptransport.NewRouter(httptransport.RouterConfig{
		WorkOrders: workOrderHandler,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
		if err := sweepService.Stop(shutdownCtx); err != nil {
			logger.Error("failed to stop overdue sweep", "error", err)
		}
	}()

	logger.Info("work order API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// workOrderRepositoryAdapter bridges the application repository contract to
// the persistence layer, converting between the two work order shapes.
type workOrderRepositoryAdapter struct {
	repo persistence.WorkOrderRepository
}

func newWorkOrderRepositoryAdapter(repo persistence.WorkOrderRepository) *workOrderRepositoryAdapter {
	return &workOrderRepositoryAdapter{repo: repo}
}

func (a *workOrderRepositoryAdapter) CreateWorkOrder(ctx context.Context, order application.WorkOrder) (application.WorkOrder, error) {
	stored, err := a.repo.CreateWorkOrder(ctx, toPersistenceWorkOrder(order))
	if err != nil {
		return application.WorkOrder{}, err
	}
	return toApplicationWorkOrder(stored), nil
}

func (a *workOrderRepositoryAdapter) UpdateWorkOrder(ctx context.Context, order application.WorkOrder) (application.WorkOrder, error) {
	stored, err := a.repo.UpdateWorkOrder(ctx, toPersistenceWorkOrder(order))
	if err != nil {
		return application.WorkOrder{}, err
	}
	return toApplicationWorkOrder(stored), nil
}

func (a *workOrderRepositoryAdapter) GetWorkOrder(ctx context.Context, id string) (application.WorkOrder, error) {
	stored, err := a.repo.GetWorkOrder(ctx, id)
	if err != nil {
		return application.WorkOrder{}, err
	}
	return toApplicationWorkOrder(stored), nil
}

func (a *workOrderRepositoryAdapter) ListWorkOrders(ctx context.Context, filter application.WorkOrderRepositoryFilter) ([]application.WorkOrder, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, status := range filter.Statuses {
		statuses = append(statuses, string(status))
	}

	stored, err := a.repo.ListWorkOrders(ctx, persistence.WorkOrderFilter{
		MechanicID:   filter.MechanicID,
		BayID:        filter.BayID,
		Statuses:     statuses,
		StartsBefore: filter.StartsBefore,
		EndsAfter:    filter.EndsAfter,
	})
	if err != nil {
		return nil, err
	}
	return toApplicationWorkOrders(stored), nil
}

func (a *workOrderRepositoryAdapter) ListOverdueWorkOrders(ctx context.Context, reference time.Time) ([]application.WorkOrder, error) {
	stored, err := a.repo.ListOverdueWorkOrders(ctx, reference)
	if err != nil {
		return nil, err
	}
	return toApplicationWorkOrders(stored), nil
}

func toPersistenceWorkOrder(order application.WorkOrder) persistence.WorkOrder {
	return persistence.WorkOrder{
		ID:         order.ID,
		MechanicID: order.MechanicID,
		BayID:      order.BayID,
		Start:      order.Start,
		End:        order.End,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

func toApplicationWorkOrder(order persistence.WorkOrder) application.WorkOrder {
	return application.WorkOrder{
		ID:         order.ID,
		MechanicID: order.MechanicID,
		BayID:      order.BayID,
		Start:      order.Start,
		End:        order.End,
		Status:     workshop.Status(order.Status),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

func toApplicationWorkOrders(orders []persistence.WorkOrder) []application.WorkOrder {
	converted := make([]application.WorkOrder, 0, len(orders))
	for _, order := range orders {
		converted = append(converted, toApplicationWorkOrder(order))
	}
	return converted
}
