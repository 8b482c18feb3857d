package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/mechanicshop/internal/application"
	"github.com/example/mechanicshop/internal/workshop"
)

type bookingServiceStub struct {
	bookFn       func(ctx context.Context, params application.BookWorkOrderParams) (application.WorkOrder, error)
	rescheduleFn func(ctx context.Context, params application.RescheduleWorkOrderParams) (application.WorkOrder, error)
	transitionFn func(ctx context.Context, params application.TransitionWorkOrderParams) (application.WorkOrder, error)
	getFn        func(ctx context.Context, id string) (application.WorkOrder, error)
	listFn       func(ctx context.Context, params application.ListWorkOrdersParams) ([]application.WorkOrder, error)
}

func (s *bookingServiceStub) BookWorkOrder(ctx context.Context, params application.BookWorkOrderParams) (application.WorkOrder, error) {
	if s.bookFn == nil {
		return application.WorkOrder{}, errors.New("unexpected BookWorkOrder call")
	}
	return s.bookFn(ctx, params)
}

func (s *bookingServiceStub) RescheduleWorkOrder(ctx context.Context, params application.RescheduleWorkOrderParams) (application.WorkOrder, error) {
	if s.rescheduleFn == nil {
		return application.WorkOrder{}, errors.New("unexpected RescheduleWorkOrder call")
	}
	return s.rescheduleFn(ctx, params)
}

func (s *bookingServiceStub) TransitionWorkOrder(ctx context.Context, params application.TransitionWorkOrderParams) (application.WorkOrder, error) {
	if s.transitionFn == nil {
		return application.WorkOrder{}, errors.New("unexpected TransitionWorkOrder call")
	}
	return s.transitionFn(ctx, params)
}

func (s *bookingServiceStub) GetWorkOrder(ctx context.Context, id string) (application.WorkOrder, error) {
	if s.getFn == nil {
		return application.WorkOrder{}, errors.New("unexpected GetWorkOrder call")
	}
	return s.getFn(ctx, id)
}

func (s *bookingServiceStub) ListWorkOrders(ctx context.Context, params application.ListWorkOrdersParams) ([]application.WorkOrder, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected ListWorkOrders call")
	}
	return s.listFn(ctx, params)
}

func sampleOrder() application.WorkOrder {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	return application.WorkOrder{
		ID:         "wo-1",
		MechanicID: "mech-1",
		BayID:      "bay-1",
		Start:      day.Add(10 * time.Hour),
		End:        day.Add(11 * time.Hour),
		Status:     workshop.StatusScheduled,
		CreatedAt:  day.Add(8 * time.Hour),
		UpdatedAt:  day.Add(8 * time.Hour),
	}
}

func newTestRouter(service bookingService) http.Handler {
	return NewRouter(RouterConfig{WorkOrders: NewWorkOrderHandler(service, nil)})
}

func TestWorkOrderHandlerCreate(t *testing.T) {
	t.Parallel()

	t.Run("returns 201 with the booked order", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{
			bookFn: func(_ context.Context, params application.BookWorkOrderParams) (application.WorkOrder, error) {
				if params.Input.MechanicID != "mech-1" || params.Input.BayID != "bay-1" {
					t.Errorf("unexpected input resources: %+v", params.Input)
				}
				return sampleOrder(), nil
			},
		}
		router := newTestRouter(service)

		body := `{"mechanic_id":"mech-1","bay_id":"bay-1","start":"2025-03-10T10:00:00Z","end":"2025-03-10T11:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/work-orders", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", recorder.Code, recorder.Body.String())
		}
		var dto workOrderDTO
		if err := json.Unmarshal(recorder.Body.Bytes(), &dto); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if dto.ID != "wo-1" || dto.Status != "scheduled" {
			t.Errorf("unexpected payload: %+v", dto)
		}
		if dto.Start != "2025-03-10T10:00:00Z" {
			t.Errorf("start = %s", dto.Start)
		}
	})

	t.Run("returns 422 with field details for invalid slots", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{
			bookFn: func(context.Context, application.BookWorkOrderParams) (application.WorkOrder, error) {
				return application.WorkOrder{}, &application.SlotError{
					FieldErrors: map[string]string{"slot": "slot must fall within business hours"},
				}
			},
		}
		router := newTestRouter(service)

		req := httptest.NewRequest(http.MethodPost, "/work-orders", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", recorder.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ErrorCode != "INVALID_SLOT" {
			t.Errorf("error_code = %s", resp.ErrorCode)
		}
		if resp.Errors["slot"] == "" {
			t.Errorf("expected slot field detail, got %v", resp.Errors)
		}
	})

	t.Run("returns 409 with colliding orders for conflicts", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{
			bookFn: func(context.Context, application.BookWorkOrderParams) (application.WorkOrder, error) {
				return application.WorkOrder{}, &application.ConflictError{
					Conflicts: []workshop.Conflict{{
						WithWorkOrderID: "wo-9",
						Type:            workshop.ConflictTypeMechanic,
						MechanicID:      "mech-1",
					}},
					Orders: []application.WorkOrder{sampleOrder()},
				}
			},
		}
		router := newTestRouter(service)

		req := httptest.NewRequest(http.MethodPost, "/work-orders", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", recorder.Code)
		}
		var resp conflictResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ErrorCode != "RESOURCE_CONFLICT" {
			t.Errorf("error_code = %s", resp.ErrorCode)
		}
		if len(resp.Conflicts) != 1 || resp.Conflicts[0].Type != "mechanic" {
			t.Errorf("unexpected conflicts: %+v", resp.Conflicts)
		}
		if len(resp.Orders) != 1 || resp.Orders[0].ID != "wo-1" {
			t.Errorf("unexpected conflicting orders: %+v", resp.Orders)
		}
	})

	t.Run("returns 400 for malformed JSON", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&bookingServiceStub{})
		req := httptest.NewRequest(http.MethodPost, "/work-orders", strings.NewReader("{not json"))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", recorder.Code)
		}
	})

	t.Run("returns 503 when the store is unavailable", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{
			bookFn: func(context.Context, application.BookWorkOrderParams) (application.WorkOrder, error) {
				return application.WorkOrder{}, application.ErrStoreUnavailable
			},
		}
		router := newTestRouter(service)

		req := httptest.NewRequest(http.MethodPost, "/work-orders", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", recorder.Code)
		}
	})
}

func TestWorkOrderHandlerGet(t *testing.T) {
	t.Parallel()

	t.Run("returns the work order by path id", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{
			getFn: func(_ context.Context, id string) (application.WorkOrder, error) {
				if id != "wo-1" {
					t.Errorf("id = %s", id)
				}
				return sampleOrder(), nil
			},
		}
		router := newTestRouter(service)

		req := httptest.NewRequest(http.MethodGet, "/work-orders/wo-1", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", recorder.Code)
		}
	})

	t.Run("maps ErrNotFound to 404", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{
			getFn: func(context.Context, string) (application.WorkOrder, error) {
				return application.WorkOrder{}, application.ErrNotFound
			},
		}
		router := newTestRouter(service)

		req := httptest.NewRequest(http.MethodGet, "/work-orders/missing", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", recorder.Code)
		}
	})
}

func TestWorkOrderHandlerList(t *testing.T) {
	t.Parallel()

	t.Run("passes query filters through to the service", func(t *testing.T) {
		t.Parallel()

		var captured application.ListWorkOrdersParams
		service := &bookingServiceStub{
			listFn: func(_ context.Context, params application.ListWorkOrdersParams) ([]application.WorkOrder, error) {
				captured = params
				return []application.WorkOrder{sampleOrder()}, nil
			},
		}
		router := newTestRouter(service)

		target := "/work-orders?mechanic_id=mech-1&status=scheduled&status=in_progress&starts_before=2025-03-10T18:00:00Z"
		req := httptest.NewRequest(http.MethodGet, target, nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", recorder.Code, recorder.Body.String())
		}
		if captured.MechanicID != "mech-1" {
			t.Errorf("mechanic filter = %s", captured.MechanicID)
		}
		if len(captured.Statuses) != 2 {
			t.Errorf("status filters = %v", captured.Statuses)
		}
		if captured.StartsBefore == nil || !captured.StartsBefore.Equal(time.Date(2025, time.March, 10, 18, 0, 0, 0, time.UTC)) {
			t.Errorf("starts_before = %v", captured.StartsBefore)
		}

		var resp listWorkOrdersResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.WorkOrders) != 1 {
			t.Errorf("work_orders = %v", resp.WorkOrders)
		}
	})

	t.Run("rejects unknown status filter", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&bookingServiceStub{})
		req := httptest.NewRequest(http.MethodGet, "/work-orders?status=bogus", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", recorder.Code)
		}
	})

	t.Run("rejects malformed time filter", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&bookingServiceStub{})
		req := httptest.NewRequest(http.MethodGet, "/work-orders?ends_after=yesterday", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", recorder.Code)
		}
	})
}

func TestWorkOrderHandlerReschedule(t *testing.T) {
	t.Parallel()

	t.Run("moves the slot via PUT", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{
			rescheduleFn: func(_ context.Context, params application.RescheduleWorkOrderParams) (application.WorkOrder, error) {
				if params.WorkOrderID != "wo-1" {
					t.Errorf("id = %s", params.WorkOrderID)
				}
				if params.Start.IsZero() || params.End.IsZero() {
					t.Errorf("expected parsed endpoints, got %v - %v", params.Start, params.End)
				}
				moved := sampleOrder()
				moved.Start = params.Start
				moved.End = params.End
				return moved, nil
			},
		}
		router := newTestRouter(service)

		body := `{"start":"2025-03-10T13:00:00Z","end":"2025-03-10T14:00:00Z"}`
		req := httptest.NewRequest(http.MethodPut, "/work-orders/wo-1/slot", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", recorder.Code, recorder.Body.String())
		}
	})

	t.Run("rejects non-PUT methods", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&bookingServiceStub{})
		req := httptest.NewRequest(http.MethodPost, "/work-orders/wo-1/slot", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status = %d, want 405", recorder.Code)
		}
		if allow := recorder.Header().Get("Allow"); allow != http.MethodPut {
			t.Errorf("Allow = %s", allow)
		}
	})
}

func TestWorkOrderHandlerTransition(t *testing.T) {
	t.Parallel()

	t.Run("advances the lifecycle", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{
			transitionFn: func(_ context.Context, params application.TransitionWorkOrderParams) (application.WorkOrder, error) {
				if params.Target != workshop.StatusInProgress {
					t.Errorf("target = %s", params.Target)
				}
				updated := sampleOrder()
				updated.Status = workshop.StatusInProgress
				return updated, nil
			},
		}
		router := newTestRouter(service)

		req := httptest.NewRequest(http.MethodPost, "/work-orders/wo-1/status", strings.NewReader(`{"status":"in_progress"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", recorder.Code, recorder.Body.String())
		}
		var dto workOrderDTO
		if err := json.Unmarshal(recorder.Body.Bytes(), &dto); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if dto.Status != "in_progress" {
			t.Errorf("status = %s", dto.Status)
		}
	})

	t.Run("maps transition errors to 409", func(t *testing.T) {
		t.Parallel()

		service := &bookingServiceStub{
			transitionFn: func(context.Context, application.TransitionWorkOrderParams) (application.WorkOrder, error) {
				return application.WorkOrder{}, &application.TransitionError{
					From: workshop.StatusCompleted,
					To:   workshop.StatusInProgress,
				}
			},
		}
		router := newTestRouter(service)

		req := httptest.NewRequest(http.MethodPost, "/work-orders/wo-1/status", strings.NewReader(`{"status":"in_progress"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", recorder.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.ErrorCode != "INVALID_TRANSITION" {
			t.Errorf("error_code = %s", resp.ErrorCode)
		}
	})

	t.Run("unknown action path returns 404", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&bookingServiceStub{})
		req := httptest.NewRequest(http.MethodPost, "/work-orders/wo-1/archive", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", recorder.Code)
		}
	})
}
