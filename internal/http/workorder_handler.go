package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/mechanicshop/internal/application"
	"github.com/example/mechanicshop/internal/workshop"
)

type bookingService interface {
	BookWorkOrder(ctx context.Context, params application.BookWorkOrderParams) (application.WorkOrder, error)
	RescheduleWorkOrder(ctx context.Context, params application.RescheduleWorkOrderParams) (application.WorkOrder, error)
	TransitionWorkOrder(ctx context.Context, params application.TransitionWorkOrderParams) (application.WorkOrder, error)
	GetWorkOrder(ctx context.Context, id string) (application.WorkOrder, error)
	ListWorkOrders(ctx context.Context, params application.ListWorkOrdersParams) ([]application.WorkOrder, error)
}

type WorkOrderHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewWorkOrderHandler(service bookingService, logger *slog.Logger) *WorkOrderHandler {
	base := defaultLogger(logger)
	return &WorkOrderHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *WorkOrderHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "WorkOrderHandler", operation, attrs...)
}

func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createWorkOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "mechanic_id", req.MechanicID, "bay_id", req.BayID)

	order, err := h.service.BookWorkOrder(r.Context(), application.BookWorkOrderParams{
		Input: application.SlotInput{
			MechanicID: strings.TrimSpace(req.MechanicID),
			BayID:      strings.TrimSpace(req.BayID),
			Start:      parseTime(req.Start),
			End:        parseTime(req.End),
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("work_order_id", order.ID).InfoContext(r.Context(), "work order booked")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toWorkOrderDTO(order))
}

func (h *WorkOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := WorkOrderIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkOrder)
		return
	}

	order, err := h.service.GetWorkOrder(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWorkOrderDTO(order))
}

func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := buildListParams(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	orders, err := h.service.ListWorkOrders(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listWorkOrdersResponse{
		WorkOrders: toWorkOrderDTOs(orders),
	})
}

func (h *WorkOrderHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := WorkOrderIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkOrder)
		return
	}

	var req rescheduleWorkOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Reschedule", "work_order_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reschedule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Reschedule", "work_order_id", id)

	order, err := h.service.RescheduleWorkOrder(r.Context(), application.RescheduleWorkOrderParams{
		WorkOrderID: id,
		Start:       parseTime(req.Start),
		End:         parseTime(req.End),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reschedule failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "work order rescheduled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWorkOrderDTO(order))
}

func (h *WorkOrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := WorkOrderIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWorkOrder)
		return
	}

	var req transitionWorkOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Transition", "work_order_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode transition request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Transition", "work_order_id", id, "target_status", req.Status)

	order, err := h.service.TransitionWorkOrder(r.Context(), application.TransitionWorkOrderParams{
		WorkOrderID: id,
		Target:      workshop.Status(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "transition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "work order status advanced")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWorkOrderDTO(order))
}

func buildListParams(query url.Values) (application.ListWorkOrdersParams, error) {
	params := application.ListWorkOrdersParams{
		MechanicID: strings.TrimSpace(query.Get("mechanic_id")),
		BayID:      strings.TrimSpace(query.Get("bay_id")),
	}

	for _, raw := range query["status"] {
		status, err := workshop.ParseStatus(raw)
		if err != nil {
			return application.ListWorkOrdersParams{}, errUnknownStatusName
		}
		params.Statuses = append(params.Statuses, status)
	}

	if raw := strings.TrimSpace(query.Get("starts_before")); raw != "" {
		when, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return application.ListWorkOrdersParams{}, errBadTimeFilter
		}
		params.StartsBefore = &when
	}
	if raw := strings.TrimSpace(query.Get("ends_after")); raw != "" {
		when, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return application.ListWorkOrdersParams{}, errBadTimeFilter
		}
		params.EndsAfter = &when
	}

	return params, nil
}

// parseTime returns the zero time for malformed input; the booking service
// reports zero endpoints as field errors so the client sees which field is
// wrong rather than a generic decoding failure.
func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

type createWorkOrderRequest struct {
	MechanicID string `json:"mechanic_id"`
	BayID      string `json:"bay_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

type rescheduleWorkOrderRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type transitionWorkOrderRequest struct {
	Status string `json:"status"`
}

type workOrderDTO struct {
	ID         string `json:"id"`
	MechanicID string `json:"mechanic_id"`
	BayID      string `json:"bay_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type conflictDTO struct {
	WithWorkOrderID string `json:"with_work_order_id"`
	Type            string `json:"type"`
	MechanicID      string `json:"mechanic_id,omitempty"`
	BayID           string `json:"bay_id,omitempty"`
}

type listWorkOrdersResponse struct {
	WorkOrders []workOrderDTO `json:"work_orders"`
}

func toWorkOrderDTO(order application.WorkOrder) workOrderDTO {
	return workOrderDTO{
		ID:         order.ID,
		MechanicID: order.MechanicID,
		BayID:      order.BayID,
		Start:      order.Start.UTC().Format(time.RFC3339Nano),
		End:        order.End.UTC().Format(time.RFC3339Nano),
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  order.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toWorkOrderDTOs(orders []application.WorkOrder) []workOrderDTO {
	if len(orders) == 0 {
		return nil
	}
	dtos := make([]workOrderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, toWorkOrderDTO(order))
	}
	return dtos
}

func toConflictDTOs(conflicts []workshop.Conflict) []conflictDTO {
	if len(conflicts) == 0 {
		return nil
	}
	dtos := make([]conflictDTO, 0, len(conflicts))
	for _, conflict := range conflicts {
		dtos = append(dtos, conflictDTO{
			WithWorkOrderID: conflict.WithWorkOrderID,
			Type:            string(conflict.Type),
			MechanicID:      conflict.MechanicID,
			BayID:           conflict.BayID,
		})
	}
	return dtos
}
