package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/mechanicshop/internal/application"
	"github.com/example/mechanicshop/internal/logging"
)

var (
	errBadRequestBody    = errors.New("request body is not valid JSON")
	errInvalidWorkOrder  = errors.New("invalid work order id")
	errUnknownStatusName = errors.New("unknown status filter")
	errBadTimeFilter     = errors.New("time filters must be RFC 3339 timestamps")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps application errors onto HTTP status codes. Slot
// validation failures are 422 with per-field details, booking conflicts and
// illegal lifecycle transitions are 409, and transient store failures are 503
// so clients know a retry may succeed.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var slotErr *application.SlotError
	var conflictErr *application.ConflictError
	var transitionErr *application.TransitionError

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: "NOT_FOUND",
			Message:   "the requested work order does not exist",
		})
	case errors.Is(err, application.ErrStoreUnavailable):
		r.loggerFor(ctx).ErrorContext(ctx, "store unavailable", "error", err)
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{
			ErrorCode: "STORE_UNAVAILABLE",
			Message:   "the booking store is temporarily unavailable, please retry",
		})
	case errors.As(err, &slotErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_SLOT",
			Message:   "the requested slot is not valid",
			Errors:    slotErr.FieldErrors,
		})
	case errors.As(err, &conflictErr):
		r.writeJSON(ctx, w, http.StatusConflict, conflictResponse{
			ErrorCode: "RESOURCE_CONFLICT",
			Message:   conflictErr.Error(),
			Conflicts: toConflictDTOs(conflictErr.Conflicts),
			Orders:    toWorkOrderDTOs(conflictErr.Orders),
		})
	case errors.As(err, &transitionErr):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "INVALID_TRANSITION",
			Message:   transitionErr.Error(),
		})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

type conflictResponse struct {
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Conflicts []conflictDTO  `json:"conflicts,omitempty"`
	Orders    []workOrderDTO `json:"conflicting_orders,omitempty"`
}
