package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/mechanicshop/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and typed errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	}

	var slotErr *SlotError
	if errors.As(err, &slotErr) {
		return "invalid_slot"
	}
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return "resource_conflict"
	}
	var transitionErr *TransitionError
	if errors.As(err, &transitionErr) {
		return "invalid_transition"
	}

	return "unexpected"
}
