package http

import "context"

type contextKey string

const workOrderIDContextKey contextKey = "work_order_id"

// ContextWithWorkOrderID injects the work order identifier resolved from the
// request path.
func ContextWithWorkOrderID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, workOrderIDContextKey, id)
}

// WorkOrderIDFromContext extracts a work order identifier previously
// associated with the context.
func WorkOrderIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(workOrderIDContextKey).(string)
	return id, ok
}
