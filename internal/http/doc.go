// Package http provides HTTP handlers and middleware for the work order API.
//
// The router exposes the following endpoints:
//   - POST /work-orders: books a new work order. Body: {"mechanic_id","bay_id",
//     "start","end"} with RFC 3339 timestamps. Returns 201 with the stored
//     order, 422 with per-field details when the slot is invalid, or 409 with
//     the colliding orders when the mechanic or bay is already booked.
//   - GET /work-orders: lists work orders. Supports `mechanic_id`, `bay_id`,
//     repeatable `status`, `starts_before`, and `ends_after` query filters.
//   - GET /work-orders/{id}: fetches a single work order.
//   - PUT /work-orders/{id}/slot: moves an existing work order to a new time
//     slot, subject to the same validation and conflict rules as booking.
//   - POST /work-orders/{id}/status: advances the work order lifecycle. Body:
//     {"status"}. Illegal transitions return 409.
//
// Request/response DTOs live alongside the handler so tests and documentation
// share the same ground truth.
package http
