package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/mechanicshop/internal/application"
	"github.com/example/mechanicshop/internal/persistence"
	"github.com/example/mechanicshop/internal/workshop"
)

var workOrderCounter uint64

var referenceTime = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures. It
// falls at opening time on a weekday so default fixtures sit inside business
// hours.
func ReferenceTime() time.Time {
	return referenceTime
}

// DefaultBusinessHours returns the 09:00-18:00 window used across tests.
func DefaultBusinessHours() workshop.BusinessHours {
	opening, err := workshop.ParseTimeOfDay("09:00")
	if err != nil {
		panic(err)
	}
	closing, err := workshop.ParseTimeOfDay("18:00")
	if err != nil {
		panic(err)
	}
	hours, err := workshop.NewBusinessHours(opening, closing)
	if err != nil {
		panic(err)
	}
	return hours
}

// WorkOrderFixture represents a deterministic work order record that can be
// materialised for application or persistence tests.
type WorkOrderFixture struct {
	ID         string
	MechanicID string
	BayID      string
	Start      time.Time
	End        time.Time
	Status     workshop.Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// WorkOrderOption configures the generated work order fixture.
type WorkOrderOption func(*WorkOrderFixture)

// NewWorkOrderFixture returns a deterministic work order fixture with optional
// overrides. Successive fixtures occupy consecutive hour-long slots with
// distinct mechanics and bays so they never conflict with each other by
// default.
func NewWorkOrderFixture(opts ...WorkOrderOption) WorkOrderFixture {
	idx := atomic.AddUint64(&workOrderCounter, 1)
	// Slots cycle through the eight bookable hours of the reference day so
	// any number of fixtures stays inside business hours.
	start := referenceTime.Add(time.Duration(idx%8) * time.Hour)
	fixture := WorkOrderFixture{
		ID:         fmt.Sprintf("work-order-%03d", idx),
		MechanicID: fmt.Sprintf("mechanic-%03d", idx),
		BayID:      fmt.Sprintf("bay-%03d", idx),
		Start:      start,
		End:        start.Add(time.Hour),
		Status:     workshop.StatusScheduled,
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithWorkOrderID overrides the generated work order ID.
func WithWorkOrderID(id string) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.ID = id
	}
}

// WithWorkOrderMechanic overrides the generated mechanic ID.
func WithWorkOrderMechanic(id string) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.MechanicID = id
	}
}

// WithWorkOrderBay overrides the generated bay ID.
func WithWorkOrderBay(id string) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.BayID = id
	}
}

// WithWorkOrderSlot sets the booked interval on the fixture.
func WithWorkOrderSlot(start, end time.Time) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.Start = start
		f.End = end
	}
}

// WithWorkOrderStatus sets the lifecycle status on the fixture.
func WithWorkOrderStatus(status workshop.Status) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.Status = status
	}
}

// WithWorkOrderTimestamps sets the audit timestamps on the fixture.
func WithWorkOrderTimestamps(created, updated time.Time) WorkOrderOption {
	return func(f *WorkOrderFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application converts the fixture into the application layer representation.
func (f WorkOrderFixture) Application() application.WorkOrder {
	return application.WorkOrder{
		ID:         f.ID,
		MechanicID: f.MechanicID,
		BayID:      f.BayID,
		Start:      f.Start,
		End:        f.End,
		Status:     f.Status,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Persistence converts the fixture into the persistence layer representation.
func (f WorkOrderFixture) Persistence() persistence.WorkOrder {
	return persistence.WorkOrder{
		ID:         f.ID,
		MechanicID: f.MechanicID,
		BayID:      f.BayID,
		Start:      f.Start,
		End:        f.End,
		Status:     string(f.Status),
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Slot converts the fixture into the conflict detection representation.
func (f WorkOrderFixture) Slot() workshop.Slot {
	return workshop.Slot{
		WorkOrderID: f.ID,
		MechanicID:  f.MechanicID,
		BayID:       f.BayID,
		Start:       f.Start,
		End:         f.End,
		Status:      f.Status,
	}
}

// Input converts the fixture into the booking request representation.
func (f WorkOrderFixture) Input() application.SlotInput {
	return application.SlotInput{
		MechanicID: f.MechanicID,
		BayID:      f.BayID,
		Start:      f.Start,
		End:        f.End,
	}
}
