package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/mechanicshop/internal/application"
	"github.com/example/mechanicshop/internal/workshop"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Hours       workshop.BusinessHours
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults: the shared
// reference clock, sequential "id-N" identifiers and 09:00-18:00 hours.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Hours:       DefaultBusinessHours(),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithBusinessHours overrides the business hours used by the factory.
func WithBusinessHours(hours workshop.BusinessHours) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Hours = hours
	}
}

// BookingService constructs a booking service wired to the supplied
// repository with the factory's deterministic clock and identifiers.
func (f *ServiceFactory) BookingService(orders application.WorkOrderRepository, logger *slog.Logger) *application.BookingService {
	return application.NewBookingServiceWithLogger(orders, f.Hours, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), logger)
}

// SweepService constructs an overdue sweep service wired to the supplied
// repository with the factory's deterministic clock.
func (f *ServiceFactory) SweepService(orders application.WorkOrderRepository, interval time.Duration, logger *slog.Logger) *application.SweepService {
	return application.NewSweepService(orders, interval, f.Clock.NowFunc(), logger)
}
