// Package storage declares the persistence capabilities the site service
// consumes. Implementations live in the postgres, memory and nostore
// subpackages and are chosen once at startup.
package storage

import (
	"context"
	"time"

	"github.com/websitekoning/koning-api/services/site-service/internal/model"
)

// AppointmentStore is the shared calendar.
type AppointmentStore interface {
	// CountOverlapping counts appointments with start < end && stop > start.
	CountOverlapping(ctx context.Context, start, end time.Time) (int, error)
	Insert(ctx context.Context, appt *model.Appointment) (string, error)
	// ListRecent returns the newest appointments first.
	ListRecent(ctx context.Context, limit int) ([]model.Appointment, error)
	// ListBetween returns appointments overlapping [from, to) ordered by start.
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Appointment, error)
	// Durable is false for stores that acknowledge writes without keeping them.
	Durable() bool
}

// CalendarLocker is implemented by stores that can run a count-then-insert
// sequence as one atomic admission decision, across processes.
type CalendarLocker interface {
	WithCalendarLock(ctx context.Context, fn func(ctx context.Context, calendar AppointmentStore) error) error
}

type LeadStore interface {
	Insert(ctx context.Context, lead *model.Lead) (string, error)
	ListRecent(ctx context.Context, limit int) ([]model.Lead, error)
	Durable() bool
}

type ContentStore interface {
	ListPosts(ctx context.Context, limit int) ([]model.BlogPost, error)
	ListTestimonials(ctx context.Context, limit int) ([]model.Testimonial, error)
	// SeedIfEmpty inserts the given content into empty tables only and
	// reports how many rows were written.
	SeedIfEmpty(ctx context.Context, posts []model.BlogPost, testimonials []model.Testimonial) (int, error)
	Durable() bool
}

// Status describes the backing database for the status endpoint.
type Status struct {
	Connected bool
	Name      string
	Tables    []string
	Err       error
}

type StatusReporter interface {
	Status(ctx context.Context) Status
}

// Stores bundles one implementation of each capability.
type Stores struct {
	Appointments AppointmentStore
	Leads        LeadStore
	Content      ContentStore
	Status       StatusReporter
}
