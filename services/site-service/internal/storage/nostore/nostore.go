// Package nostore backs a deployment without a database. Writes are
// acknowledged but not kept and reads are empty.
package nostore

import (
	"context"
	"errors"
	"time"

	"github.com/websitekoning/koning-api/services/site-service/internal/model"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage"
)

var errNotConfigured = errors.New("DATABASE_URL not set")

type Store struct{}

func New() Store { return Store{} }

func (s Store) Stores() storage.Stores {
	return storage.Stores{
		Appointments: s,
		Leads:        leads{},
		Content:      content{},
		Status:       s,
	}
}

func (Store) Durable() bool { return false }

func (Store) CountOverlapping(context.Context, time.Time, time.Time) (int, error) { return 0, nil }

func (Store) Insert(context.Context, *model.Appointment) (string, error) { return "", nil }

func (Store) ListRecent(context.Context, int) ([]model.Appointment, error) {
	return []model.Appointment{}, nil
}

func (Store) ListBetween(context.Context, time.Time, time.Time) ([]model.Appointment, error) {
	return []model.Appointment{}, nil
}

func (Store) Status(context.Context) storage.Status {
	return storage.Status{Err: errNotConfigured}
}

type leads struct{}

func (leads) Durable() bool                                       { return false }
func (leads) Insert(context.Context, *model.Lead) (string, error) { return "", nil }
func (leads) ListRecent(context.Context, int) ([]model.Lead, error) {
	return []model.Lead{}, nil
}

type content struct{}

func (content) Durable() bool { return false }

func (content) ListPosts(context.Context, int) ([]model.BlogPost, error) {
	return []model.BlogPost{}, nil
}

func (content) ListTestimonials(context.Context, int) ([]model.Testimonial, error) {
	return []model.Testimonial{}, nil
}

func (content) SeedIfEmpty(context.Context, []model.BlogPost, []model.Testimonial) (int, error) {
	return 0, nil
}
