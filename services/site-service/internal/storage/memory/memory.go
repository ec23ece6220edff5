// Package memory is an in-process implementation of the site-service stores
// used in tests and local runs.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/websitekoning/koning-api/services/site-service/internal/model"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage"
)

type Store struct {
	calendar sync.Mutex

	mu           sync.RWMutex
	now          func() time.Time
	appointments []model.Appointment
	leads        []model.Lead
	posts        []model.BlogPost
	testimonials []model.Testimonial
}

var (
	_ storage.AppointmentStore = (*Store)(nil)
	_ storage.CalendarLocker   = (*Store)(nil)
	_ storage.StatusReporter   = (*Store)(nil)
)

func New() *Store {
	return &Store{now: time.Now}
}

// Stores exposes s through every capability.
func (s *Store) Stores() storage.Stores {
	return storage.Stores{
		Appointments: s,
		Leads:        leadView{s},
		Content:      contentView{s},
		Status:       s,
	}
}

func (s *Store) Durable() bool { return true }

func (s *Store) WithCalendarLock(ctx context.Context, fn func(ctx context.Context, calendar storage.AppointmentStore) error) error {
	s.calendar.Lock()
	defer s.calendar.Unlock()
	return fn(ctx, s)
}

func (s *Store) CountOverlapping(_ context.Context, start, end time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.appointments {
		if a.Start.Before(end) && a.End.After(start) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Insert(_ context.Context, appt *model.Appointment) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt.ID = uuid.NewString()
	appt.CreatedAt = s.now().UTC()
	s.appointments = append(s.appointments, *appt)
	return appt.ID, nil
}

func (s *Store) ListRecent(_ context.Context, limit int) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.appointments, limit), nil
}

func (s *Store) ListBetween(_ context.Context, from, to time.Time) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Appointment
	for _, a := range s.appointments {
		if a.Start.Before(to) && a.End.After(from) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b model.Appointment) int { return a.Start.Compare(b.Start) })
	return out, nil
}

func (s *Store) Status(context.Context) storage.Status {
	return storage.Status{Connected: true, Name: "memory", Tables: []string{"appointments", "blog_posts", "leads", "testimonials"}}
}

type leadView struct{ s *Store }

func (v leadView) Durable() bool { return true }

func (v leadView) Insert(_ context.Context, lead *model.Lead) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	lead.ID = uuid.NewString()
	lead.CreatedAt = v.s.now().UTC()
	v.s.leads = append(v.s.leads, *lead)
	return lead.ID, nil
}

func (v leadView) ListRecent(_ context.Context, limit int) ([]model.Lead, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return newestFirst(v.s.leads, limit), nil
}

type contentView struct{ s *Store }

func (v contentView) Durable() bool { return true }

func (v contentView) ListPosts(_ context.Context, limit int) ([]model.BlogPost, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return newestFirst(v.s.posts, limit), nil
}

func (v contentView) ListTestimonials(_ context.Context, limit int) ([]model.Testimonial, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return newestFirst(v.s.testimonials, limit), nil
}

func (v contentView) SeedIfEmpty(_ context.Context, posts []model.BlogPost, testimonials []model.Testimonial) (int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	written := 0
	if len(v.s.posts) == 0 {
		for _, p := range posts {
			p.ID = uuid.NewString()
			if p.Author == "" {
				p.Author = model.DefaultAuthor
			}
			v.s.posts = append(v.s.posts, p)
			written++
		}
	}
	if len(v.s.testimonials) == 0 {
		for _, t := range testimonials {
			t.ID = uuid.NewString()
			v.s.testimonials = append(v.s.testimonials, t)
			written++
		}
	}
	return written, nil
}

// newestFirst copies up to limit items, last inserted first.
func newestFirst[T any](items []T, limit int) []T {
	n := len(items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]T, 0, n)
	for i := len(items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, items[i])
	}
	return out
}
