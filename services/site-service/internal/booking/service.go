// Package booking admits appointment requests against the shared calendar
// and persists the ones that pass.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/websitekoning/koning-api/services/site-service/internal/admission"
	"github.com/websitekoning/koning-api/services/site-service/internal/availability"
	"github.com/websitekoning/koning-api/services/site-service/internal/model"
	"github.com/websitekoning/koning-api/services/site-service/internal/notify"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage"
)

var (
	// ErrInvalidRequest wraps missing or malformed contact fields.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrStorage is a store failure before the appointment was admitted.
	ErrStorage = errors.New("storage unavailable")
	// ErrPersist is a store failure writing an admitted appointment.
	ErrPersist = errors.New("persist appointment")
)

type Request struct {
	Name   string
	Email  string
	Phone  string
	Start  time.Time
	End    time.Time
	Note   string
	Source string
}

type Result struct {
	ID     string
	Stored bool
}

type Notifier interface {
	Dispatch(ctx context.Context, msg notify.Message)
}

type Service struct {
	evaluator       *admission.Evaluator
	store           storage.AppointmentStore
	notifier        Notifier
	logger          *slog.Logger
	adminRecipients []string
	timeout         time.Duration
	tracer          trace.Tracer

	// calendar serializes admission decisions within this process.
	calendar sync.Mutex
}

func NewService(evaluator *admission.Evaluator, store storage.AppointmentStore, notifier Notifier, logger *slog.Logger, adminRecipients []string) *Service {
	return &Service{
		evaluator:       evaluator,
		store:           store,
		notifier:        notifier,
		logger:          logger,
		adminRecipients: adminRecipients,
		timeout:         10 * time.Second,
		tracer:          otel.Tracer("site-service/booking"),
	}
}

// Book validates req, admits it against the calendar and stores it. It
// returns a *admission.Rejection for policy failures, ErrInvalidRequest for
// bad contact fields and ErrStorage or ErrPersist for store failures.
func (s *Service) Book(ctx context.Context, req Request) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "booking.admit", trace.WithAttributes(
		attribute.String("appointment.start", req.Start.UTC().Format(time.RFC3339)),
		attribute.String("appointment.end", req.End.UTC().Format(time.RFC3339)),
	))
	defer span.End()

	appt, err := req.appointment()
	if err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return Result{}, err
	}
	candidate := admission.Interval{Start: appt.Start, End: appt.End}
	if err := s.evaluator.Validate(candidate); err != nil {
		s.rejected(span, err)
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// Past this point the decision runs to completion even if the caller
	// goes away, so a stored appointment is never half-acknowledged.
	decideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	s.calendar.Lock()
	err = s.decide(decideCtx, candidate, &appt)
	s.calendar.Unlock()

	var rej *admission.Rejection
	switch {
	case errors.As(err, &rej):
		s.rejected(span, err)
		return Result{}, err
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage")
		s.logger.Error("appointment not stored", "err", err, "start", appt.Start)
		return Result{}, err
	}

	stored := s.store.Durable()
	span.SetAttributes(attribute.Bool("appointment.stored", stored))
	s.logger.Info("appointment admitted", "appointment_id", appt.ID, "start", appt.Start, "stored", stored)

	loc := s.evaluator.Policy().Location()
	s.notifier.Dispatch(ctx, notify.AppointmentAdmin(appt, s.adminRecipients, loc))
	s.notifier.Dispatch(ctx, notify.AppointmentRequester(appt, loc))

	return Result{ID: appt.ID, Stored: stored}, nil
}

// decide runs count-then-insert as one admission decision, inside the
// store's calendar lock when it has one.
func (s *Service) decide(ctx context.Context, candidate admission.Interval, appt *model.Appointment) error {
	fn := func(ctx context.Context, calendar storage.AppointmentStore) error {
		if err := s.evaluator.Check(ctx, candidate, calendar); err != nil {
			return err
		}
		if _, err := calendar.Insert(ctx, appt); err != nil {
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
		return nil
	}

	var err error
	if locker, ok := s.store.(storage.CalendarLocker); ok {
		err = locker.WithCalendarLock(ctx, fn)
	} else {
		err = fn(ctx, s.store)
	}
	if err == nil {
		return nil
	}
	var rej *admission.Rejection
	if errors.As(err, &rej) || errors.Is(err, ErrPersist) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func (s *Service) rejected(span trace.Span, err error) {
	var rej *admission.Rejection
	if errors.As(err, &rej) {
		span.SetAttributes(attribute.String("admission.reason", string(rej.Reason)))
		s.logger.Info("appointment rejected", "reason", rej.Reason)
	}
}

// Recent lists stored appointments, newest first. It takes no calendar lock.
func (s *Service) Recent(ctx context.Context, limit int) ([]model.Appointment, error) {
	appts, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return appts, nil
}

// FreeSlots lists the slot starts still open on the given date.
func (s *Service) FreeSlots(ctx context.Context, year int, month time.Month, day int, now time.Time) ([]time.Time, error) {
	p := s.evaluator.Policy()
	opens, closes, ok := p.BusinessDay(year, month, day)
	if !ok {
		return []time.Time{}, nil
	}
	appts, err := s.store.ListBetween(ctx, opens.Add(-p.Buffer()), closes.Add(p.Buffer()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	booked := make([]admission.Interval, 0, len(appts))
	for _, a := range appts {
		booked = append(booked, admission.Interval{Start: a.Start, End: a.End})
	}
	slots := availability.FreeSlots(s.evaluator, year, month, day, booked, now)
	if slots == nil {
		slots = []time.Time{}
	}
	return slots, nil
}

func (r Request) appointment() (model.Appointment, error) {
	appt := model.Appointment{
		Name:   strings.TrimSpace(r.Name),
		Email:  strings.TrimSpace(r.Email),
		Phone:  strings.TrimSpace(r.Phone),
		Start:  r.Start,
		End:    r.End,
		Note:   strings.TrimSpace(r.Note),
		Source: strings.TrimSpace(r.Source),
	}
	if appt.Name == "" || appt.Email == "" || appt.Phone == "" {
		return model.Appointment{}, fmt.Errorf("%w: name, email and phone are required", ErrInvalidRequest)
	}
	if err := ValidateEmail(appt.Email); err != nil {
		return model.Appointment{}, err
	}
	if appt.Source == "" {
		appt.Source = model.DefaultLeadSource
	}
	return appt, nil
}

// ValidateEmail accepts a bare address only, without display name.
func ValidateEmail(addr string) error {
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return fmt.Errorf("%w: invalid email address", ErrInvalidRequest)
	}
	return nil
}
