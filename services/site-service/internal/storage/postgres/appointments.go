package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/websitekoning/koning-api/libs/db"
	"github.com/websitekoning/koning-api/services/site-service/internal/model"
	"github.com/websitekoning/koning-api/services/site-service/internal/storage"
)

// calendarLockKey identifies the single shared calendar for
// pg_advisory_xact_lock.
const calendarLockKey int64 = 0x6b6f6e696e67

const appointmentColumns = `id::text, name, email, phone, start_time, end_time, note, source, assigned_to, created_at`

type AppointmentRepository struct {
	pool *db.Pool
	q    querier
}

var (
	_ storage.AppointmentStore = (*AppointmentRepository)(nil)
	_ storage.CalendarLocker   = (*AppointmentRepository)(nil)
)

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, q: pool}
}

func (r *AppointmentRepository) Durable() bool { return true }

// WithCalendarLock runs fn in a transaction holding the calendar advisory
// lock. Every replica serializes on the same key until commit or rollback.
func (r *AppointmentRepository) WithCalendarLock(ctx context.Context, fn func(ctx context.Context, calendar storage.AppointmentStore) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, calendarLockKey); err != nil {
		return fmt.Errorf("lock calendar: %w", err)
	}
	if err := fn(ctx, &AppointmentRepository{pool: r.pool, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) CountOverlapping(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT count(*)
		FROM appointments
		WHERE start_time < $2
			AND end_time > $1
	`, start, end).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *AppointmentRepository) Insert(ctx context.Context, appt *model.Appointment) (string, error) {
	err := r.q.QueryRow(ctx, `
		INSERT INTO appointments
			(name, email, phone, start_time, end_time, note, source, assigned_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text, created_at
	`, appt.Name, appt.Email, appt.Phone, appt.Start, appt.End, appt.Note, appt.Source, appt.AssignedTo).
		Scan(&appt.ID, &appt.CreatedAt)
	if err != nil {
		return "", err
	}
	return appt.ID, nil
}

func (r *AppointmentRepository) ListRecent(ctx context.Context, limit int) ([]model.Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY created_at DESC
		LIMIT $1
	`, limitOr(limit, 100))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanAppointment)
}

func (r *AppointmentRepository) ListBetween(ctx context.Context, from, to time.Time) ([]model.Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE start_time < $2
			AND end_time > $1
		ORDER BY start_time ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanAppointment)
}

func scanAppointment(row pgx.CollectableRow) (model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.Name,
		&appt.Email,
		&appt.Phone,
		&appt.Start,
		&appt.End,
		&appt.Note,
		&appt.Source,
		&appt.AssignedTo,
		&appt.CreatedAt,
	)
	return appt, err
}
