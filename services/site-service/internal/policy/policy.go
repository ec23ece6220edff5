// Package policy defines when the business takes appointments: opening
// hours, working days, slot length, the idle buffer kept around every
// booking and how many bookings may share a buffered window.
package policy

import (
	"fmt"
	"time"
)

// Config is the tunable calendar policy. Start from DefaultConfig or load it
// from the environment.
type Config struct {
	Open         string        `env:"BUSINESS_OPEN" envDefault:"10:00"`
	Close        string        `env:"BUSINESS_CLOSE" envDefault:"17:00"`
	SlotDuration time.Duration `env:"SLOT_DURATION" envDefault:"30m"`
	Buffer       time.Duration `env:"BOOKING_BUFFER" envDefault:"15m"`
	Capacity     int           `env:"BOOKING_CAPACITY" envDefault:"2"`
	Timezone     string        `env:"BUSINESS_TIMEZONE" envDefault:"UTC"`
}

func DefaultConfig() Config {
	return Config{
		Open:         "10:00",
		Close:        "17:00",
		SlotDuration: 30 * time.Minute,
		Buffer:       15 * time.Minute,
		Capacity:     2,
		Timezone:     "UTC",
	}
}

// Policy is an immutable, validated Config. Safe for concurrent use.
type Policy struct {
	open     time.Duration
	close    time.Duration
	slot     time.Duration
	buffer   time.Duration
	capacity int
	loc      *time.Location
}

func New(cfg Config) (*Policy, error) {
	open, err := parseClock(cfg.Open)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	closeAt, err := parseClock(cfg.Close)
	if err != nil {
		return nil, fmt.Errorf("close: %w", err)
	}
	if closeAt <= open {
		return nil, fmt.Errorf("close %s must be after open %s", cfg.Close, cfg.Open)
	}
	if cfg.SlotDuration <= 0 || cfg.SlotDuration > closeAt-open {
		return nil, fmt.Errorf("slot duration %s does not fit business hours", cfg.SlotDuration)
	}
	if cfg.Buffer < 0 {
		return nil, fmt.Errorf("buffer must not be negative (got %s)", cfg.Buffer)
	}
	if cfg.Capacity < 1 {
		return nil, fmt.Errorf("capacity must be at least 1 (got %d)", cfg.Capacity)
	}
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return &Policy{
		open:     open,
		close:    closeAt,
		slot:     cfg.SlotDuration,
		buffer:   cfg.Buffer,
		capacity: cfg.Capacity,
		loc:      loc,
	}, nil
}

// MustNew is New for static configurations in tests and tools.
func MustNew(cfg Config) *Policy {
	p, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Policy) SlotDuration() time.Duration { return p.slot }
func (p *Policy) Buffer() time.Duration       { return p.buffer }
func (p *Policy) Capacity() int               { return p.capacity }
func (p *Policy) Location() *time.Location    { return p.loc }

// WithinBusinessHours reports whether [start, end] lies on a single working
// day between opening and closing time, read on the policy clock.
func (p *Policy) WithinBusinessHours(start, end time.Time) bool {
	start = start.In(p.loc)
	end = end.In(p.loc)

	if !sameDate(start, end) {
		return false
	}
	if !IsBusinessDay(start.Weekday()) {
		return false
	}
	return clockOf(start) >= p.open && clockOf(end) <= p.close
}

// BusinessDay returns the opening and closing instants of the given date, and
// false when the date is not a working day.
func (p *Policy) BusinessDay(year int, month time.Month, day int) (time.Time, time.Time, bool) {
	if !IsBusinessDay(time.Date(year, month, day, 12, 0, 0, 0, p.loc).Weekday()) {
		return time.Time{}, time.Time{}, false
	}
	// time.Date normalises the nanosecond overflow into wall-clock fields.
	opens := time.Date(year, month, day, 0, 0, 0, int(p.open), p.loc)
	closes := time.Date(year, month, day, 0, 0, 0, int(p.close), p.loc)
	return opens, closes, true
}

func IsBusinessDay(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func clockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

func parseClock(raw string) (time.Duration, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q (want HH:MM)", raw)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
