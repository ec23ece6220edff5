// Package admission decides whether a requested appointment may be booked
// against the current calendar.
package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/websitekoning/koning-api/services/site-service/internal/policy"
)

type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps is the strict test: [a,b) and [c,d) overlap iff a < d && c < b.
// Touching intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Counter reports how many stored appointments overlap [start, end) under the
// strict test.
type Counter interface {
	CountOverlapping(ctx context.Context, start, end time.Time) (int, error)
}

type Evaluator struct {
	policy *policy.Policy
}

func New(p *policy.Policy) *Evaluator {
	return &Evaluator{policy: p}
}

func (e *Evaluator) Policy() *policy.Policy { return e.policy }

// Validate runs the shape checks that need no calendar state.
func (e *Evaluator) Validate(c Interval) error {
	if !c.End.After(c.Start) {
		return reject(ReasonInvalidRange, "end must be after start")
	}
	if d := c.End.Sub(c.Start); d != e.policy.SlotDuration() {
		return reject(ReasonInvalidDuration, "appointments last %s (got %s)", e.policy.SlotDuration(), d)
	}
	if !e.policy.WithinBusinessHours(c.Start, c.End) {
		return reject(ReasonOutsideBusinessHours, "appointments are Monday to Friday within business hours")
	}
	return nil
}

// Window is the candidate widened by the buffer on both sides. Any stored
// appointment intersecting it counts against capacity.
func (e *Evaluator) Window(c Interval) Interval {
	b := e.policy.Buffer()
	return Interval{Start: c.Start.Add(-b), End: c.End.Add(b)}
}

// Check returns nil when the candidate may be admitted, a *Rejection when
// policy forbids it, or a wrapped error when the counter fails. The counter is
// consulted only after Validate passes.
func (e *Evaluator) Check(ctx context.Context, c Interval, existing Counter) error {
	if err := e.Validate(c); err != nil {
		return err
	}
	w := e.Window(c)
	n, err := existing.CountOverlapping(ctx, w.Start, w.End)
	if err != nil {
		return fmt.Errorf("count overlapping: %w", err)
	}
	if n >= e.policy.Capacity() {
		return reject(ReasonSlotFull, "time slot is fully booked, choose another time")
	}
	return nil
}

// CountIn is the in-memory counterpart of Counter for callers that already
// hold the relevant intervals.
func CountIn(window Interval, existing []Interval) int {
	n := 0
	for _, iv := range existing {
		if iv.Overlaps(window) {
			n++
		}
	}
	return n
}

// Intervals adapts a slice to Counter.
type Intervals []Interval

func (s Intervals) CountOverlapping(_ context.Context, start, end time.Time) (int, error) {
	return CountIn(Interval{Start: start, End: end}, s), nil
}
