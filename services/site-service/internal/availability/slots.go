package availability

import (
	"time"

	"github.com/websitekoning/koning-api/services/site-service/internal/admission"
)

// FreeSlots returns slot start times on the given date that the evaluator
// would admit against the booked intervals. Slots start at opening time and
// step by the slot duration; starts before now are skipped.
func FreeSlots(e *admission.Evaluator, year int, month time.Month, day int, booked []admission.Interval, now time.Time) []time.Time {
	p := e.Policy()
	opens, closes, ok := p.BusinessDay(year, month, day)
	if !ok {
		return nil
	}
	return AvailableSlots(e, opens, closes, p.SlotDuration(), booked, now)
}

// AvailableSlots walks [windowStart, windowEnd) in steps of step and keeps
// every start whose slot passes validation and whose buffered window holds
// fewer than capacity booked intervals.
func AvailableSlots(e *admission.Evaluator, windowStart, windowEnd time.Time, step time.Duration, booked []admission.Interval, now time.Time) []time.Time {
	p := e.Policy()
	duration := p.SlotDuration()
	if duration <= 0 || step <= 0 {
		return nil
	}
	if !windowEnd.After(windowStart) {
		return nil
	}

	var slots []time.Time
	for t := windowStart; !t.Add(duration).After(windowEnd); t = t.Add(step) {
		if t.Before(now) {
			continue
		}
		c := admission.Interval{Start: t, End: t.Add(duration)}
		if e.Validate(c) != nil {
			continue
		}
		if admission.CountIn(e.Window(c), booked) < p.Capacity() {
			slots = append(slots, t)
		}
	}
	return slots
}
