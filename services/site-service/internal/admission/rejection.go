package admission

import "fmt"

type Reason string

const (
	ReasonInvalidRange         Reason = "invalid_range"
	ReasonInvalidDuration      Reason = "invalid_duration"
	ReasonOutsideBusinessHours Reason = "outside_business_hours"
	ReasonSlotFull             Reason = "slot_full"
)

// Rejection is a policy decision against a candidate. Callers match it with
// errors.Is against the Err* values or errors.As to read the detail.
type Rejection struct {
	Reason Reason
	Detail string
}

var (
	ErrInvalidRange         = &Rejection{Reason: ReasonInvalidRange}
	ErrInvalidDuration      = &Rejection{Reason: ReasonInvalidDuration}
	ErrOutsideBusinessHours = &Rejection{Reason: ReasonOutsideBusinessHours}
	ErrSlotFull             = &Rejection{Reason: ReasonSlotFull}
)

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Reason == r.Reason
}

// Conflict reports whether the rejection is about capacity rather than the
// shape of the request.
func (r *Rejection) Conflict() bool {
	return r.Reason == ReasonSlotFull
}

func reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}
