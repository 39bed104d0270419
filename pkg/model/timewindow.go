package model

import (
	"errors"
	"time"
)

var ErrInvalidWindow = errors.New("window start must be before end")

// TimeWindow is a half-open interval [Start, End). Appointments, breaks
// and working hours are all compared through it so that boundary
// semantics stay consistent: touching windows do not overlap.
type TimeWindow struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !start.Before(end) {
		return TimeWindow{}, ErrInvalidWindow
	}
	return TimeWindow{Start: start, End: end}, nil
}

// Overlaps reports whether the two half-open intervals intersect.
// An appointment ending at T and another starting at T do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Contains reports whether other lies entirely within w.
func (w TimeWindow) Contains(other TimeWindow) bool {
	return !other.Start.Before(w.Start) && !w.End.Before(other.End)
}

func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
