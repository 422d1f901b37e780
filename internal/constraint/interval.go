package constraint

import (
	"fmt"

	"datepicker/internal/dateval"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start dateval.Value
	End   dateval.Value
}

// NewInterval returns [start, end). Both ends must be valid and start must
// not be after end.
func NewInterval(start, end dateval.Value) (Interval, error) {
	if !start.Valid() || !end.Valid() {
		return Interval{}, fmt.Errorf("interval %v - %v: invalid bound", start, end)
	}
	if start.After(end, dateval.UnitNone) {
		return Interval{}, fmt.Errorf("interval %v - %v: start after end", start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// Contains reports whether v lies in [Start, End).
func (iv Interval) Contains(v dateval.Value) bool {
	return !v.Before(iv.Start, dateval.UnitNone) && v.Before(iv.End, dateval.UnitNone)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%v, %v)", iv.Start, iv.End)
}
