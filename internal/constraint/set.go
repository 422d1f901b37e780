// Package constraint holds the rules that decide whether a date or time is
// selectable and evaluates them at a given granularity.
package constraint

import (
	"errors"
	"maps"
	"slices"
	"time"

	"datepicker/internal/dateval"
)

// ErrBoundsInverted is returned when a maximum date would lie before the
// minimum date (or the other way around).
var ErrBoundsInverted = errors.New("maxDate is before minDate")

// Set is a collection of validity rules. The zero Set accepts every valid
// value.
//
// Enabled and disabled date sets are mutually exclusive, as are enabled and
// disabled hour sets: setting one clears the other.
type Set struct {
	minDate, maxDate *dateval.Value

	disabledDates map[string]struct{}
	enabledDates  map[string]struct{}
	weekdays      map[time.Weekday]struct{}

	disabledHours map[int]struct{}
	enabledHours  map[int]struct{}

	intervals   []Interval
	recurrences []*Recurrence
}

// SetMinDate sets the inclusive lower bound. A nil value removes it.
func (s *Set) SetMinDate(v *dateval.Value) error {
	if v != nil && s.maxDate != nil && v.After(*s.maxDate, dateval.UnitNone) {
		return ErrBoundsInverted
	}
	s.minDate = clone(v)
	return nil
}

// SetMaxDate sets the inclusive upper bound. A nil value removes it.
func (s *Set) SetMaxDate(v *dateval.Value) error {
	if v != nil && s.minDate != nil && v.Before(*s.minDate, dateval.UnitNone) {
		return ErrBoundsInverted
	}
	s.maxDate = clone(v)
	return nil
}

func clone(v *dateval.Value) *dateval.Value {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (s *Set) MinDate() *dateval.Value { return clone(s.minDate) }
func (s *Set) MaxDate() *dateval.Value { return clone(s.maxDate) }

// SetDisabledDates replaces the deny-list of calendar days and clears any
// enabled dates. An empty list removes the constraint.
func (s *Set) SetDisabledDates(days []dateval.Value) {
	s.disabledDates = daySet(days)
	if s.disabledDates != nil {
		s.enabledDates = nil
	}
}

// SetEnabledDates replaces the allow-list of calendar days and clears any
// disabled dates. An empty list removes the constraint.
func (s *Set) SetEnabledDates(days []dateval.Value) {
	s.enabledDates = daySet(days)
	if s.enabledDates != nil {
		s.disabledDates = nil
	}
}

func daySet(days []dateval.Value) map[string]struct{} {
	m := make(map[string]struct{}, len(days))
	for _, d := range days {
		if d.Valid() {
			m[d.ISODate()] = struct{}{}
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func (s *Set) DisabledDates() []string { return sortedKeys(s.disabledDates) }
func (s *Set) EnabledDates() []string  { return sortedKeys(s.enabledDates) }

// SetDaysOfWeekDisabled replaces the disabled weekdays. Values outside 0-6
// are dropped.
func (s *Set) SetDaysOfWeekDisabled(days []int) {
	s.weekdays = nil
	for _, d := range days {
		if d < 0 || d > 6 {
			continue
		}
		if s.weekdays == nil {
			s.weekdays = make(map[time.Weekday]struct{})
		}
		s.weekdays[time.Weekday(d)] = struct{}{}
	}
}

// DaysOfWeekDisabled returns the disabled weekdays in ascending order.
func (s *Set) DaysOfWeekDisabled() []int {
	out := make([]int, 0, len(s.weekdays))
	for d := range s.weekdays {
		out = append(out, int(d))
	}
	slices.Sort(out)
	return out
}

// SetDisabledHours replaces the hour deny-list and clears enabled hours.
// Values outside 0-23 are dropped.
func (s *Set) SetDisabledHours(hours []int) {
	s.disabledHours = hourSet(hours)
	if s.disabledHours != nil {
		s.enabledHours = nil
	}
}

// SetEnabledHours replaces the hour allow-list and clears disabled hours.
// Values outside 0-23 are dropped.
func (s *Set) SetEnabledHours(hours []int) {
	s.enabledHours = hourSet(hours)
	if s.enabledHours != nil {
		s.disabledHours = nil
	}
}

func hourSet(hours []int) map[int]struct{} {
	var m map[int]struct{}
	for _, h := range hours {
		if h < 0 || h > 23 {
			continue
		}
		if m == nil {
			m = make(map[int]struct{})
		}
		m[h] = struct{}{}
	}
	return m
}

func (s *Set) DisabledHours() []int { return sortedKeys(s.disabledHours) }
func (s *Set) EnabledHours() []int  { return sortedKeys(s.enabledHours) }

// SetDisabledIntervals replaces the blacked-out time ranges.
func (s *Set) SetDisabledIntervals(ivs []Interval) {
	s.intervals = slices.Clone(ivs)
	if len(s.intervals) == 0 {
		s.intervals = nil
	}
}

func (s *Set) DisabledIntervals() []Interval { return slices.Clone(s.intervals) }

// SetDisabledRecurrences replaces the recurring disabled days.
func (s *Set) SetDisabledRecurrences(rs []*Recurrence) {
	s.recurrences = slices.Clone(rs)
	if len(s.recurrences) == 0 {
		s.recurrences = nil
	}
}

func (s *Set) DisabledRecurrences() []*Recurrence { return slices.Clone(s.recurrences) }

func sortedKeys[K string | int](m map[K]struct{}) []K {
	if m == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(m))
}

// IsValid reports whether v is selectable at granularity g. Day rules apply
// only at UnitDay and hour rules only at hour, minute or second granularity;
// the min/max bounds apply at every granularity, with UnitNone comparing
// exact instants. Bounds are inclusive.
func (s *Set) IsValid(v dateval.Value, g dateval.Unit) bool {
	if !v.Valid() {
		return false
	}
	if g == dateval.UnitDay {
		if s.disabledDates != nil {
			if _, ok := s.disabledDates[v.ISODate()]; ok {
				return false
			}
		}
		if s.enabledDates != nil {
			if _, ok := s.enabledDates[v.ISODate()]; !ok {
				return false
			}
		}
	}
	if s.minDate != nil && v.Before(*s.minDate, g) {
		return false
	}
	if s.maxDate != nil && v.After(*s.maxDate, g) {
		return false
	}
	if g == dateval.UnitDay {
		if _, ok := s.weekdays[v.Weekday()]; ok {
			return false
		}
		for _, r := range s.recurrences {
			if r.OccursOn(v) {
				return false
			}
		}
	}
	if g.IsTime() {
		if s.disabledHours != nil {
			if _, ok := s.disabledHours[v.Hour()]; ok {
				return false
			}
		}
		if s.enabledHours != nil {
			if _, ok := s.enabledHours[v.Hour()]; !ok {
				return false
			}
		}
		for _, iv := range s.intervals {
			if iv.Contains(v) {
				return false
			}
		}
	}
	return true
}
