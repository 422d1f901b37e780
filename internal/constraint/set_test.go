package constraint_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"datepicker/internal/constraint"
	"datepicker/internal/dateval"
)

func at(y int, m time.Month, d, h, min int) dateval.Value {
	return dateval.FromTime(time.Date(y, m, d, h, min, 0, 0, time.UTC), nil)
}

func ptr(v dateval.Value) *dateval.Value { return &v }

func TestMinDateScenario(t *testing.T) {
	var s constraint.Set
	if err := s.SetMinDate(ptr(at(2020, 1, 1, 0, 0))); err != nil {
		t.Fatal(err)
	}
	if s.IsValid(at(2019, 12, 31, 0, 0), dateval.UnitDay) {
		t.Errorf("2019-12-31 should be before minDate")
	}
	if !s.IsValid(at(2020, 1, 1, 0, 0), dateval.UnitDay) {
		t.Errorf("2020-01-01 should be valid")
	}
}

func TestBoundsInclusive(t *testing.T) {
	var s constraint.Set
	min, max := at(2021, 3, 10, 12, 0), at(2021, 3, 20, 12, 0)
	if err := s.SetMinDate(&min); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMaxDate(&max); err != nil {
		t.Fatal(err)
	}
	for i, tc := range []struct {
		v    dateval.Value
		g    dateval.Unit
		want bool
	}{
		{min, dateval.UnitDay, true},
		{min.Add(-1, dateval.UnitDay), dateval.UnitDay, false},
		{max, dateval.UnitDay, true},
		{max.Add(1, dateval.UnitDay), dateval.UnitDay, false},
		// Earlier on the same day as minDate is fine per day but not per hour.
		{at(2021, 3, 10, 8, 0), dateval.UnitDay, true},
		{at(2021, 3, 10, 8, 0), dateval.UnitHour, false},
		{at(2021, 3, 10, 8, 0), dateval.UnitNone, false},
		{at(2021, 3, 20, 12, 30), dateval.UnitHour, true},
		{at(2021, 3, 20, 12, 30), dateval.UnitNone, false},
		{at(2021, 1, 1, 0, 0), dateval.UnitMonth, false},
		{at(2021, 3, 1, 0, 0), dateval.UnitMonth, true},
		{dateval.Invalid(), dateval.UnitNone, false},
	} {
		if got, want := s.IsValid(tc.v, tc.g), tc.want; got != want {
			t.Errorf("%v: %v at %q: got %v, want %v", i, tc.v, tc.g, got, want)
		}
	}
}

func TestBoundsInverted(t *testing.T) {
	var s constraint.Set
	if err := s.SetMinDate(ptr(at(2021, 5, 1, 0, 0))); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMaxDate(ptr(at(2021, 4, 1, 0, 0))); !errors.Is(err, constraint.ErrBoundsInverted) {
		t.Errorf("got %v, want %v", err, constraint.ErrBoundsInverted)
	}
	if s.MaxDate() != nil {
		t.Errorf("rejected maxDate was stored")
	}
	if err := s.SetMaxDate(ptr(at(2021, 6, 1, 0, 0))); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMinDate(ptr(at(2021, 7, 1, 0, 0))); !errors.Is(err, constraint.ErrBoundsInverted) {
		t.Errorf("got %v, want %v", err, constraint.ErrBoundsInverted)
	}
}

func TestDateSetsMutuallyExclusive(t *testing.T) {
	var s constraint.Set
	s.SetDisabledDates([]dateval.Value{at(2021, 5, 3, 0, 0)})
	s.SetEnabledDates([]dateval.Value{at(2021, 5, 4, 0, 0), at(2021, 5, 5, 0, 0)})
	if got := s.DisabledDates(); got != nil {
		t.Errorf("disabled dates not cleared: %v", got)
	}
	if diff := cmp.Diff([]string{"2021-05-04", "2021-05-05"}, s.EnabledDates()); diff != "" {
		t.Errorf("enabled dates (-want +got):\n%s", diff)
	}
	if s.IsValid(at(2021, 5, 3, 0, 0), dateval.UnitDay) {
		t.Errorf("day outside the allow-list should be invalid")
	}
	if !s.IsValid(at(2021, 5, 4, 15, 0), dateval.UnitDay) {
		t.Errorf("allowed day should be valid")
	}
	// Day rules do not apply without day granularity.
	if !s.IsValid(at(2021, 5, 3, 0, 0), dateval.UnitNone) {
		t.Errorf("day rules should not apply at UnitNone")
	}

	s.SetDisabledDates([]dateval.Value{at(2021, 5, 4, 0, 0)})
	if got := s.EnabledDates(); got != nil {
		t.Errorf("enabled dates not cleared: %v", got)
	}
	if s.IsValid(at(2021, 5, 4, 0, 0), dateval.UnitDay) || !s.IsValid(at(2021, 5, 3, 0, 0), dateval.UnitDay) {
		t.Errorf("deny-list not applied")
	}

	s.SetDisabledDates(nil)
	if s.DisabledDates() != nil || s.EnabledDates() != nil {
		t.Errorf("empty list should clear the constraint")
	}
}

func TestHourSetsMutuallyExclusive(t *testing.T) {
	var s constraint.Set
	s.SetEnabledHours([]int{9, 10, 24, -1})
	s.SetDisabledHours([]int{9, 10, 11})
	if s.EnabledHours() != nil {
		t.Errorf("enabled hours not cleared")
	}
	if diff := cmp.Diff([]int{9, 10, 11}, s.DisabledHours()); diff != "" {
		t.Errorf("disabled hours (-want +got):\n%s", diff)
	}
	candidate := at(2021, 5, 3, 10, 0)
	if s.IsValid(candidate, dateval.UnitHour) {
		t.Errorf("hour 10 should be disabled at hour granularity")
	}
	if !s.IsValid(candidate, dateval.UnitDay) {
		t.Errorf("hour rules should not apply at day granularity")
	}
}

func TestDaysOfWeekDisabled(t *testing.T) {
	var s constraint.Set
	s.SetDaysOfWeekDisabled([]int{6, 0, 0, 9})
	if diff := cmp.Diff([]int{0, 6}, s.DaysOfWeekDisabled()); diff != "" {
		t.Errorf("weekdays (-want +got):\n%s", diff)
	}
	if s.IsValid(at(2021, 5, 1, 0, 0), dateval.UnitDay) { // Saturday
		t.Errorf("Saturday should be disabled")
	}
	if !s.IsValid(at(2021, 5, 3, 0, 0), dateval.UnitDay) { // Monday
		t.Errorf("Monday should be valid")
	}
}

func TestDisabledIntervalsHalfOpen(t *testing.T) {
	var s constraint.Set
	iv, err := constraint.NewInterval(at(2021, 5, 3, 12, 0), at(2021, 5, 3, 13, 0))
	if err != nil {
		t.Fatal(err)
	}
	s.SetDisabledIntervals([]constraint.Interval{iv})
	for i, tc := range []struct {
		v    dateval.Value
		want bool
	}{
		{at(2021, 5, 3, 11, 59), true},
		{at(2021, 5, 3, 12, 0), false},
		{at(2021, 5, 3, 12, 30), false},
		{at(2021, 5, 3, 13, 0), true},
	} {
		if got := s.IsValid(tc.v, dateval.UnitMinute); got != tc.want {
			t.Errorf("%v: %v: got %v, want %v", i, tc.v, got, tc.want)
		}
	}
	if !s.IsValid(at(2021, 5, 3, 12, 30), dateval.UnitDay) {
		t.Errorf("intervals should not apply at day granularity")
	}
	if _, err := constraint.NewInterval(at(2021, 5, 3, 13, 0), at(2021, 5, 3, 12, 0)); err == nil {
		t.Errorf("expected an error for an inverted interval")
	}
}

func TestRecurrence(t *testing.T) {
	var s constraint.Set
	r, err := constraint.ParseRecurrence("FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	s.SetDisabledRecurrences([]*constraint.Recurrence{r})
	if s.IsValid(at(2021, 12, 25, 10, 0), dateval.UnitDay) {
		t.Errorf("Christmas should be disabled")
	}
	if !s.IsValid(at(2021, 12, 24, 10, 0), dateval.UnitDay) {
		t.Errorf("Christmas Eve should be valid")
	}
	if !s.IsValid(at(2021, 12, 25, 10, 0), dateval.UnitHour) {
		t.Errorf("recurrences apply to whole days only")
	}
	if _, err := constraint.ParseRecurrence("FREQ=SOMETIMES", time.UTC); err == nil {
		t.Errorf("expected a parse error")
	}
}

func TestAvailability(t *testing.T) {
	a, err := constraint.ParseAvailability("* 9-17 * * 1-5")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{9, 10, 11, 12, 13, 14, 15, 16, 17}, a.EnabledHours); diff != "" {
		t.Errorf("hours (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 6}, a.DisabledWeekdays); diff != "" {
		t.Errorf("weekdays (-want +got):\n%s", diff)
	}
	var s constraint.Set
	s.SetDisabledHours([]int{3})
	a.Apply(&s)
	if s.DisabledHours() != nil {
		t.Errorf("availability should replace disabled hours")
	}
	if s.IsValid(at(2021, 5, 3, 18, 0), dateval.UnitHour) {
		t.Errorf("18:00 is outside the window")
	}

	all, err := constraint.ParseAvailability("* * * * *")
	if err != nil {
		t.Fatal(err)
	}
	if all.EnabledHours != nil || all.DisabledWeekdays != nil {
		t.Errorf("unrestricted window: got %+v", all)
	}
	for _, bad := range []string{"", "0 9 * * *", "* 9 1 * *", "* 25 * * *", "@daily"} {
		if _, err := constraint.ParseAvailability(bad); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}
