package constraint

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Availability is a bookable window written as a standard five field cron
// expression. Only the hour and day-of-week fields are used:
// "* 9-17 * * 1-5" allows 09:00-17:59 on weekdays. The minute,
// day-of-month and month fields must be "*".
type Availability struct {
	Spec string
	// EnabledHours is nil when every hour is allowed.
	EnabledHours []int
	// DisabledWeekdays lists the weekdays (0 = Sunday) outside the window.
	DisabledWeekdays []int
}

// ParseAvailability parses a cron window into hour and weekday constraints.
func ParseAvailability(spec string) (Availability, error) {
	spec = strings.TrimSpace(spec)
	fields := strings.Fields(spec)
	if len(fields) != 5 {
		return Availability{}, fmt.Errorf("availability %q: want 5 cron fields, got %d", spec, len(fields))
	}
	for i, name := range map[int]string{0: "minute", 2: "day of month", 3: "month"} {
		if fields[i] != "*" {
			return Availability{}, fmt.Errorf("availability %q: %s field must be *", spec, name)
		}
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return Availability{}, fmt.Errorf("availability %q: %w", spec, err)
	}
	ss, ok := sched.(*cron.SpecSchedule)
	if !ok {
		return Availability{}, fmt.Errorf("availability %q: not a field schedule", spec)
	}

	a := Availability{Spec: spec}
	var hours []int
	for h := 0; h < 24; h++ {
		if ss.Hour&(1<<uint(h)) != 0 {
			hours = append(hours, h)
		}
	}
	if len(hours) < 24 {
		a.EnabledHours = hours
	}
	for d := 0; d < 7; d++ {
		if ss.Dow&(1<<uint(d)) == 0 {
			a.DisabledWeekdays = append(a.DisabledWeekdays, d)
		}
	}
	return a, nil
}

// Apply installs the window into s, replacing its hour and weekday rules.
func (a Availability) Apply(s *Set) {
	if a.EnabledHours != nil {
		s.SetEnabledHours(a.EnabledHours)
	}
	s.SetDaysOfWeekDisabled(a.DisabledWeekdays)
}
