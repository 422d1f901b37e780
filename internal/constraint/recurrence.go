package constraint

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"datepicker/internal/dateval"
)

// Recurrence disables every calendar day on which an RFC 5545 recurrence
// rule has an occurrence, e.g. "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25" or
// "FREQ=MONTHLY;BYDAY=1MO". Rules without a DTSTART are anchored at
// 1970-01-01 in the picker's location.
type Recurrence struct {
	rule string
	set  *rrule.Set
}

// ParseRecurrence parses rule. A rule may carry its own DTSTART, RDATE and
// EXDATE lines, separated by newlines; those are read in UTC unless they name
// a TZID.
func ParseRecurrence(rule string, loc *time.Location) (*Recurrence, error) {
	if loc == nil {
		loc = time.Local
	}
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return nil, fmt.Errorf("recurrence: empty rule")
	}
	if strings.Contains(strings.ToUpper(rule), "DTSTART") {
		set, err := rrule.StrToRRuleSet(rule)
		if err != nil {
			return nil, fmt.Errorf("recurrence %q: %w", rule, err)
		}
		return &Recurrence{rule: rule, set: set}, nil
	}
	r, err := rrule.StrToRRule(strings.TrimPrefix(rule, "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("recurrence %q: %w", rule, err)
	}
	r.DTStart(time.Date(1970, time.January, 1, 0, 0, 0, 0, loc))
	var set rrule.Set
	set.RRule(r)
	return &Recurrence{rule: rule, set: &set}, nil
}

// OccursOn reports whether the rule has an occurrence during v's day.
func (r *Recurrence) OccursOn(v dateval.Value) bool {
	if !v.Valid() {
		return false
	}
	start := v.StartOf(dateval.UnitDay).Time()
	end := v.EndOf(dateval.UnitDay).Time()
	return len(r.set.Between(start, end, true)) > 0
}

func (r *Recurrence) String() string { return r.rule }
