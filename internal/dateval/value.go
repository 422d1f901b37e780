// Package dateval provides an immutable date/time value with calendar
// arithmetic, unit-aware comparison and locale-aware formatting and parsing
// using moment-style pattern tokens (YYYY-MM-DD, HH:mm, L LT, ...).
package dateval

import (
	"time"
)

// Value is a point in time together with the locale used to format it.
// The zero Value is invalid. All operations return new values; a Value is
// never modified in place, so earlier copies stay usable for comparison.
type Value struct {
	t      time.Time
	locale *Locale
	valid  bool
}

// FromTime wraps t. A nil locale selects the default (English) locale.
func FromTime(t time.Time, l *Locale) Value {
	if l == nil {
		l = DefaultLocale()
	}
	return Value{t: t, locale: l, valid: true}
}

// Now returns the current time in loc (time.Local when nil).
func Now(loc *time.Location, l *Locale) Value {
	if loc == nil {
		loc = time.Local
	}
	return FromTime(time.Now().In(loc), l)
}

// Invalid returns a value that represents a failed parse.
func Invalid() Value {
	return Value{locale: DefaultLocale()}
}

func (v Value) Valid() bool { return v.valid }
func (v Value) Time() time.Time { return v.t }
func (v Value) Locale() *Locale { return v.locale }
func (v Value) Year() int { return v.t.Year() }
func (v Value) Month() time.Month { return v.t.Month() }
func (v Value) Day() int { return v.t.Day() }
func (v Value) Weekday() time.Weekday { return v.t.Weekday() }
func (v Value) Hour() int { return v.t.Hour() }
func (v Value) Minute() int { return v.t.Minute() }
func (v Value) Second() int { return v.t.Second() }
func (v Value) Location() *time.Location {
	return v.t.Location()
}

// ISODate returns the calendar day as YYYY-MM-DD in the value's location.
func (v Value) ISODate() string {
	if !v.valid {
		return ""
	}
	return v.t.Format("2006-01-02")
}

// In returns the same instant expressed in loc.
func (v Value) In(loc *time.Location) Value {
	if loc == nil || !v.valid {
		return v
	}
	v.t = v.t.In(loc)
	return v
}

// WithLocale returns the same instant bound to l.
func (v Value) WithLocale(l *Locale) Value {
	if l != nil {
		v.locale = l
	}
	return v
}

func (v Value) String() string {
	if !v.valid {
		return invalidDate
	}
	return v.t.Format(time.RFC3339)
}

// Equal reports whether both values are valid and represent the same instant.
func (v Value) Equal(o Value) bool {
	return v.valid && o.valid && v.t.Equal(o.t)
}

// Before reports whether v is before o at granularity u: the end of v's
// enclosing unit lies strictly before o. UnitNone compares instants.
func (v Value) Before(o Value, u Unit) bool {
	if !v.valid || !o.valid {
		return false
	}
	if u == UnitNone {
		return v.t.Before(o.t)
	}
	return v.EndOf(u).t.Before(o.t)
}

// After reports whether v is after o at granularity u: o lies strictly
// before the start of v's enclosing unit. UnitNone compares instants.
func (v Value) After(o Value, u Unit) bool {
	if !v.valid || !o.valid {
		return false
	}
	if u == UnitNone {
		return v.t.After(o.t)
	}
	return o.t.Before(v.StartOf(u).t)
}

// Same reports whether o falls inside v's enclosing unit u.
func (v Value) Same(o Value, u Unit) bool {
	if !v.valid || !o.valid {
		return false
	}
	if u == UnitNone {
		return v.t.Equal(o.t)
	}
	return !o.t.Before(v.StartOf(u).t) && !o.t.After(v.EndOf(u).t)
}

// StartOf truncates v to the beginning of unit u.
func (v Value) StartOf(u Unit) Value {
	if !v.valid {
		return v
	}
	t := v.t
	y, m, d := t.Date()
	loc := t.Location()
	switch u {
	case UnitYear:
		t = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case UnitMonth:
		t = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case UnitWeek:
		offset := (int(t.Weekday()) - int(v.locale.WeekStart) + 7) % 7
		t = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case UnitDay:
		t = time.Date(y, m, d, 0, 0, 0, 0, loc)
	case UnitHour:
		t = time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case UnitMinute:
		t = time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
	case UnitSecond:
		t = time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc)
	}
	v.t = t
	return v
}

// EndOf returns the last nanosecond of unit u containing v.
func (v Value) EndOf(u Unit) Value {
	if !v.valid || u == UnitNone {
		return v
	}
	v = v.StartOf(u).Add(1, u)
	v.t = v.t.Add(-time.Nanosecond)
	return v
}

// Add moves v by n units. Year and month steps keep the day of month when
// possible and clamp it to the last day of the target month otherwise.
func (v Value) Add(n int, u Unit) Value {
	if !v.valid || n == 0 {
		return v
	}
	switch u {
	case UnitYear:
		return v.addMonths(12 * n)
	case UnitMonth:
		return v.addMonths(n)
	case UnitWeek:
		v.t = v.t.AddDate(0, 0, 7*n)
	case UnitDay:
		v.t = v.t.AddDate(0, 0, n)
	case UnitHour:
		v.t = v.t.Add(time.Duration(n) * time.Hour)
	case UnitMinute:
		v.t = v.t.Add(time.Duration(n) * time.Minute)
	case UnitSecond:
		v.t = v.t.Add(time.Duration(n) * time.Second)
	}
	return v
}

func (v Value) addMonths(n int) Value {
	y, m, d := v.t.Date()
	total := int(m) - 1 + n
	ty := y + floorDiv(total, 12)
	tm := time.Month(total - floorDiv(total, 12)*12 + 1)
	return v.withDate(ty, tm, min(d, DaysIn(ty, tm)))
}

// Subtract is Add(-n, u).
func (v Value) Subtract(n int, u Unit) Value {
	return v.Add(-n, u)
}

// WithYear sets the year, clamping Feb 29 to Feb 28 in non-leap years.
func (v Value) WithYear(year int) Value {
	if !v.valid {
		return v
	}
	_, m, d := v.t.Date()
	return v.withDate(year, m, min(d, DaysIn(year, m)))
}

// WithMonth sets the month, clamping the day to the month length.
func (v Value) WithMonth(month time.Month) Value {
	if !v.valid {
		return v
	}
	y, _, d := v.t.Date()
	if month < time.January || month > time.December {
		total := int(month) - 1
		y += floorDiv(total, 12)
		month = time.Month(total - floorDiv(total, 12)*12 + 1)
	}
	return v.withDate(y, month, min(d, DaysIn(y, month)))
}

// WithDay sets the day of month; out of range values roll over.
func (v Value) WithDay(day int) Value {
	if !v.valid {
		return v
	}
	y, m, _ := v.t.Date()
	return v.withDate(y, m, day)
}

func (v Value) WithHour(h int) Value {
	return v.withClock(h, v.t.Minute(), v.t.Second())
}

func (v Value) WithMinute(m int) Value {
	return v.withClock(v.t.Hour(), m, v.t.Second())
}

func (v Value) WithSecond(s int) Value {
	return v.withClock(v.t.Hour(), v.t.Minute(), s)
}

func (v Value) withDate(y int, m time.Month, d int) Value {
	if !v.valid {
		return v
	}
	t := v.t
	v.t = time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	return v
}

func (v Value) withClock(h, m, s int) Value {
	if !v.valid {
		return v
	}
	y, mo, d := v.t.Date()
	v.t = time.Date(y, mo, d, h, m, s, v.t.Nanosecond(), v.t.Location())
	return v
}

// DaysIn returns the number of days in month m of year y.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
