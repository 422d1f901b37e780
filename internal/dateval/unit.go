package dateval

import (
	"fmt"
	"strings"
)

// Unit is a calendar or clock granularity used for arithmetic, truncation
// and comparisons. UnitNone means "exact instant".
type Unit int

const (
	UnitNone Unit = iota
	UnitYear
	UnitMonth
	UnitWeek
	UnitDay
	UnitHour
	UnitMinute
	UnitSecond
)

var unitShort = [...]string{
	UnitNone:   "",
	UnitYear:   "y",
	UnitMonth:  "M",
	UnitWeek:   "w",
	UnitDay:    "d",
	UnitHour:   "h",
	UnitMinute: "m",
	UnitSecond: "s",
}

func (u Unit) String() string {
	if u < 0 || int(u) >= len(unitShort) {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return unitShort[u]
}

// IsTime reports whether u is an hour, minute or second granularity.
func (u Unit) IsTime() bool {
	return u == UnitHour || u == UnitMinute || u == UnitSecond
}

// ParseUnit accepts the single character short forms ("y", "M", "d", "h",
// "m", "s", "w") as well as long names such as "year" or "minutes".
// Short forms are case sensitive where they would otherwise be ambiguous
// ("M" is month, "m" is minute).
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "":
		return UnitNone, nil
	case "y", "Y", "YYYY":
		return UnitYear, nil
	case "M":
		return UnitMonth, nil
	case "w", "W":
		return UnitWeek, nil
	case "d", "D":
		return UnitDay, nil
	case "h", "H":
		return UnitHour, nil
	case "m":
		return UnitMinute, nil
	case "s":
		return UnitSecond, nil
	}
	switch strings.TrimSuffix(strings.ToLower(s), "s") {
	case "year":
		return UnitYear, nil
	case "month":
		return UnitMonth, nil
	case "week":
		return UnitWeek, nil
	case "day", "date":
		return UnitDay, nil
	case "hour":
		return UnitHour, nil
	case "minute":
		return UnitMinute, nil
	case "second":
		return UnitSecond, nil
	}
	return UnitNone, fmt.Errorf("unknown unit %q", s)
}
