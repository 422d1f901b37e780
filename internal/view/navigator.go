// Package view tracks which page of the calendar a picker shows: the anchor
// date of the visible page and the grid level (days, months, years or
// decades), plus the separate time view.
package view

import (
	"fmt"
	"time"

	"datepicker/internal/dateval"
	"datepicker/internal/events"
)

// Mode is a calendar grid level.
type Mode int

const (
	Days Mode = iota
	Months
	Years
	Decades
)

var modeNames = [...]string{"days", "months", "years", "decades"}

func (m Mode) String() string {
	if m < Days || m > Decades {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode accepts "days", "months", "years" and "decades".
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), nil
		}
	}
	return Days, fmt.Errorf("unknown view mode %q", s)
}

// step is the page size of each grid level.
var step = [...]struct {
	unit dateval.Unit
	n    int
}{
	Days:    {dateval.UnitMonth, 1},
	Months:  {dateval.UnitYear, 1},
	Years:   {dateval.UnitYear, 10},
	Decades: {dateval.UnitYear, 100},
}

// Direction of a page turn.
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// Navigator holds the anchor date and grid level. The level always lies in
// [MinMode, Decades].
type Navigator struct {
	viewDate dateval.Value
	mode     Mode
	minMode  Mode
	showTime bool
	notifier events.Notifier
}

// New returns a navigator anchored at viewDate showing the days grid. Update
// events go to n, which may be nil.
func New(viewDate dateval.Value, n events.Notifier) *Navigator {
	if n == nil {
		n = events.Discard
	}
	return &Navigator{viewDate: viewDate, notifier: n}
}

func (n *Navigator) ViewDate() dateval.Value { return n.viewDate }
func (n *Navigator) Mode() Mode              { return n.mode }
func (n *Navigator) MinMode() Mode           { return n.minMode }
func (n *Navigator) ShowingTime() bool       { return n.showTime }

// SetViewDate moves the anchor without notifying.
func (n *Navigator) SetViewDate(v dateval.Value) {
	if v.Valid() {
		n.viewDate = v
	}
}

// SetMinMode sets the lowest grid level and raises the current level to it
// when needed.
func (n *Navigator) SetMinMode(m Mode) {
	n.minMode = clamp(m, Days, Decades)
	n.mode = clamp(n.mode, n.minMode, Decades)
}

// SetMode shows level m, clamped to [MinMode, Decades].
func (n *Navigator) SetMode(m Mode) {
	n.mode = clamp(m, n.minMode, Decades)
}

// ToggleTime switches between the calendar and the time view.
func (n *Navigator) ToggleTime() { n.showTime = !n.showTime }

// ShowTime selects the time view (true) or the calendar (false).
func (n *Navigator) ShowTime(on bool) { n.showTime = on }

// Navigate turns one page of the current level: a month in the days grid, a
// year in the months grid, ten years in the years grid and a century in the
// decades grid.
func (n *Navigator) Navigate(d Direction) {
	s := step[n.mode]
	n.viewDate = n.viewDate.Add(int(d)*s.n, s.unit)
	n.update(s.unit)
}

// Zoom moves delta levels towards decades (positive) or days (negative),
// stopping at the bounds.
func (n *Navigator) Zoom(delta int) {
	n.mode = clamp(n.mode+Mode(delta), n.minMode, Decades)
}

// JumpTo sets one field of the anchor date: the month (1-12) for UnitMonth,
// the year for UnitYear, the day of month for UnitDay.
func (n *Navigator) JumpTo(u dateval.Unit, value int) error {
	switch u {
	case dateval.UnitYear:
		n.viewDate = n.viewDate.WithYear(value)
	case dateval.UnitMonth:
		n.viewDate = n.viewDate.WithMonth(time.Month(value))
	case dateval.UnitDay:
		n.viewDate = n.viewDate.WithDay(value)
	default:
		return fmt.Errorf("jump: unsupported unit %q", u.String())
	}
	n.update(u)
	return nil
}

func (n *Navigator) update(u dateval.Unit) {
	n.notifier.Notify(events.Event{Kind: events.Update, Change: u, ViewDate: n.viewDate})
}

func clamp(m, lo, hi Mode) Mode {
	return max(lo, min(hi, m))
}

// StartEndYear returns the first and last year of the page of factor years
// containing year (factor 10 pages years, 100 pages decades) and the value
// focused within the page: the year itself for factor 10, the start of its
// decade for factor 100.
func StartEndYear(factor, year int) (start, end, focus int) {
	size := factor / 10
	start = floorDiv(year, factor) * factor
	end = start + size*9
	focus = floorDiv(year, size) * size
	return start, end, focus
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
