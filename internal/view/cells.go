package view

import (
	"strconv"
	"time"

	"datepicker/internal/dateval"
)

// Validator decides whether a cell is selectable at a granularity.
type Validator interface {
	IsValid(v dateval.Value, g dateval.Unit) bool
}

// Context carries what cell producers need besides the anchor date.
type Context struct {
	Validator Validator
	// Selected are the committed dates in selection order.
	Selected  []dateval.Value
	Multidate bool
	Now       dateval.Value
	MinDate   *dateval.Value
	MaxDate   *dateval.Value
	// HeaderFormat formats the title of the days grid ("MMMM YYYY").
	HeaderFormat  string
	CalendarWeeks bool
	Use24Hour     bool
	Stepping      int
}

func (c Context) lastPicked() (dateval.Value, bool) {
	if len(c.Selected) == 0 {
		return dateval.Value{}, false
	}
	return c.Selected[len(c.Selected)-1], true
}

func (c Context) valid(v dateval.Value, g dateval.Unit) bool {
	if c.Validator == nil {
		return v.Valid()
	}
	return c.Validator.IsValid(v, g)
}

// Cell is one selectable entry of a grid or time wheel.
type Cell struct {
	// Value is what selecting the cell picks. Decade cells pick a year in
	// the middle of the decade.
	Value    dateval.Value
	Label    string
	Disabled bool
	Active   bool
	// Old and New mark cells that belong to the previous or next page.
	Old     bool
	New     bool
	Today   bool
	Weekend bool
	// Blank cells are placeholders with nothing to select.
	Blank bool
}

// Header is the title row of a grid page.
type Header struct {
	Title        string
	PrevDisabled bool
	NextDisabled bool
}

// Page is one rendered grid.
type Page struct {
	Header Header
	Cells  []Cell
}

// DayPage is the days grid: six weeks of seven days.
type DayPage struct {
	Page
	// Weekdays are the column labels starting at the locale's first day.
	Weekdays []string
	// Weeks holds the ISO week number of each row when calendar weeks are
	// enabled.
	Weeks []int
}

const dayCells = 42

// Days returns the days grid for the anchor month, always 42 cells starting
// at the beginning of the week that contains the first of the month.
func (n *Navigator) Days(c Context) DayPage {
	vd := n.viewDate
	headerFormat := c.HeaderFormat
	if headerFormat == "" {
		headerFormat = "MMMM YYYY"
	}
	p := DayPage{Page: Page{Header: Header{
		Title:        vd.Format(headerFormat),
		PrevDisabled: !c.valid(vd.Subtract(1, dateval.UnitMonth), dateval.UnitMonth),
		NextDisabled: !c.valid(vd.Add(1, dateval.UnitMonth), dateval.UnitMonth),
	}}}

	first := vd.StartOf(dateval.UnitMonth).StartOf(dateval.UnitWeek)
	for i := 0; i < 7; i++ {
		p.Weekdays = append(p.Weekdays, first.Add(i, dateval.UnitDay).Format("dd"))
	}
	if c.CalendarWeeks {
		toMonday := (int(time.Monday) - int(first.Weekday()) + 7) % 7
		for row := 0; row < dayCells/7; row++ {
			_, w := first.Add(row*7+toMonday, dateval.UnitDay).Time().ISOWeek()
			p.Weeks = append(p.Weeks, w)
		}
	}

	last, picked := c.lastPicked()
	d := first
	for i := 0; i < dayCells; i++ {
		cell := Cell{
			Value:    d,
			Label:    strconv.Itoa(d.Day()),
			Old:      d.Before(vd, dateval.UnitMonth),
			New:      d.After(vd, dateval.UnitMonth),
			Disabled: !c.valid(d, dateval.UnitDay),
			Today:    d.Same(c.Now, dateval.UnitDay),
			Weekend:  d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
		}
		if c.Multidate {
			for _, s := range c.Selected {
				if d.Same(s, dateval.UnitDay) {
					cell.Active = true
					break
				}
			}
		} else if picked {
			cell.Active = d.Same(last, dateval.UnitDay)
		}
		p.Cells = append(p.Cells, cell)
		d = d.Add(1, dateval.UnitDay)
	}
	return p
}

// Months returns the twelve months of the anchor year.
func (n *Navigator) Months(c Context) Page {
	vd := n.viewDate
	p := Page{Header: Header{
		Title:        strconv.Itoa(vd.Year()),
		PrevDisabled: !c.valid(vd.Subtract(1, dateval.UnitYear), dateval.UnitYear),
		NextDisabled: !c.valid(vd.Add(1, dateval.UnitYear), dateval.UnitYear),
	}}
	last, picked := c.lastPicked()
	for m := time.January; m <= time.December; m++ {
		v := vd.WithMonth(m)
		p.Cells = append(p.Cells, Cell{
			Value:    v,
			Label:    v.Format("MMM"),
			Disabled: !c.valid(v, dateval.UnitMonth),
			Active:   picked && last.Same(vd, dateval.UnitYear) && last.Month() == m,
		})
	}
	return p
}

// Years returns the ten years of the anchor's decade framed by the last
// year of the previous decade and the first of the next.
func (n *Navigator) Years(c Context) Page {
	vd := n.viewDate
	start, end, _ := StartEndYear(10, vd.Year())
	startYear, endYear := vd.WithYear(start), vd.WithYear(end)
	p := Page{Header: Header{
		Title:        strconv.Itoa(start) + "-" + strconv.Itoa(end),
		PrevDisabled: c.MinDate != nil && c.MinDate.After(startYear, dateval.UnitYear),
		NextDisabled: c.MaxDate != nil && c.MaxDate.Before(endYear, dateval.UnitYear),
	}}
	last, picked := c.lastPicked()
	cell := func(y int, old bool) Cell {
		v := vd.WithYear(y)
		return Cell{
			Value:    v,
			Label:    strconv.Itoa(y),
			Old:      old,
			Disabled: !c.valid(v, dateval.UnitYear),
			Active:   !old && picked && last.Year() == y,
		}
	}
	p.Cells = append(p.Cells, cell(start-1, true))
	for y := start; y <= end; y++ {
		p.Cells = append(p.Cells, cell(y, false))
	}
	p.Cells = append(p.Cells, cell(end+1, true))
	return p
}

// Decades returns the ten decades of the anchor's century framed by the
// last decade of the previous century and the first of the next. A decade
// that contains the minimum or maximum date stays selectable even when its
// first year is out of range.
func (n *Navigator) Decades(c Context) Page {
	vd := n.viewDate
	start, end, _ := StartEndYear(100, vd.Year())
	startDecade, endDecade := vd.WithYear(start), vd.WithYear(end)
	p := Page{Header: Header{
		Title:        strconv.Itoa(start) + "-" + strconv.Itoa(end),
		PrevDisabled: start == 0 || c.MinDate != nil && c.MinDate.After(startDecade, dateval.UnitYear),
		NextDisabled: c.MaxDate != nil && c.MaxDate.Before(endDecade, dateval.UnitYear),
	}}

	if start-10 < 0 {
		p.Cells = append(p.Cells, Cell{Blank: true, Disabled: true})
	} else {
		p.Cells = append(p.Cells, Cell{Value: vd.WithYear(start - 10 + 6), Label: strconv.Itoa(start - 10), Old: true})
	}

	last, picked := c.lastPicked()
	bound := func(b *dateval.Value, decade dateval.Value) bool {
		return b != nil && b.After(decade, dateval.UnitYear) && b.Year() <= decade.Year()+11
	}
	for y := start; y <= end; y += 10 {
		decade := vd.WithYear(y)
		p.Cells = append(p.Cells, Cell{
			Value:    vd.WithYear(y + 6),
			Label:    strconv.Itoa(y),
			Active:   picked && last.After(decade, dateval.UnitNone) && last.Year() <= y+11,
			Disabled: !c.valid(decade, dateval.UnitYear) && !bound(c.MinDate, decade) && !bound(c.MaxDate, decade),
		})
	}
	p.Cells = append(p.Cells, Cell{Value: vd.WithYear(end + 10 + 6), Label: strconv.Itoa(end + 10), Old: true})
	return p
}

// Hours returns the hour wheel for the anchor day: all 24 hours on a 24-hour
// clock, otherwise the twelve hours of the anchor's half of the day.
func (n *Navigator) Hours(c Context) []Cell {
	vd := n.viewDate
	from, to := 0, 24
	if !c.Use24Hour {
		if vd.Hour() > 11 {
			from = 12
		} else {
			to = 12
		}
	}
	label := "hh"
	if c.Use24Hour {
		label = "HH"
	}
	var out []Cell
	day := vd.StartOf(dateval.UnitDay)
	for h := from; h < to; h++ {
		v := day.WithHour(h)
		out = append(out, Cell{Value: v, Label: v.Format(label), Disabled: !c.valid(v, dateval.UnitHour)})
	}
	return out
}

// Minutes returns the minute wheel for the anchor hour in steps of the
// configured stepping, or 5 when stepping is 1.
func (n *Navigator) Minutes(c Context) []Cell {
	stepMin := c.Stepping
	if stepMin <= 1 {
		stepMin = 5
	}
	hour := n.viewDate.StartOf(dateval.UnitHour)
	var out []Cell
	for m := 0; m < 60; m += stepMin {
		v := hour.WithMinute(m)
		out = append(out, Cell{Value: v, Label: v.Format("mm"), Disabled: !c.valid(v, dateval.UnitMinute)})
	}
	return out
}

// Seconds returns the second wheel for the anchor minute in steps of 5.
func (n *Navigator) Seconds(c Context) []Cell {
	minute := n.viewDate.StartOf(dateval.UnitMinute)
	var out []Cell
	for s := 0; s < 60; s += 5 {
		v := minute.WithSecond(s)
		out = append(out, Cell{Value: v, Label: v.Format("ss"), Disabled: !c.valid(v, dateval.UnitSecond)})
	}
	return out
}

// Period describes the AM/PM toggle of a 12-hour clock for the last picked
// date: its current label and whether flipping it would be valid.
func (n *Navigator) Period(c Context) (label string, disabled bool) {
	last, ok := c.lastPicked()
	if !ok {
		last = n.viewDate
	}
	shift := 12
	if last.Hour() >= 12 {
		shift = -12
	}
	return last.Format("A"), !c.valid(last.Add(shift, dateval.UnitHour), dateval.UnitHour)
}
