package picker

import (
	"fmt"
	"time"

	"datepicker/internal/dateval"
	"datepicker/internal/view"
)

// Intent is a user interaction with the widget, produced by whatever draws
// it. The set of intents is closed.
type Intent interface {
	intent()
}

type (
	// Next and Previous turn one page of the current grid.
	Next     struct{}
	Previous struct{}
	// PickerSwitch zooms out one grid level.
	PickerSwitch struct{}

	SelectMonth  struct{ Month time.Month }
	SelectYear   struct{ Year int }
	SelectDecade struct{ Year int }
	// SelectDay picks a day cell. Offset is -1 for a cell of the previous
	// month, 1 for the next month and 0 otherwise.
	SelectDay struct {
		Day    int
		Offset int
	}

	IncrementHours   struct{}
	IncrementMinutes struct{}
	IncrementSeconds struct{}
	DecrementHours   struct{}
	DecrementMinutes struct{}
	DecrementSeconds struct{}
	TogglePeriod     struct{}
	// TogglePicker switches between the calendar and the time view.
	TogglePicker struct{}

	// SelectHour carries the hour as shown: 1-12 on a 12-hour clock.
	SelectHour   struct{ Hour int }
	SelectMinute struct{ Minute int }
	SelectSecond struct{ Second int }

	ClearAction struct{}
	CloseAction struct{}
	TodayAction struct{}
)

func (Next) intent()             {}
func (Previous) intent()         {}
func (PickerSwitch) intent()     {}
func (SelectMonth) intent()      {}
func (SelectYear) intent()       {}
func (SelectDecade) intent()     {}
func (SelectDay) intent()        {}
func (IncrementHours) intent()   {}
func (IncrementMinutes) intent() {}
func (IncrementSeconds) intent() {}
func (DecrementHours) intent()   {}
func (DecrementMinutes) intent() {}
func (DecrementSeconds) intent() {}
func (TogglePeriod) intent()     {}
func (TogglePicker) intent()     {}
func (SelectHour) intent()       {}
func (SelectMinute) intent()     {}
func (SelectSecond) intent()     {}
func (ClearAction) intent()      {}
func (CloseAction) intent()      {}
func (TodayAction) intent()      {}

// Do performs intent i. Disabled pickers ignore every intent.
func (p *Picker) Do(i Intent) error {
	if p.destroyed {
		return ErrDestroyed
	}
	if p.disabled {
		return nil
	}
	last := p.lastPicked()
	idx := max(p.store.LastIndex(), 0)

	switch i := i.(type) {
	case Next:
		p.nav.Navigate(view.Next)
	case Previous:
		p.nav.Navigate(view.Previous)
	case PickerSwitch:
		p.nav.Zoom(1)

	case SelectMonth:
		vd := p.nav.ViewDate().WithMonth(i.Month)
		p.selectPage(vd, last.WithYear(vd.Year()).WithMonth(vd.Month()), idx)
		p.emitUpdate(dateval.UnitMonth)
	case SelectYear:
		vd := p.nav.ViewDate().WithYear(i.Year)
		p.selectPage(vd, last.WithYear(vd.Year()), idx)
		p.emitUpdate(dateval.UnitYear)
	case SelectDecade:
		vd := p.nav.ViewDate().WithYear(i.Year)
		p.selectPage(vd, last.WithYear(vd.Year()), idx)
		p.emitUpdate(dateval.UnitYear)

	case SelectDay:
		day := p.nav.ViewDate().Add(i.Offset, dateval.UnitMonth).WithDay(i.Day)
		if p.opts.AllowMultidate {
			if at := p.store.IndexOfDay(day); at != -1 {
				p.store.Commit(nil, at)
			} else {
				p.store.Commit(&day, p.store.LastIndex()+1)
			}
		} else {
			p.store.Commit(&day, idx)
		}
		if !p.HasTime() && !p.opts.KeepOpen && !p.opts.Inline && !p.opts.AllowMultidate {
			p.Hide()
		}

	case IncrementHours:
		p.step(last.Add(1, dateval.UnitHour), idx, dateval.UnitHour)
	case IncrementMinutes:
		p.step(last.Add(p.opts.Stepping, dateval.UnitMinute), idx, dateval.UnitMinute)
	case IncrementSeconds:
		p.step(last.Add(1, dateval.UnitSecond), idx, dateval.UnitSecond)
	case DecrementHours:
		p.step(last.Subtract(1, dateval.UnitHour), idx, dateval.UnitHour)
	case DecrementMinutes:
		p.step(last.Subtract(p.opts.Stepping, dateval.UnitMinute), idx, dateval.UnitMinute)
	case DecrementSeconds:
		p.step(last.Subtract(1, dateval.UnitSecond), idx, dateval.UnitSecond)
	case TogglePeriod:
		n := 12
		if last.Hour() >= 12 {
			n = -12
		}
		v := last.Add(n, dateval.UnitHour)
		p.store.Commit(&v, idx)
	case TogglePicker:
		p.nav.ToggleTime()

	case SelectHour:
		h := i.Hour
		if !p.caps.Use24Hour {
			switch {
			case last.Hour() >= 12 && h != 12:
				h += 12
			case last.Hour() < 12 && h == 12:
				h = 0
			}
		}
		v := last.WithHour(h)
		p.store.Commit(&v, idx)
		p.afterTimePick(p.IsEnabled('m'))
	case SelectMinute:
		v := last.WithMinute(i.Minute)
		p.store.Commit(&v, idx)
		p.afterTimePick(p.IsEnabled('s'))
	case SelectSecond:
		v := last.WithSecond(i.Second)
		p.store.Commit(&v, idx)
		p.afterTimePick(false)

	case ClearAction:
		p.Clear()
	case CloseAction:
		p.Hide()
	case TodayAction:
		p.Today()

	default:
		return fmt.Errorf("%w: %T", ErrUnknownIntent, i)
	}
	return nil
}

// selectPage handles a month, year or decade pick: at the lowest grid level
// it selects v and closes, otherwise it zooms in on vd.
func (p *Picker) selectPage(vd, v dateval.Value, idx int) {
	p.nav.SetViewDate(vd)
	if p.nav.Mode() != p.nav.MinMode() {
		p.nav.Zoom(-1)
		return
	}
	p.store.Commit(&v, idx)
	if !p.opts.Inline && !p.opts.KeepOpen {
		p.Hide()
	}
}

// step commits v when it is valid at granularity g.
func (p *Picker) step(v dateval.Value, idx int, g dateval.Unit) {
	if p.rules.IsValid(v, g) {
		p.store.Commit(&v, idx)
	}
}

// afterTimePick closes the picker after the last time field of the format
// is picked and returns to the clock otherwise.
func (p *Picker) afterTimePick(more bool) {
	if !p.IsEnabled('a') && !more && !p.opts.KeepOpen && !p.opts.Inline {
		p.Hide()
		return
	}
	p.nav.ShowTime(true)
}
