package picker

import (
	"strings"
	"time"

	"datepicker/internal/config"
	"datepicker/internal/dateval"
	"datepicker/internal/events"
	"datepicker/internal/ics"
)

type readOnly interface {
	IsReadOnly() bool
}

func (p *Picker) inputReadOnly() bool {
	r, ok := p.input.(readOnly)
	return ok && r.IsReadOnly()
}

// currentTruncated is now truncated to the useCurrent granularity.
func (p *Picker) currentTruncated() dateval.Value {
	now := p.now()
	switch p.opts.UseCurrent {
	case "year":
		return now.StartOf(dateval.UnitYear)
	case "month":
		return now.StartOf(dateval.UnitMonth)
	case "day":
		return now.StartOf(dateval.UnitDay)
	case "hour":
		return now.StartOf(dateval.UnitHour)
	case "minute":
		return now.StartOf(dateval.UnitMinute)
	}
	return now
}

// Show opens the picker. The input text is committed first; an empty input
// is filled with the current time when useCurrent is on. Disabled, destroyed
// and read-only pickers (unless ignoreReadonly) stay closed.
func (p *Picker) Show() {
	if p.destroyed || p.disabled || p.visible {
		return
	}
	if p.inputReadOnly() && !p.opts.IgnoreReadonly {
		return
	}
	if text := strings.TrimSpace(p.input.Text()); text != "" {
		v := p.ParseInputDate(text)
		p.store.Commit(&v, 0)
	} else if p.store.Unset() && p.useCurrent() {
		v := p.currentTruncated()
		p.store.Commit(&v, 0)
	}
	p.visible = true
	p.emitter.Notify(events.Event{Kind: events.Show})
}

// Hide closes the picker and moves the anchor back to the last selected
// date. Inline pickers never hide.
func (p *Picker) Hide() {
	if !p.visible || p.opts.Inline {
		return
	}
	p.visible = false
	last, ok := p.store.Last()
	if !ok {
		p.emitter.Notify(events.Event{Kind: events.Hide})
		return
	}
	p.nav.SetViewDate(last)
	p.emitter.Notify(events.Event{Kind: events.Hide, Date: &last})
}

func (p *Picker) Toggle() {
	if p.visible {
		p.Hide()
	} else {
		p.Show()
	}
}

// Destroy hides the picker and makes every further mutating call a no-op.
func (p *Picker) Destroy() {
	if p.destroyed {
		return
	}
	p.Hide()
	p.destroyed = true
	p.log.Debug("picker destroyed")
}

// Disable hides the picker and blocks Show until Enable.
func (p *Picker) Disable() {
	p.Hide()
	p.disabled = true
}

func (p *Picker) Enable() { p.disabled = false }

// Clear removes every selected date, emitting one Change per removed date.
func (p *Picker) Clear() {
	if p.destroyed {
		return
	}
	for i := p.store.LastIndex(); i >= 0; i-- {
		p.store.Commit(nil, i)
	}
	p.input.SetText("")
}

// Today moves the anchor to the current day and selects it when the day is
// selectable.
func (p *Picker) Today() {
	if p.destroyed {
		return
	}
	today := p.currentTruncated()
	p.nav.SetViewDate(today)
	p.emitUpdate(dateval.UnitDay)
	if p.rules.IsValid(today, dateval.UnitDay) {
		p.store.Commit(&today, max(p.store.LastIndex(), 0))
	}
}

// ImportBlackouts disables the days and intervals of b on top of the current
// constraints. Imported days replace any enabledDates allow-list.
func (p *Picker) ImportBlackouts(b ics.Blackout) error {
	if p.destroyed {
		return ErrDestroyed
	}
	var days []dateval.Value
	for _, d := range p.rules.DisabledDates() {
		days = append(days, dateval.Parse(d, "YYYY-MM-DD", p.loc, p.locale))
	}
	p.rules.SetDisabledDates(append(days, b.Days...))
	p.opts.DisabledDates = p.rules.DisabledDates()
	p.opts.EnabledDates = nil

	intervals := append(p.rules.DisabledIntervals(), b.Intervals...)
	p.rules.SetDisabledIntervals(intervals)
	for _, iv := range b.Intervals {
		p.opts.DisabledTimeIntervals = append(p.opts.DisabledTimeIntervals, config.Interval{
			Start: iv.Start.Time().Format(time.RFC3339),
			End:   iv.End.Time().Format(time.RFC3339),
		})
	}
	p.log.Info("imported blackouts", "days", len(b.Days), "intervals", len(b.Intervals))
	if err := p.advance(dateval.UnitDay); err != nil {
		return err
	}
	return p.advance(dateval.UnitHour)
}
