package picker

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"datepicker/internal/config"
	"datepicker/internal/constraint"
	"datepicker/internal/dateval"
	"datepicker/internal/view"
)

// Apply changes options. Set fields of c are applied one by one in a fixed
// order, each with the side effects of the matching setter:
//
//   - locale, timeZone, format, extraFormats: re-initialize formatting
//   - minDate / maxDate: move selected dates outside the new bound onto it
//     (useCurrent without keepInvalid) and keep the view date inside
//   - daysOfWeekDisabled, disabledRecurrences: advance invalid selected dates
//     day by day
//   - disabledHours / enabledHours, availability: advance invalid selected
//     dates hour by hour
//
// The first rejected value stops Apply with an *OptionError; options applied
// before it stay in effect.
func (p *Picker) Apply(c config.Partial) error {
	if p.destroyed {
		return ErrDestroyed
	}
	steps := []struct {
		set bool
		fn  func() error
	}{
		{c.Locale != nil, func() error { return p.setLocale(*c.Locale) }},
		{c.TimeZone != nil, func() error { return p.setTimeZone(*c.TimeZone) }},
		{c.Format != nil || c.ExtraFormats != nil, func() error { return p.setFormat(c.Format, c.ExtraFormats) }},
		{c.DayViewHeaderFormat != nil, func() error { p.opts.DayViewHeaderFormat = *c.DayViewHeaderFormat; return nil }},
		{c.Stepping != nil, func() error { p.setStepping(*c.Stepping); return nil }},
		{c.UseCurrent != nil, func() error { return p.setUseCurrent(*c.UseCurrent) }},
		{c.UseStrict != nil, func() error { p.opts.UseStrict = *c.UseStrict; return nil }},
		{c.KeepInvalid != nil, func() error { p.opts.KeepInvalid = *c.KeepInvalid; return nil }},
		{c.AllowMultidate != nil, func() error { p.setAllowMultidate(*c.AllowMultidate); return nil }},
		{c.MultidateSeparator != nil, func() error { return p.setSeparator(*c.MultidateSeparator) }},
		{c.HourAdvanceLimit != nil, func() error { return p.setAdvanceLimit("hourAdvanceLimit", &p.opts.HourAdvanceLimit, *c.HourAdvanceLimit) }},
		{c.DayAdvanceLimit != nil, func() error { return p.setAdvanceLimit("dayAdvanceLimit", &p.opts.DayAdvanceLimit, *c.DayAdvanceLimit) }},
		{c.MinDate != nil, func() error { return p.setMinDate(*c.MinDate) }},
		{c.MaxDate != nil, func() error { return p.setMaxDate(*c.MaxDate) }},
		{c.DisabledDates != nil, func() error { return p.setDisabledDates(c.DisabledDates) }},
		{c.EnabledDates != nil, func() error { return p.setEnabledDates(c.EnabledDates) }},
		{c.DaysOfWeekDisabled != nil, func() error { return p.setDaysOfWeekDisabled(c.DaysOfWeekDisabled) }},
		{c.DisabledHours != nil, func() error { return p.setDisabledHours(c.DisabledHours) }},
		{c.EnabledHours != nil, func() error { return p.setEnabledHours(c.EnabledHours) }},
		{c.DisabledTimeIntervals != nil, func() error { return p.setDisabledTimeIntervals(c.DisabledTimeIntervals) }},
		{c.DisabledRecurrences != nil, func() error { return p.setDisabledRecurrences(c.DisabledRecurrences) }},
		{c.Availability != nil, func() error { return p.setAvailability(*c.Availability) }},
		{c.ViewMode != nil, func() error { return p.setViewMode(*c.ViewMode) }},
		{c.CalendarWeeks != nil, func() error { p.opts.CalendarWeeks = *c.CalendarWeeks; return nil }},
		{c.KeepOpen != nil, func() error { p.opts.KeepOpen = *c.KeepOpen; return nil }},
		{c.Inline != nil, func() error { p.opts.Inline = *c.Inline; return nil }},
		{c.Collapse != nil, func() error { p.opts.Collapse = *c.Collapse; return nil }},
		{c.SideBySide != nil, func() error { p.opts.SideBySide = *c.SideBySide; return nil }},
		{c.ToolbarPlacement != nil, func() error { return p.setToolbarPlacement(*c.ToolbarPlacement) }},
		{c.FocusOnShow != nil, func() error { p.opts.FocusOnShow = *c.FocusOnShow; return nil }},
		{c.IgnoreReadonly != nil, func() error { p.opts.IgnoreReadonly = *c.IgnoreReadonly; return nil }},
		{c.DefaultDate != nil, func() error { return p.setDefaultDate(*c.DefaultDate) }},
		{c.ViewDate != nil, func() error { return p.setViewDateOption(*c.ViewDate) }},
	}
	for _, s := range steps {
		if !s.set {
			continue
		}
		if err := s.fn(); err != nil {
			p.log.Error("option rejected", err)
			return err
		}
	}
	return nil
}

func (p *Picker) setLocale(name string) error {
	if name == "" {
		name = "en"
	}
	l, err := dateval.LookupLocale(name)
	if err != nil {
		return &OptionError{Option: "locale", Value: name, Err: err}
	}
	p.opts.Locale = name
	p.locale = l
	p.nav.SetViewDate(p.nav.ViewDate().WithLocale(l))
	p.store.Relocalize(l, p.loc)
	p.initFormatting()
	return nil
}

func (p *Picker) setTimeZone(name string) error {
	loc := time.Local
	if name != "" {
		l, err := time.LoadLocation(name)
		if err != nil {
			return &OptionError{Option: "timeZone", Value: name, Err: err}
		}
		loc = l
	}
	p.opts.TimeZone = name
	p.loc = loc
	p.nav.SetViewDate(p.nav.ViewDate().In(loc))
	p.store.Relocalize(p.locale, loc)
	return nil
}

func (p *Picker) setFormat(f *string, extra []string) error {
	if f != nil {
		p.opts.Format = *f
	}
	if extra != nil {
		p.opts.ExtraFormats = append([]string(nil), extra...)
	}
	p.initFormatting()
	return nil
}

func (p *Picker) setStepping(n int) {
	if n < 1 {
		n = 1
	}
	p.opts.Stepping = n
}

func (p *Picker) setUseCurrent(s string) error {
	switch v := strings.ToLower(s); v {
	case "true", "false", "year", "month", "day", "hour", "minute":
		p.opts.UseCurrent = v
		return nil
	}
	return &OptionError{Option: "useCurrent", Value: s, Err: fmt.Errorf("want true, false, year, month, day, hour or minute")}
}

// useCurrent reports whether an unset picker is seeded with now.
func (p *Picker) useCurrent() bool { return p.opts.UseCurrent != "false" }

// setAllowMultidate turning multi-select off keeps only the first date.
func (p *Picker) setAllowMultidate(on bool) {
	p.opts.AllowMultidate = on
	if !on {
		p.store.KeepFirst()
	}
}

func (p *Picker) setSeparator(s string) error {
	if utf8.RuneCountInString(s) > 1 {
		return &OptionError{Option: "multidateSeparator", Value: s, Err: fmt.Errorf("want a single character")}
	}
	p.opts.MultidateSeparator = s
	p.store.Rerender()
	return nil
}

func (p *Picker) setAdvanceLimit(name string, dst *int, n int) error {
	if n < 1 {
		return &OptionError{Option: name, Value: n, Err: fmt.Errorf("want a positive count")}
	}
	*dst = n
	return nil
}

// boundDate parses a minDate/maxDate value. ok is false when the bound is
// cleared.
func (p *Picker) boundDate(option, text string) (v dateval.Value, ok bool, err error) {
	if t := strings.TrimSpace(text); t == "" || t == "false" {
		return v, false, nil
	}
	v = p.optionDate(text)
	if !v.Valid() {
		return v, false, &OptionError{Option: option, Value: text, Err: fmt.Errorf("could not parse date")}
	}
	return v, true, nil
}

func (p *Picker) setMinDate(text string) error {
	v, ok, err := p.boundDate("minDate", text)
	if err != nil {
		return err
	}
	if !ok {
		p.opts.MinDate = ""
		return p.rules.SetMinDate(nil)
	}
	if err := p.rules.SetMinDate(&v); err != nil {
		return &OptionError{Option: "minDate", Value: text, Err: err}
	}
	p.opts.MinDate = text
	if p.useCurrent() && !p.opts.KeepInvalid {
		for i, d := range p.store.Dates() {
			if d.Before(v, dateval.UnitNone) {
				p.log.Debug("moving date onto minDate", "index", i, "date", d.String())
				p.store.Commit(&v, i)
			}
		}
	}
	if p.nav.ViewDate().Before(v, dateval.UnitNone) {
		p.nav.SetViewDate(v.Add(p.opts.Stepping, dateval.UnitMinute))
	}
	return nil
}

func (p *Picker) setMaxDate(text string) error {
	v, ok, err := p.boundDate("maxDate", text)
	if err != nil {
		return err
	}
	if !ok {
		p.opts.MaxDate = ""
		return p.rules.SetMaxDate(nil)
	}
	if err := p.rules.SetMaxDate(&v); err != nil {
		return &OptionError{Option: "maxDate", Value: text, Err: err}
	}
	p.opts.MaxDate = text
	if p.useCurrent() && !p.opts.KeepInvalid {
		for i, d := range p.store.Dates() {
			if d.After(v, dateval.UnitNone) {
				p.log.Debug("moving date onto maxDate", "index", i, "date", d.String())
				p.store.Commit(&v, i)
			}
		}
	}
	if p.nav.ViewDate().After(v, dateval.UnitNone) {
		p.nav.SetViewDate(v.Subtract(p.opts.Stepping, dateval.UnitMinute))
	}
	return nil
}

func (p *Picker) parseDays(option string, texts []string) ([]dateval.Value, error) {
	out := make([]dateval.Value, 0, len(texts))
	for _, t := range texts {
		v := p.optionDate(t)
		if !v.Valid() {
			return nil, &OptionError{Option: option, Value: t, Err: fmt.Errorf("could not parse date")}
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *Picker) setDisabledDates(texts []string) error {
	days, err := p.parseDays("disabledDates", texts)
	if err != nil {
		return err
	}
	p.rules.SetDisabledDates(days)
	p.opts.DisabledDates = p.rules.DisabledDates()
	if len(days) > 0 {
		p.opts.EnabledDates = nil
	}
	return nil
}

func (p *Picker) setEnabledDates(texts []string) error {
	days, err := p.parseDays("enabledDates", texts)
	if err != nil {
		return err
	}
	p.rules.SetEnabledDates(days)
	p.opts.EnabledDates = p.rules.EnabledDates()
	if len(days) > 0 {
		p.opts.DisabledDates = nil
	}
	return nil
}

func (p *Picker) setDaysOfWeekDisabled(days []int) error {
	p.rules.SetDaysOfWeekDisabled(days)
	p.opts.DaysOfWeekDisabled = p.rules.DaysOfWeekDisabled()
	return p.advance(dateval.UnitDay)
}

func (p *Picker) setDisabledHours(hours []int) error {
	p.rules.SetDisabledHours(hours)
	p.opts.DisabledHours = p.rules.DisabledHours()
	if len(hours) > 0 {
		p.opts.EnabledHours = nil
	}
	return p.advance(dateval.UnitHour)
}

func (p *Picker) setEnabledHours(hours []int) error {
	p.rules.SetEnabledHours(hours)
	p.opts.EnabledHours = p.rules.EnabledHours()
	if len(hours) > 0 {
		p.opts.DisabledHours = nil
	}
	return p.advance(dateval.UnitHour)
}

func (p *Picker) setDisabledTimeIntervals(ivs []config.Interval) error {
	out := make([]constraint.Interval, 0, len(ivs))
	for _, iv := range ivs {
		start, end := p.optionDate(iv.Start), p.optionDate(iv.End)
		ci, err := constraint.NewInterval(start, end)
		if err != nil {
			return &OptionError{Option: "disabledTimeIntervals", Value: iv, Err: err}
		}
		out = append(out, ci)
	}
	p.rules.SetDisabledIntervals(out)
	p.opts.DisabledTimeIntervals = append([]config.Interval(nil), ivs...)
	return nil
}

func (p *Picker) setDisabledRecurrences(rules []string) error {
	out := make([]*constraint.Recurrence, 0, len(rules))
	for _, r := range rules {
		rec, err := constraint.ParseRecurrence(r, p.loc)
		if err != nil {
			return &OptionError{Option: "disabledRecurrences", Value: r, Err: err}
		}
		out = append(out, rec)
	}
	p.rules.SetDisabledRecurrences(out)
	p.opts.DisabledRecurrences = append([]string(nil), rules...)
	return p.advance(dateval.UnitDay)
}

func (p *Picker) setAvailability(spec string) error {
	if strings.TrimSpace(spec) == "" {
		p.opts.Availability = ""
		return nil
	}
	a, err := constraint.ParseAvailability(spec)
	if err != nil {
		return &OptionError{Option: "availability", Value: spec, Err: err}
	}
	a.Apply(&p.rules)
	p.opts.Availability = spec
	p.opts.EnabledHours = p.rules.EnabledHours()
	p.opts.DisabledHours = p.rules.DisabledHours()
	p.opts.DaysOfWeekDisabled = p.rules.DaysOfWeekDisabled()
	if err := p.advance(dateval.UnitHour); err != nil {
		return err
	}
	return p.advance(dateval.UnitDay)
}

// advance moves every selected date that is invalid at granularity g forward
// one g at a time until it becomes valid, then re-commits it. It only runs
// under useCurrent without keepInvalid.
func (p *Picker) advance(g dateval.Unit) error {
	if !p.useCurrent() || p.opts.KeepInvalid {
		return nil
	}
	limit := p.opts.DayAdvanceLimit
	if g == dateval.UnitHour {
		limit = p.opts.HourAdvanceLimit
	}
	for i, d := range p.store.Dates() {
		start := d
		for tries := 0; !p.rules.IsValid(d, g); tries++ {
			if tries == limit {
				return fmt.Errorf("%w: %d %s steps from %v", ErrAdvanceExhausted, limit, g, start)
			}
			d = d.Add(1, g)
		}
		if d.Equal(start) {
			continue
		}
		p.log.Debug("advanced selected date", "index", i, "from", start.String(), "to", d.String())
		p.store.Commit(&d, i)
	}
	return nil
}

func (p *Picker) setViewMode(s string) error {
	if s == "times" {
		p.opts.ViewMode = s
		p.nav.SetMode(p.nav.MinMode())
		p.nav.ShowTime(true)
		return nil
	}
	m, err := view.ParseMode(s)
	if err != nil {
		return &OptionError{Option: "viewMode", Value: s, Err: err}
	}
	p.opts.ViewMode = s
	p.nav.SetMode(m)
	p.nav.ShowTime(false)
	return nil
}

func (p *Picker) setToolbarPlacement(s string) error {
	switch s {
	case "default", "top", "bottom":
		p.opts.ToolbarPlacement = s
		return nil
	}
	return &OptionError{Option: "toolbarPlacement", Value: s, Err: fmt.Errorf("want default, top or bottom")}
}

func (p *Picker) setDefaultDate(text string) error {
	if t := strings.TrimSpace(text); t == "" || t == "false" {
		p.opts.DefaultDate = ""
		p.defaultDate = nil
		return nil
	}
	v := p.optionDate(text)
	if !v.Valid() {
		return &OptionError{Option: "defaultDate", Value: text, Err: fmt.Errorf("could not parse date")}
	}
	if !p.rules.IsValid(v, dateval.UnitNone) {
		return &OptionError{Option: "defaultDate", Value: text, Err: fmt.Errorf("date is outside the configured constraints")}
	}
	p.opts.DefaultDate = text
	p.defaultDate = &v
	if p.opts.Inline || strings.TrimSpace(p.input.Text()) == "" {
		p.store.Commit(&v, 0)
	}
	return nil
}

// setViewDateOption moves the anchor to text. Empty text leaves the anchor
// where the selection and bounds put it.
func (p *Picker) setViewDateOption(text string) error {
	if t := strings.TrimSpace(text); t == "" || t == "false" {
		p.opts.ViewDate = ""
		return nil
	}
	if err := p.SetViewDate(text); err != nil {
		return err
	}
	p.opts.ViewDate = text
	return nil
}
