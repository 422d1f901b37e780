// Package picker ties the engine together into one widget instance: it owns
// the resolved options, the constraint set, the selection store and the view
// navigator, and translates user intents into commits and page changes.
//
// A Picker is driven from a single goroutine. Every operation completes
// synchronously; notifications are delivered before the call returns.
package picker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"datepicker/internal/config"
	"datepicker/internal/constraint"
	"datepicker/internal/dateval"
	"datepicker/internal/events"
	"datepicker/internal/format"
	appLog "datepicker/internal/log"
	"datepicker/internal/selection"
	"datepicker/internal/view"
)

var (
	// ErrInvalidOption is wrapped by every *OptionError.
	ErrInvalidOption = errors.New("invalid option")
	// ErrAdvanceExhausted is returned when a new constraint invalidates a
	// selected date and no valid instant is found within the advance limit.
	ErrAdvanceExhausted = errors.New("no valid date found while advancing")
	ErrUnknownIntent    = errors.New("unknown intent")
	ErrDestroyed        = errors.New("picker destroyed")
)

// OptionError reports a rejected option value.
type OptionError struct {
	Option string
	Value  any
	Err    error
}

func (e *OptionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("option %s: invalid value %v", e.Option, e.Value)
	}
	return fmt.Sprintf("option %s: invalid value %v: %v", e.Option, e.Value, e.Err)
}

func (e *OptionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidOption}
	}
	return []error{ErrInvalidOption, e.Err}
}

// Input is the text field a picker is bound to.
type Input interface {
	Text() string
	SetText(string)
}

// Field is an in-memory Input.
type Field struct {
	Value    string
	ReadOnly bool
}

func (f *Field) Text() string     { return f.Value }
func (f *Field) SetText(s string) { f.Value = s }
func (f *Field) IsReadOnly() bool { return f.ReadOnly }

// ParseFunc reads user text into a date. It returns an invalid Value when the
// text cannot be read.
type ParseFunc func(text string) dateval.Value

type settings struct {
	id        string
	clock     func() time.Time
	parse     ParseFunc
	log       *appLog.Logger
	metrics   *events.Metrics
	hourLimit int
	dayLimit  int
}

// Option configures a Picker at construction.
type Option func(*settings)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.clock = now }
}

// WithAdvanceLimits overrides how many hours and days a selected date may be
// moved forward when a new constraint invalidates it.
func WithAdvanceLimits(hours, days int) Option {
	return func(s *settings) { s.hourLimit, s.dayLimit = hours, days }
}

// WithParser replaces the format based input parser.
func WithParser(f ParseFunc) Option {
	return func(s *settings) { s.parse = f }
}

// WithLogger sets the base logger; the picker adds its id.
func WithLogger(l *appLog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithMetrics counts delivered and suppressed events on m.
func WithMetrics(m *events.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithID fixes the instance id instead of generating one.
func WithID(id string) Option {
	return func(s *settings) { s.id = id }
}

// Picker is one date picker instance.
type Picker struct {
	id  string
	log *appLog.Logger

	opts   config.Options
	caps   format.Capabilities
	loc    *time.Location
	locale *dateval.Locale

	rules   constraint.Set
	store   *selection.Store
	nav     *view.Navigator
	emitter *events.Emitter
	input   Input

	clock       func() time.Time
	parse       ParseFunc
	defaultDate *dateval.Value

	visible   bool
	disabled  bool
	destroyed bool
}

// New builds a picker from resolved options. in may be nil, in which case an
// empty Field is used; n receives every delivered event and may be nil.
//
// Construction applies the options, then seeds the selection from the input
// text or, failing that, the default date. Inline pickers are shown
// immediately.
func New(opts config.Options, in Input, n events.Notifier, options ...Option) (*Picker, error) {
	s := settings{clock: time.Now}
	for _, o := range options {
		o(&s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.hourLimit > 0 {
		opts.HourAdvanceLimit = s.hourLimit
	}
	if s.dayLimit > 0 {
		opts.DayAdvanceLimit = s.dayLimit
	}
	opts.Normalize()
	if in == nil {
		in = &Field{}
	}

	p := &Picker{
		id:     s.id,
		log:    s.log.With("picker_id", s.id),
		opts:   *config.DefaultOptions(),
		loc:    time.Local,
		locale: dateval.DefaultLocale(),
		input:  in,
		clock:  s.clock,
	}
	p.parse = s.parse
	if p.parse == nil {
		p.parse = p.parseFormats
	}

	sinks := events.Multi{n, events.LogSink{L: p.log}}
	p.emitter = &events.Emitter{ID: p.id, N: sinks}
	if s.metrics != nil {
		p.emitter.N = append(sinks, s.metrics)
		p.emitter.Suppressed = s.metrics.Suppressed
	}

	p.nav = view.New(p.now(), p.emitter)
	p.store = selection.New(&p.rules, p.emitter, p.nav, p.input, p.policy)
	p.initFormatting()

	if err := p.Apply(opts.Partial()); err != nil {
		return nil, err
	}

	if text := strings.TrimSpace(p.input.Text()); text != "" {
		v := p.ParseInputDate(text)
		p.store.Commit(&v, 0)
	} else if p.defaultDate != nil && p.store.Unset() {
		d := *p.defaultDate
		p.store.Commit(&d, 0)
	}
	if p.opts.Inline {
		p.Show()
	}
	p.log.Debug("picker created", "format", p.caps.ActualFormat, "locale", p.locale.Name())
	return p, nil
}

func (p *Picker) policy() selection.Policy {
	return selection.Policy{
		Format:         p.caps.ActualFormat,
		Stepping:       p.opts.Stepping,
		Location:       p.loc,
		Locale:         p.locale,
		KeepInvalid:    p.opts.KeepInvalid,
		AllowMultidate: p.opts.AllowMultidate,
		Separator:      p.opts.MultidateSeparator,
	}
}

func (p *Picker) now() dateval.Value {
	return dateval.FromTime(p.clock().In(p.loc), p.locale)
}

// initFormatting recomputes the format capabilities and re-commits the first
// date so the input shows the new format.
func (p *Picker) initFormatting() {
	p.caps = format.Compute(p.opts.Format, p.locale, p.opts.ExtraFormats...)
	p.nav.SetMinMode(view.Mode(p.caps.MinViewMode))
	if first, ok := p.store.At(0); ok {
		p.store.Commit(&first, 0)
	}
}

func (p *Picker) parseFormats(text string) dateval.Value {
	return dateval.Parser{
		Patterns: p.caps.ParseFormats,
		Location: p.loc,
		Locale:   p.locale,
		Strict:   p.opts.UseStrict,
		Now:      p.clock,
	}.Parse(text)
}

// ParseInputDate reads text with the configured parser.
func (p *Picker) ParseInputDate(text string) dateval.Value {
	return p.parse(strings.TrimSpace(text))
}

// isoFormats are accepted for dates given in options when the display
// formats do not match.
var isoFormats = []string{"YYYY-MM-DD[T]HH:mm:ssZ", "YYYY-MM-DD[T]HH:mm:ss", "YYYY-MM-DD HH:mm", "YYYY-MM-DD"}

// optionDate reads a date given in an option: "now", input text, or ISO 8601.
func (p *Picker) optionDate(text string) dateval.Value {
	text = strings.TrimSpace(text)
	if text == "now" || text == "moment" {
		return p.now()
	}
	if v := p.ParseInputDate(text); v.Valid() {
		return v
	}
	return dateval.Parser{Patterns: isoFormats, Location: p.loc, Locale: p.locale, Strict: true, Now: p.clock}.Parse(text)
}

func (p *Picker) lastPicked() dateval.Value {
	if v, ok := p.store.Last(); ok {
		return v
	}
	return p.nav.ViewDate()
}

func (p *Picker) emitUpdate(u dateval.Unit) {
	p.emitter.Notify(events.Event{Kind: events.Update, Change: u, ViewDate: p.nav.ViewDate()})
}

// ID is the instance id stamped on every event.
func (p *Picker) ID() string { return p.id }

// Commit stores candidate at index, or deletes the date at index when
// candidate is nil. See selection.Store.Commit.
func (p *Picker) Commit(candidate *dateval.Value, index int) selection.CommitResult {
	if p.destroyed {
		return selection.CommitResult{}
	}
	return p.store.Commit(candidate, index)
}

// CommitAt is Commit validating the candidate at granularity g.
func (p *Picker) CommitAt(candidate *dateval.Value, index int, g dateval.Unit) selection.CommitResult {
	if p.destroyed {
		return selection.CommitResult{}
	}
	return p.store.CommitAt(candidate, index, g)
}

// SetDate parses text and commits it at index. Empty text deletes the date at
// index.
func (p *Picker) SetDate(text string, index int) (selection.CommitResult, error) {
	if p.destroyed {
		return selection.CommitResult{}, ErrDestroyed
	}
	if strings.TrimSpace(text) == "" {
		return p.store.Commit(nil, index), nil
	}
	v := p.ParseInputDate(text)
	return p.store.Commit(&v, index), nil
}

// ClearDate deletes the date at index.
func (p *Picker) ClearDate(index int) selection.CommitResult {
	return p.Commit(nil, index)
}

// Date returns the date at index.
func (p *Picker) Date(index int) (dateval.Value, bool) { return p.store.At(index) }

// DateString is the input projection of the selection: the joined dates when
// several are selected, empty when unset.
func (p *Picker) DateString() string { return p.store.Joined() }

func (p *Picker) Dates() []dateval.Value { return p.store.Dates() }
func (p *Picker) Unset() bool            { return p.store.Unset() }

// IsValid evaluates v against the constraints at granularity g.
func (p *Picker) IsValid(v dateval.Value, g dateval.Unit) bool { return p.rules.IsValid(v, g) }

func (p *Picker) ViewDate() dateval.Value { return p.nav.ViewDate() }
func (p *Picker) ViewMode() view.Mode     { return p.nav.Mode() }
func (p *Picker) MinViewMode() view.Mode  { return p.nav.MinMode() }
func (p *Picker) ShowingTime() bool       { return p.nav.ShowingTime() }

// IsEnabled reports whether the format shows the field named by the moment
// unit letter u (y, M, d, h, m, s, a).
func (p *Picker) IsEnabled(u rune) bool { return p.caps.IsEnabled(u) }
func (p *Picker) Use24Hour() bool       { return p.caps.Use24Hour }
func (p *Picker) HasDate() bool         { return p.caps.HasDate() }
func (p *Picker) HasTime() bool         { return p.caps.HasTime() }

// ActualFormat is the display format with long-date patterns expanded.
func (p *Picker) ActualFormat() string { return p.caps.ActualFormat }

// Options returns a copy of the current options.
func (p *Picker) Options() config.Options {
	return config.Resolve(p.opts)
}

func (p *Picker) Location() *time.Location { return p.loc }
func (p *Picker) Locale() *dateval.Locale  { return p.locale }
func (p *Picker) Visible() bool            { return p.visible }
func (p *Picker) Disabled() bool           { return p.disabled }
func (p *Picker) Destroyed() bool          { return p.destroyed }

// Navigate turns one page of the current grid and emits Update. A destroyed
// picker does not move.
func (p *Picker) Navigate(d view.Direction) {
	if p.destroyed {
		return
	}
	p.nav.Navigate(d)
}

// Zoom moves delta grid levels, positive towards decades.
func (p *Picker) Zoom(delta int) {
	if p.destroyed {
		return
	}
	p.nav.Zoom(delta)
}

// JumpTo sets the year, month or day of the anchor date and emits Update.
func (p *Picker) JumpTo(u dateval.Unit, value int) error {
	if p.destroyed {
		return ErrDestroyed
	}
	return p.nav.JumpTo(u, value)
}

// SetViewDate moves the anchor to the parsed text. Empty text returns to the
// first selected date, or now.
func (p *Picker) SetViewDate(text string) error {
	if p.destroyed {
		return ErrDestroyed
	}
	if strings.TrimSpace(text) == "" {
		if first, ok := p.store.At(0); ok {
			p.nav.SetViewDate(first)
		} else {
			p.nav.SetViewDate(p.now())
		}
		return nil
	}
	v := p.optionDate(text)
	if !v.Valid() {
		return &OptionError{Option: "viewDate", Value: text}
	}
	p.nav.SetViewDate(v)
	p.emitUpdate(dateval.UnitNone)
	return nil
}

func (p *Picker) viewContext() view.Context {
	return view.Context{
		Validator:     &p.rules,
		Selected:      p.store.Dates(),
		Multidate:     p.opts.AllowMultidate,
		Now:           p.now(),
		MinDate:       p.rules.MinDate(),
		MaxDate:       p.rules.MaxDate(),
		HeaderFormat:  p.opts.DayViewHeaderFormat,
		CalendarWeeks: p.opts.CalendarWeeks,
		Use24Hour:     p.caps.Use24Hour,
		Stepping:      p.opts.Stepping,
	}
}

// Cell producers for the current anchor.

func (p *Picker) DaysPage() view.DayPage   { return p.nav.Days(p.viewContext()) }
func (p *Picker) MonthsPage() view.Page    { return p.nav.Months(p.viewContext()) }
func (p *Picker) YearsPage() view.Page     { return p.nav.Years(p.viewContext()) }
func (p *Picker) DecadesPage() view.Page   { return p.nav.Decades(p.viewContext()) }
func (p *Picker) HourCells() []view.Cell   { return p.nav.Hours(p.viewContext()) }
func (p *Picker) MinuteCells() []view.Cell { return p.nav.Minutes(p.viewContext()) }
func (p *Picker) SecondCells() []view.Cell { return p.nav.Seconds(p.viewContext()) }
func (p *Picker) Period() (string, bool)   { return p.nav.Period(p.viewContext()) }
