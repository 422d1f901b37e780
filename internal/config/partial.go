package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"
)

// Partial is a set of option overrides. A nil field leaves the option
// untouched. For list options a non-nil empty slice clears the list.
//
// The schema tags are the camelCase names used by element attributes
// (data-date-min-date, minDate) and by the CLI "option" command.
type Partial struct {
	Format              *string  `yaml:"format" schema:"format"`
	ExtraFormats        []string `yaml:"extra_formats" schema:"extraFormats"`
	DayViewHeaderFormat *string  `yaml:"day_view_header_format" schema:"dayViewHeaderFormat"`
	Stepping            *int     `yaml:"stepping" schema:"stepping"`

	MinDate     *string `yaml:"min_date" schema:"minDate"`
	MaxDate     *string `yaml:"max_date" schema:"maxDate"`
	UseCurrent  *string `yaml:"use_current" schema:"useCurrent"`
	DefaultDate *string `yaml:"default_date" schema:"defaultDate"`
	ViewDate    *string `yaml:"view_date" schema:"viewDate"`

	DisabledDates         []string   `yaml:"disabled_dates" schema:"disabledDates"`
	EnabledDates          []string   `yaml:"enabled_dates" schema:"enabledDates"`
	DaysOfWeekDisabled    []int      `yaml:"days_of_week_disabled" schema:"daysOfWeekDisabled"`
	DisabledHours         []int      `yaml:"disabled_hours" schema:"disabledHours"`
	EnabledHours          []int      `yaml:"enabled_hours" schema:"enabledHours"`
	DisabledTimeIntervals []Interval `yaml:"disabled_time_intervals" schema:"-"`
	DisabledRecurrences   []string   `yaml:"disabled_recurrences" schema:"disabledRecurrences"`
	Availability          *string    `yaml:"availability" schema:"availability"`

	KeepInvalid        *bool   `yaml:"keep_invalid" schema:"keepInvalid"`
	AllowMultidate     *bool   `yaml:"allow_multidate" schema:"allowMultidate"`
	MultidateSeparator *string `yaml:"multidate_separator" schema:"multidateSeparator"`
	UseStrict          *bool   `yaml:"use_strict" schema:"useStrict"`

	Locale   *string `yaml:"locale" schema:"locale"`
	TimeZone *string `yaml:"time_zone" schema:"timeZone"`

	ViewMode      *string `yaml:"view_mode" schema:"viewMode"`
	KeepOpen      *bool   `yaml:"keep_open" schema:"keepOpen"`
	Inline        *bool   `yaml:"inline" schema:"inline"`
	CalendarWeeks *bool   `yaml:"calendar_weeks" schema:"calendarWeeks"`

	Collapse         *bool   `yaml:"collapse" schema:"collapse"`
	SideBySide       *bool   `yaml:"side_by_side" schema:"sideBySide"`
	ToolbarPlacement *string `yaml:"toolbar_placement" schema:"toolbarPlacement"`
	FocusOnShow      *bool   `yaml:"focus_on_show" schema:"focusOnShow"`
	IgnoreReadonly   *bool   `yaml:"ignore_readonly" schema:"ignoreReadonly"`

	HourAdvanceLimit *int `yaml:"hour_advance_limit" schema:"hourAdvanceLimit"`
	DayAdvanceLimit  *int `yaml:"day_advance_limit" schema:"dayAdvanceLimit"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setList[T any](dst *[]T, src []T) {
	if src != nil {
		*dst = slices.Clone(src)
	}
}

func ref[T any](v T) *T { return &v }

// ApplyTo overlays the non-nil fields of p onto o.
func (p Partial) ApplyTo(o *Options) {
	set(&o.Format, p.Format)
	setList(&o.ExtraFormats, p.ExtraFormats)
	set(&o.DayViewHeaderFormat, p.DayViewHeaderFormat)
	set(&o.Stepping, p.Stepping)
	set(&o.MinDate, p.MinDate)
	set(&o.MaxDate, p.MaxDate)
	set(&o.UseCurrent, p.UseCurrent)
	set(&o.DefaultDate, p.DefaultDate)
	set(&o.ViewDate, p.ViewDate)
	setList(&o.DisabledDates, p.DisabledDates)
	setList(&o.EnabledDates, p.EnabledDates)
	setList(&o.DaysOfWeekDisabled, p.DaysOfWeekDisabled)
	setList(&o.DisabledHours, p.DisabledHours)
	setList(&o.EnabledHours, p.EnabledHours)
	setList(&o.DisabledTimeIntervals, p.DisabledTimeIntervals)
	setList(&o.DisabledRecurrences, p.DisabledRecurrences)
	set(&o.Availability, p.Availability)
	set(&o.KeepInvalid, p.KeepInvalid)
	set(&o.AllowMultidate, p.AllowMultidate)
	set(&o.MultidateSeparator, p.MultidateSeparator)
	set(&o.UseStrict, p.UseStrict)
	set(&o.Locale, p.Locale)
	set(&o.TimeZone, p.TimeZone)
	set(&o.ViewMode, p.ViewMode)
	set(&o.KeepOpen, p.KeepOpen)
	set(&o.Inline, p.Inline)
	set(&o.CalendarWeeks, p.CalendarWeeks)
	set(&o.Collapse, p.Collapse)
	set(&o.SideBySide, p.SideBySide)
	set(&o.ToolbarPlacement, p.ToolbarPlacement)
	set(&o.FocusOnShow, p.FocusOnShow)
	set(&o.IgnoreReadonly, p.IgnoreReadonly)
	set(&o.HourAdvanceLimit, p.HourAdvanceLimit)
	set(&o.DayAdvanceLimit, p.DayAdvanceLimit)
}

// Partial returns o as a layer that sets every option. Nil lists stay unset.
func (o Options) Partial() Partial {
	return Partial{
		Format:                ref(o.Format),
		ExtraFormats:          slices.Clone(o.ExtraFormats),
		DayViewHeaderFormat:   ref(o.DayViewHeaderFormat),
		Stepping:              ref(o.Stepping),
		MinDate:               ref(o.MinDate),
		MaxDate:               ref(o.MaxDate),
		UseCurrent:            ref(o.UseCurrent),
		DefaultDate:           ref(o.DefaultDate),
		ViewDate:              ref(o.ViewDate),
		DisabledDates:         slices.Clone(o.DisabledDates),
		EnabledDates:          slices.Clone(o.EnabledDates),
		DaysOfWeekDisabled:    slices.Clone(o.DaysOfWeekDisabled),
		DisabledHours:         slices.Clone(o.DisabledHours),
		EnabledHours:          slices.Clone(o.EnabledHours),
		DisabledTimeIntervals: slices.Clone(o.DisabledTimeIntervals),
		DisabledRecurrences:   slices.Clone(o.DisabledRecurrences),
		Availability:          ref(o.Availability),
		KeepInvalid:           ref(o.KeepInvalid),
		AllowMultidate:        ref(o.AllowMultidate),
		MultidateSeparator:    ref(o.MultidateSeparator),
		UseStrict:             ref(o.UseStrict),
		Locale:                ref(o.Locale),
		TimeZone:              ref(o.TimeZone),
		ViewMode:              ref(o.ViewMode),
		KeepOpen:              ref(o.KeepOpen),
		Inline:                ref(o.Inline),
		CalendarWeeks:         ref(o.CalendarWeeks),
		Collapse:              ref(o.Collapse),
		SideBySide:            ref(o.SideBySide),
		ToolbarPlacement:      ref(o.ToolbarPlacement),
		FocusOnShow:           ref(o.FocusOnShow),
		IgnoreReadonly:        ref(o.IgnoreReadonly),
		HourAdvanceLimit:      ref(o.HourAdvanceLimit),
		DayAdvanceLimit:       ref(o.DayAdvanceLimit),
	}
}

// Resolve layers the given overrides onto a copy of defaults, later layers
// winning, and normalizes the result.
func Resolve(defaults Options, layers ...Partial) Options {
	out := defaults
	defaults.Partial().ApplyTo(&out) // detach slices from defaults
	for _, l := range layers {
		l.ApplyTo(&out)
	}
	out.Normalize()
	return out
}

// LoadPartial reads an override layer from a YAML file. Unlike Load, a
// missing file is an error.
func LoadPartial(path string) (Partial, error) {
	var p Partial
	if path == "" {
		return p, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

// clearList is the attribute value that empties a list option.
const clearList = "false"

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter([]string{}, func(s string) reflect.Value {
		return reflect.ValueOf(splitList(s))
	})
	d.RegisterConverter([]int{}, func(s string) reflect.Value {
		parts := splitList(s)
		out := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return reflect.Value{}
			}
			out = append(out, n)
		}
		return reflect.ValueOf(out)
	})
	return d
}

// splitList splits a comma separated attribute value. "false" yields an
// empty, non-nil list.
func splitList(s string) []string {
	out := []string{}
	if strings.TrimSpace(s) == clearList {
		return out
	}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FromAttributes decodes element attributes into an override layer. Keys
// may be given as data attributes ("data-date-min-date"), kebab case
// ("min-date") or camel case ("minDate"). Unknown keys are ignored.
//
// List values are comma separated; intervals are "start..end" pairs
// separated by ";". The value "false" clears a list.
func FromAttributes(attrs url.Values) (Partial, error) {
	var p Partial
	norm := make(map[string][]string, len(attrs))
	for k, v := range attrs {
		norm[AttributeKey(k)] = v
	}
	// Struct slices need indexed keys in schema; intervals are decoded here.
	if v := norm[intervalsKey]; len(v) > 0 {
		delete(norm, intervalsKey)
		ivs, err := parseIntervals(v[len(v)-1])
		if err != nil {
			return Partial{}, err
		}
		p.DisabledTimeIntervals = ivs
	}
	if err := decoder.Decode(&p, norm); err != nil {
		return Partial{}, err
	}
	return p, nil
}

const intervalsKey = "disabledTimeIntervals"

func parseIntervals(s string) ([]Interval, error) {
	out := []Interval{}
	if strings.TrimSpace(s) == clearList {
		return out, nil
	}
	for _, p := range strings.Split(s, ";") {
		start, end, ok := strings.Cut(p, "..")
		if !ok {
			return nil, fmt.Errorf("%s: %q is not a start..end pair", intervalsKey, p)
		}
		out = append(out, Interval{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)})
	}
	return out, nil
}

// AttributeKey maps an attribute name to its option name:
// "data-date-min-date" and "min-date" both become "minDate".
func AttributeKey(k string) string {
	k = strings.TrimPrefix(k, "data-")
	k = strings.TrimPrefix(k, "date-")
	var b strings.Builder
	upper := false
	for _, r := range k {
		if r == '-' || r == '_' {
			upper = b.Len() > 0
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
