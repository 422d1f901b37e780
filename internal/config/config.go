package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the resolved option model and the YAML file
// handling, including first-run config creation and 0600 permissions.
// Layering (defaults -> attributes -> overrides) lives in partial.go.

// Interval is a disabled time range. Start is inclusive, End exclusive.
type Interval struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Options is the fully resolved picker configuration.
//
// Dates are kept as text and parsed by the picker with its parse formats,
// so that a config file can use the same notation as the input field.
type Options struct {
	// Format is the display and parse pattern (moment-style tokens).
	// Empty selects the localized "L LT".
	Format string `yaml:"format" json:"format"`
	// ExtraFormats are additional parse patterns tried before Format.
	ExtraFormats []string `yaml:"extra_formats" json:"extra_formats"`
	// DayViewHeaderFormat titles the days grid.
	DayViewHeaderFormat string `yaml:"day_view_header_format" json:"day_view_header_format"`

	// Stepping is the minute granularity used for rounding and the
	// minute increment/decrement intents.
	Stepping int `yaml:"stepping" json:"stepping"`

	// MinDate / MaxDate are inclusive bounds. Empty means unbounded.
	MinDate string `yaml:"min_date" json:"min_date"`
	MaxDate string `yaml:"max_date" json:"max_date"`

	// UseCurrent seeds an unset picker with "now" when shown. Supported
	// values:
	//   - "true" / "false"
	//   - "year", "month", "day", "hour", "minute" (truncate now to that unit)
	UseCurrent string `yaml:"use_current" json:"use_current"`

	DefaultDate string `yaml:"default_date" json:"default_date"`
	ViewDate    string `yaml:"view_date" json:"view_date"`

	// DisabledDates / EnabledDates are mutually exclusive day lists.
	DisabledDates []string `yaml:"disabled_dates" json:"disabled_dates"`
	EnabledDates  []string `yaml:"enabled_dates" json:"enabled_dates"`
	// DaysOfWeekDisabled holds weekday numbers, 0 = Sunday.
	DaysOfWeekDisabled []int `yaml:"days_of_week_disabled" json:"days_of_week_disabled"`
	// DisabledHours / EnabledHours are mutually exclusive hour lists (0-23).
	DisabledHours []int `yaml:"disabled_hours" json:"disabled_hours"`
	EnabledHours  []int `yaml:"enabled_hours" json:"enabled_hours"`

	DisabledTimeIntervals []Interval `yaml:"disabled_time_intervals" json:"disabled_time_intervals"`
	// DisabledRecurrences are RFC 5545 RRULEs whose occurrence days are
	// disabled (e.g. "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25").
	DisabledRecurrences []string `yaml:"disabled_recurrences" json:"disabled_recurrences"`
	// Availability is a cron window ("* 9-17 * * 1-5") translated into
	// enabled hours and disabled weekdays.
	Availability string `yaml:"availability" json:"availability"`

	KeepInvalid        bool   `yaml:"keep_invalid" json:"keep_invalid"`
	AllowMultidate     bool   `yaml:"allow_multidate" json:"allow_multidate"`
	MultidateSeparator string `yaml:"multidate_separator" json:"multidate_separator"`
	UseStrict          bool   `yaml:"use_strict" json:"use_strict"`

	// Locale is a BCP 47 tag ("en", "de-AT", "ko").
	Locale string `yaml:"locale" json:"locale"`
	// TimeZone is an IANA zone name. Empty uses the local zone.
	TimeZone string `yaml:"time_zone" json:"time_zone"`

	// ViewMode is the initial view: times, days, months, years or decades.
	ViewMode      string `yaml:"view_mode" json:"view_mode"`
	KeepOpen      bool   `yaml:"keep_open" json:"keep_open"`
	Inline        bool   `yaml:"inline" json:"inline"`
	CalendarWeeks bool   `yaml:"calendar_weeks" json:"calendar_weeks"`

	// Presentation-only settings, carried for the renderer.
	Collapse         bool   `yaml:"collapse" json:"collapse"`
	SideBySide       bool   `yaml:"side_by_side" json:"side_by_side"`
	ToolbarPlacement string `yaml:"toolbar_placement" json:"toolbar_placement"`
	FocusOnShow      bool   `yaml:"focus_on_show" json:"focus_on_show"`
	IgnoreReadonly   bool   `yaml:"ignore_readonly" json:"ignore_readonly"`

	// HourAdvanceLimit / DayAdvanceLimit cap the search for the next valid
	// instant when a new constraint invalidates a selected date.
	HourAdvanceLimit int `yaml:"hour_advance_limit" json:"hour_advance_limit"`
	DayAdvanceLimit  int `yaml:"day_advance_limit" json:"day_advance_limit"`
}

const (
	defaultStepping         = 1
	defaultUseCurrent       = "true"
	defaultSeparator        = ","
	defaultDayViewHeader    = "MMMM YYYY"
	defaultLocale           = "en"
	defaultViewMode         = "days"
	defaultToolbarPlacement = "default"
	defaultHourAdvanceLimit = 24
	defaultDayAdvanceLimit  = 31
)

// DefaultOptions returns an in-memory default configuration.
func DefaultOptions() *Options {
	return &Options{
		DayViewHeaderFormat: defaultDayViewHeader,
		Stepping:            defaultStepping,
		UseCurrent:          defaultUseCurrent,
		MultidateSeparator:  defaultSeparator,
		Locale:              defaultLocale,
		ViewMode:            defaultViewMode,
		Collapse:            true,
		ToolbarPlacement:    defaultToolbarPlacement,
		FocusOnShow:         true,
		HourAdvanceLimit:    defaultHourAdvanceLimit,
		DayAdvanceLimit:     defaultDayAdvanceLimit,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled files (e.g., older versions) still behave correctly.
func (o *Options) Normalize() {
	if o.Stepping < 1 {
		o.Stepping = defaultStepping
	}
	if o.UseCurrent == "" {
		o.UseCurrent = defaultUseCurrent
	}
	if o.MultidateSeparator == "" {
		o.MultidateSeparator = defaultSeparator
	}
	if o.DayViewHeaderFormat == "" {
		o.DayViewHeaderFormat = defaultDayViewHeader
	}
	if o.Locale == "" {
		o.Locale = defaultLocale
	}
	switch o.ViewMode {
	case "times", "days", "months", "years", "decades":
		// ok
	default:
		o.ViewMode = defaultViewMode
	}
	switch o.ToolbarPlacement {
	case "default", "top", "bottom":
		// ok
	default:
		o.ToolbarPlacement = defaultToolbarPlacement
	}
	if o.HourAdvanceLimit <= 0 {
		o.HourAdvanceLimit = defaultHourAdvanceLimit
	}
	if o.DayAdvanceLimit <= 0 {
		o.DayAdvanceLimit = defaultDayAdvanceLimit
	}
}

// Load loads options from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write the default options with 0600 perms
//   - return the defaults
//   - If the file exists:
//   - read YAML and unmarshal into Options
//   - normalize defaults
func Load(path string) (*Options, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			opts := DefaultOptions()
			if err := Save(path, opts); err != nil {
				// Even if save fails, return opts with error so caller can decide.
				return opts, err
			}
			return opts, nil
		}
		return nil, err
	}

	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, err
	}
	opts.Normalize()

	return opts, nil
}

// Save writes the given options to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals opts to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, opts *Options) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if opts == nil {
		return errors.New("options are nil")
	}

	opts.Normalize()

	data, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".datepicker-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Options that delegates to the
// package-level Save function.
func (o *Options) Save(path string) error {
	return Save(path, o)
}
