// Package format derives, from a display format, which calendar and clock
// fields a picker works with: the smallest calendar grid it may show, whether
// the clock is 12 or 24 hour, and the list of patterns used to parse input.
package format

import (
	"regexp"
	"slices"
	"strings"

	"datepicker/internal/dateval"
)

// DefaultFormat is used when no format is configured: localized short date
// followed by localized time.
const DefaultFormat = "L LT"

// Grid view levels reported by MinViewMode.
const (
	ModeDays    = 0
	ModeMonths  = 1
	ModeYears   = 2
	ModeDecades = 3
)

// Capabilities is the result of analysing a format.
type Capabilities struct {
	// Format is the configured pattern (DefaultFormat when none was set).
	Format string
	// ActualFormat is Format with long-date placeholders expanded.
	ActualFormat string
	// ParseFormats are tried in order when reading input text.
	ParseFormats []string
	Use24Hour    bool
	// MinViewMode is the lowest grid level the picker may zoom to. It is only
	// meaningful when HasDate reports true.
	MinViewMode int
}

var bracketed = regexp.MustCompile(`\[.*?\]`)

// Compute analyses format with the long-date patterns of l. extraFormats are
// tried before the display format when parsing.
func Compute(format string, l *dateval.Locale, extraFormats ...string) Capabilities {
	if l == nil {
		l = dateval.DefaultLocale()
	}
	if format == "" {
		format = DefaultFormat
	}
	c := Capabilities{
		Format:       format,
		ActualFormat: l.ExpandLongDateFormat(format),
	}
	c.ParseFormats = append([]string{}, extraFormats...)
	if !slices.Contains(c.ParseFormats, c.Format) && !slices.Contains(c.ParseFormats, c.ActualFormat) {
		c.ParseFormats = append(c.ParseFormats, c.ActualFormat)
	}

	unbracketed := bracketed.ReplaceAllString(c.ActualFormat, "")
	c.Use24Hour = !strings.ContainsAny(unbracketed, "aA") && !strings.Contains(unbracketed, "h")

	if c.IsEnabled('y') {
		c.MinViewMode = ModeYears
	}
	if c.IsEnabled('M') {
		c.MinViewMode = ModeMonths
	}
	if c.IsEnabled('d') {
		c.MinViewMode = ModeDays
	}
	return c
}

// IsEnabled reports whether the field named by u appears in the actual
// format. Year, month, minute and second are case sensitive ('y' looks for
// "Y", 'M' for "M"); day, hour and meridiem match either case. Any other
// rune reports false.
func (c Capabilities) IsEnabled(u rune) bool {
	f := c.ActualFormat
	switch u {
	case 'y':
		return strings.Contains(f, "Y")
	case 'M':
		return strings.Contains(f, "M")
	case 'd':
		return strings.ContainsAny(f, "dD")
	case 'h', 'H':
		return strings.ContainsAny(f, "hH")
	case 'm':
		return strings.Contains(f, "m")
	case 's':
		return strings.Contains(f, "s")
	case 'a', 'A':
		return strings.ContainsAny(f, "aA")
	}
	return false
}

// HasDate reports whether any calendar field is part of the format.
func (c Capabilities) HasDate() bool {
	return c.IsEnabled('y') || c.IsEnabled('M') || c.IsEnabled('d')
}

// HasTime reports whether any clock field is part of the format.
func (c Capabilities) HasTime() bool {
	return c.IsEnabled('h') || c.IsEnabled('m') || c.IsEnabled('s')
}

// EnabledUnit maps a unit to the IsEnabled rune for it.
func (c Capabilities) EnabledUnit(u dateval.Unit) bool {
	switch u {
	case dateval.UnitYear:
		return c.IsEnabled('y')
	case dateval.UnitMonth:
		return c.IsEnabled('M')
	case dateval.UnitDay:
		return c.IsEnabled('d')
	case dateval.UnitHour:
		return c.IsEnabled('h')
	case dateval.UnitMinute:
		return c.IsEnabled('m')
	case dateval.UnitSecond:
		return c.IsEnabled('s')
	}
	return false
}
