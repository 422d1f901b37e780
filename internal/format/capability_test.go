package format_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"datepicker/internal/dateval"
	"datepicker/internal/format"
)

func TestCompute(t *testing.T) {
	en := dateval.DefaultLocale()
	for i, tc := range []struct {
		format      string
		actual      string
		use24       bool
		minView     int
		hasDate     bool
		hasTime     bool
		meridiemSet bool
	}{
		{"", "MM/DD/YYYY h:mm A", false, format.ModeDays, true, true, true},
		{"YYYY-MM-DD", "YYYY-MM-DD", true, format.ModeDays, true, false, false},
		{"MM/YYYY", "MM/YYYY", true, format.ModeMonths, true, false, false},
		{"YYYY", "YYYY", true, format.ModeYears, true, false, false},
		{"HH:mm", "HH:mm", true, format.ModeDays, false, true, false},
		{"hh:mm", "hh:mm", false, format.ModeDays, false, true, false},
		{"HH:mm [h]", "HH:mm [h]", true, format.ModeDays, false, true, false},
		{"LT", "h:mm A", false, format.ModeDays, false, true, true},
		{"HH:mm [at] YYYY", "HH:mm [at] YYYY", true, format.ModeYears, true, true, true},
		{"YYYY-MM-DD [a] HH:mm", "YYYY-MM-DD [a] HH:mm", true, format.ModeDays, true, true, true},
	} {
		c := format.Compute(tc.format, en)
		if got, want := c.ActualFormat, tc.actual; got != want {
			t.Errorf("%v: actual format: got %q, want %q", i, got, want)
		}
		if got, want := c.Use24Hour, tc.use24; got != want {
			t.Errorf("%v: %q use24Hour: got %v, want %v", i, tc.format, got, want)
		}
		if got, want := c.MinViewMode, tc.minView; got != want {
			t.Errorf("%v: %q min view mode: got %v, want %v", i, tc.format, got, want)
		}
		if got, want := c.HasDate(), tc.hasDate; got != want {
			t.Errorf("%v: %q HasDate: got %v, want %v", i, tc.format, got, want)
		}
		if got, want := c.HasTime(), tc.hasTime; got != want {
			t.Errorf("%v: %q HasTime: got %v, want %v", i, tc.format, got, want)
		}
		if got, want := c.IsEnabled('a'), tc.meridiemSet; got != want {
			t.Errorf("%v: %q IsEnabled(a): got %v, want %v", i, tc.format, got, want)
		}
	}
}

func TestIsEnabledCase(t *testing.T) {
	c := format.Compute("YYYY-MM-DD HH:mm:ss", nil)
	for _, tc := range []struct {
		u    rune
		want bool
	}{
		{'y', true}, {'M', true}, {'d', true}, {'h', true}, {'H', true},
		{'m', true}, {'s', true}, {'a', false}, {'A', false}, {'x', false},
	} {
		if got := c.IsEnabled(tc.u); got != tc.want {
			t.Errorf("IsEnabled(%q): got %v, want %v", tc.u, got, tc.want)
		}
	}
	// Lower-case y is not a year token.
	if format.Compute("yyyy", nil).IsEnabled('y') {
		t.Errorf("yyyy should not enable the year")
	}
}

func TestParseFormats(t *testing.T) {
	c := format.Compute("L", nil, "YYYY-MM-DD", "DD.MM.YYYY")
	if diff := cmp.Diff([]string{"YYYY-MM-DD", "DD.MM.YYYY", "MM/DD/YYYY"}, c.ParseFormats); diff != "" {
		t.Errorf("parse formats (-want +got):\n%s", diff)
	}
	c = format.Compute("YYYY-MM-DD", nil, "YYYY-MM-DD")
	if diff := cmp.Diff([]string{"YYYY-MM-DD"}, c.ParseFormats); diff != "" {
		t.Errorf("duplicate format (-want +got):\n%s", diff)
	}
}

func TestLocaleExpansion(t *testing.T) {
	de, err := dateval.LookupLocale("de")
	if err != nil {
		t.Fatal(err)
	}
	c := format.Compute("", de)
	if got, want := c.ActualFormat, "DD.MM.YYYY HH:mm"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !c.Use24Hour {
		t.Errorf("german default format should be 24 hour")
	}
}
