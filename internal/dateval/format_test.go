package dateval_test

import (
	"testing"
	"time"

	"datepicker/internal/dateval"
)

func TestFormat(t *testing.T) {
	v := date(2021, 5, 2, 13, 7, 9)
	de, _ := dateval.LookupLocale("de")
	for i, tc := range []struct {
		v       dateval.Value
		pattern string
		want    string
	}{
		{v, "YYYY-MM-DD", "2021-05-02"},
		{v, "YY M D", "21 5 2"},
		{v, "MMMM Do, YYYY", "May 2nd, 2021"},
		{v, "ddd dd dddd d", "Sun Su Sunday 0"},
		{v, "HH:mm:ss", "13:07:09"},
		{v, "h:m:s a", "1:7:9 pm"},
		{v, "hh A", "01 PM"},
		{v, "[Today is] dddd", "Today is Sunday"},
		{v, `YYYY\Y`, "2021Y"},
		{v, "L LT", "05/02/2021 1:07 PM"},
		{v, "LL", "May 2, 2021"},
		{v, "ll", "May 2, 2021"},
		{v, "LLLL", "Sunday, May 2, 2021 1:07 PM"},
		{v, "Z ZZ", "+00:00 +0000"},
		{v, "X", "1619960829"},
		{v.WithLocale(de), "LL", "2. Mai 2021"},
		{v.WithLocale(de), "L LT", "02.05.2021 13:07"},
		{date(2021, 5, 11, 0, 0, 0), "Do", "11th"},
		{date(2021, 5, 23, 0, 0, 0), "Do", "23rd"},
		{date(2021, 5, 2, 0, 0, 0), "h A", "12 AM"},
		{dateval.Invalid(), "YYYY", "Invalid date"},
	} {
		if got, want := tc.v.Format(tc.pattern), tc.want; got != want {
			t.Errorf("%v: %q: got %q, want %q", i, tc.pattern, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	now := func() time.Time { return time.Date(2022, 7, 14, 9, 30, 0, 0, time.UTC) }
	for i, tc := range []struct {
		text     string
		patterns []string
		strict   bool
		want     string
	}{
		{"2021-05-02", []string{"YYYY-MM-DD"}, false, "2021-05-02T00:00:00Z"},
		{"2021/5/2", []string{"YYYY-MM-DD"}, false, "2021-05-02T00:00:00Z"},
		{"05/02/2021 1:07 PM", []string{"L LT"}, false, "2021-05-02T13:07:00Z"},
		{"05/02/2021 12:15 am", []string{"L LT"}, false, "2021-05-02T00:15:00Z"},
		{"May 2nd, 2021", []string{"MMMM Do, YYYY"}, false, "2021-05-02T00:00:00Z"},
		{"2 sep 2021", []string{"D MMM YYYY"}, false, "2021-09-02T00:00:00Z"},
		{"10:45", []string{"HH:mm"}, false, "2022-07-14T10:45:00Z"},
		{"2019", []string{"YYYY"}, false, "2019-01-01T00:00:00Z"},
		{"03/2019", []string{"MM/YYYY"}, false, "2019-03-01T00:00:00Z"},
		{"21-05-02", []string{"YY-MM-DD"}, false, "2021-05-02T00:00:00Z"},
		{"99-05-02", []string{"YY-MM-DD"}, false, "1999-05-02T00:00:00Z"},
		{"2021-05-02T10:00:00+02:00", []string{"YYYY-MM-DD[T]HH:mm:ssZ"}, false, "2021-05-02T08:00:00Z"},
		{"2021-05-02T10:00:00-0130", []string{"YYYY-MM-DD[T]HH:mm:ssZZ"}, false, "2021-05-02T11:30:00Z"},
		{"1619960829", []string{"X"}, false, "2021-05-02T13:07:09Z"},
		{"02.05.2021", []string{"YYYY-MM-DD", "DD.MM.YYYY"}, true, "2021-05-02T00:00:00Z"},
		{"2021-05-02", []string{"YYYY-MM-DD"}, true, "2021-05-02T00:00:00Z"},
	} {
		p := dateval.Parser{Patterns: tc.patterns, Location: time.UTC, Strict: tc.strict, Now: now}
		v := p.Parse(tc.text)
		if !v.Valid() {
			t.Errorf("%v: %q did not parse", i, tc.text)
			continue
		}
		if got, want := v.String(), tc.want; got != want {
			t.Errorf("%v: %q: got %v, want %v", i, tc.text, got, want)
		}
	}
}

func TestParseFailures(t *testing.T) {
	for i, tc := range []struct {
		text    string
		pattern string
		strict  bool
	}{
		{"", "YYYY-MM-DD", false},
		{"hello", "YYYY-MM-DD", false},
		{"2021-02-30", "YYYY-MM-DD", false},
		{"2021-13-01", "YYYY-MM-DD", false},
		{"25:00", "HH:mm", false},
		{"13:00 PM", "h:mm A", false},
		{"2021/05/02", "YYYY-MM-DD", true},
		{"2021-5-2", "YYYY-MM-DD", true},
		{"2021-05-02 junk", "YYYY-MM-DD", true},
	} {
		p := dateval.Parser{Patterns: []string{tc.pattern}, Location: time.UTC, Strict: tc.strict}
		if v := p.Parse(tc.text); v.Valid() {
			t.Errorf("%v: %q with %q: unexpectedly parsed as %v", i, tc.text, tc.pattern, v)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	v := date(2024, 2, 29, 23, 59, 58)
	for _, pattern := range []string{"YYYY-MM-DD HH:mm:ss", "L LTS", "LLLL", "dddd, MMMM Do YYYY h:mm:ss a"} {
		text := v.Format(pattern)
		got := dateval.Parser{Patterns: []string{pattern}, Location: time.UTC}.Parse(text)
		precision := dateval.UnitSecond
		if pattern == "LLLL" {
			precision = dateval.UnitMinute
		}
		if !got.Same(v, precision) {
			t.Errorf("%q: %q parsed as %v, want %v", pattern, text, got, v)
		}
	}
}

func TestLookupLocale(t *testing.T) {
	for _, tc := range []struct {
		name string
		want string
	}{
		{"", "en-US"},
		{"en", "en-US"},
		{"en_GB", "en-GB"},
		{"de-AT", "de"},
		{"fr-CA", "fr"},
		{"ko-KR", "ko"},
	} {
		l, err := dateval.LookupLocale(tc.name)
		if err != nil {
			t.Errorf("%q: %v", tc.name, err)
			continue
		}
		if got := l.Name(); got != tc.want {
			t.Errorf("%q: got %v, want %v", tc.name, got, tc.want)
		}
	}
	if _, err := dateval.LookupLocale("not a tag!"); err == nil {
		t.Errorf("expected an error for a malformed tag")
	}
}
