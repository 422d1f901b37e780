package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func calendar(lines ...string) []byte {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//datepicker//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR", "")
	return []byte(strings.Join(all, "\r\n"))
}

var holidays = calendar(
	"BEGIN:VEVENT",
	"UID:christmas",
	"SUMMARY:Christmas",
	"DTSTART;VALUE=DATE:20201225",
	"DTEND;VALUE=DATE:20201226",
	"RRULE:FREQ=YEARLY",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:standup",
	"DTSTART:20210503T090000Z",
	"DTEND:20210503T100000Z",
	"RRULE:FREQ=WEEKLY;COUNT=3",
	"EXDATE:20210510T090000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:standup",
	"RECURRENCE-ID:20210517T090000Z",
	"DTSTART:20210517T140000Z",
	"DTEND:20210517T150000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:review",
	"DTSTART:20210510T100000Z",
	"DTEND:20210510T120000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"SUMMARY:no uid",
	"DTSTART:20210510T100000Z",
	"END:VEVENT",
)

var year2021 = Window{
	Location: time.UTC,
	Start:    time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	End:      time.Date(2021, 12, 31, 23, 59, 59, 0, time.UTC),
}

func TestParse(t *testing.T) {
	evs, err := Parse(Source{ID: "test"}, holidays, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(evs), 4; got != want {
		t.Fatalf("got %v events, want %v (the one without UID is skipped)", got, want)
	}
	xmas := evs[0]
	if !xmas.AllDay || xmas.RawRRule != "FREQ=YEARLY" || xmas.IsOverride() {
		t.Errorf("christmas: %+v", xmas)
	}
	if got, want := xmas.End.Sub(xmas.Start), 24*time.Hour; got != want {
		t.Errorf("christmas length: got %v, want %v", got, want)
	}
	if len(evs[1].ExDates) != 1 || !evs[2].IsOverride() {
		t.Errorf("standup: %+v / %+v", evs[1], evs[2])
	}
	if _, err := Parse(Source{}, nil, time.UTC); err == nil {
		t.Errorf("expected an error for an empty body")
	}
}

func TestExpand(t *testing.T) {
	evs, err := Parse(Source{ID: "test"}, holidays, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	exp, err := Expand(evs, year2021)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, o := range exp.Occurrences {
		got = append(got, o.UID+" "+o.Start.Format(time.RFC3339)+" "+o.End.Format(time.RFC3339))
	}
	want := []string{
		"standup 2021-05-03T09:00:00Z 2021-05-03T10:00:00Z",
		"review 2021-05-10T10:00:00Z 2021-05-10T12:00:00Z",
		"standup 2021-05-17T14:00:00Z 2021-05-17T15:00:00Z",
		"christmas 2021-12-25T00:00:00Z 2021-12-26T00:00:00Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("occurrences (-want +got):\n%s", diff)
	}

	bad := year2021
	bad.End = bad.Start.Add(-time.Hour)
	if _, err := Expand(evs, bad); err == nil {
		t.Errorf("expected an error for an inverted window")
	}
}

func TestExpandCap(t *testing.T) {
	evs := []Event{{
		UID:      "daily",
		Start:    time.Date(2021, 1, 1, 8, 0, 0, 0, time.UTC),
		End:      time.Date(2021, 1, 1, 9, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY",
	}}
	w := year2021
	w.MaxOccurrences = 10
	exp, err := Expand(evs, w)
	if err != nil {
		t.Fatal(err)
	}
	if len(exp.Occurrences) != 10 {
		t.Errorf("got %v occurrences, want 10", len(exp.Occurrences))
	}
	if diff := cmp.Diff([]string{"daily"}, exp.Truncated); diff != "" {
		t.Errorf("truncated (-want +got):\n%s", diff)
	}
}

func TestBlackouts(t *testing.T) {
	occ := []Occurrence{
		{UID: "trip", AllDay: true, Start: time.Date(2021, 7, 30, 0, 0, 0, 0, time.UTC), End: time.Date(2021, 8, 2, 0, 0, 0, 0, time.UTC)},
		{UID: "dup", AllDay: true, Start: time.Date(2021, 7, 31, 0, 0, 0, 0, time.UTC), End: time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)},
		{UID: "call", Start: time.Date(2021, 8, 3, 15, 0, 0, 0, time.UTC), End: time.Date(2021, 8, 3, 16, 0, 0, 0, time.UTC)},
		{UID: "instant", Start: time.Date(2021, 8, 3, 17, 0, 0, 0, time.UTC), End: time.Date(2021, 8, 3, 17, 0, 0, 0, time.UTC)},
	}
	b := Blackouts(occ, nil)
	var days []string
	for _, d := range b.Days {
		days = append(days, d.ISODate())
	}
	if diff := cmp.Diff([]string{"2021-07-30", "2021-07-31", "2021-08-01"}, days); diff != "" {
		t.Errorf("days (-want +got):\n%s", diff)
	}
	if len(b.Intervals) != 1 || b.Intervals[0].Start.Hour() != 15 {
		t.Errorf("intervals: %v", b.Intervals)
	}
}

func TestImport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/holidays.ics" {
			http.NotFound(w, r)
			return
		}
		w.Write(holidays)
	}))
	defer srv.Close()

	f := NewFetcher(time.Second)
	b, err := Import(context.Background(), f, Source{ID: "http", URL: srv.URL + "/holidays.ics"}, year2021, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Days) != 1 || b.Days[0].ISODate() != "2021-12-25" || len(b.Intervals) != 3 {
		t.Errorf("unexpected blackout: %+v", b)
	}

	if _, err := f.Fetch(context.Background(), Source{URL: srv.URL + "/missing.ics"}); err == nil {
		t.Errorf("expected an error for a 404")
	}

	path := filepath.Join(t.TempDir(), "cal.ics")
	if err := os.WriteFile(path, holidays, 0o600); err != nil {
		t.Fatal(err)
	}
	for _, u := range []string{path, "file://" + path} {
		body, err := f.Fetch(context.Background(), Source{URL: u})
		if err != nil || len(body) != len(holidays) {
			t.Errorf("%v: got %v bytes, err %v", u, len(body), err)
		}
	}
}

func TestRedactURL(t *testing.T) {
	for in, want := range map[string]string{
		"https://example.com/private.ics?token=abcd": "https://example.com/...(redacted)",
		"http://example.com?token=abcd":              "http://example.com/...(redacted)",
		"/etc/holidays.ics":                          "/etc/holidays.ics",
	} {
		if got := redactURL(in); got != want {
			t.Errorf("%q: got %q, want %q", in, got, want)
		}
	}
}
