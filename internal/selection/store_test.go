package selection_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"datepicker/internal/constraint"
	"datepicker/internal/dateval"
	"datepicker/internal/events"
	"datepicker/internal/selection"
)

type textSink struct{ text string }

func (t *textSink) SetText(s string) { t.text = s }

type anchor struct{ v dateval.Value }

func (a *anchor) SetViewDate(v dateval.Value) { a.v = v }

type fixture struct {
	store  *selection.Store
	rules  *constraint.Set
	rec    *events.Recorder
	text   *textSink
	anchor *anchor
	policy *selection.Policy
}

func newFixture(multi bool) *fixture {
	f := &fixture{
		rules:  &constraint.Set{},
		rec:    &events.Recorder{},
		text:   &textSink{},
		anchor: &anchor{},
		policy: &selection.Policy{
			Format:         "YYYY-MM-DD",
			Stepping:       1,
			Location:       time.UTC,
			AllowMultidate: multi,
			Separator:      ",",
		},
	}
	em := &events.Emitter{ID: "test", N: f.rec}
	f.store = selection.New(f.rules, em, f.anchor, f.text, func() selection.Policy { return *f.policy })
	return f
}

func day(y int, m time.Month, d int) *dateval.Value {
	v := dateval.FromTime(time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil)
	return &v
}

func checkJoined(t *testing.T, s *selection.Store) {
	t.Helper()
	if got, want := s.Unset(), len(s.Dates()) == 0; got != want {
		t.Errorf("unset: got %v, want %v", got, want)
	}
}

func TestMultidateJoin(t *testing.T) {
	f := newFixture(true)
	f.store.Commit(day(2021, 5, 1), 0)
	checkJoined(t, f.store)
	f.store.Commit(day(2021, 5, 2), 1)
	checkJoined(t, f.store)
	if got, want := f.store.Joined(), "2021-05-01,2021-05-02"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := f.text.text, "2021-05-01,2021-05-02"; got != want {
		t.Errorf("text: got %q, want %q", got, want)
	}
	if got, want := f.anchor.v.ISODate(), "2021-05-02"; got != want {
		t.Errorf("anchor: got %v, want %v", got, want)
	}

	// Removing one of several dates keeps the others.
	f.store.Commit(nil, 0)
	checkJoined(t, f.store)
	if got, want := f.store.Joined(), "2021-05-02"; got != want {
		t.Errorf("after delete: got %q, want %q", got, want)
	}
	if diff := cmp.Diff([]events.Kind{events.Change, events.Change, events.Change}, f.rec.Kinds()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestDeleteOnlyDate(t *testing.T) {
	f := newFixture(true)
	f.store.Commit(day(2021, 5, 1), 0)
	f.rec.Reset()
	f.store.Commit(nil, 0)
	checkJoined(t, f.store)
	if !f.store.Unset() {
		t.Errorf("store should be unset")
	}
	if got := f.store.Joined(); got != "" {
		t.Errorf("joined: got %q, want empty", got)
	}
	evs := f.rec.Events()
	if len(evs) != 1 || evs[0].Kind != events.Change || evs[0].Date != nil || evs[0].OldDate == nil {
		t.Fatalf("want one change with no date, got %v", evs)
	}
	// Deleting from an unset store is a no-op.
	f.store.Commit(nil, 0)
	if got := len(f.rec.Events()); got != 1 {
		t.Errorf("got %v events, want 1", got)
	}
}

func TestCommitIdempotent(t *testing.T) {
	f := newFixture(false)
	f.store.Commit(day(2021, 5, 1), 0)
	f.store.Commit(day(2021, 5, 1), 0)
	if diff := cmp.Diff([]events.Kind{events.Change}, f.rec.Kinds()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestSingleSelectReplaces(t *testing.T) {
	f := newFixture(false)
	f.store.Commit(day(2021, 5, 1), 0)
	f.store.Commit(day(2021, 5, 9), 3)
	if got, want := len(f.store.Dates()), 1; got != want {
		t.Fatalf("got %v dates, want %v", got, want)
	}
	if got, want := f.store.Joined(), "2021-05-09"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	evs := f.rec.Events()
	if got, want := evs[1].OldDate.ISODate(), "2021-05-01"; got != want {
		t.Errorf("old date: got %v, want %v", got, want)
	}
}

func TestRejected(t *testing.T) {
	for _, keepInvalid := range []bool{false, true} {
		f := newFixture(false)
		f.policy.KeepInvalid = keepInvalid
		if err := f.rules.SetMinDate(day(2021, 1, 1)); err != nil {
			t.Fatal(err)
		}
		f.store.Commit(day(2021, 5, 1), 0)
		f.rec.Reset()
		f.text.text = "typed by the user"

		res := f.store.Commit(day(2020, 5, 1), 0)
		if res.Accepted {
			t.Errorf("keepInvalid=%v: commit before minDate accepted", keepInvalid)
		}
		checkJoined(t, f.store)
		if got, want := f.store.Joined(), "2021-05-01"; got != want {
			t.Errorf("keepInvalid=%v: joined: got %q, want %q", keepInvalid, got, want)
		}
		want := []events.Kind{events.Error}
		wantText := "2021-05-01"
		if keepInvalid {
			want = []events.Kind{events.Change, events.Error}
			wantText = "typed by the user"
		}
		if diff := cmp.Diff(want, f.rec.Kinds()); diff != "" {
			t.Errorf("keepInvalid=%v: events (-want +got):\n%s", keepInvalid, diff)
		}
		if got := f.text.text; got != wantText {
			t.Errorf("keepInvalid=%v: text: got %q, want %q", keepInvalid, got, wantText)
		}
	}
}

func TestRejectedWhileUnsetClearsText(t *testing.T) {
	f := newFixture(false)
	f.text.text = "garbage"
	f.store.Commit(&dateval.Value{}, 0)
	if got := f.text.text; got != "" {
		t.Errorf("text: got %q, want empty", got)
	}
	if diff := cmp.Diff([]events.Kind{events.Error}, f.rec.Kinds()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestStepping(t *testing.T) {
	for i, tc := range []struct {
		minute, second, step int
		want                 string
	}{
		{7, 30, 5, "10:05:00"},
		{8, 0, 5, "10:10:00"},
		{5, 0, 10, "10:10:00"},
		{58, 10, 5, "11:00:00"},
		{7, 30, 1, "10:07:30"},
	} {
		f := newFixture(false)
		f.policy.Format = "HH:mm:ss"
		f.policy.Stepping = tc.step
		v := dateval.FromTime(time.Date(2021, 5, 1, 10, tc.minute, tc.second, 0, time.UTC), nil)
		res := f.store.Commit(&v, 0)
		if got := res.Date.Format("HH:mm:ss"); got != tc.want {
			t.Errorf("%v: got %v, want %v", i, got, tc.want)
		}
	}
}

func TestAccessors(t *testing.T) {
	f := newFixture(true)
	if f.store.LastIndex() != -1 {
		t.Errorf("LastIndex of an empty store should be -1")
	}
	f.store.Commit(day(2021, 5, 1), 0)
	f.store.Commit(day(2021, 5, 7), 5)
	if got, want := f.store.LastIndex(), 1; got != want {
		t.Errorf("LastIndex: got %v, want %v", got, want)
	}
	last, ok := f.store.Last()
	if !ok || last.ISODate() != "2021-05-07" {
		t.Errorf("Last: got %v %v", last, ok)
	}
	noon := dateval.FromTime(time.Date(2021, 5, 7, 12, 0, 0, 0, time.UTC), nil)
	if got, want := f.store.IndexOfDay(noon), 1; got != want {
		t.Errorf("IndexOfDay: got %v, want %v", got, want)
	}
	if got := f.store.IndexOfDay(*day(2021, 5, 3)); got != -1 {
		t.Errorf("IndexOfDay: got %v, want -1", got)
	}
	if _, ok := f.store.At(9); ok {
		t.Errorf("At out of range should fail")
	}
	ds := f.store.Dates()
	ds[0] = dateval.Value{}
	if d, _ := f.store.At(0); !d.Valid() {
		t.Errorf("Dates must return a copy")
	}
}

func TestRerender(t *testing.T) {
	f := newFixture(false)
	f.store.Commit(day(2021, 5, 1), 0)
	f.policy.Format = "DD/MM/YYYY"
	f.rec.Reset()
	f.store.Rerender()
	if got, want := f.text.text, "01/05/2021"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if n := len(f.rec.Events()); n != 0 {
		t.Errorf("re-rendering the same instant emitted %v events", n)
	}
}

func TestCommitAtGranularity(t *testing.T) {
	f := newFixture(false)
	f.rules.SetDisabledHours([]int{9, 10, 11})
	ten := dateval.FromTime(time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC), nil)

	// Hour rules only apply at time granularities.
	if res := f.store.Commit(&ten, 0); !res.Accepted {
		t.Errorf("commit without granularity should pass hour rules")
	}
	f.store.Commit(nil, 0)
	f.rec.Reset()

	if res := f.store.CommitAt(&ten, 0, dateval.UnitHour); res.Accepted {
		t.Errorf("10:00 accepted with hours 9-11 disabled")
	}
	if diff := cmp.Diff([]events.Kind{events.Error}, f.rec.Kinds()); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}
