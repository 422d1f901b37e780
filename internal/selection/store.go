// Package selection holds the selected dates of a picker and the single
// mutation path for them.
package selection

import (
	"slices"
	"strings"
	"time"

	"datepicker/internal/dateval"
	"datepicker/internal/events"
)

// Validator decides whether a value may be stored.
type Validator interface {
	IsValid(v dateval.Value, g dateval.Unit) bool
}

// Anchor follows accepted commits; the view navigator moves its visible page
// to the committed value.
type Anchor interface {
	SetViewDate(v dateval.Value)
}

// Projection receives the formatted selection, typically an input element.
type Projection interface {
	SetText(string)
}

// Policy is the part of the picker configuration that affects commits. It is
// read at the start of every commit.
type Policy struct {
	// Format is the actual (expanded) display format.
	Format         string
	Stepping       int
	Location       *time.Location
	Locale         *dateval.Locale
	KeepInvalid    bool
	AllowMultidate bool
	Separator      string
}

// CommitResult reports the outcome of a commit. Date is the normalized
// candidate; it is the zero Value for deletions.
type CommitResult struct {
	Accepted bool
	Date     dateval.Value
}

// Store is the ordered list of selected dates. Insertion order is the
// multi-date index. The store is unset exactly when it holds no dates.
//
// A Store is not safe for concurrent use; a picker drives it from a single
// goroutine.
type Store struct {
	dates  []dateval.Value
	joined string

	validator Validator
	notifier  events.Notifier
	anchor    Anchor
	text      Projection
	policy    func() Policy
}

// New returns an empty store. anchor and text may be nil.
func New(v Validator, n events.Notifier, anchor Anchor, text Projection, policy func() Policy) *Store {
	if n == nil {
		n = events.Discard
	}
	return &Store{validator: v, notifier: n, anchor: anchor, text: text, policy: policy}
}

// Commit stores candidate at index, or removes the date at index when
// candidate is nil.
//
// Behavior:
//   - nil candidate: clears the store unless multi-select holds more than one
//     date, in which case only index is removed. Emits Change with no date.
//   - otherwise the candidate is moved to the configured locale and location,
//     minutes are rounded to the stepping (seconds zeroed) and the result is
//     validated against the exact bounds.
//   - accepted: stored (replacing index 0 in single-select mode, appending
//     when index is past the end), the view anchor follows, Change is emitted.
//   - rejected: without keepInvalid the previous text is restored, with it a
//     Change carrying the rejected value is emitted; Error is emitted either way.
func (s *Store) Commit(candidate *dateval.Value, index int) CommitResult {
	return s.CommitAt(candidate, index, dateval.UnitNone)
}

// CommitAt is Commit with the candidate validated at granularity g, as the
// time wheels do for hour, minute and second picks.
func (s *Store) CommitAt(candidate *dateval.Value, index int, g dateval.Unit) CommitResult {
	p := s.policy()
	if !p.AllowMultidate || index < 0 {
		index = 0
	}
	var oldDate *dateval.Value
	if index < len(s.dates) {
		old := s.dates[index]
		oldDate = &old
	}

	if candidate == nil {
		s.remove(index, p)
		s.notifier.Notify(events.Event{Kind: events.Change, OldDate: oldDate})
		return CommitResult{Accepted: true}
	}

	target := candidate.WithLocale(p.Locale).In(p.Location)
	if p.Stepping > 1 {
		target = target.WithMinute(roundTo(target.Minute(), p.Stepping)).WithSecond(0)
	}

	if !s.validator.IsValid(target, g) {
		if !p.KeepInvalid {
			s.setText(s.joined)
		} else {
			s.notifier.Notify(events.Event{Kind: events.Change, Date: &target, OldDate: oldDate})
		}
		s.notifier.Notify(events.Event{Kind: events.Error, Date: &target, OldDate: oldDate})
		return CommitResult{Date: target}
	}

	if index >= len(s.dates) {
		index = len(s.dates)
		s.dates = append(s.dates, target)
	} else {
		s.dates[index] = target
	}
	if s.anchor != nil {
		s.anchor.SetViewDate(target)
	}
	s.rejoin(p)
	s.notifier.Notify(events.Event{Kind: events.Change, Date: &target, OldDate: oldDate})
	return CommitResult{Accepted: true, Date: target}
}

func (s *Store) remove(index int, p Policy) {
	switch {
	case !p.AllowMultidate || len(s.dates) <= 1:
		s.dates = nil
	case index < len(s.dates):
		s.dates = slices.Delete(s.dates, index, index+1)
	default:
		return
	}
	s.rejoin(p)
}

func (s *Store) rejoin(p Policy) {
	parts := make([]string, len(s.dates))
	for i, d := range s.dates {
		parts[i] = d.Format(p.Format)
	}
	s.joined = strings.Join(parts, p.Separator)
	s.setText(s.joined)
}

func (s *Store) setText(text string) {
	if s.text != nil {
		s.text.SetText(text)
	}
}

// roundTo rounds minute to the nearest multiple of step, halves rounding up.
// The result may be 60, which rolls over into the next hour.
func roundTo(minute, step int) int {
	return (2*minute + step) / (2 * step) * step
}

// Rerender replays the first date through Commit so that the text
// projection picks up a changed format, locale or stepping.
func (s *Store) Rerender() {
	if len(s.dates) == 0 {
		return
	}
	first := s.dates[0]
	s.Commit(&first, 0)
}

// Relocalize moves every selected date to l and loc and re-renders the
// joined text. No events are emitted.
func (s *Store) Relocalize(l *dateval.Locale, loc *time.Location) {
	if len(s.dates) == 0 {
		return
	}
	for i, d := range s.dates {
		s.dates[i] = d.WithLocale(l).In(loc)
	}
	s.rejoin(s.policy())
}

// KeepFirst drops every date after the first, as a single-select store may
// hold at most one. No events are emitted.
func (s *Store) KeepFirst() {
	if len(s.dates) <= 1 {
		return
	}
	s.dates = s.dates[:1:1]
	s.rejoin(s.policy())
}

// Dates returns a copy of the selected dates in selection order.
func (s *Store) Dates() []dateval.Value { return slices.Clone(s.dates) }

// Unset reports whether no date is selected.
func (s *Store) Unset() bool { return len(s.dates) == 0 }

// Joined returns the formatted selection as last projected.
func (s *Store) Joined() string { return s.joined }

// Len returns the number of selected dates.
func (s *Store) Len() int { return len(s.dates) }

// At returns the date at index i.
func (s *Store) At(i int) (dateval.Value, bool) {
	if i < 0 || i >= len(s.dates) {
		return dateval.Value{}, false
	}
	return s.dates[i], true
}

// Last returns the most recently positioned date (the highest index).
func (s *Store) Last() (dateval.Value, bool) {
	return s.At(len(s.dates) - 1)
}

// LastIndex is the index of Last, -1 when unset.
func (s *Store) LastIndex() int { return len(s.dates) - 1 }

// IndexOfDay returns the index of the first selected date on the same
// calendar day as v, or -1.
func (s *Store) IndexOfDay(v dateval.Value) int {
	return slices.IndexFunc(s.dates, func(d dateval.Value) bool {
		return d.ISODate() == v.In(d.Location()).ISODate()
	})
}
