package ics

import (
	"context"
	"time"

	"datepicker/internal/constraint"
	"datepicker/internal/dateval"
)

// Blackout is what a calendar disables: whole days for all-day events and
// [start, end) intervals for timed ones.
type Blackout struct {
	Days      []dateval.Value
	Intervals []constraint.Interval
}

// Blackouts converts occurrences. An all-day occurrence disables every day
// it covers; zero-length timed occurrences are dropped.
func Blackouts(occ []Occurrence, l *dateval.Locale) Blackout {
	var b Blackout
	seen := make(map[string]bool)
	for _, o := range occ {
		if o.AllDay {
			for d := o.Start; d.Before(o.End); d = d.AddDate(0, 0, 1) {
				v := dateval.FromTime(d, l).StartOf(dateval.UnitDay)
				if !seen[v.ISODate()] {
					seen[v.ISODate()] = true
					b.Days = append(b.Days, v)
				}
			}
			continue
		}
		if !o.End.After(o.Start) {
			continue
		}
		iv, err := constraint.NewInterval(dateval.FromTime(o.Start, l), dateval.FromTime(o.End, l))
		if err == nil {
			b.Intervals = append(b.Intervals, iv)
		}
	}
	return b
}

// Import fetches, parses and expands src within w and returns its blackout
// periods.
func Import(ctx context.Context, f *Fetcher, src Source, w Window, l *dateval.Locale) (Blackout, error) {
	body, err := f.Fetch(ctx, src)
	if err != nil {
		return Blackout{}, err
	}
	loc := w.Location
	if loc == nil {
		loc = time.Local
	}
	events, err := Parse(src, body, loc)
	if err != nil {
		return Blackout{}, err
	}
	exp, err := Expand(events, w)
	if err != nil {
		return Blackout{}, err
	}
	return Blackouts(exp.Occurrences, l), nil
}
