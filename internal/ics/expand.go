package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "datepicker/internal/log"
)

const defaultMaxOccurrences = 5000

// Window bounds recurrence expansion.
type Window struct {
	// Location is the zone occurrences are converted to. Nil means time.Local.
	Location *time.Location
	// Start / End are inclusive.
	Start time.Time
	End   time.Time
	// MaxOccurrences caps the instances of a single recurring event. Zero
	// uses 5000.
	MaxOccurrences int
}

// Occurrence is one concrete instance of an event.
type Occurrence struct {
	UID     string
	Summary string
	AllDay  bool
	// Start / End are in the window's location.
	Start time.Time
	End   time.Time
}

// Expansion is the result of Expand.
type Expansion struct {
	Occurrences []Occurrence
	// Truncated lists UIDs that hit the occurrence cap.
	Truncated []string
}

// Expand turns events into the occurrences that overlap the window. RRULEs
// are expanded, EXDATEs removed and RECURRENCE-ID overrides applied.
// Occurrences are sorted by start.
func Expand(events []Event, w Window) (Expansion, error) {
	var res Expansion
	if w.End.Before(w.Start) {
		return res, errors.New("expand: window end is before start")
	}
	if w.Location == nil {
		w.Location = time.Local
	}
	if w.MaxOccurrences <= 0 {
		w.MaxOccurrences = defaultMaxOccurrences
	}

	base := make(map[string][]Event)
	overrides := make(map[string][]Event)
	var uids []string
	for _, ev := range events {
		if ev.IsOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		if _, seen := base[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		base[ev.UID] = append(base[ev.UID], ev)
	}

	for _, uid := range uids {
		for _, ev := range base[uid] {
			var occ []Occurrence
			capped := false
			if ev.RawRRule == "" {
				occ = expandSingle(ev, overrides[uid], w)
			} else {
				occ, capped = expandRecurring(ev, overrides[uid], w)
			}
			res.Occurrences = append(res.Occurrences, occ...)
			if capped {
				res.Truncated = append(res.Truncated, uid)
				appLog.Error("expand: occurrences truncated", errors.New("max occurrences reached"),
					"uid", uid, "cap", w.MaxOccurrences)
			}
		}
	}

	sort.SliceStable(res.Occurrences, func(i, j int) bool {
		return res.Occurrences[i].Start.Before(res.Occurrences[j].Start)
	})
	return res, nil
}

func expandSingle(ev Event, overrides []Event, w Window) []Occurrence {
	if o, ok := findOverride(overrides, ev.Start); ok {
		ev = o
	}
	if !overlaps(ev.Start, ev.End, w.Start, w.End) {
		return nil
	}
	return []Occurrence{occurrence(ev, ev.Start, ev.End, w.Location)}
}

func expandRecurring(ev Event, overrides []Event, w Window) ([]Occurrence, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: bad RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	dur := ev.End.Sub(ev.Start)
	// Widen the lower bound by one duration so instances already running at
	// the window start are included.
	starts := set.Between(w.Start.Add(-dur).In(ev.Start.Location()), w.End.In(ev.Start.Location()), true)
	capped := len(starts) > w.MaxOccurrences
	if capped {
		starts = starts[:w.MaxOccurrences]
	}

	out := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		inst, end := ev, s.Add(dur)
		if ev.AllDay {
			s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
			end = s.AddDate(0, 0, max(1, int((dur.Hours()+12)/24)))
		}
		if o, ok := findOverride(overrides, s); ok {
			inst, s, end = o, o.Start, o.End
		}
		if !overlaps(s, end, w.Start, w.End) {
			continue
		}
		out = append(out, occurrence(inst, s, end, w.Location))
	}
	return out, capped
}

// findOverride returns the override whose RECURRENCE-ID is start.
func findOverride(overrides []Event, start time.Time) (Event, bool) {
	for _, o := range overrides {
		if o.Recurrence != nil && o.Recurrence.Equal(start) {
			return o, true
		}
	}
	return Event{}, false
}

func occurrence(ev Event, start, end time.Time, loc *time.Location) Occurrence {
	return Occurrence{
		UID:     ev.UID,
		Summary: ev.Summary,
		AllDay:  ev.AllDay,
		Start:   start.In(loc),
		End:     end.In(loc),
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
