package events

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	appLog "datepicker/internal/log"
)

// Line is the JSON form of an Event. Dates are RFC 3339; absent dates are
// omitted.
type Line struct {
	Picker   string `json:"picker"`
	Kind     string `json:"kind"`
	Date     string `json:"date,omitempty"`
	OldDate  string `json:"old_date,omitempty"`
	Change   string `json:"change,omitempty"`
	ViewDate string `json:"view_date,omitempty"`
}

func NewLine(e Event) Line {
	l := Line{Picker: e.Picker, Kind: e.Kind.String()}
	if e.Date != nil {
		l.Date = e.Date.Time().Format(time.RFC3339)
	}
	if e.OldDate != nil {
		l.OldDate = e.OldDate.Time().Format(time.RFC3339)
	}
	if e.Kind == Update {
		l.Change = e.Change.String()
		l.ViewDate = e.ViewDate.Time().Format(time.RFC3339)
	}
	return l
}

// JSONSink writes every event to W as one JSON line.
type JSONSink struct {
	W  io.Writer
	mu sync.Mutex
}

func (s *JSONSink) Notify(e Event) {
	l := NewLine(e)
	b, err := sonic.Marshal(l)
	if err != nil {
		appLog.Error("failed to encode event", err, "kind", l.Kind)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.W, "%s\n", b)
}
