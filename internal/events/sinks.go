package events

import (
	"github.com/prometheus/client_golang/prometheus"

	appLog "datepicker/internal/log"
)

// LogSink writes every event to the application log at debug level.
type LogSink struct {
	L *appLog.Logger
}

func (s LogSink) Notify(e Event) {
	l := s.L
	if l == nil {
		l = appLog.With()
	}
	kv := []any{"kind", e.Kind.String()}
	switch e.Kind {
	case Update:
		kv = append(kv, "change", e.Change.String(), "view_date", e.ViewDate.String())
	case Show:
	default:
		kv = append(kv, "date", str(e.Date), "old_date", str(e.OldDate))
	}
	l.Debug("picker event", kv...)
}

// Metrics counts delivered and suppressed events per kind.
type Metrics struct {
	emitted    *prometheus.CounterVec
	suppressed *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datepicker_events_total",
			Help: "Picker notifications delivered, by kind",
		}, []string{"kind"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datepicker_events_suppressed_total",
			Help: "Picker notifications dropped as no-ops, by kind",
		}, []string{"kind"}),
	}
	if reg != nil {
		if err := reg.Register(m.emitted); err != nil {
			return nil, err
		}
		if err := reg.Register(m.suppressed); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Notify(e Event) {
	m.emitted.WithLabelValues(e.Kind.String()).Inc()
}

// Suppressed is meant for Emitter.Suppressed.
func (m *Metrics) Suppressed(e Event) {
	m.suppressed.WithLabelValues(e.Kind.String()).Inc()
}

// Emitted returns the delivered counter for kind, for tests and reports.
func (m *Metrics) Emitted(kind Kind) prometheus.Counter {
	return m.emitted.WithLabelValues(kind.String())
}

// Dropped returns the suppressed counter for kind.
func (m *Metrics) Dropped(kind Kind) prometheus.Counter {
	return m.suppressed.WithLabelValues(kind.String())
}
