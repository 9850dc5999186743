package extraction

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Field states recorded per label per run.
const (
	FieldRecognized = "recognized"
	FieldAbsent     = "absent"
	FieldFailed     = "failed"
)

// Metrics records pipeline outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec
	fields   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates pipeline metrics registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idscan_extraction_runs_total",
			Help: "Extraction runs by outcome.",
		}, []string{"outcome"}),
		fields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idscan_extraction_fields_total",
			Help: "Recognized, absent, and failed fields by label.",
		}, []string{"label", "state"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "idscan_extraction_duration_seconds",
			Help:    "Wall time of extraction runs.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}

	if reg != nil {
		reg.MustRegister(m.runs, m.fields, m.duration)
	}

	return m
}

func (m *Metrics) observeRun(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeField(label Label, state string) {
	if m == nil {
		return
	}
	m.fields.WithLabelValues(string(label), state).Inc()
}
