package ideas

import "github.com/prometheus/client_golang/prometheus"

const (
	resultAccepted  = "accepted"
	resultDuplicate = "duplicate"
	resultInvalid   = "invalid"
	resultFailed    = "failed"

	kindUnavailable = "unavailable"
	kindUnknown     = "unknown"
)

// Metrics holds the catalog's Prometheus collectors.
type Metrics struct {
	Submissions *prometheus.CounterVec
	Seeded      prometheus.Counter
	Draws       prometheus.Counter
	StoreErrors *prometheus.CounterVec
}

// NewMetrics creates the catalog collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "idea_submissions_total",
				Help:      "Idea submissions by result",
			},
			[]string{"result"},
		),
		Seeded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ideas_seeded_total",
				Help:      "Default ideas inserted by seeding",
			},
		),
		Draws: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "idea_random_draws_total",
				Help:      "Successful random idea draws",
			},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "idea_store_errors_total",
				Help:      "Idea store failures by kind",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(m.Submissions, m.Seeded, m.Draws, m.StoreErrors)
	return m
}

func (m *Metrics) submitted(result string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) seeded(n int) {
	if m == nil {
		return
	}
	m.Seeded.Add(float64(n))
}

func (m *Metrics) drawn() {
	if m == nil {
		return
	}
	m.Draws.Inc()
}

func (m *Metrics) storeFailed(kind string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(kind).Inc()
}
