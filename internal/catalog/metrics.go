package catalog

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeFound   = "found"
	outcomeEmpty   = "empty"
	outcomeBrowse  = "browse"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

// Metrics are the catalog specific collectors. A nil *Metrics is a no-op.
type Metrics struct {
	MoviesLoaded prometheus.Gauge
	LoadFailures prometheus.Counter
	Searches     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MoviesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_movies_loaded",
			Help: "Movies in the catalog snapshot",
		}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_load_failures_total",
			Help: "Catalog loads that fell back to the empty catalog",
		}),
		Searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_searches_total",
				Help: "Searches by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.MoviesLoaded, m.LoadFailures, m.Searches)
	}
	return m
}

func (m *Metrics) ObserveLoad(res LoadResult) {
	if m == nil {
		return
	}
	m.MoviesLoaded.Set(float64(res.Catalog.Len()))
	if res.Degraded() {
		m.LoadFailures.Inc()
	}
}

func (m *Metrics) ObserveSearch(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(endpoint, outcome).Inc()
}
