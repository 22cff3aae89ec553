package wathq

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the upstream and cache collectors.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wathq_upstream_requests_total",
				Help: "Total number of requests sent to Wathq.",
			},
			[]string{"service", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wathq_upstream_duration_seconds",
				Help:    "Latency of Wathq requests.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
			},
			[]string{"service"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wathq_cache_lookups_total",
				Help: "Cache lookups of the Wathq proxy by result.",
			},
			[]string{"service", "result"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.cacheLookups} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// CacheLookup records a cache hit or miss. A nil receiver is a no-op.
func (m *Metrics) CacheLookup(service string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(service, result).Inc()
}

func (m *Metrics) observe(service, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(service, outcome).Inc()
	m.duration.WithLabelValues(service).Observe(seconds)
}
