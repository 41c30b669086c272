package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeResolved            string = "resolved"
	OutcomeNoIdentifier        string = "no_identifier"
	OutcomeUpstreamUnavailable string = "upstream_unavailable"
	OutcomeMalformedInput      string = "malformed_input"
)

// Metrics holds the Prometheus collectors of the resolution pipeline. All methods
// are safe to call on a nil *Metrics.
type Metrics struct {
	Resolutions       *prometheus.CounterVec
	UpstreamFailures  *prometheus.CounterVec
	MalformedPatterns *prometheus.CounterVec
	FastPath          *prometheus.CounterVec
	DOIFallbacks      prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idresolver_resolutions_total",
			Help: "Total number of url resolutions by outcome",
		}, []string{"outcome"}),
		UpstreamFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idresolver_upstream_failures_total",
			Help: "Total number of failed knowledge base calls by operation",
		}, []string{"operation"}),
		MalformedPatterns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idresolver_malformed_patterns_total",
			Help: "Total number of skipped upstream patterns that failed to compile",
		}, []string{"kind"}),
		FastPath: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idresolver_fast_path_total",
			Help: "Total number of registry fast path attempts by result",
		}, []string{"result"}),
		DOIFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "idresolver_doi_fallback_extractions_total",
			Help: "Total number of identifiers extracted by the DOI fallback heuristic",
		}),
	}
}

func (m *Metrics) IncrementResolutions(outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementUpstreamFailures(operation string) {
	if m == nil {
		return
	}
	m.UpstreamFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementMalformedPatterns(kind string) {
	if m == nil {
		return
	}
	m.MalformedPatterns.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementFastPath(hit bool) {
	if m == nil {
		return
	}

	result := "fallback"
	if hit {
		result = "hit"
	}
	m.FastPath.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementDOIFallbacks() {
	if m == nil {
		return
	}
	m.DOIFallbacks.Inc()
}
