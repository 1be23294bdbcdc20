package dncpd

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the Prometheus-backed implementation of pkg/dncp.Metrics,
// registered on an isolated registry so dncpd's counters never collide
// with whatever else shares the process's default registry.
type Metrics struct {
	Registry *prometheus.Registry

	TrickleSuppressedTotal *prometheus.CounterVec
	TrickleEmittedTotal    *prometheus.CounterVec
	NodePrunedTotal        *prometheus.CounterVec
	CollisionsTotal        prometheus.Counter
	MalformedTotal         *prometheus.CounterVec

	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec

	BuildInfo *prometheus.GaugeVec
}

// NewMetrics creates a Metrics instance with every collector registered.
func NewMetrics(version, goVersion string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,
		TrickleSuppressedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dncp_trickle_suppressed_total",
				Help: "Total number of Trickle fires suppressed by consistency (spec invariant #2).",
			},
			[]string{"endpoint"},
		),
		TrickleEmittedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dncp_trickle_emitted_total",
				Help: "Total number of network-state-hash summaries emitted.",
			},
			[]string{"endpoint"},
		),
		NodePrunedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dncp_node_pruned_total",
				Help: "Total number of prune passes that changed the reachable set or deleted nodes unreachable past the grace period (one increment per pass, not per node).",
			},
			[]string{"endpoint"},
		),
		CollisionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dncp_collisions_total",
				Help: "Total number of own-identifier collisions detected.",
			},
		),
		MalformedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dncp_malformed_datagrams_total",
				Help: "Total number of inbound datagrams rejected as malformed TLV streams.",
			},
			[]string{"endpoint"},
		),
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dncpd_api_requests_total",
				Help: "Total number of control-API requests.",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dncpd_api_request_duration_seconds",
				Help:    "Duration of control-API requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dncpd_build_info",
				Help: "Build information, value is always 1.",
			},
			[]string{"version", "go_version"},
		),
	}

	reg.MustRegister(
		m.TrickleSuppressedTotal, m.TrickleEmittedTotal, m.NodePrunedTotal,
		m.CollisionsTotal, m.MalformedTotal,
		m.APIRequestsTotal, m.APIRequestDurationSeconds, m.BuildInfo,
	)
	m.BuildInfo.WithLabelValues(version, goVersion).Set(1)
	return m
}

// Handler returns the HTTP handler serving this registry's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// The following satisfy pkg/dncp.Metrics.

func (m *Metrics) TrickleSuppressed(endpoint string) { m.TrickleSuppressedTotal.WithLabelValues(endpoint).Inc() }
func (m *Metrics) TrickleEmitted(endpoint string)    { m.TrickleEmittedTotal.WithLabelValues(endpoint).Inc() }
func (m *Metrics) NodePruned(endpoint string)        { m.NodePrunedTotal.WithLabelValues(endpoint).Inc() }
func (m *Metrics) CollisionDetected()                { m.CollisionsTotal.Inc() }
func (m *Metrics) MalformedDatagram(endpoint string) { m.MalformedTotal.WithLabelValues(endpoint).Inc() }
