package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danishweather_upstream_calls_total",
			Help: "Total outbound calls to third-party weather services",
		},
		[]string{"provider", "status"},
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "danishweather_upstream_latency_seconds",
			Help:    "Third-party weather service latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danishweather_fetch_attempts_total",
			Help: "Total attempts made by the retrying fetch client",
		},
		[]string{"outcome"},
	)

	AdapterResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danishweather_adapter_results_total",
			Help: "Adapter outcomes as seen by the aggregator",
		},
		[]string{"provider", "status"},
	)

	RefreshCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danishweather_refresh_cycles_total",
			Help: "Completed periodic refresh cycles",
		},
		[]string{"status"},
	)
)
