package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "writediary_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "writediary_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CorrectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "writediary_corrections_total",
			Help: "Total number of AI correction passes.",
		},
		[]string{"status"},
	)

	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "writediary_scans_total",
			Help: "Total number of handwriting scan passes.",
		},
		[]string{"status"},
	)

	ModelAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "writediary_model_attempts_total",
			Help: "Total number of individual model invocation attempts.",
		},
		[]string{"kind", "outcome"},
	)

	QuotaDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "writediary_quota_denials_total",
			Help: "Total number of admission checks that denied a metered action.",
		},
		[]string{"feature"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		CorrectionsTotal,
		ScansTotal,
		ModelAttemptsTotal,
		QuotaDenialsTotal,
	)
}
