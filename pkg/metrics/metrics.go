package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestCounter counts HTTP requests by method, path, and status.
	HTTPRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tweeter_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestDuration observes HTTP request latencies.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tweeter_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// SessionsIssued counts session tokens minted, by originating flow.
	SessionsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tweeter_sessions_issued_total",
			Help: "Total number of session tokens issued.",
		},
		[]string{"flow"},
	)

	// ResetTokensIssued counts password-reset tokens created.
	ResetTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tweeter_password_reset_tokens_issued_total",
			Help: "Total number of password reset tokens issued.",
		},
	)

	// ResetTokensConsumed counts reset-password outcomes by token state.
	ResetTokensConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tweeter_password_reset_consume_total",
			Help: "Total number of reset-password attempts by token state.",
		},
		[]string{"state"},
	)

	// ResetRequestsRateLimited counts forgot-password requests rejected
	// by the sliding-window limiter.
	ResetRequestsRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tweeter_password_reset_rate_limited_total",
			Help: "Total number of rate-limited password reset requests.",
		},
	)
)
