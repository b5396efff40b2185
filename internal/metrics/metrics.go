package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "replywise_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "replywise_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "replywise_generations_total",
			Help: "Total number of reply generations by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	CompletionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "replywise_completion_duration_seconds",
			Help:    "Latency of chat completion calls by provider.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"provider"},
	)

	ReplyPersistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "replywise_reply_persist_failures_total",
			Help: "Generated replies that could not be stored.",
		},
	)

	GuestQuotaRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "replywise_guest_quota_rejections_total",
			Help: "Guest generations rejected by the cookie quota.",
		},
	)

	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "replywise_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter.",
		},
		[]string{"scope"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		GenerationsTotal,
		CompletionDuration,
		ReplyPersistFailuresTotal,
		GuestQuotaRejectionsTotal,
		RateLimitedTotal,
	)
}
