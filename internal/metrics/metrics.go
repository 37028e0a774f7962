package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "niches_hunter"

// Gate outcomes, one per terminal state of a metered request.
const (
	OutcomeServed            = "served"
	OutcomeUnauthenticated   = "unauthenticated"
	OutcomeRateLimited       = "rate_limited"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomeInvalidRequest    = "invalid_request"
	OutcomeError             = "error"
)

var (
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_gate_decisions_total",
			Help:      "Metered API requests by gate outcome",
		},
		[]string{"outcome"},
	)

	CreditsDebitedCents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_credits_debited_cents_total",
			Help:      "Wallet credits debited by the metered API, in cents",
		},
		[]string{"endpoint"},
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stripe_webhook_events_total",
			Help:      "Stripe webhook events by type and result",
		},
		[]string{"type", "result"},
	)

	RateLimiterErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limiter_errors_total",
			Help:      "Rate limiter backend failures (request admitted)",
		},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// HTTPMiddleware observes request latency labelled by the matched route pattern.
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
