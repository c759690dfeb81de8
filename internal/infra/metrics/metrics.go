package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LoginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_total",
			Help: "Login attempts by result.",
		},
		[]string{"result"},
	)

	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_refresh_total",
			Help: "Refresh token rotations by result.",
		},
		[]string{"result"},
	)

	AuthzDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_authorization_denied_total",
			Help: "Requests rejected by the permission guard.",
		},
		[]string{"route"},
	)

	IdentityCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_identity_cache_total",
			Help: "Identity cache lookups by outcome (hit, miss).",
		},
		[]string{"outcome"},
	)

	EmailJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_jobs_total",
			Help: "Processed email jobs by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Init registers all collectors in the default registry. Call once from main.
func Init() {
	prometheus.MustRegister(
		LoginTotal,
		RefreshTotal,
		AuthzDeniedTotal,
		IdentityCacheTotal,
		EmailJobsTotal,
		httpRequestsTotal,
		httpRequestDuration,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records count and latency per matched gin route.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}
