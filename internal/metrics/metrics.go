package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloud_translate_cache_lookups_total",
			Help: "Translation cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	providerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloud_translate_provider_requests_total",
			Help: "Upstream provider calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	providerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cloud_translate_provider_request_duration_seconds",
			Help:    "Upstream provider call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloud_translate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
)

// CacheLookup records a cache hit or miss
func CacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// ProviderCall records the outcome and latency of one provider call
func ProviderCall(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	providerRequests.WithLabelValues(operation, outcome).Inc()
	providerDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Middleware counts HTTP requests per route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, statusClass(c.Writer.Status())).Inc()
	}
}

// Handler exposes the default registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
