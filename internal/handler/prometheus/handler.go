package prometheus

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type Handler struct {
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// New builds a private registry so tests and multiple routers never collide on the
// default one.
func New(namespace string) *Handler {
	registry := prometheus.NewRegistry()
	return &Handler{
		registry: registry,
		metrics:  metrics.NewMetrics(registry, namespace, "api"),
	}
}

func (h *Handler) Metrics() *metrics.Metrics {
	return h.metrics
}

// Middleware records request counts and latency keyed by the route template, not the raw
// path, to keep label cardinality bounded.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		h.metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		h.metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		if c.Writer.Status() >= 400 {
			h.metrics.HTTPErrors.WithLabelValues(c.Request.Method, path, status).Inc()
		}
	}
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
}
