// Package middleware contains shared Gin middleware used by the admin API.
//
// This file exposes Prometheus instrumentation for admin HTTP traffic.
// Labels are kept to (method, path, status) with path taken from the
// registered route to bound cardinality.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	adminReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_http_requests_total",
			Help: "Total number of admin API requests.",
		},
		[]string{"method", "path", "status"},
	)

	adminLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admin_http_request_duration_seconds",
			Help:    "Duration of admin API requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	adminInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "admin_http_requests_inflight",
		Help: "Current number of in-flight admin API requests.",
	})
)

func init() {
	prometheus.MustRegister(adminReqs, adminLat, adminInflight)
}

// Metrics instruments requests with the collectors above. The path label
// uses c.FullPath() and falls back to the raw URL path when no route
// matched (404s).
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		adminInflight.Inc()

		c.Next()

		adminInflight.Dec()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		adminReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		adminLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
