package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "custody",
			Name:      "operations_total",
			Help:      "Total operations served, by outcome.",
		},
		[]string{"operation", "outcome"},
	)
	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "custody",
			Name:      "operation_duration_seconds",
			Help:      "Operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// RegisterMetrics registers the operation metrics with the default
// prometheus registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(operations, operationDuration)
	})
}

// Metrics records the outcome and the duration of every matched route.
func Metrics() gin.HandlerFunc {
	RegisterMetrics()

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			return
		}
		operation := c.Request.Method + " " + path
		operations.WithLabelValues(operation, outcome(c.Writer.Status())).Inc()
		operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func outcome(status int) string {
	switch {
	case status < 400:
		return "ok"
	case status < 500:
		return "rejected"
	default:
		return "error"
	}
}
