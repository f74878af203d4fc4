package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lesson-sheet-api/pkg/metrics"
)

// Metrics Prometheus 指标采集中间件；skipPath（通常为指标端点本身）不计入
func Metrics(skipPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		if path == skipPath {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method
		if reqSize := float64(c.Request.ContentLength); reqSize > 0 {
			metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(reqSize)
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if respSize := float64(c.Writer.Size()); respSize > 0 {
			metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(respSize)
		}
	}
}
