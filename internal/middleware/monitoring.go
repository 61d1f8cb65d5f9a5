package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"garith/backend/internal/monitoring"
)

// HTTPMetrics 记录 HTTP 请求指标的中间件
func HTTPMetrics(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
