package middleware

import (
	"strconv"
	"time"

	"github.com/Muadeel56/localconnect-plus/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics 以路由模板作为 path 标签，避免房间 ID 撑爆基数
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
