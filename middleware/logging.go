package middleware

import (
	"time"

	"github.com/Muadeel56/localconnect-plus/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger 每个请求一行结构化日志，query 不记录（可能带 token）
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if uid, ok := c.Get(ContextUserIDKey); ok {
			kv = append(kv, "user_id", uid)
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("http request", kv...)
		case status >= 400:
			log.Warn("http request", kv...)
		default:
			log.Info("http request", kv...)
		}
	}
}
