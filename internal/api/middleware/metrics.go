package middleware

import (
	"strconv"

	"github.com/AdityaDodda/purchasekandhari-sub000/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware 按方法/路由/状态码统计请求量
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.APIRequestsTotal.WithLabelValues(
			c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
