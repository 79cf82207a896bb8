package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/miniblog/metrics"
)

// Metrics records request counts and latency keyed by the matched route.
func Metrics(m metrics.Provider) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTPRequest(ctx.Request.Method, route, ctx.Writer.Status(), time.Since(start))
	}
}
