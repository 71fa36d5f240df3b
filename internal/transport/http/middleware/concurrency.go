package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "appointly/internal/transport/http/response"
)

// ConcurrencyLimit 同时处理的请求数上限；排队超过 wait 直接 503
func ConcurrencyLimit(max int64, wait time.Duration) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		ok := sem.TryAcquire(1)
		if !ok && wait > 0 {
			ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
			ok = sem.Acquire(ctx, 1) == nil
			cancel()
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, resp.Error(resp.CodeUnavailable, "server busy"))
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
