package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "appointly/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；超限时若 handler 未写响应则返回 413
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Error(resp.CodeTooLarge, "request body too large"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		var mbe *http.MaxBytesError
		for _, e := range c.Errors {
			if errors.As(e.Err, &mbe) && !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Error(resp.CodeTooLarge, "request body too large"))
				return
			}
		}
	}
}
