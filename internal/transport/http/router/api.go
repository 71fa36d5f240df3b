package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"appointly/internal/core/auth"
	"appointly/internal/core/server"
	mdw "appointly/internal/transport/http/middleware"
	resp "appointly/internal/transport/http/response"
)

type Options struct {
	CookieName string
	UploadDir  string // 非空则以 /uploads 暴露
	Timeout    time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 10 * time.Second
	}
	return o.Timeout
}

func health(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, "route not found"))
	})
}

func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, opt Options, reg *Registry) *gin.Engine {
	r := server.NewRouter(l)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300, time.Second),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(opt.timeout()),
		mdw.Metrics("api"),
		mdw.Identify(jwter, opt.CookieName),
		mdw.AccessLog(l),
	)

	health(r)
	if opt.UploadDir != "" {
		r.Static("/uploads", opt.UploadDir)
	}

	api := r.Group("/api/v1")
	// 登录/注册/验证码按 IP 额外限速
	for _, p := range []string{"/login", "/register", "/send-otp"} {
		api.Use(limitPath(api.BasePath()+p, mdw.RateLimitPerIP(1, 10)))
	}
	reg.MountAllAPI(api)

	return r
}

// limitPath 只对指定完整路径生效
func limitPath(full string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() != full {
			c.Next()
			return
		}
		h(c)
	}
}
