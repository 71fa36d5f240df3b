package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"appointly/internal/core/auth"
	"appointly/internal/core/server"
	"appointly/internal/domain"
	mdw "appointly/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, opt Options, reg *Registry) *gin.Engine {
	r := server.NewRouter(l)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300, time.Second),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(opt.timeout()),
		mdw.Metrics("admin"),
		mdw.AccessLog(l),
	)

	health(r)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, string(domain.RoleAdmin)))
	reg.MountAllAdmin(admin)

	return r
}
