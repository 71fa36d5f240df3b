package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"appointly/internal/core/auth"
	"appointly/internal/domain"
	resp "appointly/internal/transport/http/response"
)

const (
	KeyClaims = "claims"
	KeyActor  = "actor"
)

func bearer(c *gin.Context) string {
	ah := c.GetHeader("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
}

// AuthJWT 强制登录；requireRole 非空时还要求角色匹配
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyActor, claims.Actor())
		c.Next()
	}
}

// Identify 可选登录：Bearer 优先，其次 cookie；无效 token 按匿名处理，由业务层决定是否拒绝
func Identify(j *auth.JWTer, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		if tok == "" && cookieName != "" {
			tok, _ = c.Cookie(cookieName)
		}
		if tok != "" {
			if claims, err := j.Parse(tok); err == nil {
				c.Set(KeyClaims, claims)
				c.Set(KeyActor, claims.Actor())
			}
		}
		c.Next()
	}
}

// ActorFrom 取当前请求身份，未登录返回 Anonymous
func ActorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(KeyActor); ok {
		if a, ok := v.(domain.Actor); ok {
			return a
		}
	}
	return domain.Anonymous
}
