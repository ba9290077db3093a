package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-rbac/internal/core/auth"
	resp "go-gin-rbac/internal/transport/http/response"
)

const (
	KeyClaims = "claims"
	KeyUID    = "uid"
)

// AuthJWT 校验 Bearer token；requireRole 非空时要求 token 带该角色
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && !claims.HasRole(requireRole) {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUID, claims.UID)
		c.Next()
	}
}

// UID 当前登录用户；未经过 AuthJWT 时为 0
func UID(c *gin.Context) uint64 {
	v, _ := c.Get(KeyUID)
	uid, _ := v.(uint64)
	return uid
}

func Claims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(KeyClaims)
	cl, _ := v.(*auth.Claims)
	return cl
}
