package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-rbac/internal/core/auth"
	"go-gin-rbac/internal/core/server"
	mdw "go-gin-rbac/internal/transport/http/middleware"
)

// NewAdminEngine 管理端 v1（统一要求 admin 角色）
func NewAdminEngine(l *zap.Logger, o server.Options, lim Limits, jwter *auth.JWTer, reg *Registry) *gin.Engine {
	r := newEngine(l, o, lim)
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, auth.RoleAdmin))
	reg.MountAllAdmin(admin)
	return r
}

func rateOf(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}
