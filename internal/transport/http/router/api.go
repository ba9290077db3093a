package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-rbac/internal/core/server"
	mdw "go-gin-rbac/internal/transport/http/middleware"
)

// Limits 两个 engine 共用的防护参数
type Limits struct {
	RPS         float64
	Burst       int
	Concurrency int64
	MaxBody     int64
	Timeout     time.Duration
}

func DefaultLimits() Limits {
	return Limits{RPS: 200, Burst: 400, Concurrency: 300, MaxBody: 16 << 20, Timeout: 10 * time.Second}
}

func newEngine(l *zap.Logger, o server.Options, lim Limits) *gin.Engine {
	r := server.NewRouter(l, o)
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rateOf(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBody),
		mdw.Timeout(lim.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}

// NewAPIEngine 用户端：/api/v1，鉴权由各 handler 自行挂在需要的分组上
func NewAPIEngine(l *zap.Logger, o server.Options, lim Limits, reg *Registry) *gin.Engine {
	r := newEngine(l, o, lim)
	reg.MountAllAPI(r.Group("/api/v1"))
	return r
}
