package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 日志里需要打码的 query key（小写比较）
var sensitiveKeys = map[string]struct{}{
	"password": {}, "newpassword": {}, "currentpassword": {}, "pwd": {},
	"token": {}, "access_token": {}, "id_token": {}, "idtoken": {}, "authorization": {},
	"secret": {}, "client_secret": {}, "otp": {}, "code": {},
}

func maskQuery(q url.Values) map[string][]string {
	out := make(map[string][]string, len(q))
	for k, v := range q {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			v = []string{"****"}
		}
		out[k] = v
	}
	return out
}

// AccessLog 每个请求一行摘要；5xx 用 error 级别。请求体不落日志
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		lvl := zapcore.InfoLevel
		switch {
		case status >= 500:
			lvl = zapcore.ErrorLevel
		case status >= 400:
			lvl = zapcore.WarnLevel
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.Int("size", c.Writer.Size()),
		}
		if uid := UID(c); uid != 0 {
			fields = append(fields, zap.Uint64("uid", uid))
		}
		if c.Request.URL.RawQuery != "" {
			fields = append(fields, zap.Any("query", maskQuery(c.Request.URL.Query())))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		l.Log(lvl, "HTTP", fields...)
	}
}
