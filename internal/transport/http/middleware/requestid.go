package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// KeyRequestID 同时作为请求头、响应头和 gin.Context 的 key
const KeyRequestID = "X-Request-ID"

// 上游传入的 id 过长时不沿用，避免日志被灌
const maxRequestIDLen = 128

// RequestID 沿用上游 X-Request-ID，没有则生成 uuid
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Set(KeyRequestID, rid)
		c.Header(KeyRequestID, rid)
		c.Next()
	}
}
