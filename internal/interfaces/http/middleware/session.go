package middleware

import (
	"github.com/gin-gonic/gin"

	"lesson-sheet-api/pkg/logger"
)

const (
	// SessionIDHeader 客户端会话头，缺省时以客户端 IP 作为会话
	SessionIDHeader = "X-Session-ID"

	sessionIDKey = "session_id"
	maxSessionID = 128
)

// Session 会话识别中间件
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionIDHeader)
		if sessionID == "" || len(sessionID) > maxSessionID {
			sessionID = "ip:" + c.ClientIP()
		}

		c.Set(sessionIDKey, sessionID)
		ctx := logger.WithContext(c.Request.Context(), logger.SessionIDKey, sessionID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSessionID 读取会话 ID
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
