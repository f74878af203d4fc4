// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"lesson-sheet-api/internal/interfaces/http/dto"
	apperrors "lesson-sheet-api/pkg/errors"
	"lesson-sheet-api/pkg/logger"
)

// Recovery Panic 恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", err),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				dto.AppError(c, apperrors.ErrInternalError, nil)
				c.Abort()
			}
		}()

		c.Next()
	}
}
