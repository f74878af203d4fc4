// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"lesson-sheet-api/internal/application/sheet"
	"lesson-sheet-api/internal/interfaces/http/dto"
	"lesson-sheet-api/pkg/logger"
)

// GenerationKeyHeader 单次请求携带的生成服务凭证
const GenerationKeyHeader = "X-Generation-Key"

// writeError 统一错误输出：5xx 记录原始错误，响应只给出通用消息
func writeError(c *gin.Context, action string, err error) {
	appErr := sheet.ToAppError(err)

	var fields map[string]string
	var ve *sheet.ValidationError
	if errors.As(err, &ve) {
		fields = ve.Fields
	}

	if appErr.HTTPStatus >= 500 {
		logger.Error(c.Request.Context(), action+" failed", err, "error_code", string(appErr.Code))
	}
	dto.AppError(c, appErr, fields)
}
