package sheet

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"lesson-sheet-api/internal/workflow/port"
	apperrors "lesson-sheet-api/pkg/errors"
)

// ValidationError 必填项缺失、语言不支持或缺少凭证；不会发起任何外部调用
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// UpstreamError 生成服务调用失败
type UpstreamError = port.UpstreamError

// MalformedResponse 模型输出无法抽取为完整教案；Raw 仅用于诊断日志
type MalformedResponse struct {
	Raw    string
	Reason string
	Err    error
}

func (e *MalformedResponse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed generation output: %s: %v", e.Reason, e.Err)
	}
	return "malformed generation output: " + e.Reason
}

func (e *MalformedResponse) Unwrap() error { return e.Err }

// PersistenceError 归档失败，仅记录，不向调用方暴露
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persist sheet: " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// ErrGenerationInProgress 同一会话已有生成在进行
var ErrGenerationInProgress = errors.New("generation already in progress for this session")

// ToAppError 映射为对外的 AppError；上游与抽取错误只给出通用消息
func ToAppError(err error) *apperrors.AppError {
	var (
		ve  *ValidationError
		ue  *UpstreamError
		me  *MalformedResponse
		app *apperrors.AppError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ve):
		return apperrors.ErrValidationFailed.WithError(err)
	case errors.Is(err, ErrGenerationInProgress):
		return apperrors.ErrGenerationInProgress.WithError(err)
	case errors.As(err, &ue):
		return apperrors.ErrGenerationFailed.WithError(err)
	case errors.As(err, &me):
		return apperrors.Wrap(err, apperrors.CodeMalformedResponse, apperrors.ErrGenerationFailed.Message)
	case errors.As(err, &app):
		return app
	default:
		return apperrors.ErrInternalError.WithError(err)
	}
}
