package dto

import (
	"encoding/json"
	"time"

	"lesson-sheet-api/internal/domain/entity"
)

// CreateExportRequest 导出请求；format 为 html 或 xlsx，默认 html
type CreateExportRequest struct {
	Request   SheetRequest    `json:"request"`
	Content   json.RawMessage `json:"content"`
	Format    string          `json:"format,omitempty"`
	AutoPrint bool            `json:"auto_print,omitempty"`
}

// CreateStoredExportRequest 已归档教案的导出请求
type CreateStoredExportRequest struct {
	Format    string `json:"format,omitempty"`
	AutoPrint bool   `json:"auto_print,omitempty"`
}

// ExportResponse 导出结果
type ExportResponse struct {
	ExportID    string `json:"export_id"`
	DownloadURL string `json:"download_url"`
	Format      string `json:"format"`
	ExpiresAt   string `json:"expires_at"`
}

// ToExportResponse 转换导出结果
func ToExportResponse(a *entity.ExportArtifact, downloadURL string) *ExportResponse {
	return &ExportResponse{
		ExportID:    a.ID,
		DownloadURL: downloadURL,
		Format:      string(a.Format),
		ExpiresAt:   a.ExpiresAt.Format(time.RFC3339),
	}
}
