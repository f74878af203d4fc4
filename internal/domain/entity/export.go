package entity

import "time"

// ExportFormat 导出格式
type ExportFormat string

const (
	ExportFormatHTML ExportFormat = "html"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat 解析导出格式，空字符串视为 html
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch ExportFormat(s) {
	case "", ExportFormatHTML:
		return ExportFormatHTML, true
	case ExportFormatXLSX:
		return ExportFormatXLSX, true
	default:
		return "", false
	}
}

// ExportArtifact 已生成、等待下载的导出文件
type ExportArtifact struct {
	ID          string       `json:"id"`
	Format      ExportFormat `json:"format"`
	ContentType string       `json:"content_type"`
	Filename    string       `json:"filename"`
	Data        []byte       `json:"data"`
	CreatedAt   time.Time    `json:"created_at"`
	ExpiresAt   time.Time    `json:"expires_at"`
}
