package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("render").ParseFS(templateFS, "templates/*.tmpl"))

// ExportOptions 导出文档选项
type ExportOptions struct {
	// AutoPrint 文档加载完成（load 事件）后调起打印
	AutoPrint bool
}

// RenderInteractive 渲染交互视图片段
func RenderInteractive(doc *Document) ([]byte, error) {
	return execute("interactive.html.tmpl", doc)
}

// RenderExport 渲染完整的自包含 HTML 文档
func RenderExport(doc *Document, opts ExportOptions) ([]byte, error) {
	return execute("export.html.tmpl", struct {
		*Document
		AutoPrint bool
	}{doc, opts.AutoPrint})
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
