package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"lesson-sheet-api/internal/application/export"
	"lesson-sheet-api/internal/application/sheet"
	"lesson-sheet-api/internal/domain/entity"
	"lesson-sheet-api/internal/interfaces/http/dto"
)

// ExportHandler 导出生成与下载
type ExportHandler struct {
	exports *export.Service
	history *sheet.History
}

// NewExportHandler 创建导出处理器
func NewExportHandler(exports *export.Service, history *sheet.History) *ExportHandler {
	return &ExportHandler{
		exports: exports,
		history: history,
	}
}

// CreateExport 导出调用方提供的教案
// @Summary 创建导出
// @Tags Exports
// @Accept json
// @Produce json
// @Param body body dto.CreateExportRequest true "教案、格式与打印选项"
// @Success 201 {object} dto.Response[dto.ExportResponse]
// @Router /v1/exports [post]
func (h *ExportHandler) CreateExport(c *gin.Context) {
	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	sheetReq, content, ok := renderableInput(c, "export sheet", &req.Request, req.Content)
	if !ok {
		return
	}
	h.create(c, sheetReq, content, req.Format, req.AutoPrint)
}

// CreateStoredExport 导出已归档教案
// @Summary 导出已归档教案
// @Tags Exports
// @Accept json
// @Produce json
// @Param sid path string true "教案 ID"
// @Param body body dto.CreateStoredExportRequest false "格式与打印选项"
// @Success 201 {object} dto.Response[dto.ExportResponse]
// @Router /v1/sheets/{sid}/exports [post]
func (h *ExportHandler) CreateStoredExport(c *gin.Context) {
	var req dto.CreateStoredExportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	stored, err := h.history.Get(c.Request.Context(), dto.BindSheetID(c))
	if err != nil {
		writeError(c, "export sheet", err)
		return
	}
	h.create(c, stored.Request, stored.Content, req.Format, req.AutoPrint)
}

func (h *ExportHandler) create(c *gin.Context, req *entity.SheetRequest, content *entity.SheetContent, format string, autoPrint bool) {
	f, ok := entity.ParseExportFormat(format)
	if !ok {
		writeError(c, "export sheet", &sheet.ValidationError{Fields: map[string]string{"format": "must be one of html, xlsx"}})
		return
	}

	a, err := h.exports.Create(c.Request.Context(), export.Request{
		Sheet:     req,
		Content:   content,
		Format:    f,
		AutoPrint: autoPrint,
	})
	if err != nil {
		writeError(c, "export sheet", err)
		return
	}
	dto.Created(c, dto.ToExportResponse(a, "/v1/exports/"+a.ID))
}

// DownloadExport 下载导出产物；html 内联打开以便打印，xlsx 作为附件
// @Summary 下载导出
// @Tags Exports
// @Param eid path string true "导出 ID"
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/exports/{eid} [get]
func (h *ExportHandler) DownloadExport(c *gin.Context) {
	a, err := h.exports.Get(c.Request.Context(), dto.BindExportID(c))
	if err != nil {
		writeError(c, "download export", err)
		return
	}

	disposition := "attachment"
	if a.Format == entity.ExportFormatHTML {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, a.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, a.ContentType, a.Data)
}
