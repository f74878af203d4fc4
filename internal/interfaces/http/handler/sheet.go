package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lesson-sheet-api/internal/application/render"
	"lesson-sheet-api/internal/application/sheet"
	"lesson-sheet-api/internal/domain/entity"
	"lesson-sheet-api/internal/interfaces/http/dto"
	"lesson-sheet-api/internal/interfaces/http/middleware"
	apperrors "lesson-sheet-api/pkg/errors"
)

const contentTypeHTML = "text/html; charset=utf-8"

// SheetHandler 教案生成、历史与渲染
type SheetHandler struct {
	generator *sheet.Generator
	history   *sheet.History
}

// NewSheetHandler 创建教案处理器
func NewSheetHandler(generator *sheet.Generator, history *sheet.History) *SheetHandler {
	return &SheetHandler{
		generator: generator,
		history:   history,
	}
}

// GenerateSheet 生成教案
// @Summary 生成教案
// @Tags Sheets
// @Accept json
// @Produce json
// @Param X-Generation-Key header string false "生成服务凭证，缺省使用服务端配置"
// @Param X-Session-ID header string false "客户端会话"
// @Param body body dto.SheetRequest true "教案参数"
// @Success 200 {object} dto.Response[dto.GenerateSheetResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/sheets/generate [post]
func (h *SheetHandler) GenerateSheet(c *gin.Context) {
	var req dto.SheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	res, err := h.generator.Generate(c.Request.Context(), sheet.GenerateInput{
		Request:    req.ToEntity(),
		Credential: c.GetHeader(GenerationKeyHeader),
		Session:    middleware.GetSessionID(c),
	})
	if err != nil {
		writeError(c, "generate sheet", err)
		return
	}

	dto.Success(c, dto.ToGenerateSheetResponse(res))
}

// ListSheets 最近归档的教案
// @Summary 历史教案列表
// @Tags Sheets
// @Produce json
// @Param limit query int false "条数" default(20)
// @Success 200 {object} dto.Response[dto.SheetListResponse]
// @Router /v1/sheets [get]
func (h *SheetHandler) ListSheets(c *gin.Context) {
	sheets, err := h.history.List(c.Request.Context(), dto.BindLimit(c))
	if err != nil {
		writeError(c, "list sheets", err)
		return
	}
	dto.Success(c, dto.ToSheetListResponse(sheets))
}

// GetSheet 读取单条教案
// @Summary 教案详情
// @Tags Sheets
// @Produce json
// @Param sid path string true "教案 ID"
// @Success 200 {object} dto.Response[dto.SheetDetailResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/sheets/{sid} [get]
func (h *SheetHandler) GetSheet(c *gin.Context) {
	stored, err := h.history.Get(c.Request.Context(), dto.BindSheetID(c))
	if err != nil {
		writeError(c, "get sheet", err)
		return
	}
	dto.Success(c, dto.ToSheetDetailResponse(stored))
}

// ViewSheet 已归档教案的交互视图
// @Summary 教案交互视图
// @Tags Sheets
// @Produce html
// @Param sid path string true "教案 ID"
// @Router /v1/sheets/{sid}/view [get]
func (h *SheetHandler) ViewSheet(c *gin.Context) {
	stored, err := h.history.Get(c.Request.Context(), dto.BindSheetID(c))
	if err != nil {
		writeError(c, "view sheet", err)
		return
	}
	out, err := render.RenderInteractive(render.BuildDocument(stored.Request, stored.Content))
	if err != nil {
		writeError(c, "view sheet", apperrors.ErrRenderFailed.WithError(err))
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, out)
}

// RenderSheet 渲染调用方提供的教案
// @Summary 渲染教案
// @Tags Sheets
// @Accept json
// @Produce html
// @Param view query string false "interactive|export" default(interactive)
// @Param auto_print query bool false "导出视图加载后调起打印"
// @Param body body dto.RenderSheetRequest true "教案参数与内容"
// @Router /v1/sheets/render [post]
func (h *SheetHandler) RenderSheet(c *gin.Context) {
	var req dto.RenderSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	sheetReq, content, ok := renderableInput(c, "render sheet", &req.Request, req.Content)
	if !ok {
		return
	}

	doc := render.BuildDocument(sheetReq, content)
	var (
		out []byte
		err error
	)
	switch c.DefaultQuery("view", "interactive") {
	case "interactive":
		out, err = render.RenderInteractive(doc)
	case "export":
		out, err = render.RenderExport(doc, render.ExportOptions{AutoPrint: c.Query("auto_print") == "true"})
	default:
		dto.AppError(c, apperrors.ErrInvalidParam.WithDetail("view must be one of interactive, export"), nil)
		return
	}
	if err != nil {
		writeError(c, "render sheet", apperrors.ErrRenderFailed.WithError(err))
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, out)
}

// renderableInput 渲染要求语言合法、内容五个阶段完整；失败时已写出 400
func renderableInput(c *gin.Context, action string, req *dto.SheetRequest, rawContent json.RawMessage) (*entity.SheetRequest, *entity.SheetContent, bool) {
	fields := make(map[string]string)

	out := req.ToEntity()
	lang, err := entity.ParseLanguage(string(out.Language))
	if err != nil {
		fields["language"] = "must be one of fr, ar"
	}
	out.Language = lang

	content, err := sheet.DecodeSheetContent(rawContent)
	var ve *sheet.ValidationError
	if errors.As(err, &ve) {
		for k, v := range ve.Fields {
			fields[k] = v
		}
	}

	if len(fields) > 0 {
		writeError(c, action, &sheet.ValidationError{Fields: fields})
		return nil, nil, false
	}
	return out, content, true
}
