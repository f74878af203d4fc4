package dto

import (
	"encoding/json"
	"strings"
	"time"

	"lesson-sheet-api/internal/application/sheet"
	"lesson-sheet-api/internal/domain/entity"
)

// SheetRequest 教案生成参数；必填项由生成流水线统一校验并返回逐字段错误
type SheetRequest struct {
	Niveau               string `json:"niveau"`
	Activite             string `json:"activite"`
	Lecon                string `json:"lecon"`
	ObjectifSpecifique   string `json:"objectif_specifique"`
	Duree                string `json:"duree"`
	CompetenceBase       string `json:"competence_base,omitempty"`
	InfosSupplementaires string `json:"infos_supplementaires,omitempty"`
	Language             string `json:"language,omitempty"`
}

// ToEntity 转换为领域对象
func (r *SheetRequest) ToEntity() *entity.SheetRequest {
	return &entity.SheetRequest{
		Niveau:               r.Niveau,
		Activite:             r.Activite,
		Lecon:                r.Lecon,
		ObjectifSpecifique:   r.ObjectifSpecifique,
		Duree:                r.Duree,
		CompetenceBase:       r.CompetenceBase,
		InfosSupplementaires: r.InfosSupplementaires,
		Language:             entity.Language(strings.ToLower(strings.TrimSpace(r.Language))),
	}
}

// PhaseDuration 单阶段时长
type PhaseDuration struct {
	Phase   entity.Phase `json:"phase"`
	Title   string       `json:"title"`
	Minutes int          `json:"minutes"`
	Label   string       `json:"label"`
}

// DurationResponse 时长分配
type DurationResponse struct {
	TotalMinutes int              `json:"total_minutes"`
	Phases       []*PhaseDuration `json:"phases"`
}

// ToDurationResponse 按固定阶段顺序输出
func ToDurationResponse(lang entity.Language, total int, plan entity.DurationPlan) *DurationResponse {
	loc := sheet.MustLocale(lang)
	resp := &DurationResponse{
		TotalMinutes: total,
		Phases:       make([]*PhaseDuration, 0, len(entity.Phases)),
	}
	for _, p := range entity.Phases {
		resp.Phases = append(resp.Phases, &PhaseDuration{
			Phase:   p,
			Title:   loc.Labels.PhaseTitles[p],
			Minutes: plan[p],
			Label:   loc.FormatMinutes(plan[p]),
		})
	}
	return resp
}

// GenerateSheetResponse 生成结果
type GenerateSheetResponse struct {
	Content  *entity.SheetContent `json:"content"`
	Request  *entity.SheetRequest `json:"request"`
	Duration *DurationResponse    `json:"duration"`
	SheetID  string               `json:"sheet_id,omitempty"`
	Stored   bool                 `json:"stored"`
}

// ToGenerateSheetResponse 转换生成结果
func ToGenerateSheetResponse(res *sheet.GenerateResult) *GenerateSheetResponse {
	return &GenerateSheetResponse{
		Content:  res.Content,
		Request:  res.Request,
		Duration: ToDurationResponse(res.Request.Language, res.TotalMinutes, res.Durations),
		SheetID:  res.SheetID,
		Stored:   res.Stored,
	}
}

// SheetSummaryResponse 历史列表项
type SheetSummaryResponse struct {
	ID        string          `json:"id"`
	Niveau    string          `json:"niveau"`
	Activite  string          `json:"activite"`
	Lecon     string          `json:"lecon"`
	Duree     string          `json:"duree"`
	Language  entity.Language `json:"language"`
	CreatedAt string          `json:"created_at"`
}

// SheetListResponse 历史列表
type SheetListResponse struct {
	Sheets []*SheetSummaryResponse `json:"sheets"`
}

// ToSheetListResponse 转换历史列表
func ToSheetListResponse(sheets []*entity.EducationalSheet) *SheetListResponse {
	resp := &SheetListResponse{Sheets: make([]*SheetSummaryResponse, 0, len(sheets))}
	for _, s := range sheets {
		resp.Sheets = append(resp.Sheets, &SheetSummaryResponse{
			ID:        s.ID,
			Niveau:    s.Niveau,
			Activite:  s.Activite,
			Lecon:     s.Lecon,
			Duree:     s.Duree,
			Language:  s.Language,
			CreatedAt: s.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}

// SheetDetailResponse 单条教案
type SheetDetailResponse struct {
	ID        string               `json:"id"`
	Request   *entity.SheetRequest `json:"request"`
	Content   *entity.SheetContent `json:"content"`
	Duration  *DurationResponse    `json:"duration"`
	CreatedAt string               `json:"created_at"`
}

// ToSheetDetailResponse 转换单条教案
func ToSheetDetailResponse(s *sheet.StoredSheet) *SheetDetailResponse {
	return &SheetDetailResponse{
		ID:        s.ID,
		Request:   s.Request,
		Content:   s.Content,
		Duration:  ToDurationResponse(s.Request.Language, s.TotalMinutes, s.Durations),
		CreatedAt: s.Record.CreatedAt.Format(time.RFC3339),
	}
}

// RenderSheetRequest 渲染请求；content 由 sheet.DecodeSheetContent 校验
type RenderSheetRequest struct {
	Request SheetRequest    `json:"request"`
	Content json.RawMessage `json:"content"`
}
