// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Language 教案语言
type Language string

const (
	LanguageFrench Language = "fr"
	LanguageArabic Language = "ar"
)

// DefaultLanguage 未指定语言时使用法语
const DefaultLanguage = LanguageFrench

// ParseLanguage 解析语言代码，空字符串返回默认语言
func ParseLanguage(code string) (Language, error) {
	switch Language(code) {
	case "":
		return DefaultLanguage, nil
	case LanguageFrench, LanguageArabic:
		return Language(code), nil
	default:
		return "", fmt.Errorf("unsupported language: %q", code)
	}
}

// Phase 教学阶段标识
type Phase string

const (
	PhaseRevision      Phase = "revision"
	PhaseImpregnation  Phase = "impregnation"
	PhaseAnalyse       Phase = "analyse"
	PhaseConsolidation Phase = "consolidation"
	PhaseEvaluation    Phase = "evaluation"
)

// Phases 固定顺序的五个阶段
var Phases = []Phase{
	PhaseRevision,
	PhaseImpregnation,
	PhaseAnalyse,
	PhaseConsolidation,
	PhaseEvaluation,
}

// SheetRequest 教案生成参数，提交后不再修改
type SheetRequest struct {
	Niveau               string   `json:"niveau"`
	Activite             string   `json:"activite"`
	Lecon                string   `json:"lecon"`
	ObjectifSpecifique   string   `json:"objectif_specifique"`
	Duree                string   `json:"duree"`
	CompetenceBase       string   `json:"competence_base,omitempty"`
	InfosSupplementaires string   `json:"infos_supplementaires,omitempty"`
	Language             Language `json:"language"`
}

// PhaseContent 单个阶段的三栏内容
type PhaseContent struct {
	ActivitesMaitre string `json:"activites_maitre"`
	ActivitesEleve  string `json:"activites_eleve"`
	Contenu         string `json:"contenu"`
}

// SheetContent 生成的教案内容，字段顺序即阶段顺序
type SheetContent struct {
	Revision      PhaseContent `json:"revision"`
	Impregnation  PhaseContent `json:"impregnation"`
	Analyse       PhaseContent `json:"analyse"`
	Consolidation PhaseContent `json:"consolidation"`
	Evaluation    PhaseContent `json:"evaluation"`
}

// Phase 返回指定阶段的内容
func (c *SheetContent) Phase(p Phase) PhaseContent {
	switch p {
	case PhaseRevision:
		return c.Revision
	case PhaseImpregnation:
		return c.Impregnation
	case PhaseAnalyse:
		return c.Analyse
	case PhaseConsolidation:
		return c.Consolidation
	case PhaseEvaluation:
		return c.Evaluation
	default:
		return PhaseContent{}
	}
}

// SetPhase 写入指定阶段的内容
func (c *SheetContent) SetPhase(p Phase, pc PhaseContent) {
	switch p {
	case PhaseRevision:
		c.Revision = pc
	case PhaseImpregnation:
		c.Impregnation = pc
	case PhaseAnalyse:
		c.Analyse = pc
	case PhaseConsolidation:
		c.Consolidation = pc
	case PhaseEvaluation:
		c.Evaluation = pc
	}
}

// DurationPlan 各阶段分钟数
type DurationPlan map[Phase]int

// Total 各阶段分钟数之和（可能因取整与总时长存在偏差）
func (p DurationPlan) Total() int {
	sum := 0
	for _, m := range p {
		sum += m
	}
	return sum
}

// EducationalSheet 已归档的教案
type EducationalSheet struct {
	ID                   string         `json:"id" gorm:"type:uuid;primaryKey"`
	Niveau               string         `json:"niveau" gorm:"type:text;not null"`
	Activite             string         `json:"activite" gorm:"type:text;not null"`
	Lecon                string         `json:"lecon" gorm:"type:text;not null"`
	ObjectifSpecifique   string         `json:"objectif_specifique" gorm:"type:text;not null"`
	Duree                string         `json:"duree" gorm:"type:varchar(64);not null"`
	CompetenceBase       *string        `json:"competence_base,omitempty" gorm:"type:text"`
	InfosSupplementaires *string        `json:"infos_supplementaires,omitempty" gorm:"type:text"`
	GeneratedContent     datatypes.JSON `json:"generated_content" gorm:"type:jsonb;not null"`
	Language             Language       `json:"language" gorm:"type:varchar(8);not null;default:'fr'"`
	CreatedAt            time.Time      `json:"created_at" gorm:"autoCreateTime;index:idx_educational_sheets_created_at,sort:desc"`
}

// TableName 指定表名
func (EducationalSheet) TableName() string {
	return "educational_sheets"
}

// BeforeCreate 由服务端分配 ID
func (s *EducationalSheet) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// NewEducationalSheet 由生成参数与内容构造归档记录
func NewEducationalSheet(req *SheetRequest, content *SheetContent) (*EducationalSheet, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal sheet content: %w", err)
	}
	lang := req.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	return &EducationalSheet{
		Niveau:               req.Niveau,
		Activite:             req.Activite,
		Lecon:                req.Lecon,
		ObjectifSpecifique:   req.ObjectifSpecifique,
		Duree:                req.Duree,
		CompetenceBase:       optionalString(req.CompetenceBase),
		InfosSupplementaires: optionalString(req.InfosSupplementaires),
		GeneratedContent:     datatypes.JSON(raw),
		Language:             lang,
	}, nil
}

// Request 还原生成参数
func (s *EducationalSheet) Request() *SheetRequest {
	req := &SheetRequest{
		Niveau:             s.Niveau,
		Activite:           s.Activite,
		Lecon:              s.Lecon,
		ObjectifSpecifique: s.ObjectifSpecifique,
		Duree:              s.Duree,
		Language:           s.Language,
	}
	if s.CompetenceBase != nil {
		req.CompetenceBase = *s.CompetenceBase
	}
	if s.InfosSupplementaires != nil {
		req.InfosSupplementaires = *s.InfosSupplementaires
	}
	return req
}

// Content 解码已归档的教案内容
func (s *EducationalSheet) Content() (*SheetContent, error) {
	var c SheetContent
	if err := json.Unmarshal(s.GeneratedContent, &c); err != nil {
		return nil, fmt.Errorf("decode generated_content: %w", err)
	}
	return &c, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
