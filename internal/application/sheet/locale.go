// Package sheet 实现教案生成流水线：时长分配、请求构造、内容抽取与归档
package sheet

import (
	"strconv"

	"lesson-sheet-api/internal/domain/entity"
	"lesson-sheet-api/internal/workflow/prompt"
)

// Direction 文本方向
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

// Labels 界面与导出文档使用的标签
type Labels struct {
	Niveau          string
	Activite        string
	Lecon           string
	Objectif        string
	Duree           string
	Competence      string
	Infos           string
	StagesHeader    string
	ActivitesMaitre string
	ActivitesEleve  string
	Contenu         string
	PhaseTitles     map[entity.Phase]string
}

// Locale 单一语言的全部可变项
type Locale struct {
	Language     entity.Language
	Direction    Direction
	Prompt       prompt.PromptID
	Labels       Labels
	HourKeywords []string
	// MinuteLabel 返回分钟数对应的单位词
	MinuteLabel func(n int) string
}

// IsRTL 是否从右向左排版
func (l *Locale) IsRTL() bool {
	return l.Direction == DirectionRTL
}

// FormatMinutes 例如 "15 minutes" / "1 دقيقة"
func (l *Locale) FormatMinutes(n int) string {
	return strconv.Itoa(n) + " " + l.MinuteLabel(n)
}

var locales = map[entity.Language]*Locale{
	entity.LanguageFrench: {
		Language:  entity.LanguageFrench,
		Direction: DirectionLTR,
		Prompt:    prompt.PromptSheetFrV1,
		Labels: Labels{
			Niveau:          "Niveau",
			Activite:        "Activité",
			Lecon:           "Leçon",
			Objectif:        "Objectif spécifique",
			Duree:           "Durée",
			Competence:      "Compétence de base",
			Infos:           "Informations supplémentaires",
			StagesHeader:    "ÉTAPES",
			ActivitesMaitre: "Activités du maître",
			ActivitesEleve:  "Activités de l'élève",
			Contenu:         "Contenu/Observation",
			PhaseTitles: map[entity.Phase]string{
				entity.PhaseRevision:      "Révision",
				entity.PhaseImpregnation:  "Imprégnation/Mise en situation",
				entity.PhaseAnalyse:       "Analyse/Production Dirigée",
				entity.PhaseConsolidation: "Consolidation/Fixation",
				entity.PhaseEvaluation:    "Correction/Évaluation",
			},
		},
		HourKeywords: []string{"heure"},
		MinuteLabel: func(n int) string {
			if n == 1 {
				return "minute"
			}
			return "minutes"
		},
	},
	entity.LanguageArabic: {
		Language:  entity.LanguageArabic,
		Direction: DirectionRTL,
		Prompt:    prompt.PromptSheetArV1,
		Labels: Labels{
			Niveau:          "المستوى",
			Activite:        "النشاط",
			Lecon:           "الدرس",
			Objectif:        "الهدف المحدد",
			Duree:           "المدة",
			Competence:      "الكفاءة الأساسية",
			Infos:           "معلومات إضافية",
			StagesHeader:    "المراحل",
			ActivitesMaitre: "أنشطة المعلم",
			ActivitesEleve:  "أنشطة التلميذ",
			Contenu:         "المحتوى/الملاحظات",
			PhaseTitles: map[entity.Phase]string{
				entity.PhaseRevision:      "المراجعة",
				entity.PhaseImpregnation:  "التمهيد/وضع الموقف",
				entity.PhaseAnalyse:       "التحليل/الإنتاج الموجه",
				entity.PhaseConsolidation: "التعزيز/التثبيت",
				entity.PhaseEvaluation:    "التصحيح/التقييم",
			},
		},
		HourKeywords: []string{"ساعة", "ساعات", "ساعتان", "ساعتين"},
		MinuteLabel: func(n int) string {
			if n == 1 {
				return "دقيقة"
			}
			return "دقائق"
		},
	},
}

// LocaleFor 按语言查表，空语言返回默认语言
func LocaleFor(lang entity.Language) (*Locale, bool) {
	if lang == "" {
		lang = entity.DefaultLanguage
	}
	l, ok := locales[lang]
	return l, ok
}

// MustLocale 未知语言时回退到默认语言
func MustLocale(lang entity.Language) *Locale {
	if l, ok := LocaleFor(lang); ok {
		return l
	}
	return locales[entity.DefaultLanguage]
}

// hourKeywords 汇总所有语言的小时关键字
func hourKeywords() []string {
	var out []string
	for _, lang := range []entity.Language{entity.LanguageFrench, entity.LanguageArabic} {
		out = append(out, locales[lang].HourKeywords...)
	}
	return out
}
