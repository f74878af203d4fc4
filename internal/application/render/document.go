// Package render 将教案渲染为交互视图、可打印导出文档与电子表格
package render

import (
	"strconv"

	"lesson-sheet-api/internal/application/sheet"
	"lesson-sheet-api/internal/domain/entity"
)

// Row 标签与取值
type Row struct {
	Label string
	Value string
}

// Section 单个阶段
type Section struct {
	Phase       entity.Phase
	Number      int
	Title       string
	Minutes     int
	MinuteLabel string
	// Fields 依次为教师活动、学生活动、内容
	Fields []Row
}

// Duration 例如 "15 minutes"
func (s Section) Duration() string {
	return strconv.Itoa(s.Minutes) + " " + s.MinuteLabel
}

// Document 交互视图、导出文档、表格共用的视图模型
type Document struct {
	Language     entity.Language
	Direction    string
	Title        string
	Header       []Row
	Objectif     Row
	StagesHeader string
	Columns      []string
	Sections     []Section
	TotalMinutes int
}

// BuildDocument 组装视图模型；能力项仅在填写时出现在表头
func BuildDocument(req *entity.SheetRequest, content *entity.SheetContent) *Document {
	loc := sheet.MustLocale(req.Language)
	total, plan := sheet.PlanFor(req.Duree)
	l := loc.Labels

	header := []Row{
		{Label: l.Niveau, Value: req.Niveau},
		{Label: l.Activite, Value: req.Activite},
		{Label: l.Duree, Value: req.Duree},
	}
	if req.CompetenceBase != "" {
		header = append(header, Row{Label: l.Competence, Value: req.CompetenceBase})
	}

	doc := &Document{
		Language:     loc.Language,
		Direction:    string(loc.Direction),
		Title:        req.Lecon,
		Header:       header,
		Objectif:     Row{Label: l.Objectif, Value: req.ObjectifSpecifique},
		StagesHeader: l.StagesHeader,
		Columns:      []string{l.ActivitesMaitre, l.ActivitesEleve, l.Contenu},
		TotalMinutes: total,
	}
	for i, p := range entity.Phases {
		pc := content.Phase(p)
		doc.Sections = append(doc.Sections, Section{
			Phase:       p,
			Number:      i + 1,
			Title:       l.PhaseTitles[p],
			Minutes:     plan[p],
			MinuteLabel: loc.MinuteLabel(plan[p]),
			Fields: []Row{
				{Label: l.ActivitesMaitre, Value: pc.ActivitesMaitre},
				{Label: l.ActivitesEleve, Value: pc.ActivitesEleve},
				{Label: l.Contenu, Value: pc.Contenu},
			},
		})
	}
	return doc
}

// BoxClasses 导出文档中三栏对应的样式类
func (d *Document) BoxClasses() []string {
	return []string{"maitre", "eleve", "contenu"}
}
