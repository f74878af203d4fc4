package sheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"

	"lesson-sheet-api/internal/domain/entity"
	"lesson-sheet-api/internal/workflow/port"
	"lesson-sheet-api/internal/workflow/prompt"
)

// 固定生成参数
const (
	GenerationTemperature     float32 = 0.7
	GenerationMaxOutputTokens         = 4096
	GenerationResponseMIME            = "application/json"
)

// RequestBuilder 将教案参数渲染为单条生成指令
type RequestBuilder struct {
	prompts *prompt.Registry
}

// NewRequestBuilder 创建 RequestBuilder
func NewRequestBuilder(prompts *prompt.Registry) *RequestBuilder {
	if prompts == nil {
		prompts = prompt.NewRegistry()
	}
	return &RequestBuilder{prompts: prompts}
}

// Validate 检查必填项、语言与凭证，返回列出全部问题字段的 ValidationError
func Validate(req *entity.SheetRequest, credential string) error {
	fields := make(map[string]string)
	if req == nil {
		return &ValidationError{Fields: map[string]string{"request": "is required"}}
	}
	required := []struct {
		name  string
		value string
	}{
		{"niveau", req.Niveau},
		{"activite", req.Activite},
		{"lecon", req.Lecon},
		{"objectif_specifique", req.ObjectifSpecifique},
		{"duree", req.Duree},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			fields[f.name] = "is required"
		}
	}
	if _, err := entity.ParseLanguage(string(req.Language)); err != nil {
		fields["language"] = "must be one of fr, ar"
	}
	if strings.TrimSpace(credential) == "" {
		fields["credential"] = "is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// BuildGenerationRequest 校验参数并生成指令：system 与 user 模板以空行拼接为一条文本
func (b *RequestBuilder) BuildGenerationRequest(ctx context.Context, req *entity.SheetRequest, credential string) (*port.GenerationRequest, error) {
	if err := Validate(req, credential); err != nil {
		return nil, err
	}

	loc := MustLocale(req.Language)
	tpl, err := b.prompts.ChatTemplate(loc.Prompt)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", loc.Prompt, err)
	}
	msgs, err := tpl.Format(ctx, promptVars(req, loc))
	if err != nil {
		return nil, fmt.Errorf("render prompt %s: %w", loc.Prompt, err)
	}

	var system, user string
	for _, m := range msgs {
		switch m.Role {
		case schema.System:
			system = m.Content
		case schema.User:
			user = m.Content
		}
	}

	return &port.GenerationRequest{
		Instruction:      system + "\n\n" + user,
		Temperature:      GenerationTemperature,
		MaxOutputTokens:  GenerationMaxOutputTokens,
		ResponseMIMEType: GenerationResponseMIME,
	}, nil
}

func promptVars(req *entity.SheetRequest, loc *Locale) map[string]any {
	phases := make([]map[string]any, 0, len(entity.Phases))
	for i, p := range entity.Phases {
		phases = append(phases, map[string]any{
			"number": strconv.Itoa(i + 1),
			"title":  loc.Labels.PhaseTitles[p],
		})
	}
	return map[string]any{
		"niveau":                strings.TrimSpace(req.Niveau),
		"activite":              strings.TrimSpace(req.Activite),
		"lecon":                 strings.TrimSpace(req.Lecon),
		"objectif_specifique":   strings.TrimSpace(req.ObjectifSpecifique),
		"duree":                 strings.TrimSpace(req.Duree),
		"competence_base":       strings.TrimSpace(req.CompetenceBase),
		"infos_supplementaires": strings.TrimSpace(req.InfosSupplementaires),
		"phases":                phases,
		"label_maitre":          loc.Labels.ActivitesMaitre,
		"label_eleve":           loc.Labels.ActivitesEleve,
		"label_contenu":         loc.Labels.Contenu,
		"json_shape":            jsonShape(),
	}
}

// jsonShape 期望输出的 JSON 结构示例
func jsonShape() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, p := range entity.Phases {
		fmt.Fprintf(&sb, `  "%s": { "activites_maitre": "...", "activites_eleve": "...", "contenu": "..." }`, p)
		if i < len(entity.Phases)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}
