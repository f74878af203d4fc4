package sheet

import (
	"context"
	"errors"
	"strings"
	"time"

	"lesson-sheet-api/internal/domain/entity"
	"lesson-sheet-api/internal/workflow/node"
	"lesson-sheet-api/internal/workflow/port"
	"lesson-sheet-api/pkg/logger"
	"lesson-sheet-api/pkg/metrics"
	"lesson-sheet-api/pkg/tracer"
)

const defaultRawPreviewRunes = 2000

// GeneratorConfig 流水线配置
type GeneratorConfig struct {
	// DefaultCredential 请求未携带凭证时使用（来自运行时配置/环境变量）
	DefaultCredential string
	RawPreviewRunes   int
}

// GenerateInput 单次生成输入
type GenerateInput struct {
	Request    *entity.SheetRequest
	Credential string
	Session    string
}

// GenerateResult 单次生成结果
type GenerateResult struct {
	Request      *entity.SheetRequest
	Content      *entity.SheetContent
	TotalMinutes int
	Durations    entity.DurationPlan
	SheetID      string
	Stored       bool
}

// Generator 串联 RequestBuilder → GenerationClient → 内容抽取 → 归档
type Generator struct {
	builder     *RequestBuilder
	client      port.GenerationClient
	gate        GenerationGate
	persistence *PersistenceGateway
	cfg         GeneratorConfig
}

// NewGenerator 创建 Generator；gate 为 nil 时不限制并发
func NewGenerator(
	builder *RequestBuilder,
	client port.GenerationClient,
	gate GenerationGate,
	persistence *PersistenceGateway,
	cfg GeneratorConfig,
) *Generator {
	if gate == nil {
		gate = NopGate{}
	}
	if cfg.RawPreviewRunes <= 0 {
		cfg.RawPreviewRunes = defaultRawPreviewRunes
	}
	return &Generator{
		builder:     builder,
		client:      client,
		gate:        gate,
		persistence: persistence,
		cfg:         cfg,
	}
}

// Generate 执行一次完整生成。校验失败时不会发起任何外部调用；
// 归档失败不影响返回内容，仅表现为 Stored=false。
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (res *GenerateResult, err error) {
	req := normalizeRequest(in.Request)
	lang := "unknown"
	if req != nil {
		if l, perr := entity.ParseLanguage(string(req.Language)); perr == nil {
			lang = string(l)
		}
	}

	start := time.Now()
	ctx, span := tracer.Start(ctx, "sheet.Generate")
	defer func() {
		tracer.End(span, err)
		metrics.SheetGenerationTotal.WithLabelValues(lang, generationStatus(err)).Inc()
		if err == nil {
			metrics.SheetGenerationDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
		}
	}()

	credential := strings.TrimSpace(in.Credential)
	if credential == "" {
		credential = strings.TrimSpace(g.cfg.DefaultCredential)
	}

	genReq, err := g.builder.BuildGenerationRequest(ctx, req, credential)
	if err != nil {
		return nil, err
	}

	session := in.Session
	if session == "" {
		session = "anonymous"
	}
	token, acquired, err := g.gate.Acquire(ctx, session)
	if err != nil {
		// 闸门后端不可用时放行，不阻塞生成
		logger.Warn(ctx, "generation gate unavailable", "error", err.Error())
	} else if !acquired {
		return nil, ErrGenerationInProgress
	} else {
		defer func() {
			if rerr := g.gate.Release(context.WithoutCancel(ctx), session, token); rerr != nil {
				logger.Warn(ctx, "release generation gate failed", "error", rerr.Error())
			}
		}()
	}

	metrics.GenerationsInFlight.Inc()
	raw, err := g.client.Generate(ctx, genReq, credential)
	metrics.GenerationsInFlight.Dec()
	if err != nil {
		logger.Error(ctx, "generation call failed", err, "language", lang)
		return nil, err
	}

	content, err := g.extract(ctx, raw)
	if err != nil {
		return nil, err
	}

	total, plan := PlanFor(req.Duree)
	res = &GenerateResult{
		Request:      req,
		Content:      content,
		TotalMinutes: total,
		Durations:    plan,
	}
	if g.persistence != nil {
		res.SheetID, res.Stored = g.persistence.Persist(ctx, req, content)
	}

	logger.Info(ctx, "sheet generated",
		"language", lang,
		"stored", res.Stored,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (g *Generator) extract(ctx context.Context, raw string) (content *entity.SheetContent, err error) {
	_, span := tracer.Start(ctx, "sheet.Extract")
	defer func() { tracer.End(span, err) }()

	content, err = ExtractSheetContent(raw)
	if err != nil {
		var me *MalformedResponse
		if errors.As(err, &me) {
			logger.Warn(ctx, "malformed generation output",
				"reason", me.Reason,
				"raw_preview", node.PreviewRaw(me.Raw, g.cfg.RawPreviewRunes),
			)
		}
		return nil, err
	}
	return content, nil
}

// normalizeRequest 返回去除首尾空白、补齐默认语言的副本
func normalizeRequest(in *entity.SheetRequest) *entity.SheetRequest {
	if in == nil {
		return nil
	}
	out := *in
	out.Niveau = strings.TrimSpace(out.Niveau)
	out.Activite = strings.TrimSpace(out.Activite)
	out.Lecon = strings.TrimSpace(out.Lecon)
	out.ObjectifSpecifique = strings.TrimSpace(out.ObjectifSpecifique)
	out.Duree = strings.TrimSpace(out.Duree)
	out.CompetenceBase = strings.TrimSpace(out.CompetenceBase)
	out.InfosSupplementaires = strings.TrimSpace(out.InfosSupplementaires)
	out.Language = entity.Language(strings.ToLower(strings.TrimSpace(string(out.Language))))
	if out.Language == "" {
		out.Language = entity.DefaultLanguage
	}
	return &out
}

func generationStatus(err error) string {
	var (
		ve *ValidationError
		ue *UpstreamError
		me *MalformedResponse
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve):
		return "validation"
	case errors.Is(err, ErrGenerationInProgress):
		return "busy"
	case errors.As(err, &ue):
		return "upstream"
	case errors.As(err, &me):
		return "malformed"
	default:
		return "error"
	}
}
