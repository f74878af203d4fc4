// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lesson-sheet-api/internal/config"
	"lesson-sheet-api/internal/interfaces/http/dto"
	"lesson-sheet-api/internal/interfaces/http/handler"
	"lesson-sheet-api/internal/interfaces/http/middleware"
	apperrors "lesson-sheet-api/pkg/errors"
)

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// Handlers 路由所需的处理器
type Handlers struct {
	Health *handler.HealthHandler
	Sheet  *handler.SheetHandler
	Export *handler.ExportHandler
}

// New 创建路由器；limiter 为 nil 时不限流
func New(cfg *config.Config, h *Handlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		cfg:    cfg,
	}

	r.setupMiddleware()
	r.setupRoutes(h, limiter)

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.cfg.Observability.Metrics.Path))
	}

	r.engine.Use(middleware.Session())
}

func (r *Router) setupRoutes(h *Handlers, limiter middleware.RateLimiter) {
	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	limited := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerMinute: r.cfg.Security.RateLimit.RequestsPerMinute,
	}, limiter)

	RegisterV1Routes(r.engine.Group("/v1"), h.Sheet, h.Export, limited)

	r.engine.NoRoute(func(c *gin.Context) {
		dto.AppError(c, apperrors.ErrNotFound.WithDetail(c.Request.URL.Path), nil)
	})
}
