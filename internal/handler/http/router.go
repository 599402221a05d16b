// Package http exposes the tool-style API the store's chatbot agent calls:
// tool discovery, tool invocation, health, and operational endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vuquimar/api-rei-do-pano/internal/service"
	"github.com/vuquimar/api-rei-do-pano/pkg/health"
	"github.com/vuquimar/api-rei-do-pano/pkg/middleware"
)

// RouterConfig carries the surface-level settings the router needs.
type RouterConfig struct {
	ServiceName     string
	APIKeys         []string
	AllowedOrigins  []string
	DefaultPageSize int
	// ToolsMaxAge is the Cache-Control max-age for the /tools descriptor,
	// in seconds. The descriptor only changes on deploys.
	ToolsMaxAge int
	EnablePprof bool
	PprofCIDRs  []string
}

// NewRouter assembles the chi router with the full middleware chain.
func NewRouter(
	searchService *service.SearchService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowedOrigins = cfg.AllowedOrigins
	}

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(corsCfg))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	toolHandler := NewToolHandler(searchService, cfg.DefaultPageSize, logger)

	toolsMaxAge := cfg.ToolsMaxAge
	if toolsMaxAge <= 0 {
		toolsMaxAge = 300
	}
	r.Group(func(r chi.Router) {
		r.Use(middleware.CacheControl(toolsMaxAge))
		r.Get("/tools", toolHandler.ListTools)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Use(middleware.APIKeyAuth(cfg.APIKeys))
		r.Post("/tool_call", toolHandler.ToolCall)
	})

	if cfg.EnablePprof {
		r.Group(func(r chi.Router) {
			r.Use(middleware.IPAllowlist(cfg.PprofCIDRs))
			middleware.RegisterPprof(r)
		})
	}

	return r
}
