package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/LonelyIsle/stunting-detector/internal/logging"
	"github.com/LonelyIsle/stunting-detector/internal/metrics"
	"github.com/LonelyIsle/stunting-detector/internal/security"
)

type RouterDeps struct {
	Page         *Page
	CSRF         *security.CSRF
	Limiter      security.Limiter // nil disables rate limiting
	Metrics      *metrics.Metrics
	Log          *zap.Logger
	PredictorURL string
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(d.Log))
	r.Use(middleware.Recoverer)

	limiterName := "off"
	if d.Limiter != nil {
		limiterName = d.Limiter.Name()
	}
	guard := func(g chi.Router, rateLimited, formExpired http.Handler) {
		if d.Limiter != nil {
			g.Use(security.RateLimitMiddleware(d.Limiter, d.Log, d.Metrics.IncRateLimited, rateLimited))
		}
		g.Use(security.CSRFMiddleware(d.CSRF, formExpired))
	}

	// health
	r.Group(func(api chi.Router) {
		guard(api, nil, nil)
		api.Get("/api/ping", Ping)
		api.Get("/api/status", Status(d.PredictorURL, limiterName, d.CSRF.Enabled()))
		api.Get("/api/csrf", security.IssueCSRFToken(d.CSRF))
		api.Handle("/metrics", d.Metrics.Handler())
	})

	// the page posts to itself; rejections still render it
	r.Group(func(page chi.Router) {
		guard(page, http.HandlerFunc(d.Page.RateLimited), http.HandlerFunc(d.Page.FormExpired))
		page.Get("/", d.Page.Show)
		page.Post("/", d.Page.Submit)
	})

	return gzhttp.GzipHandler(r)
}
