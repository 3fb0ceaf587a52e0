package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/LonelyIsle/stunting-detector/internal/clients"
	"github.com/LonelyIsle/stunting-detector/internal/metrics"
	"github.com/LonelyIsle/stunting-detector/internal/prediction"
	"github.com/LonelyIsle/stunting-detector/internal/security"
	"github.com/LonelyIsle/stunting-detector/internal/web"
)

type Predictor interface {
	Predict(ctx context.Context, in prediction.Request) (prediction.Result, error)
}

// Page serves the Form-Relay page: GET shows the form, POST relays it to
// the predictor and shows the outcome.
type Page struct {
	predictor Predictor
	view      *web.View
	csrf      *security.CSRF
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewPage(p Predictor, view *web.View, csrf *security.CSRF, m *metrics.Metrics, log *zap.Logger) *Page {
	return &Page{predictor: p, view: view, csrf: csrf, metrics: m, log: log}
}

func (h *Page) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, prediction.Form{}, prediction.Idle(), http.StatusOK)
}

func (h *Page) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.log.Debug("unreadable form body", zap.Error(err))
	}
	form := prediction.FormFromValues(r.PostForm)
	req := form.Request()

	start := time.Now()
	res, err := h.predictor.Predict(r.Context(), req)
	out := outcomeFor(res, err)
	h.metrics.ObservePrediction(out.Label(), time.Since(start))

	if out.Failed() {
		h.log.Warn("prediction failed",
			zap.String("kind", out.Failure.String()),
			zap.Error(err),
		)
	} else {
		h.metrics.ObserveSeverity(out.Result.Severity().String())
	}

	h.render(w, r, form, out, http.StatusOK)
}

// FormExpired renders the page for a submission whose form token failed.
func (h *Page) FormExpired(w http.ResponseWriter, r *http.Request) {
	h.reject(w, r, prediction.FormExpired(), http.StatusForbidden)
}

// RateLimited renders the page for a client over its request budget.
func (h *Page) RateLimited(w http.ResponseWriter, r *http.Request) {
	h.reject(w, r, prediction.RateLimited(), http.StatusTooManyRequests)
}

func (h *Page) reject(w http.ResponseWriter, r *http.Request, out prediction.Outcome, status int) {
	if err := r.ParseForm(); err != nil {
		h.log.Debug("unreadable form body", zap.Error(err))
	}
	h.log.Warn("submission rejected", zap.String("kind", out.Failure.String()), zap.String("method", r.Method))
	h.render(w, r, prediction.FormFromValues(r.PostForm), out, status)
}

func (h *Page) render(w http.ResponseWriter, r *http.Request, form prediction.Form, out prediction.Outcome, status int) {
	token := h.csrf.Token(w, r)
	page := h.view.NewPage(form, out, security.CSRFFieldName, token)

	var buf bytes.Buffer
	if err := h.view.Render(&buf, page); err != nil {
		h.log.Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func outcomeFor(res prediction.Result, err error) prediction.Outcome {
	if err == nil {
		return prediction.Success(res)
	}
	var se *clients.ServiceError
	switch {
	case errors.As(err, &se):
		return prediction.ServiceReported(se.Message)
	case errors.Is(err, clients.ErrMalformedResponse):
		return prediction.Malformed()
	default:
		return prediction.Unreachable()
	}
}
