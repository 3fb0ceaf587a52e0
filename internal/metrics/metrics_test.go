package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.ObservePrediction("success", 20*time.Millisecond)
	m.ObservePrediction("success", 10*time.Millisecond)
	m.ObservePrediction("unreachable", time.Millisecond)
	m.ObserveSeverity("stunted")
	m.IncRateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("unreachable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Severity.WithLabelValues("stunted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stunting_predictions_total")

	// a second instance must not collide with the first
	assert.NotPanics(t, func() { New() })
}
