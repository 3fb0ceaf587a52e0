package stub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LonelyIsle/stunting-detector/internal/prediction"
)

func TestClassify(t *testing.T) {
	// age 20 months -> expected 80cm
	tests := []struct {
		height float64
		want   string
	}{
		{67.9, prediction.StatusSeverelyStunted},
		{68.1, prediction.StatusStunted},
		{75.9, prediction.StatusStunted},
		{76.1, prediction.StatusNormal},
		{91.9, prediction.StatusNormal},
		{92.1, prediction.StatusTall},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(20, tt.height), "height %v", tt.height)
	}
}

func post(t *testing.T, body string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	NewRouter(zap.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestPredict(t *testing.T) {
	code, out := post(t, `{"usia_bulan":24,"tinggi_badan":70.0,"berat_badan":9.5,"gender":"P"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, prediction.StatusSeverelyStunted, out["status"])
	assert.Equal(t, Confidence, out["confidence"])
	assert.Equal(t, Message, out["message"])

	echo, ok := out["input_received"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(24), echo["usia"])
	assert.Equal(t, 70.0, echo["tinggi"])
	assert.Equal(t, "Perempuan", echo["gender"])
}

func TestPredict_StringNumbersAndLongGender(t *testing.T) {
	code, out := post(t, `{"usia_bulan":"12","tinggi_badan":"68","berat_badan":"8","gender":"Laki-laki"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, prediction.StatusNormal, out["status"])
	assert.Equal(t, "Laki-laki", out["input_received"].(map[string]any)["gender"])
}

func TestPredict_Errors(t *testing.T) {
	code, out := post(t, `{"usia_bulan":12,"tinggi_badan":70,"berat_badan":8}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Missing field: gender", out["error"])

	code, out = post(t, `not json`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotEmpty(t, out["error"])

	code, out = post(t, `{"usia_bulan":"abc","tinggi_badan":70,"berat_badan":8,"gender":"L"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, out["error"], "invalid number")
}
