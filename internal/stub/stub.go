// Package stub is a stand-in for the external predictor. It applies the
// rule-based height-for-age heuristic the real service falls back to when no
// model is loaded.
package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/LonelyIsle/stunting-detector/internal/logging"
	"github.com/LonelyIsle/stunting-detector/internal/prediction"
)

const (
	Confidence = "Medium (Rule-based)"
	Message    = "Model file not found. Using rule-based fallback logic."
)

var requiredFields = []string{"usia_bulan", "tinggi_badan", "berat_badan", "gender"}

// Classify returns the status label for a child's age and height.
// Expected height is 50cm at birth plus 1.5cm per month.
func Classify(ageMonths int, heightCm float64) string {
	expected := 50 + float64(ageMonths)*1.5
	switch {
	case heightCm < expected*0.85:
		return prediction.StatusSeverelyStunted
	case heightCm < expected*0.95:
		return prediction.StatusStunted
	case heightCm > expected*1.15:
		return prediction.StatusTall
	default:
		return prediction.StatusNormal
	}
}

func NewRouter(log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Post("/predict", Predict)
	return r
}

func Predict(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	for _, f := range requiredFields {
		if _, ok := data[f]; !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing field: " + f})
			return
		}
	}

	age, err := toNumber(data["usia_bulan"])
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	height, err := toNumber(data["tinggi_badan"])
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	weight, err := toNumber(data["berat_badan"])
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	gender, _ := data["gender"].(string)

	months := int(age)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     Classify(months, height),
		"confidence": Confidence,
		"message":    Message,
		"input_received": prediction.InputEcho{
			AgeMonths: months,
			HeightCm:  height,
			WeightKg:  weight,
			Gender:    genderLabel(gender),
		},
	})
}

// genderLabel follows the predictor: only the male spellings map to male.
func genderLabel(s string) string {
	switch strings.ToLower(s) {
	case "l", "laki-laki", "laki":
		return prediction.GenderMale.Label()
	}
	return prediction.GenderFemale.Label()
}

func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("invalid number %v", v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
