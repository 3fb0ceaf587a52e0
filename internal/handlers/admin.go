package handlers

import (
	"encoding/json"
	"net/http"
)

// Ping is the liveness probe.
func Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true, "pong": true})
}

type statusInfo struct {
	OK           bool   `json:"ok"`
	PredictorURL string `json:"predictor_url"`
	RateLimiter  string `json:"rate_limiter"`
	CSRF         bool   `json:"csrf"`
}

// Status reports how the gateway is wired.
func Status(predictorURL, limiter string, csrf bool) http.HandlerFunc {
	info := statusInfo{OK: true, PredictorURL: predictorURL, RateLimiter: limiter, CSRF: csrf}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, info)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
