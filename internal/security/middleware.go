package security

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

/* ---------- CSRF ---------- */

// CSRFMiddleware rejects mutating requests without a valid token. Rejected
// requests go to deny, or get a plain 403 when deny is nil.
func CSRFMiddleware(c *CSRF, deny http.Handler) func(http.Handler) http.Handler {
	if deny == nil {
		deny = plainError("CSRF validation failed", http.StatusForbidden)
	}
	return func(next http.Handler) http.Handler {
		if !c.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				if !c.Verify(r) {
					deny.ServeHTTP(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IssueCSRFToken hands a token to scripted clients, which send it back in
// the X-CSRF-Token header.
func IssueCSRFToken(c *CSRF) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := c.Token(w, r)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"csrf": token, "enabled": c.Enabled()})
	}
}

/* ---------- Rate limiting ---------- */

// RateLimitMiddleware applies l per client IP. Limiter errors are logged and
// the request is let through. onReject and deny may be nil; a nil deny
// answers with a plain 429.
func RateLimitMiddleware(l Limiter, log *zap.Logger, onReject func(), deny http.Handler) func(http.Handler) http.Handler {
	if deny == nil {
		deny = plainError("rate limit exceeded", http.StatusTooManyRequests)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			ok, err := l.Allow(r.Context(), ip)
			if err != nil {
				log.Warn("rate limiter unavailable", zap.String("limiter", l.Name()), zap.Error(err))
				ok = true
			}
			if !ok {
				if onReject != nil {
					onReject()
				}
				deny.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func plainError(msg string, code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, msg, code)
	})
}
