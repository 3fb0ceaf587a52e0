package security

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func issue(t *testing.T, c *CSRF) (*http.Cookie, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	token := c.Token(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.NotEmpty(t, token)
	return cookies[0], token
}

func formPost(token string, ck *http.Cookie) *http.Request {
	form := url.Values{"usia": {"12"}}
	if token != "" {
		form.Set(CSRFFieldName, token)
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if ck != nil {
		req.AddCookie(ck)
	}
	return req
}

func TestCSRF_RoundTrip(t *testing.T) {
	c, err := NewCSRF("test-key", false)
	require.NoError(t, err)
	ck, token := issue(t, c)
	h := CSRFMiddleware(c, nil)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, formPost(token, ck))
	assert.Equal(t, http.StatusOK, rec.Code)

	// the form values survive the check for the next handler
	req := formPost(token, ck)
	require.True(t, c.Verify(req))
	assert.Equal(t, "12", req.PostFormValue("usia"))

	hdr := httptest.NewRequest(http.MethodPost, "/", nil)
	hdr.Header.Set(CSRFHeaderName, token)
	hdr.AddCookie(ck)
	assert.True(t, c.Verify(hdr))
}

func TestCSRF_Rejects(t *testing.T) {
	c, err := NewCSRF("test-key", false)
	require.NoError(t, err)
	ck, token := issue(t, c)
	other, _ := NewCSRF("other-key", false)
	h := CSRFMiddleware(c, nil)(okHandler())

	cases := map[string]*http.Request{
		"no cookie":    formPost(token, nil),
		"no token":     formPost("", ck),
		"wrong token":  formPost(strings.Repeat("0", 64), ck),
		"bogus cookie": formPost(token, &http.Cookie{Name: csrfCookieName, Value: "x"}),
	}
	for name, req := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, name)
	}
	assert.False(t, other.Verify(formPost(token, ck)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRF_DenyHandler(t *testing.T) {
	c, err := NewCSRF("test-key", false)
	require.NoError(t, err)
	deny := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("usia=" + r.PostFormValue("usia")))
	})

	rec := httptest.NewRecorder()
	CSRFMiddleware(c, deny)(okHandler()).ServeHTTP(rec, formPost("", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "usia=12", rec.Body.String())
}

func TestCSRF_ReusesCookie(t *testing.T) {
	c, _ := NewCSRF("", false)
	ck, token := issue(t, c)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	assert.Equal(t, token, c.Token(rec, req))
	assert.Empty(t, rec.Result().Cookies())
}

func TestCSRF_Disabled(t *testing.T) {
	c, _ := NewCSRF(strings.Repeat("k", 100), true)
	assert.False(t, c.Enabled())
	assert.Empty(t, c.Token(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))

	rec := httptest.NewRecorder()
	CSRFMiddleware(c, nil)(okHandler()).ServeHTTP(rec, formPost("", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMemoryLimiter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewMemoryLimiter(2, time.Minute, 2)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, err := rl.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "call %d", i)
	}
	ok, _ := rl.Allow(ctx, "10.0.0.2")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = rl.Allow(ctx, "10.0.0.1")
	assert.True(t, ok)

	// state is bounded: a third client evicts the oldest
	_, _ = rl.Allow(ctx, "10.0.0.3")
	assert.Equal(t, 2, rl.byIP.Len())
}

type stubLimiter struct {
	allow bool
	err   error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) { return s.allow, s.err }
func (s stubLimiter) Name() string                                { return "stub" }

func TestRateLimitMiddleware(t *testing.T) {
	rejected := 0
	h := RateLimitMiddleware(stubLimiter{allow: false}, zap.NewNop(), func() { rejected++ }, nil)(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, rejected)

	h = RateLimitMiddleware(stubLimiter{allow: false}, zap.NewNop(), nil, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))(okHandler())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h = RateLimitMiddleware(stubLimiter{err: errors.New("valkey down")}, zap.NewNop(), nil, nil)(okHandler())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
