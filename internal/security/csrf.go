package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"

	"golang.org/x/crypto/blake2b"
)

const (
	csrfCookieName = "csrf"
	CSRFFieldName  = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRF implements the signed double-submit cookie pattern: the cookie holds
// a random nonce and the form echoes a keyed MAC of it.
type CSRF struct {
	key      []byte
	disabled bool
}

func NewCSRF(key string, disabled bool) (*CSRF, error) {
	var k []byte
	switch {
	case key == "":
		k = make([]byte, 32)
		if _, err := rand.Read(k); err != nil {
			return nil, err
		}
	case len(key) > blake2b.Size:
		sum := blake2b.Sum256([]byte(key))
		k = sum[:]
	default:
		k = []byte(key)
	}
	return &CSRF{key: k, disabled: disabled}, nil
}

func (c *CSRF) Enabled() bool { return !c.disabled }

// Token returns the form token for this client, issuing a cookie if needed.
func (c *CSRF) Token(w http.ResponseWriter, r *http.Request) string {
	if c.disabled {
		return ""
	}
	if ck, err := r.Cookie(csrfCookieName); err == nil && validNonce(ck.Value) {
		return c.sign(ck.Value)
	}
	nonce := newNonce()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    nonce,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.sign(nonce)
}

// Verify checks the submitted token against the cookie nonce.
func (c *CSRF) Verify(r *http.Request) bool {
	if c.disabled {
		return true
	}
	ck, err := r.Cookie(csrfCookieName)
	if err != nil || !validNonce(ck.Value) {
		return false
	}
	got := r.Header.Get(CSRFHeaderName)
	if got == "" {
		got = r.PostFormValue(CSRFFieldName)
	}
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(c.sign(ck.Value))) == 1
}

func (c *CSRF) sign(nonce string) string {
	h, err := blake2b.New256(c.key)
	if err != nil {
		// only possible with a key longer than 64 bytes, ruled out in NewCSRF
		panic(err)
	}
	h.Write([]byte(nonce))
	return hex.EncodeToString(h.Sum(nil))
}

func newNonce() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func validNonce(s string) bool {
	b, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil && len(b) == 16
}
