package session

import (
	"net/http"
	"time"

	"github.com/userhubapp/userhub/pkg/cookie"
)

// CookieTransport carries the session token in an encrypted cookie.
type CookieTransport struct {
	cookieMgr  *cookie.Manager
	cookieName string
	secure     bool
	options    []cookie.Option
}

// NewCookieTransport creates a new cookie-based transport.
func NewCookieTransport(cookieMgr *cookie.Manager, cookieName string, secure bool, opts ...cookie.Option) *CookieTransport {
	return &CookieTransport{
		cookieMgr:  cookieMgr,
		cookieName: cookieName,
		secure:     secure,
		options:    opts,
	}
}

func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	token, err := t.cookieMgr.GetEncrypted(r, t.cookieName)
	if err != nil {
		return "", ErrSessionNotFound
	}
	return token, nil
}

func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	opts := []cookie.Option{
		cookie.WithMaxAge(int(ttl.Seconds())),
		cookie.WithPath("/"),
		cookie.WithHTTPOnly(true),
		// Lax keeps the cookie off cross-site POSTs.
		cookie.WithSameSite(http.SameSiteLaxMode),
	}

	if t.secure {
		opts = append(opts, cookie.WithSecure(true))
	}

	opts = append(opts, t.options...)

	return t.cookieMgr.SetEncrypted(w, t.cookieName, token, opts...)
}

func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	t.cookieMgr.Delete(w, t.cookieName)
	return nil
}
