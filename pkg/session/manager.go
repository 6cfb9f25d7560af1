package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/userhubapp/userhub/pkg/cookie"
)

// Manager resolves, creates, and mutates sessions for HTTP requests.
type Manager struct {
	store         Store
	transport     Transport
	config        Config
	cookieManager *cookie.Manager
	cookieOptions []cookie.Option
}

// New creates a new session manager with the given options. A store and
// either a transport or a cookie manager are required.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}

	if m.transport == nil {
		if m.cookieManager == nil {
			// Fail fast on misconfiguration rather than serve sessions insecurely.
			panic("session: cookie manager is required when using default cookie transport")
		}
		m.transport = NewCookieTransport(m.cookieManager, m.config.CookieName, m.config.SecureCookies, m.cookieOptions...)
	}

	return m
}

// Ensure retrieves the request's session or creates a new anonymous one,
// setting the transport token on the response when a session is created.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	session, err := m.Get(ctx, r)
	if err == nil {
		return session, nil
	}

	_ = m.transport.ClearToken(w)

	session, err = m.createSession(ctx, nil)
	if err != nil {
		return nil, err
	}

	idle, _ := m.config.GetTimeouts(false)
	if err := m.transport.SetToken(w, session.Token, idle); err != nil {
		_ = m.store.Delete(ctx, session.Token)
		return nil, err
	}

	return session, nil
}

// Get retrieves an existing, unexpired session.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return session, nil
}

// Authenticate marks the request's session as signed in for userID. The
// token is rotated so a pre-login token can never name an authenticated
// session (session fixation).
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*Session, error) {
	session, err := m.Get(ctx, r)
	if err != nil {
		session, err = m.createSession(ctx, &userID)
		if err != nil {
			return nil, err
		}
	} else {
		newToken, err := generateToken()
		if err != nil {
			return nil, err
		}

		_ = m.store.Delete(ctx, session.Token)

		session.UserID = &userID
		session.Token = newToken

		idle, max := m.config.GetTimeouts(true)
		session.ExpiresAt = m.calculateExpiry(session.CreatedAt, time.Now(), idle, max)
		session.Touch()

		if err := m.store.Create(ctx, session); err != nil {
			return nil, err
		}
	}

	idle, _ := m.config.GetTimeouts(true)
	if err := m.transport.SetToken(w, session.Token, idle); err != nil {
		return nil, err
	}
	return session, nil
}

// Destroy deletes the session and clears the client token.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, err := m.transport.GetToken(r)
	if err == nil && token != "" {
		_ = m.store.Delete(ctx, token)
	}

	return m.transport.ClearToken(w)
}

// Save persists data mutations made on the session and slides its expiry.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	idle, max := m.config.GetTimeouts(session.IsAuthenticated())
	session.ExpiresAt = m.calculateExpiry(session.CreatedAt, time.Now(), idle, max)
	session.Touch()

	if err := m.store.Update(ctx, session); err != nil {
		return err
	}

	return m.transport.SetToken(w, session.Token, idle)
}

// TouchActivity slides the session's activity timestamp if the configured
// threshold has elapsed. Best effort; errors are ignored.
func (m *Manager) TouchActivity(ctx context.Context, session *Session) {
	if session == nil {
		return
	}
	if time.Since(session.LastActivityAt) < m.config.ActivityUpdateThreshold {
		return
	}
	_ = m.store.UpdateActivity(ctx, session.Token, time.Now())
}

func (m *Manager) createSession(ctx context.Context, userID *uuid.UUID) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	idle, max := m.config.GetTimeouts(userID != nil)
	now := time.Now()

	session := NewSession(token, userID, m.calculateExpiry(now, now, idle, max).Sub(now))

	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// calculateExpiry returns the sliding expiry capped by the max lifetime.
func (m *Manager) calculateExpiry(createdAt, now time.Time, idle, max time.Duration) time.Time {
	expiry := now.Add(idle)
	if cap := createdAt.Add(max); expiry.After(cap) {
		return cap
	}
	return expiry
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
