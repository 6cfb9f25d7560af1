package session

import (
	"time"

	"github.com/userhubapp/userhub/pkg/cookie"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithStore sets a custom session store.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithTransport sets a custom session transport.
func WithTransport(transport Transport) Option {
	return func(m *Manager) {
		m.transport = transport
	}
}

// WithConfig sets custom configuration.
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) Option {
	return func(m *Manager) {
		m.config.CookieName = name
	}
}

// WithIdleTimeout sets the idle timeouts for anonymous and authenticated sessions.
func WithIdleTimeout(anon, auth time.Duration) Option {
	return func(m *Manager) {
		m.config.AnonIdleTimeout = anon
		m.config.AuthIdleTimeout = auth
	}
}

// WithMaxLifetime sets the maximum lifetimes for anonymous and authenticated sessions.
func WithMaxLifetime(anon, auth time.Duration) Option {
	return func(m *Manager) {
		m.config.AnonMaxLifetime = anon
		m.config.AuthMaxLifetime = auth
	}
}

// WithCookieManager sets the cookie manager for the default cookie transport.
func WithCookieManager(cookieMgr *cookie.Manager, opts ...cookie.Option) Option {
	return func(m *Manager) {
		m.cookieManager = cookieMgr
		m.cookieOptions = opts
	}
}
