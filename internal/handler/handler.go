// Package handler exposes the HTTP surface: signup and sign-in pages, the
// session-gated user API, and the Google OAuth flow.
package handler

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/userhubapp/userhub/internal/auth"
	"github.com/userhubapp/userhub/pkg/cookie"
	"github.com/userhubapp/userhub/pkg/session"
)

const signinPath = "/signin"

// Handler wires the auth services to routes.
type Handler struct {
	auth     *auth.Service
	users    auth.Storage
	oauth    *auth.GoogleOAuthService
	sessions *session.Manager
	cookies  *cookie.Manager
	logger   *slog.Logger
}

// Option configures the Handler.
type Option func(*Handler)

// WithGoogleOAuth enables the Google sign-in routes.
func WithGoogleOAuth(svc *auth.GoogleOAuthService) Option {
	return func(h *Handler) {
		h.oauth = svc
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// New creates the handler.
func New(authSvc *auth.Service, users auth.Storage, sessions *session.Manager, cookies *cookie.Manager, opts ...Option) *Handler {
	h := &Handler{
		auth:     authSvc,
		users:    users,
		sessions: sessions,
		cookies:  cookies,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Router builds the chi router with all routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.sessions.Middleware)

	r.Get("/", h.landing)

	r.Get("/signup", h.signupPage)
	r.Post("/signup", h.signup)
	r.Get(signinPath, h.signinPage)
	r.Post(signinPath, h.signin)
	r.Post("/signout", h.signout)

	if h.oauth != nil {
		r.Get("/oauth/google", h.oauthStart)
		r.Get("/oauth/google/callback", h.oauthCallback)
	}

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.RequireAuth(signinPath))

		r.Get("/users", h.listUsers)
		r.Get("/users/{id}", h.getUser)
		r.Patch("/users/{id}", h.updateUser)
	})

	return r
}
