package session

import (
	"net/http"
)

// Middleware resolves the request's session, if any, into the request
// context and slides its activity timestamp.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.Get(r.Context(), r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithSession(r.Context(), session)
		m.TouchActivity(ctx, session)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth redirects unauthenticated requests to redirectTo.
func (m *Manager) RequireAuth(redirectTo string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := m.Get(r.Context(), r)
			if err != nil || !session.IsAuthenticated() {
				http.Redirect(w, r, redirectTo, http.StatusSeeOther)
				return
			}

			ctx := WithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
