package session

import (
	"context"

	"github.com/google/uuid"
)

type sessionContextKey struct{}

// WithSession adds a session to the context.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// FromContext retrieves a session from the context.
func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok
}

// UserIDFromContext retrieves the authenticated user ID from the session in
// context, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	session, ok := FromContext(ctx)
	if !ok || !session.IsAuthenticated() {
		return uuid.Nil, false
	}
	return *session.UserID, true
}
