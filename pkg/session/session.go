// Package session provides cookie-transported server-side sessions with
// pluggable storage.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a per-client server-side record. UserID is set while the
// client is signed in; Data carries transient values such as a pending OAuth
// state token.
type Session struct {
	ID             uuid.UUID         `json:"id"`
	Token          string            `json:"token"`
	UserID         *uuid.UUID        `json:"user_id,omitempty"`
	Data           map[string]string `json:"data,omitempty"`
	ExpiresAt      time.Time         `json:"expires_at"`
	LastActivityAt time.Time         `json:"last_activity_at"`
	CreatedAt      time.Time         `json:"created_at"`
}

// NewSession creates a new session with the given token and lifetime.
func NewSession(token string, userID *uuid.UUID, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             uuid.New(),
		Token:          token,
		UserID:         userID,
		Data:           make(map[string]string),
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
		CreatedAt:      now,
	}
}

// IsAuthenticated returns true if the session has a user ID.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// Get retrieves a value from session data.
func (s *Session) Get(key string) (string, bool) {
	if s == nil || s.Data == nil {
		return "", false
	}
	val, ok := s.Data[key]
	return val, ok
}

// Set stores a value in session data.
func (s *Session) Set(key, value string) {
	if s == nil {
		return
	}
	if s.Data == nil {
		s.Data = make(map[string]string)
	}
	s.Data[key] = value
}

// Delete removes a value from session data.
func (s *Session) Delete(key string) {
	if s == nil || s.Data == nil {
		return
	}
	delete(s.Data, key)
}

// Touch updates the last activity time.
func (s *Session) Touch() {
	if s == nil {
		return
	}
	s.LastActivityAt = time.Now()
}
