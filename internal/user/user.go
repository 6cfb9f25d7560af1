// Package user persists the user entity and its credential hash.
package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the stored user record. PasswordHash never serializes outward;
// consumers render the JSON form directly.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Patch describes a partial update. Nil fields are left untouched.
// PasswordHash must already be hashed by the caller.
type Patch struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.PasswordHash == nil
}
