// Package auth implements credential hashing, password authentication, and
// the Google OAuth sign-in path.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argonTime    = 1         // iterations
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 4         // parallelism
	argonSaltLen = 16        // salt length in bytes
	argonKeyLen  = 32        // digest length in bytes
)

// Hasher produces and verifies argon2id credential hashes in PHC string
// format. Safe for concurrent use.
type Hasher struct{}

// NewHasher creates an argon2id hasher with default parameters.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Hash produces an encoded argon2id hash with a fresh random salt. Hashing
// the same password twice yields different encodings.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	// PHC string format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<digest>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)

	return encoded, nil
}

// Verify reports whether the password matches the encoded hash. It recomputes
// the digest with the parameters and salt embedded in the encoding and
// compares in constant time. Any malformed encoding verifies false rather
// than surfacing which part failed.
func (h *Hasher) Verify(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if time == 0 || threads == 0 || threads > 255 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	keyLen := len(expected)
	if keyLen <= 0 || keyLen > 1<<10 {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	return subtle.ConstantTimeCompare(computed, expected) == 1
}
