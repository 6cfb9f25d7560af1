// Package sanitizer normalizes user-submitted identity fields before
// validation and storage.
package sanitizer

import (
	"regexp"
	"strings"
)

var dotRegex = regexp.MustCompile(`\.{2,}`)

// NormalizeEmail lowercases and trims an email address and consolidates
// consecutive dots in the local part. Invalid shapes are returned unchanged
// so the validator can reject them with a field error.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := parts[0]
	domain := parts[1]

	local = dotRegex.ReplaceAllString(local, ".")
	local = strings.Trim(local, ".")

	return local + "@" + domain
}

// NormalizeUsername trims surrounding whitespace. Case is preserved; the
// users table enforces uniqueness on the stored form.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
