package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidUsername validates that a string is a well-formed username: letters,
// digits, underscores, and hyphens within the given length bounds.
func ValidUsername(field, value string, minLen, maxLen int) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}
			if len(value) < minLen || len(value) > maxLen {
				return false
			}
			return usernameRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be %d-%d characters long and contain only letters, numbers, underscores, and hyphens", minLen, maxLen),
		},
	}
}
