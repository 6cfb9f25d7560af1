package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// MatchesRegex validates that a string matches the compiled pattern.
// The description is used in the error message, not the raw pattern.
func MatchesRegex(field, value string, pattern *regexp.Regexp, description string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}
			return pattern.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must match %s pattern", description),
		},
	}
}

// NoWhitespace validates that a string contains no whitespace characters.
func NoWhitespace(field, value string) Rule {
	return Rule{
		Check: func() bool {
			for _, char := range value {
				if unicode.IsSpace(char) {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:   field,
			Message: "must not contain whitespace characters",
		},
	}
}

// ContainsUppercase validates that a string contains at least one uppercase letter.
func ContainsUppercase(field, value string) Rule {
	return Rule{
		Check: func() bool {
			for _, char := range value {
				if unicode.IsUpper(char) {
					return true
				}
			}
			return false
		},
		Error: ValidationError{
			Field:   field,
			Message: "must contain at least one uppercase letter",
		},
	}
}

// ContainsLowercase validates that a string contains at least one lowercase letter.
func ContainsLowercase(field, value string) Rule {
	return Rule{
		Check: func() bool {
			for _, char := range value {
				if unicode.IsLower(char) {
					return true
				}
			}
			return false
		},
		Error: ValidationError{
			Field:   field,
			Message: "must contain at least one lowercase letter",
		},
	}
}

// ContainsDigit validates that a string contains at least one digit.
func ContainsDigit(field, value string) Rule {
	return Rule{
		Check: func() bool {
			for _, char := range value {
				if unicode.IsDigit(char) {
					return true
				}
			}
			return false
		},
		Error: ValidationError{
			Field:   field,
			Message: "must contain at least one digit",
		},
	}
}
