package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/userhubapp/userhub/pkg/validator"
)

func TestValidEmail(t *testing.T) {
	t.Run("accepts common addresses", func(t *testing.T) {
		for _, email := range []string{
			"user@example.com",
			"first.last@example.com",
			"user+tag@example.co.uk",
			"u_1-2@sub.example.com",
		} {
			assert.True(t, validator.ValidEmail("email", email).Check(), "email %q", email)
		}
	})

	t.Run("rejects malformed addresses", func(t *testing.T) {
		for _, email := range []string{
			"",
			"   ",
			"plainstring",
			"@example.com",
			"user@",
			"user@nodot",
			"user@.example.com",
			"user@example.com.",
			"user@exa..mple.com",
			"user @example.com",
		} {
			assert.False(t, validator.ValidEmail("email", email).Check(), "email %q", email)
		}
	})

	t.Run("error message", func(t *testing.T) {
		rule := validator.ValidEmail("email", "broken")
		assert.Equal(t, "must be a valid email address", rule.Error.Message)
	})
}
