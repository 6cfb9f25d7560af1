package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhubapp/userhub/internal/auth"
)

func TestHasherHash(t *testing.T) {
	t.Parallel()

	hasher := auth.NewHasher()

	t.Run("produces a parseable argon2id hash", func(t *testing.T) {
		t.Parallel()

		hash, err := hasher.Hash("Sup3rSecret")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
		assert.Len(t, strings.Split(hash, "$"), 6)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		t.Parallel()

		_, err := hasher.Hash("")
		assert.ErrorIs(t, err, auth.ErrEmptyPassword)
	})

	t.Run("same password hashes to distinct values", func(t *testing.T) {
		t.Parallel()

		first, err := hasher.Hash("Sup3rSecret")
		require.NoError(t, err)
		second, err := hasher.Hash("Sup3rSecret")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.True(t, hasher.Verify("Sup3rSecret", first))
		assert.True(t, hasher.Verify("Sup3rSecret", second))
	})
}

func TestHasherVerify(t *testing.T) {
	t.Parallel()

	hasher := auth.NewHasher()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		hash, err := hasher.Hash("Sup3rSecret")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("Sup3rSecret", hash))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		t.Parallel()

		hash, err := hasher.Hash("Sup3rSecret")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("sup3rsecret", hash))
	})

	t.Run("malformed hashes fail without error", func(t *testing.T) {
		t.Parallel()

		for _, encoded := range []string{
			"",
			"not-a-hash",
			"$argon2id$v=19$m=65536,t=1,p=4$short",
			"$argon2i$v=19$m=65536,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
			"$argon2id$v=1$m=65536,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
			"$argon2id$v=19$m=0,t=0,p=0$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
			"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
		} {
			assert.False(t, hasher.Verify("Sup3rSecret", encoded), "input %q", encoded)
		}
	})
}
