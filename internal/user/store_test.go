package user_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhubapp/userhub/internal/user"
)

const userColumnsPattern = `SELECT id, username, email, password_hash, created_at, updated_at, last_login FROM users`

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *user.Store) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, user.NewStore(mock)
}

func userRow(id uuid.UUID, username string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at", "last_login"}).
		AddRow(id, username, username+"@example.com", "$argon2id$hash", time.Now(), nil, nil)
}

func TestStoreCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("inserts row and returns created user", func(t *testing.T) {
		t.Parallel()

		mock, store := newMockStore(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "alice", "alice@example.com", "hash").
			WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		u, err := store.Create(ctx, "alice", "alice@example.com", "hash")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, u.ID)
		assert.Equal(t, "alice", u.Username)
		assert.False(t, u.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps username constraint violation", func(t *testing.T) {
		t.Parallel()

		mock, store := newMockStore(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "alice", "alice@example.com", "hash").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		_, err := store.Create(ctx, "alice", "alice@example.com", "hash")
		assert.ErrorIs(t, err, user.ErrUsernameTaken)
	})

	t.Run("maps email constraint violation", func(t *testing.T) {
		t.Parallel()

		mock, store := newMockStore(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "alice", "alice@example.com", "hash").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := store.Create(ctx, "alice", "alice@example.com", "hash")
		assert.ErrorIs(t, err, user.ErrEmailTaken)
	})
}

func TestStoreGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		mock, store := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(userColumnsPattern + ` WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(userRow(id, "alice"))

		u, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
	})

	t.Run("by username", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		mock, store := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(userColumnsPattern + ` WHERE username = $1`)).
			WithArgs("alice").
			WillReturnRows(userRow(id, "alice"))

		u, err := store.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		t.Parallel()

		mock, store := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(userColumnsPattern + ` WHERE id = $1`)).
			WithArgs(pgxmock.AnyArg()).
			WillReturnError(pgx.ErrNoRows)

		_, err := store.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}

func TestStoreList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns rows in creation order", func(t *testing.T) {
		t.Parallel()

		mock, store := newMockStore(t)
		rows := pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at", "last_login"}).
			AddRow(uuid.New(), "alice", "alice@example.com", "h1", time.Now(), nil, nil).
			AddRow(uuid.New(), "bob", "bob@example.com", "h2", time.Now(), nil, nil)
		mock.ExpectQuery(regexp.QuoteMeta(userColumnsPattern + ` ORDER BY created_at`)).
			WillReturnRows(rows)

		users, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "bob", users[1].Username)
	})

	t.Run("empty table yields empty slice", func(t *testing.T) {
		t.Parallel()

		mock, store := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(userColumnsPattern + ` ORDER BY created_at`)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at", "last_login"}))

		users, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func TestStoreUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	strPtr := func(s string) *string { return &s }

	t.Run("empty patch rejected", func(t *testing.T) {
		t.Parallel()

		_, store := newMockStore(t)
		_, err := store.Update(ctx, uuid.New(), user.Patch{})
		assert.ErrorIs(t, err, user.ErrEmptyPatch)
	})

	t.Run("updates selected columns and stamps updated_at", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		mock, store := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET username = $1, updated_at = $2 WHERE id = $3`)).
			WithArgs("renamed", pgxmock.AnyArg(), id).
			WillReturnRows(userRow(id, "renamed"))

		u, err := store.Update(ctx, id, user.Patch{Username: strPtr("renamed")})
		require.NoError(t, err)
		assert.Equal(t, "renamed", u.Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		t.Parallel()

		mock, store := newMockStore(t)
		mock.ExpectQuery(`UPDATE users SET`).
			WithArgs("renamed", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(pgx.ErrNoRows)

		_, err := store.Update(ctx, uuid.New(), user.Patch{Username: strPtr("renamed")})
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("conflicting username maps to taken", func(t *testing.T) {
		t.Parallel()

		mock, store := newMockStore(t)
		mock.ExpectQuery(`UPDATE users SET`).
			WithArgs("taken", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		_, err := store.Update(ctx, uuid.New(), user.Patch{Username: strPtr("taken")})
		assert.ErrorIs(t, err, user.ErrUsernameTaken)
	})
}

func TestStoreExistenceProbes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("username exists", func(t *testing.T) {
		t.Parallel()

		mock, store := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`)).
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := store.UsernameExists(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("email absent", func(t *testing.T) {
		t.Parallel()

		mock, store := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`)).
			WithArgs("new@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := store.EmailExists(ctx, "new@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestStoreTouchLastLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("updates timestamp", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		mock, store := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET last_login = now() WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, store.TouchLastLogin(ctx, id))
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		t.Parallel()

		mock, store := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET last_login = now() WHERE id = $1`)).
			WithArgs(pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, store.TouchLastLogin(ctx, uuid.New()), user.ErrNotFound)
	})
}
