package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/userhubapp/userhub/pkg/pg"
)

// DB is the subset of pgxpool.Pool the store needs. Satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides persistence operations against the users table.
type Store struct {
	db DB
}

// NewStore creates a user store over the given connection pool.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const userColumns = "id, username, email, password_hash, created_at, updated_at, last_login"

// Create inserts a new user row. The uniqueness constraints on username and
// email settle concurrent signups; pre-insert existence probes are a UX
// nicety only.
func (s *Store) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	u := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	query := `INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	if err := s.db.QueryRow(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash).Scan(&u.CreatedAt); err != nil {
		if conflictErr := mapConflict(err); conflictErr != nil {
			return nil, conflictErr
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

// GetByID fetches a user by id, returning ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanOne(s.db.QueryRow(ctx, query, id), "get user by id")
}

// GetByUsername fetches a user by username, returning ErrNotFound when absent.
func (s *Store) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return s.scanOne(s.db.QueryRow(ctx, query, username), "get user by username")
}

// List returns all users ordered by creation time.
func (s *Store) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// Update applies a partial update and stamps updated_at. Returns ErrNotFound
// for unknown ids and the conflict sentinels on uniqueness violations.
func (s *Store) Update(ctx context.Context, id uuid.UUID, patch Patch) (*User, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}
	add("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(sets, ", "), len(args))

	u, err := s.scanOne(s.db.QueryRow(ctx, query, args...), "update user")
	if err != nil {
		if conflictErr := mapConflict(err); conflictErr != nil {
			return nil, conflictErr
		}
		return nil, err
	}
	return u, nil
}

// UsernameExists probes for a username before insert to produce a friendlier
// field error than a constraint violation.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

// EmailExists probes for an email before insert.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

// TouchLastLogin records a successful sign-in.
func (s *Store) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) exists(ctx context.Context, query, arg string) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("existence probe: %w", err)
	}
	return exists, nil
}

func (s *Store) scanOne(row pgx.Row, op string) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// mapConflict translates unique-constraint violations into the store's
// conflict sentinels, keyed by constraint name.
func mapConflict(err error) error {
	if !pg.IsDuplicateKeyError(err) {
		return nil
	}
	switch pg.ConstraintName(err) {
	case "users_email_key":
		return ErrEmailTaken
	default:
		return ErrUsernameTaken
	}
}
