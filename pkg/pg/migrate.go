package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies embedded schema migrations using goose. The pgx pool is
// bridged to database/sql because goose does not speak pgx natively.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration db handle", slog.Any("error", err))
		}
	}()

	goose.SetBaseFS(fsys)
	goose.SetLogger(&migrateLogger{ctx: ctx, log: log})

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	return nil
}

// migrateLogger routes goose's Printf-style output through slog.
type migrateLogger struct {
	ctx context.Context
	log *slog.Logger
}

func (l *migrateLogger) Fatalf(format string, v ...any) {
	l.log.ErrorContext(l.ctx, "migration failure", slog.String("goose", sprintf(format, v...)))
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.log.InfoContext(l.ctx, "migration", slog.String("goose", sprintf(format, v...)))
}

func sprintf(format string, v ...any) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
