package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/qrave1/RoomSignal/internal/infra/adapters/sqlstore/migrations"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

func NewPostgres(ctx context.Context, url string) (*sqlx.DB, error) {
	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(dbCtx, DriverPostgres, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err = db.PingContext(dbCtx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	slog.Info("connected to postgres")

	return db, nil
}

// NewSQLite открывает файл базы. Одно соединение, чтобы не ловить
// SQLITE_BUSY на конкурентных записях.
func NewSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(dbCtx, DriverSQLite, path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	slog.Info("opened sqlite", slog.String("path", path))

	return db, nil
}

// Migrate накатывает или откатывает схему kv через goose.
// command - команда goose (up, down, status, ...).
func Migrate(ctx context.Context, db *sql.DB, driver, command string, args ...string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations.MigrationsFS)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose: set dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("goose: %s: %w", command, err)
	}

	return nil
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return "postgres", nil
	case DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}
