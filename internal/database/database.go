// Package database handles PostgreSQL connection management, the blog
// schema migrations (run with goose) and development seed data.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Startup ping retries. The server usually starts alongside PostgreSQL in
// compose, so the first pings may land before it accepts connections.
var (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

// Connect opens a PostgreSQL connection pool using the provided DSN and
// pings it, retrying with exponential backoff before giving up.
func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	wait := connectBackoff
	for attempt := 1; ; attempt++ {
		err = db.Ping()
		if err == nil {
			break
		}
		if attempt >= connectAttempts {
			db.Close()
			return nil, fmt.Errorf("database ping after %d attempts: %w", attempt, err)
		}
		slog.Warn("database not ready, retrying", "attempt", attempt, "wait", wait, "error", err)
		time.Sleep(wait)
		wait *= 2
	}

	slog.Info("database connected")
	return db, nil
}

// Migrate runs all pending goose migrations from the embedded SQL files.
// Migrations are embedded at compile time so no external files are needed
// at runtime.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied")
	return nil
}
