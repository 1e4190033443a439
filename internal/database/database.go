// Package database opens the SQLite database used by the sqlite storage driver.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/starquake/kuis/internal/migrations"
)

// ErrUnsupportedDriver is returned when the database driver is not supported. We only support sqlite for now.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

var gooseOnce sync.Once //nolint:gochecknoglobals // goose keeps its settings in package state.

// SetupGoose configures global settings for goose. Only the first call has an effect, so callers
// running in parallel do not race on goose's package state.
func SetupGoose() {
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)

		if err := goose.SetDialect("sqlite3"); err != nil {
			panic(err)
		}
	})
}

// Open opens a database connection and checks that it is reachable.
func Open(
	ctx context.Context,
	driver, uri string,
	dbMaxOpenConns, dbMaxIdleConns int,
	dbConnMaxLifetime time.Duration,
) (*sql.DB, error) {
	switch driver {
	case "sqlite", "sqlite3":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}

	var err error
	var conn *sql.DB
	conn, err = sql.Open("sqlite", uri)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	conn.SetMaxOpenConns(dbMaxOpenConns)
	conn.SetMaxIdleConns(dbMaxIdleConns)
	conn.SetConnMaxLifetime(dbConnMaxLifetime)

	return conn, nil
}

// Migrate runs database migrations. SetupGoose must have been called.
func Migrate(ctx context.Context, conn *sql.DB) error {
	if err := goose.UpContext(ctx, conn, "."); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	return nil
}
