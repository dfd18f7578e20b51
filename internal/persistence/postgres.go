// Package persistence provides the typed Postgres store adapter used by
// every service. All operations run in short transactions with the
// session timezone pinned to UTC.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"newsengine/internal/logger"
)

// DB wraps the shared connection pool and exposes the typed repositories.
type DB struct {
	db         *sql.DB
	Feeds      *FeedRepo
	Articles   *ArticleRepo
	Events     *EventRepo
	Claims     *ClaimRepo
	Reputation *ReputationRepo
	System     *SystemRepo
}

// connectAttempts and backoff schedule for the initial connection:
// 1-2-4-8-16 seconds.
const connectAttempts = 5

// Open connects to Postgres, retrying with exponential backoff, and
// verifies the connection with a ping.
func Open(ctx context.Context, connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	backoff := time.Second
	var pingErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pingErr = db.PingContext(pingCtx)
		cancel()
		if pingErr == nil {
			break
		}
		if attempt < connectAttempts {
			logger.Warn("database ping failed, retrying",
				"attempt", attempt, "backoff", backoff.String())
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				_ = db.Close()
				return nil, fmt.Errorf("failed to connect to database: %w", ctx.Err())
			}
			backoff *= 2
		}
	}
	if pingErr != nil {
		_ = db.Close()
		return nil, mapError("connect", pingErr)
	}

	store := &DB{db: db}
	store.Feeds = &FeedRepo{db: store}
	store.Articles = &ArticleRepo{db: store}
	store.Events = &EventRepo{db: store}
	store.Claims = &ClaimRepo{db: store}
	store.Reputation = &ReputationRepo{db: store}
	store.System = &SystemRepo{db: store}
	return store, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return mapError("ping", d.db.PingContext(ctx))
}

// withTx runs fn inside one short transaction with the session timezone
// set to UTC, committing on success and rolling back on error.
func (d *DB) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(op, err)
	}
	if _, err := tx.ExecContext(ctx, "SET timezone = 'UTC'"); err != nil {
		_ = tx.Rollback()
		return mapError(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return mapError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return mapError(op, err)
	}
	return nil
}

// HasTable reports whether a table exists, for the startup health check.
func (d *DB) HasTable(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
		name).Scan(&exists)
	if err != nil {
		return false, mapError("has-table", err)
	}
	return exists, nil
}
