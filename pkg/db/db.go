// Package db is the Postgres collaborator for the scheduler: connection
// pooling, schema bootstrap, and typed accessors for every table the
// scheduler and admin CLI touch.
package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairgate/scheduler/pkg/logging"
)

// Database wraps a pooled Postgres connection.
type Database struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

var (
	once sync.Once
	inst *Database
)

// Open parses dsn, configures pool limits, and verifies connectivity before
// returning. The returned Database owns the pool; callers must call Close.
func Open(ctx context.Context, dsn string, log logging.Logger) (*Database, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Database{pool: pool, log: log}, nil
}

// Init opens the process-wide Database singleton. Subsequent calls are
// no-ops; use Get to retrieve the instance from any collaborator that does
// not have it threaded through explicitly (cmd/gatewayd uses it at startup).
func Init(ctx context.Context, dsn string, log logging.Logger) error {
	var err error
	once.Do(func() {
		inst, err = Open(ctx, dsn, log)
	})
	return err
}

// Get returns the process-wide Database singleton. It panics if Init has
// not been called; this mirrors the fail-fast startup-ordering contract
// used for similar singletons elsewhere in this stack.
func Get() *Database {
	if inst == nil {
		panic("db: Get called before Init")
	}
	return inst
}

// Close releases the underlying connection pool.
func (d *Database) Close() {
	d.pool.Close()
}

// Bootstrap creates every table this repository depends on if it does not
// already exist. It is safe to call on every process start.
func (d *Database) Bootstrap(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := d.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

func scanOne[T any](ctx context.Context, pool *pgxpool.Pool, query string, args ...any) (T, error) {
	var zero T
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()
	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, err
	}
	return v, nil
}

func scanMany[T any](ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]T, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}
