package database

import (
	"context"
	"database/sql"
)

// Querier is all a repository needs.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

// DB is an open pool. SQLDB exposes a database/sql handle for the migration
// runner.
type DB interface {
	Querier
	Ping(ctx context.Context) error
	Close() error
	SQLDB() *sql.DB
}

type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type Row interface {
	Scan(dest ...any) error
}
