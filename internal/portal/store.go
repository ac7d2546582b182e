// Package portal persists the citizen-facing catalogue and its usage data:
// government services, visitor engagement events, admin accounts and the
// AI search log.
package portal

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Querier is the subset of pgxpool.Pool the portal store uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides access to portal data in PostgreSQL.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// NewStore creates a portal store over an existing connection pool.
func NewStore(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
