// Package store defines the aggregate persistence interface for verdict.
// The decision log is the only persisted entity; backends are Postgres,
// SQLite, MongoDB, and Memory.
package store

import (
	"context"

	"github.com/xraph/verdict/decisionlog"
)

// Store is the aggregate persistence interface. A single backend
// implements it.
type Store interface {
	decisionlog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
