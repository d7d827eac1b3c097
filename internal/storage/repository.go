// Package storage contains storage-agnostic contracts for publishing tables
// into a SQL warehouse. Backends register a Factory and a DDLBootstrapper for
// their kind at init time; importing salesetl/internal/storage/all enables
// every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config is the backend-agnostic repository configuration.
type Config struct {
	Kind    string   // postgres, mysql, mssql, sqlite
	DSN     string   // backend connection string
	Table   string   // target table, optionally schema-qualified
	Columns []string // ordered destination columns
}

// Repository is the minimal write surface the publisher needs.
type Repository interface {
	// CopyFrom bulk-inserts rows aligned to columns into the configured
	// table and reports how many rows were written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered kinds.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
