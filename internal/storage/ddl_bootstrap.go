package storage

import (
	"context"
	"fmt"
	"sync"

	"salesetl/internal/ddl"
	"salesetl/internal/table"
)

// TableSpec describes a destination table to prepare before loading.
type TableSpec struct {
	Name   string        // target table, optionally schema-qualified
	Fields []table.Field // column names and logical types, in order
	// Truncate removes existing rows after the table is ensured.
	Truncate bool
}

// DDLBootstrapper is a backend-specific function that creates the table for
// spec when it is missing, using the backend's type mapping, and applies it
// through repo.Exec.
type DDLBootstrapper func(ctx context.Context, repo Repository, spec TableSpec) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable locates the DDLBootstrapper for kind and invokes it.
func EnsureTable(ctx context.Context, kind string, repo Repository, spec TableSpec) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, spec)
}

// DialectBootstrapper returns a DDLBootstrapper that renders CREATE TABLE
// with d and clears the table with DELETE when spec.Truncate is set.
func DialectBootstrapper(d ddl.Dialect) DDLBootstrapper {
	return func(ctx context.Context, repo Repository, spec TableSpec) error {
		td, err := ddl.FromFields(spec.Name, spec.Fields, d)
		if err != nil {
			return fmt.Errorf("infer table definition: %w", err)
		}
		stmt, err := ddl.BuildCreateTableSQL(td, d)
		if err != nil {
			return fmt.Errorf("build DDL: %w", err)
		}
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply DDL: %w", err)
		}
		if spec.Truncate {
			if err := repo.Exec(ctx, "DELETE FROM "+ddl.QuoteFQN(spec.Name, d.Quote)); err != nil {
				return fmt.Errorf("truncate %s: %w", spec.Name, err)
			}
		}
		return nil
	}
}
