package mssql

import (
	"context"
	"fmt"
	"strings"

	"salesetl/internal/ddl"
	"salesetl/internal/storage"
	"salesetl/internal/table"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// Dialect renders SQL Server DDL. SQL Server has no CREATE TABLE IF NOT
// EXISTS, so creation is guarded with OBJECT_ID.
var Dialect = ddl.Dialect{Quote: msIdent, MapType: MapType, Guard: guard}

// MapType maps a logical column type to a SQL Server column type.
func MapType(t table.Type) string {
	switch t {
	case table.Int:
		return "BIGINT"
	case table.Float:
		return "FLOAT"
	case table.String:
		return "NVARCHAR(4000)"
	case table.Bool:
		return "BIT"
	case table.Date:
		return "DATE"
	case table.Datetime:
		return "DATETIME2"
	default:
		return ""
	}
}

func guard(fqn, create string) string {
	name := strings.ReplaceAll(ddl.QuoteFQN(fqn, msIdent), "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL %s", name, create)
}

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("mssql", storage.DialectBootstrapper(Dialect))
}
