package sqlite

import (
	"context"

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

// Dialect renders SQLite DDL. Dates and datetimes are stored as TEXT and
// booleans as INTEGER 0/1.
var Dialect = ddl.Dialect{Quote: ddl.DoubleQuote, MapType: MapType}

// MapType maps a logical column type to a SQLite type affinity.
func MapType(t table.Type) string {
	switch t {
	case table.Int, table.Bool:
		return "INTEGER"
	case table.Float:
		return "REAL"
	case table.String, table.Date, table.Datetime:
		return "TEXT"
	default:
		return ""
	}
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
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
	storage.RegisterDDL("sqlite", storage.DialectBootstrapper(Dialect))
}
