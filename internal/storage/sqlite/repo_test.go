package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"salesetl/internal/config"
	"salesetl/internal/storage"
	"salesetl/internal/table"
)

/*
Package-level test helpers
*/

// newMemRepo wraps an in-memory database the way the registered factory
// does, so tests exercise the storage.Repository the publisher receives.
func newMemRepo(tb testing.TB, name string) (storage.Repository, *sql.DB) {
	tb.Helper()
	db, err := Open(":memory:")
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })
	return &wrappedRepo{Repository: New(db, Config{Table: name}), closeFn: func() { _ = db.Close() }}, db
}

func countRows(tb testing.TB, db *sql.DB, name string) int {
	tb.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "` + name + `"`).Scan(&n); err != nil {
		tb.Fatalf("count %s: %v", name, err)
	}
	return n
}

func orderTable(tb testing.TB) *table.Table {
	tb.Helper()
	at := time.Date(2022, 4, 20, 10, 30, 0, 0, time.UTC)
	t, err := table.New(
		table.Column{Name: "id", Type: table.Int, Values: []any{int64(1), int64(2)}},
		table.Column{Name: "customer_id", Type: table.Int, Values: []any{int64(7), nil}},
		table.Column{Name: "time", Type: table.Datetime, Values: []any{at, at.Add(time.Hour)}},
		table.Column{Name: "total", Type: table.Float, Values: []any{3.65, 5.0}},
		table.Column{Name: "promo_item", Type: table.Bool, Values: []any{true, false}},
	)
	if err != nil {
		tb.Fatalf("table.New: %v", err)
	}
	return t
}

/*
Unit tests
*/

func TestEnsureTableAndCopyFrom(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, db := newMemRepo(t, "b2c_total_by_order")
	tb := orderTable(t)

	spec := storage.TableSpec{Name: "b2c_total_by_order", Fields: tb.Fields()}
	if err := storage.EnsureTable(ctx, "sqlite", repo, spec); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	// Creating again is a no-op.
	if err := storage.EnsureTable(ctx, "sqlite", repo, spec); err != nil {
		t.Fatalf("EnsureTable twice: %v", err)
	}

	rows := [][]any{tb.Row(0), tb.Row(1)}
	n, err := repo.CopyFrom(ctx, tb.Names(), rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 || countRows(t, db, "b2c_total_by_order") != 2 {
		t.Fatalf("inserted %d, want 2", n)
	}

	var total float64
	var customer sql.NullInt64
	if err := db.QueryRow(`SELECT total, customer_id FROM "b2c_total_by_order" WHERE id = 2`).Scan(&total, &customer); err != nil {
		t.Fatalf("select: %v", err)
	}
	if total != 5.0 || customer.Valid {
		t.Fatalf("row 2 = (%v, %v), want (5, NULL)", total, customer)
	}

	spec.Truncate = true
	if err := storage.EnsureTable(ctx, "sqlite", repo, spec); err != nil {
		t.Fatalf("EnsureTable truncate: %v", err)
	}
	if got := countRows(t, db, "b2c_total_by_order"); got != 0 {
		t.Fatalf("rows after truncate = %d, want 0", got)
	}
}

func TestRepositoryCloseReleasesDB(t *testing.T) {
	t.Parallel()

	repo, db := newMemRepo(t, "closed")
	if err := db.Ping(); err != nil {
		t.Fatalf("ping before Close: %v", err)
	}
	repo.Close()
	if err := db.Ping(); err == nil {
		t.Fatal("ping after Close succeeded; want closed database")
	}
}

func TestCopyFromRejectsRaggedRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo, db := newMemRepo(t, "ragged")
	if err := repo.Exec(ctx, `CREATE TABLE "ragged" ("a" INTEGER, "b" TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.CopyFrom(ctx, []string{"a", "b"}, [][]any{{int64(1), "x"}, {int64(2)}})
	if err == nil || !strings.Contains(err.Error(), "row length") {
		t.Fatalf("err = %v, want row length error", err)
	}
	if got := countRows(t, db, "ragged"); got != 0 {
		t.Fatalf("rows = %d, want rollback to 0", got)
	}
	if _, err := repo.CopyFrom(ctx, nil, nil); err == nil {
		t.Fatalf("expected error for empty columns")
	}
}

/*
The publisher drives the registered backend end to end against a file
database, since every Publish opens its own connection.
*/
func TestPublisherIntoSQLiteFile(t *testing.T) {
	t.Parallel()

	dsn := filepath.Join(t.TempDir(), "warehouse.db")
	p := storage.NewPublisher("test", config.Publish{
		Kind:            "sqlite",
		DSN:             dsn,
		TablePrefix:     "salesetl_",
		AutoCreateTable: true,
		Truncate:        true,
		BatchSize:       1,
	})
	ctx := context.Background()
	tb := orderTable(t)
	for i := 0; i < 2; i++ {
		if err := p.Publish(ctx, "b2c_total_by_order", tb); err != nil {
			t.Fatalf("Publish #%d: %v", i, err)
		}
	}

	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if got := countRows(t, db, "salesetl_b2c_total_by_order"); got != 2 {
		t.Fatalf("rows = %d, want 2 after republishing with truncate", got)
	}
}

func TestMapType(t *testing.T) {
	t.Parallel()

	cases := map[table.Type]string{
		table.Int:      "INTEGER",
		table.Bool:     "INTEGER",
		table.Float:    "REAL",
		table.String:   "TEXT",
		table.Date:     "TEXT",
		table.Datetime: "TEXT",
		table.Invalid:  "",
	}
	for in, want := range cases {
		if got := MapType(in); got != want {
			t.Errorf("MapType(%s) = %q, want %q", in, got, want)
		}
	}
}
