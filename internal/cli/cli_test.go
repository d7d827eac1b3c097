package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"salesetl/internal/storage/sqlite"
)

// execute runs the root command with args and captures its output. Commands
// share package-level flag state, so these tests do not run in parallel.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "salesetl ") {
		t.Fatalf("output = %q", out)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	t.Setenv("SALESETL_PUBLISH_KIND", "oracle")
	out, err := execute(t, "validate")
	if err == nil {
		t.Fatalf("expected invalid configuration, output:\n%s", out)
	}
	if !strings.Contains(out, "publish.kind") {
		t.Fatalf("output does not name the bad key:\n%s", out)
	}
}

/*
TestGenerateRunPublish generates a small dataset, runs the pipeline on it and
publishes every table into a SQLite file.
*/
func TestGenerateRunPublish(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw")
	out := filepath.Join(dir, "out")
	dsn := filepath.Join(dir, "warehouse.db")

	if _, err := execute(t, "generate", "--raw-dir", raw,
		"--customers", "60", "--employees", "5", "--stores", "2", "--products", "8",
		"--years", "2020,2021,2022", "--transactions", "120",
		"--bulk-buyers", "1", "--bulk-lines", "60"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := execute(t, "inspect",
		filepath.Join(raw, "customer.csv"), filepath.Join(raw, "sales", "2020.csv"))
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, got)
	}
	if !strings.Contains(got, "schema customer") || !strings.Contains(got, "schema sales") {
		t.Fatalf("inspect output:\n%s", got)
	}

	t.Setenv("SALESETL_PUBLISH_KIND", "sqlite")
	t.Setenv("SALESETL_PUBLISH_DSN", dsn)
	t.Setenv("SALESETL_PUBLISH_AUTO_CREATE_TABLE", "true")
	t.Setenv("SALESETL_PUBLISH_BATCH_SIZE", "100")

	got, err = execute(t, "run", "--raw-dir", raw, "--output-dir", out,
		"--threshold", "50", "--analysis-date", "2023-01-01")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, got)
	}
	if !strings.Contains(got, "non-retail customers: 1") {
		t.Fatalf("summary output:\n%s", got)
	}

	db, err := sqlite.Open(dsn)
	if err != nil {
		t.Fatalf("open warehouse: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "b2c_segment"`).Scan(&n); err != nil {
		t.Fatalf("count b2c_segment: %v", err)
	}
	if n == 0 {
		t.Fatalf("b2c_segment is empty")
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM "findings_non_retail"`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("findings_non_retail rows = %d, %v; want 1", n, err)
	}
}
