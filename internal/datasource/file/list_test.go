package file

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestListCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"2022.csv", "2020.csv", "notes.txt", ".2021.csv.tmp", "2021.CSV"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "old.csv"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	got, err := ListCSV(dir)
	if err != nil {
		t.Fatalf("ListCSV: %v", err)
	}
	want := []string{
		filepath.Join(dir, "2020.csv"),
		filepath.Join(dir, "2021.CSV"),
		filepath.Join(dir, "2022.csv"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ListCSV = %#v, want %#v", got, want)
	}
}

func TestListCSV_DirNotFound(t *testing.T) {
	t.Parallel()

	if _, err := ListCSV(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing dir, got nil")
	}
}
