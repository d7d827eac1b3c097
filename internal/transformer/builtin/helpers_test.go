package builtin

import (
	"testing"

	"salesetl/internal/table"
)

func mustTable(t *testing.T, cols ...table.Column) *table.Table {
	t.Helper()
	tb, err := table.New(cols...)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tb
}

func strCol(name string, vals ...any) table.Column {
	return table.Column{Name: name, Type: table.String, Values: vals}
}
