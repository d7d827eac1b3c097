// Package ddl is a small, backend-agnostic model for CREATE TABLE statements.
//
// Backends supply a Dialect (identifier quoting, type mapping and the
// create-if-missing guard); this package renders the statement from the
// fields of a table so that every published table gets a deterministic
// definition.
package ddl

import (
	"fmt"
	"strings"

	"salesetl/internal/table"
)

// ColumnDef describes a single column. Name is unquoted; quoting happens at
// render time.
type ColumnDef struct {
	Name    string
	SQLType string
}

// TableDef holds the table name in dotted form ("schema.table") and its
// ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Dialect adapts rendering to one SQL backend.
type Dialect struct {
	// Quote quotes a single identifier segment.
	Quote func(string) string
	// MapType maps a logical column type to a column type.
	MapType func(table.Type) string
	// Guard wraps a plain CREATE TABLE so that it is a no-op when the table
	// exists. Nil means "CREATE TABLE IF NOT EXISTS" is spelled directly.
	Guard func(fqn, create string) string
}

// FromFields builds a TableDef for fqn from the fields of a table.
func FromFields(fqn string, fields []table.Field, d Dialect) (TableDef, error) {
	if d.MapType == nil {
		return TableDef{}, fmt.Errorf("ddl: dialect has no type mapping")
	}
	td := TableDef{FQN: fqn, Columns: make([]ColumnDef, 0, len(fields))}
	for _, f := range fields {
		typ := d.MapType(f.Type)
		if typ == "" {
			return TableDef{}, fmt.Errorf("ddl: column %s: no SQL type for %s", f.Name, f.Type)
		}
		td.Columns = append(td.Columns, ColumnDef{Name: f.Name, SQLType: typ})
	}
	return td, nil
}

// BuildCreateTableSQL renders a CREATE TABLE statement:
//
//	CREATE TABLE IF NOT EXISTS "schema"."table" (
//	  "col1" TYPE,
//	  "col2" TYPE
//	);
//
// t.FQN and every column name and type must be non-empty.
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}
	if d.Quote == nil {
		return "", fmt.Errorf("ddl: dialect has no identifier quoting")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}
		cols = append(cols, d.Quote(name)+" "+typ)
	}

	body := fmt.Sprintf("%s (\n  %s\n)", QuoteFQN(fqn, d.Quote), strings.Join(cols, ",\n  "))
	if d.Guard != nil {
		return d.Guard(fqn, "CREATE TABLE "+body) + ";", nil
	}
	return "CREATE TABLE IF NOT EXISTS " + body + ";", nil
}

// QuoteFQN quotes each dotted segment of name with quote. Empty segments are
// ignored.
func QuoteFQN(name string, quote func(string) string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// DoubleQuote quotes an identifier with double quotes, doubling embedded
// quotes. Postgres and SQLite use it.
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
