// Package table implements the immutable, in-memory columnar table that the
// pipeline stages pass between each other.
//
// A Table is an ordered list of named, typed columns sharing one row count.
// Values are stored as any and are always one of:
//
//	Int      -> int64
//	Float    -> float64
//	String   -> string
//	Bool     -> bool
//	Date     -> time.Time (midnight UTC)
//	Datetime -> time.Time (UTC, second precision)
//
// nil is the null value for every type. Every operation returns a new Table;
// column value slices may be shared between tables and are never written to
// after construction.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// Type is the logical type of a column.
type Type int

const (
	Invalid Type = iota
	Int
	Float
	String
	Bool
	Date
	Datetime
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Date:
		return "date"
	case Datetime:
		return "datetime"
	default:
		return "invalid"
	}
}

// ParseType maps a config-style type name back to a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer", "int64":
		return Int, nil
	case "float", "float64", "real", "decimal":
		return Float, nil
	case "string", "text", "":
		return String, nil
	case "bool", "boolean":
		return Bool, nil
	case "date":
		return Date, nil
	case "datetime", "timestamp":
		return Datetime, nil
	}
	return Invalid, fmt.Errorf("unknown column type %q", s)
}

// ErrNoColumn is returned (wrapped) when an operation references a column
// that the table does not have.
var ErrNoColumn = errors.New("no such column")

// Field names a column and its type.
type Field struct {
	Name string
	Type Type
}

// Column is a named, typed vector of values.
type Column struct {
	Name   string
	Type   Type
	Values []any
}

// Len returns the number of values in the column.
func (c Column) Len() int { return len(c.Values) }

// Field returns the column's name and type.
func (c Column) Field() Field { return Field{Name: c.Name, Type: c.Type} }

// Table is an immutable ordered set of equally long columns.
type Table struct {
	cols  []Column
	index map[string]int
	rows  int
}

// New builds a table from columns. All columns must have the same length and
// distinct names.
func New(cols ...Column) (*Table, error) {
	t := &Table{
		cols:  make([]Column, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("table: column %d has empty name", i)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("table: column %q has %d values, want %d", c.Name, c.Len(), t.rows)
		}
		t.cols[i] = c
		t.index[c.Name] = i
	}
	return t, nil
}

// Empty returns a table with the given fields and zero rows.
func Empty(fields []Field) *Table {
	cols := make([]Column, len(fields))
	for i, f := range fields {
		cols[i] = Column{Name: f.Name, Type: f.Type, Values: []any{}}
	}
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the shared row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Fields returns the column names and types in order.
func (t *Table) Fields() []Field {
	out := make([]Field, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Field()
	}
	return out
}

// Has reports whether the table has a column named name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// Columns returns the columns in order. The returned value slices must not be
// modified.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Row returns a copy of row i as a slice aligned with Names.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.cols))
	for j, c := range t.cols {
		out[j] = c.Values[i]
	}
	return out
}

// Value returns the value at row i of the named column.
func (t *Table) Value(i int, name string) (any, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	return c.Values[i], nil
}

func (t *Table) lookup(names []string) ([]Column, error) {
	out := make([]Column, len(names))
	for i, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, n)
		}
		out[i] = c
	}
	return out, nil
}

// Row is a read-only view of a single row used by Filter and Derive callbacks.
type Row struct {
	t *Table
	i int
}

// Index returns the row position within its table.
func (r Row) Index() int { return r.i }

// Get returns the value of the named column, or nil if the column is absent.
func (r Row) Get(name string) any {
	c, ok := r.t.Column(name)
	if !ok {
		return nil
	}
	return c.Values[r.i]
}

// Int returns the named value as int64; ok is false for nulls and other types.
func (r Row) Int(name string) (int64, bool) {
	v, ok := r.Get(name).(int64)
	return v, ok
}

// Float returns the named value as float64, widening ints.
func (r Row) Float(name string) (float64, bool) {
	switch v := r.Get(name).(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// String returns the named value as a string.
func (r Row) String(name string) (string, bool) {
	v, ok := r.Get(name).(string)
	return v, ok
}
