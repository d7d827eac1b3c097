// Package schema declares the typed shape of every raw input and every
// output table, plus the error kinds raised when data does not fit them.
package schema

import (
	"fmt"
	"strings"

	"salesetl/internal/table"
)

// Raw date and datetime layouts (month/day/year, non-padded accepted).
const (
	DateLayout     = "1/2/2006"
	DatetimeLayout = "1/2/2006 15:04:05"
)

// Field is one typed column of a schema. Layout applies to Date/Datetime
// fields when parsing text.
type Field struct {
	Name   string
	Type   table.Type
	Layout string
}

// Schema is an ordered list of fields describing one table.
type Schema struct {
	Name   string
	Fields []Field
}

// Names returns the field names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// TableFields converts the schema to table fields.
func (s Schema) TableFields() []table.Field {
	out := make([]table.Field, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = table.Field{Name: f.Name, Type: f.Type}
	}
	return out
}

// Field returns the named field.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FromTable derives a schema from a table's columns.
func FromTable(name string, t *table.Table) Schema {
	fs := t.Fields()
	out := Schema{Name: name, Fields: make([]Field, len(fs))}
	for i, f := range fs {
		out.Fields[i] = Field{Name: f.Name, Type: f.Type}
	}
	return out
}

// Require checks that t has every named column. Missing columns produce a
// *SchemaError listing all of them.
func Require(t *table.Table, name string, cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Table: name, Missing: missing}
	}
	return nil
}

// Conform checks that t has exactly the fields of s, in order.
func Conform(t *table.Table, s Schema) error {
	got := t.Fields()
	want := s.TableFields()
	if len(got) != len(want) {
		return &SchemaError{Table: s.Name, Detail: fmt.Sprintf("columns [%s], want [%s]", fieldList(got), fieldList(want))}
	}
	for i := range want {
		if got[i] != want[i] {
			return &SchemaError{Table: s.Name, Detail: fmt.Sprintf("column %d is %s %s, want %s %s",
				i, got[i].Name, got[i].Type, want[i].Name, want[i].Type)}
		}
	}
	return nil
}

func fieldList(fs []table.Field) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.Name + " " + f.Type.String()
	}
	return strings.Join(parts, ", ")
}
