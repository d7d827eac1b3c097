package builtin

import (
	"fmt"

	"salesetl/internal/schema"
	"salesetl/internal/table"
)

// Require fails with *schema.SchemaError unless every field is present.
type Require struct {
	Table  string
	Fields []string
}

func (r Require) Apply(in *table.Table) (*table.Table, error) {
	if err := schema.Require(in, r.Table, r.Fields...); err != nil {
		return nil, err
	}
	return in, nil
}

// DropNulls removes every row with a null in any of Columns, or in any
// column when Columns is empty. OnDrop, when set, receives the number of rows
// removed.
type DropNulls struct {
	Columns []string
	OnDrop  func(n int)
}

func (d DropNulls) Apply(in *table.Table) (*table.Table, error) {
	var out *table.Table
	if len(d.Columns) == 0 {
		out = in.DropNulls()
	} else {
		if err := schema.Require(in, "", d.Columns...); err != nil {
			return nil, err
		}
		out = in.Filter(func(r table.Row) bool {
			for _, c := range d.Columns {
				if r.Get(c) == nil {
					return false
				}
			}
			return true
		})
	}
	if n := in.NumRows() - out.NumRows(); n > 0 && d.OnDrop != nil {
		d.OnDrop(n)
	}
	return out, nil
}

// Select projects to Fields in order.
type Select struct{ Fields []string }

func (s Select) Apply(in *table.Table) (*table.Table, error) {
	out, err := in.Select(s.Fields...)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return out, nil
}

// Rename renames columns old -> new.
type Rename struct{ Mapping map[string]string }

func (r Rename) Apply(in *table.Table) (*table.Table, error) { return in.Rename(r.Mapping) }

// Sort stably sorts by Keys.
type Sort struct{ Keys []table.SortKey }

func (s Sort) Apply(in *table.Table) (*table.Table, error) { return in.SortBy(s.Keys...) }

// Conform checks the table against Schema without changing it.
type Conform struct{ Schema schema.Schema }

func (c Conform) Apply(in *table.Table) (*table.Table, error) {
	if err := schema.Conform(in, c.Schema); err != nil {
		return nil, err
	}
	return in, nil
}
