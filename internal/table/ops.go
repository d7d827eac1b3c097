package table

import (
	"fmt"
	"sort"
)

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols, err := t.lookup(names)
	if err != nil {
		return nil, err
	}
	return New(cols...)
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	cols := make([]Column, 0, len(t.cols))
	for _, c := range t.cols {
		if _, ok := skip[c.Name]; !ok {
			cols = append(cols, c)
		}
	}
	out, err := New(cols...)
	if err != nil {
		panic(err) // a subset of a valid table is always valid
	}
	return out
}

// Rename returns a table with columns renamed per mapping (old -> new).
// Every old name must exist.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	for old := range mapping {
		if !t.Has(old) {
			return nil, fmt.Errorf("rename: %w: %q", ErrNoColumn, old)
		}
	}
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		if n, ok := mapping[c.Name]; ok {
			c.Name = n
		}
		cols[i] = c
	}
	return New(cols...)
}

// WithColumn returns a table with c added. An existing column with the same
// name is replaced in place.
func (t *Table) WithColumn(c Column) (*Table, error) {
	if c.Len() != t.rows && len(t.cols) > 0 {
		return nil, fmt.Errorf("table: column %q has %d values, want %d", c.Name, c.Len(), t.rows)
	}
	cols := t.Columns()
	if i, ok := t.index[c.Name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// Derive computes a new column from each row and adds it via WithColumn.
func (t *Table) Derive(name string, typ Type, fn func(Row) (any, error)) (*Table, error) {
	vals := make([]any, t.rows)
	for i := 0; i < t.rows; i++ {
		v, err := fn(Row{t: t, i: i})
		if err != nil {
			return nil, fmt.Errorf("derive %s: row %d: %w", name, i, err)
		}
		vals[i] = v
	}
	return t.WithColumn(Column{Name: name, Type: typ, Values: vals})
}

// Take returns the rows at the given positions, in that order.
func (t *Table) Take(idx []int) *Table {
	cols := make([]Column, len(t.cols))
	for j, c := range t.cols {
		vals := make([]any, len(idx))
		for k, i := range idx {
			vals[k] = c.Values[i]
		}
		cols[j] = Column{Name: c.Name, Type: c.Type, Values: vals}
	}
	out, err := New(cols...)
	if err != nil {
		panic(err)
	}
	out.rows = len(idx)
	return out
}

// Filter keeps the rows for which keep returns true, preserving order.
func (t *Table) Filter(keep func(Row) bool) *Table {
	idx := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if keep(Row{t: t, i: i}) {
			idx = append(idx, i)
		}
	}
	return t.Take(idx)
}

// DropNulls removes every row that has a null in any column.
func (t *Table) DropNulls() *Table {
	return t.Filter(func(r Row) bool {
		for _, c := range t.cols {
			if c.Values[r.i] == nil {
				return false
			}
		}
		return true
	})
}

// NullCount returns the number of rows that contain at least one null.
func (t *Table) NullCount() int {
	return t.rows - t.DropNulls().NumRows()
}

// Unique removes duplicate rows, keeping the first occurrence.
func (t *Table) Unique() *Table {
	out, _ := t.UniqueBy(t.Names()...)
	return out
}

// UniqueBy removes rows whose key columns repeat an earlier row, keeping the
// first occurrence.
func (t *Table) UniqueBy(keys ...string) (*Table, error) {
	kc, err := t.lookup(keys)
	if err != nil {
		return nil, err
	}
	k := newKeyer(kc)
	seen := newKeySet(t.rows)
	idx := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if seen.add(k, i) {
			idx = append(idx, i)
		}
	}
	return t.Take(idx), nil
}

// SortKey orders by one column.
type SortKey struct {
	Name string
	Desc bool
}

// Asc and Desc build sort keys.
func Asc(name string) SortKey  { return SortKey{Name: name} }
func Desc(name string) SortKey { return SortKey{Name: name, Desc: true} }

// SortBy returns the rows stably sorted by keys. Nulls sort first.
func (t *Table) SortBy(keys ...SortKey) (*Table, error) {
	cols := make([]Column, len(keys))
	for i, k := range keys {
		c, ok := t.Column(k.Name)
		if !ok {
			return nil, fmt.Errorf("sort: %w: %q", ErrNoColumn, k.Name)
		}
		cols[i] = c
	}
	idx := make([]int, t.rows)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for j, c := range cols {
			cmp := compareValues(c.Values[idx[a]], c.Values[idx[b]])
			if cmp == 0 {
				continue
			}
			if keys[j].Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return t.Take(idx), nil
}

// Concat stacks tables with identical fields.
func Concat(ts ...*Table) (*Table, error) {
	if len(ts) == 0 {
		return New()
	}
	first := ts[0].Fields()
	total := 0
	for n, t := range ts {
		f := t.Fields()
		if len(f) != len(first) {
			return nil, fmt.Errorf("concat: table %d has %d columns, want %d", n, len(f), len(first))
		}
		for i := range f {
			if f[i] != first[i] {
				return nil, fmt.Errorf("concat: table %d column %d is %s %s, want %s %s",
					n, i, f[i].Name, f[i].Type, first[i].Name, first[i].Type)
			}
		}
		total += t.rows
	}
	cols := make([]Column, len(first))
	for j, f := range first {
		vals := make([]any, 0, total)
		for _, t := range ts {
			vals = append(vals, t.cols[j].Values...)
		}
		cols[j] = Column{Name: f.Name, Type: f.Type, Values: vals}
	}
	return New(cols...)
}
