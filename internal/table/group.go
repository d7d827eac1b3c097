package table

import "fmt"

// AggOp selects an aggregation.
type AggOp int

const (
	OpSum AggOp = iota + 1
	OpCount
	OpMax
	OpMin
	OpFirst
)

// Aggregation describes one output column of Grouping.Agg.
type Aggregation struct {
	Op     AggOp
	Column string // ignored by OpCount
	Name   string // output name; defaults to Column (or "count")
}

// Sum adds up a numeric column, skipping nulls.
func Sum(col string) Aggregation { return Aggregation{Op: OpSum, Column: col} }

// Count counts rows per group.
func Count() Aggregation { return Aggregation{Op: OpCount} }

// Max takes the largest non-null value.
func Max(col string) Aggregation { return Aggregation{Op: OpMax, Column: col} }

// Min takes the smallest non-null value.
func Min(col string) Aggregation { return Aggregation{Op: OpMin, Column: col} }

// First takes the value of the first row of the group.
func First(col string) Aggregation { return Aggregation{Op: OpFirst, Column: col} }

// As renames the aggregation output.
func (a Aggregation) As(name string) Aggregation {
	a.Name = name
	return a
}

func (a Aggregation) outName() string {
	switch {
	case a.Name != "":
		return a.Name
	case a.Op == OpCount:
		return "count"
	default:
		return a.Column
	}
}

// Grouping is a table partitioned by key columns. Groups are kept in the
// order their keys are first encountered.
type Grouping struct {
	t      *Table
	keys   []string
	groups [][]int
	firsts []int
}

// GroupBy partitions t by the key columns.
func (t *Table) GroupBy(keys ...string) (*Grouping, error) {
	kc, err := t.lookup(keys)
	if err != nil {
		return nil, fmt.Errorf("group by: %w", err)
	}
	k := newKeyer(kc)
	set := newKeySet(t.rows)
	var groups [][]int
	for i := 0; i < t.rows; i++ {
		g, isNew := set.slot(k, i)
		if isNew {
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return &Grouping{t: t, keys: keys, groups: groups, firsts: set.order}, nil
}

// Len returns the number of groups.
func (g *Grouping) Len() int { return len(g.groups) }

// Agg returns one row per group: the key columns followed by the aggregates.
func (g *Grouping) Agg(aggs ...Aggregation) (*Table, error) {
	keys, err := g.t.Select(g.keys...)
	if err != nil {
		return nil, err
	}
	out := keys.Take(g.firsts).Columns()
	for _, a := range aggs {
		c, err := g.aggregate(a)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return New(out...)
}

func (g *Grouping) aggregate(a Aggregation) (Column, error) {
	vals := make([]any, len(g.groups))
	if a.Op == OpCount {
		for n, rows := range g.groups {
			vals[n] = int64(len(rows))
		}
		return Column{Name: a.outName(), Type: Int, Values: vals}, nil
	}

	src, ok := g.t.Column(a.Column)
	if !ok {
		return Column{}, fmt.Errorf("agg: %w: %q", ErrNoColumn, a.Column)
	}
	switch a.Op {
	case OpSum:
		if src.Type != Int && src.Type != Float {
			return Column{}, fmt.Errorf("agg: cannot sum %s column %q", src.Type, src.Name)
		}
		for n, rows := range g.groups {
			vals[n] = sum(src, rows)
		}
	case OpMax, OpMin:
		want := 1
		if a.Op == OpMin {
			want = -1
		}
		for n, rows := range g.groups {
			var best any
			for _, i := range rows {
				v := src.Values[i]
				if v == nil {
					continue
				}
				if best == nil || compareValues(v, best) == want {
					best = v
				}
			}
			vals[n] = best
		}
	case OpFirst:
		for n, rows := range g.groups {
			vals[n] = src.Values[rows[0]]
		}
	default:
		return Column{}, fmt.Errorf("agg: unknown op %d", a.Op)
	}
	return Column{Name: a.outName(), Type: src.Type, Values: vals}, nil
}

func sum(c Column, rows []int) any {
	if c.Type == Int {
		var s int64
		for _, i := range rows {
			if v, ok := c.Values[i].(int64); ok {
				s += v
			}
		}
		return s
	}
	var s float64
	for _, i := range rows {
		if v, ok := c.Values[i].(float64); ok {
			s += v
		}
	}
	return s
}
