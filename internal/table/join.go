package table

import "fmt"

// InnerJoin matches rows of left and right on equal, non-null values of the
// on columns. Output order follows left; for each left row its matches are
// emitted in right order. The output carries every left column followed by
// the right columns that are not join keys; right names that clash with a
// left name get a "_right" suffix.
func InnerJoin(left, right *Table, on ...string) (*Table, error) {
	return join(left, right, on, false)
}

// LeftJoin is InnerJoin that also keeps unmatched left rows, with nulls in
// the right-hand columns.
func LeftJoin(left, right *Table, on ...string) (*Table, error) {
	return join(left, right, on, true)
}

func join(left, right *Table, on []string, keepUnmatched bool) (*Table, error) {
	lk, err := left.lookup(on)
	if err != nil {
		return nil, fmt.Errorf("join left: %w", err)
	}
	rk, err := right.lookup(on)
	if err != nil {
		return nil, fmt.Errorf("join right: %w", err)
	}
	for i := range on {
		if lk[i].Type != rk[i].Type {
			return nil, fmt.Errorf("join: key %q is %s on the left and %s on the right", on[i], lk[i].Type, rk[i].Type)
		}
	}

	lkey, rkey := newKeyer(lk), newKeyer(rk)
	buckets := make(map[uint64][]int, right.rows)
	for j := 0; j < right.rows; j++ {
		if hasNull(rk, j) {
			continue
		}
		h := rkey.hash(j)
		buckets[h] = append(buckets[h], j)
	}

	var li, ri []int
	for i := 0; i < left.rows; i++ {
		matched := false
		if !hasNull(lk, i) {
			for _, j := range buckets[lkey.hash(i)] {
				if lkey.equal(i, rkey, j) {
					li = append(li, i)
					ri = append(ri, j)
					matched = true
				}
			}
		}
		if !matched && keepUnmatched {
			li = append(li, i)
			ri = append(ri, -1)
		}
	}

	keySet := make(map[string]struct{}, len(on))
	for _, k := range on {
		keySet[k] = struct{}{}
	}
	lt := left.Take(li)
	cols := lt.Columns()
	for _, c := range right.cols {
		if _, isKey := keySet[c.Name]; isKey {
			continue
		}
		vals := make([]any, len(ri))
		for n, j := range ri {
			if j >= 0 {
				vals[n] = c.Values[j]
			}
		}
		name := c.Name
		if left.Has(name) {
			name += "_right"
		}
		cols = append(cols, Column{Name: name, Type: c.Type, Values: vals})
	}
	return New(cols...)
}

func hasNull(cols []Column, i int) bool {
	for _, c := range cols {
		if c.Values[i] == nil {
			return true
		}
	}
	return false
}
