// Package builtin contains reusable table transformers.
//
// DeDup collapses duplicate rows by a key and chooses a winner by policy:
//
//   - "keep-first" : keep the earliest occurrence (default)
//   - "keep-last"  : keep the latest occurrence
//
// Output keeps the input order of the winners. With no Keys, whole rows are
// compared. Dropped rows are reported through OnDuplicate; they never fail
// the transform.
package builtin

import (
	"fmt"
	"strings"

	"salesetl/internal/schema"
	"salesetl/internal/table"
)

// DeDup implements a configurable de-duplication policy.
type DeDup struct {
	Table       string
	Keys        []string
	Policy      string
	OnDuplicate func(*schema.DuplicateKeyError)
}

func (d DeDup) Apply(in *table.Table) (*table.Table, error) {
	keys := d.Keys
	if len(keys) == 0 {
		keys = in.Names()
	}

	var (
		out *table.Table
		err error
	)
	switch policy := strings.ToLower(strings.TrimSpace(d.Policy)); policy {
	case "", "keep-first":
		out, err = in.UniqueBy(keys...)
	case "keep-last":
		out, err = keepLast(in, keys)
	default:
		return nil, fmt.Errorf("dedup: unknown policy %q", d.Policy)
	}
	if err != nil {
		return nil, fmt.Errorf("dedup: %w", err)
	}

	if dropped := in.NumRows() - out.NumRows(); dropped > 0 && d.OnDuplicate != nil {
		d.OnDuplicate(&schema.DuplicateKeyError{Table: d.Table, Keys: d.Keys, Dropped: dropped})
	}
	return out, nil
}

// keepLast reverses, keeps first, and reverses back.
func keepLast(in *table.Table, keys []string) (*table.Table, error) {
	n := in.NumRows()
	rev := make([]int, n)
	for i := range rev {
		rev[i] = n - 1 - i
	}
	u, err := in.Take(rev).UniqueBy(keys...)
	if err != nil {
		return nil, err
	}
	m := u.NumRows()
	back := make([]int, m)
	for i := range back {
		back[i] = m - 1 - i
	}
	return u.Take(back), nil
}
