// Package transformer composes table-to-table transforms.
package transformer

import (
	"fmt"

	"salesetl/internal/table"
)

// Transformer maps one table to a new table. Implementations must not
// modify their input.
type Transformer interface {
	Apply(*table.Table) (*table.Table, error)
}

// Func adapts a plain function to Transformer.
type Func func(*table.Table) (*table.Table, error)

func (f Func) Apply(t *table.Table) (*table.Table, error) { return f(t) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each transformer on the output of the previous one and stops
// at the first error.
func (c Chain) Apply(in *table.Table) (*table.Table, error) {
	out := in
	for i, t := range c {
		var err error
		if out, err = t.Apply(out); err != nil {
			return nil, fmt.Errorf("step %d (%T): %w", i, t, err)
		}
	}
	return out, nil
}
