package pipeline

import (
	"salesetl/internal/bitmap"
	"salesetl/internal/schema"
	"salesetl/internal/table"
)

// NonRetailPath is where the non-retail customer list is written.
const NonRetailPath = "findings/non_retail.csv"

// Partitions is the split of the sales lines by customer class.
type Partitions struct {
	// NonRetail lists customers whose line count exceeds the threshold,
	// with that count, in first-encounter order.
	NonRetail *table.Table
	B2B       *table.Table
	B2C       *table.Table
}

// Classify counts sales lines per customer and routes every line of a
// customer with more than threshold lines to B2B, all others to B2C. Both
// partitions keep the input row order.
func Classify(sales *table.Table, threshold int) (*Partitions, error) {
	g, err := sales.GroupBy("customer_id")
	if err != nil {
		return nil, err
	}
	counts, err := g.Agg(table.Count())
	if err != nil {
		return nil, err
	}
	nonRetail := counts.Filter(func(r table.Row) bool {
		n, _ := r.Int("count")
		return n > int64(threshold)
	})
	if err := schema.Conform(nonRetail, schema.NonRetail); err != nil {
		return nil, err
	}

	var ids bitmap.Bitmap
	col, _ := nonRetail.Column("customer_id")
	for _, v := range col.Values {
		if id, ok := v.(int64); ok {
			ids.Add(id)
		}
	}
	isB2B := func(r table.Row) bool {
		id, ok := r.Int("customer_id")
		return ok && ids.Has(id)
	}
	return &Partitions{
		NonRetail: nonRetail,
		B2B:       sales.Filter(isB2B),
		B2C:       sales.Filter(func(r table.Row) bool { return !isB2B(r) }),
	}, nil
}
