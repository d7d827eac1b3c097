package pipeline

import (
	"time"

	"salesetl/internal/schema"
	"salesetl/internal/table"
)

// RFM scores every customer of the per-order roll-up as of asOf:
//
//   - recency: whole days from the customer's latest order to asOf,
//     truncated toward zero
//   - frequency: number of orders
//   - monetary: rounded sum of order totals
//
// Rows are sorted by frequency descending; ties keep first-encounter order.
func RFM(byOrder *table.Table, asOf time.Time) (*table.Table, error) {
	g, err := byOrder.GroupBy("customer_id")
	if err != nil {
		return nil, err
	}
	agg, err := g.Agg(
		table.Max("time").As("last"),
		table.Count().As("frequency"),
		table.Sum("total").As("monetary"),
	)
	if err != nil {
		return nil, err
	}
	agg, err = agg.Derive("recency", table.Int, func(r table.Row) (any, error) {
		last, ok := r.Get("last").(time.Time)
		if !ok {
			return nil, nil
		}
		return int64(asOf.Sub(last) / (24 * time.Hour)), nil
	})
	if err != nil {
		return nil, err
	}
	return finish(agg, schema.RFM, "monetary", table.Desc("frequency"))
}
