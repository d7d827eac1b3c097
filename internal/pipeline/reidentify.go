package pipeline

import (
	"sort"

	"salesetl/internal/schema"
	"salesetl/internal/table"
)

// orderKey identifies an order. Lines sharing it form one order even when
// their raw transaction ids differ.
var orderKey = []string{"time", "store_id", "staff_id", "customer_id"}

// Reidentify replaces the raw transaction id of a sales partition with a
// synthetic order id. Distinct order keys are numbered 1..N in row order
// (time order, established upstream), every line is joined back to its
// order, and the columns are put in alphabetical order with the order id
// first.
func Reidentify(lines *table.Table) (*table.Table, error) {
	keys, err := lines.Select(orderKey...)
	if err != nil {
		return nil, err
	}
	orders := keys.Unique()
	ids := make([]any, orders.NumRows())
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	orders, err = orders.WithColumn(table.Column{Name: "_id", Type: table.Int, Values: ids})
	if err != nil {
		return nil, err
	}

	joined, err := table.InnerJoin(orders, lines, orderKey...)
	if err != nil {
		return nil, err
	}
	joined = joined.Drop("id")

	names := joined.Names()
	sort.Strings(names)
	if joined, err = joined.Select(names...); err != nil {
		return nil, err
	}
	if joined, err = joined.Rename(map[string]string{"_id": "id"}); err != nil {
		return nil, err
	}
	if err := schema.Conform(joined, schema.OrderLines); err != nil {
		return nil, err
	}
	return joined, nil
}
