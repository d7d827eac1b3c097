package pipeline

import (
	"fmt"
	"strings"
	"time"

	"salesetl/internal/schema"
	"salesetl/internal/table"
	"salesetl/internal/transformer"
	"salesetl/internal/transformer/builtin"
)

// SalesPath is where the cleaned sales lines are written.
const SalesPath = "data/sales.csv"

var salesRename = map[string]string{
	"transaction_id": "id",
	"quantity_sold":  "quantity",
	"unit_price":     "price",
	"promo_item_yn":  "is_promo",
}

// NormalizeSales concatenates the yearly raw extracts in the given order and
// cleans the result: the time of day is repaired and combined with the date,
// comma decimals and Y/N flags are parsed, rows with nulls in the required
// columns are dropped, and lines are stably sorted by time.
//
// Duplicates are whole raw rows: every column the extracts share takes part,
// so line items that differ only in an extra column (line_item_id) survive.
func NormalizeSales(raws []*table.Table, f *Findings) (*table.Table, error) {
	name := schema.RawSales.Name
	for i, raw := range raws {
		if err := schema.Require(raw, name, schema.RawSales.Names()...); err != nil {
			return nil, fmt.Errorf("extract %d: %w", i, err)
		}
	}
	shared := sharedColumns(raws)
	parts := make([]*table.Table, 0, len(raws))
	for _, raw := range raws {
		p, err := raw.Select(shared...)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		parts = append(parts, table.Empty(stringFields(schema.RawSales)))
	}
	all, err := table.Concat(parts...)
	if err != nil {
		return nil, err
	}

	chain := transformer.Chain{
		builtin.Normalize{},
		transformer.Func(deriveTime),
		builtin.Coerce{Table: name, Fields: schema.RawSales.Fields, DecimalComma: true},
		builtin.DropNulls{Columns: append(schema.RawSales.Names(), "time"), OnDrop: f.nulls(name)},
		builtin.DeDup{Table: name, OnDuplicate: f.duplicate},
		transformer.Func(func(t *table.Table) (*table.Table, error) {
			return t.Drop("transaction_date", "transaction_time"), nil
		}),
		builtin.Rename{Mapping: salesRename},
		builtin.Select{Fields: schema.Sales.Names()},
		builtin.Sort{Keys: []table.SortKey{table.Asc("time")}},
		builtin.Conform{Schema: schema.Sales},
	}
	return chain.Apply(all)
}

// RepairTime pads a time of day holding exactly one colon ("H:MM") with
// zero seconds. Anything else is returned unchanged.
func RepairTime(s string) string {
	if strings.Count(s, ":") == 1 {
		return s + ":00"
	}
	return s
}

// deriveTime adds the "time" column from transaction_date and the repaired
// transaction_time. A null part yields a null timestamp.
func deriveTime(t *table.Table) (*table.Table, error) {
	dates, _ := t.Column("transaction_date")
	times, _ := t.Column("transaction_time")
	vals := make([]any, t.NumRows())
	for i := range vals {
		ds, ok1 := dates.Values[i].(string)
		ts, ok2 := times.Values[i].(string)
		if !ok1 || !ok2 {
			continue
		}
		raw := ds + " " + RepairTime(ts)
		v, err := time.Parse(schema.DatetimeLayout, raw)
		if err != nil {
			return nil, &schema.ParseError{Table: schema.RawSales.Name, Column: "transaction_time", Row: i, Value: raw, Err: err}
		}
		vals[i] = v
	}
	return t.WithColumn(table.Column{Name: "time", Type: table.Datetime, Values: vals})
}

// sharedColumns lists the columns present in every extract, in the order of
// the first one.
func sharedColumns(raws []*table.Table) []string {
	if len(raws) == 0 {
		return schema.RawSales.Names()
	}
	var out []string
	for _, n := range raws[0].Names() {
		in := true
		for _, raw := range raws[1:] {
			if !raw.Has(n) {
				in = false
				break
			}
		}
		if in {
			out = append(out, n)
		}
	}
	return out
}

func stringFields(s schema.Schema) []table.Field {
	out := make([]table.Field, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = table.Field{Name: f.Name, Type: table.String}
	}
	return out
}
