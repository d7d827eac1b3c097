package pipeline

import (
	"testing"
	"time"

	"salesetl/internal/table"
)

func mustTable(t *testing.T, cols ...table.Column) *table.Table {
	t.Helper()
	tb, err := table.New(cols...)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tb
}

func text(name string, vals ...any) table.Column {
	return table.Column{Name: name, Type: table.String, Values: vals}
}

func ints(name string, vals ...int64) table.Column {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return table.Column{Name: name, Type: table.Int, Values: out}
}

func floatCol(name string, vals ...float64) table.Column {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return table.Column{Name: name, Type: table.Float, Values: out}
}

func times(name string, vals ...time.Time) table.Column {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return table.Column{Name: name, Type: table.Datetime, Values: out}
}

func col(t *testing.T, tb *table.Table, name string) []any {
	t.Helper()
	c, ok := tb.Column(name)
	if !ok {
		t.Fatalf("missing column %q in %v", name, tb.Names())
	}
	return c.Values
}

func at(s string) time.Time {
	v, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return v
}

// line is one cleaned sales line; time is "2006-01-02T15:04:05".
type line struct {
	id, store, staff, customer, product, quantity int64
	price                                         float64
	time                                          string
}

// salesTable builds a cleaned sales table. is_promo is always false.
func salesTable(t *testing.T, lines ...line) *table.Table {
	t.Helper()
	n := len(lines)
	cols := map[string][]any{}
	names := []string{"id", "store_id", "staff_id", "customer_id", "product_id", "quantity", "price", "is_promo", "time"}
	for _, name := range names {
		cols[name] = make([]any, n)
	}
	for i, l := range lines {
		cols["id"][i] = l.id
		cols["store_id"][i] = l.store
		cols["staff_id"][i] = l.staff
		cols["customer_id"][i] = l.customer
		cols["product_id"][i] = l.product
		cols["quantity"][i] = l.quantity
		cols["price"][i] = l.price
		cols["is_promo"][i] = false
		cols["time"][i] = at(l.time)
	}
	types := map[string]table.Type{"price": table.Float, "is_promo": table.Bool, "time": table.Datetime}
	tcols := make([]table.Column, len(names))
	for i, name := range names {
		typ, ok := types[name]
		if !ok {
			typ = table.Int
		}
		tcols[i] = table.Column{Name: name, Type: typ, Values: cols[name]}
	}
	return mustTable(t, tcols...)
}
