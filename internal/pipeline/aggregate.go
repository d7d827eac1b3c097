package pipeline

import (
	"time"

	"salesetl/internal/money"
	"salesetl/internal/schema"
	"salesetl/internal/table"
)

// Aggregates are the roll-ups of one re-identified partition.
type Aggregates struct {
	ByOrder    *table.Table
	ByCustomer *table.Table
	ByProduct  *table.Table
	ByStore    *table.Table
	ByDate     *table.Table
	ByMonth    *table.Table
}

// Dimensions are the cleaned dimension tables used to enrich roll-ups.
type Dimensions struct {
	Customer *table.Table
	Employee *table.Table
	Store    *table.Table
	Product  *table.Table
}

// Aggregate computes every roll-up of a partition. Date and month roll-ups
// are derived from the per-order roll-up.
func Aggregate(lines *table.Table, dims Dimensions) (*Aggregates, error) {
	lt, err := WithTotal(lines)
	if err != nil {
		return nil, err
	}
	var a Aggregates
	if a.ByOrder, err = TotalByOrder(lt); err != nil {
		return nil, err
	}
	if a.ByCustomer, err = totalBy(lt, "customer_id", dims.Customer, schema.TotalByCustomer); err != nil {
		return nil, err
	}
	if a.ByProduct, err = totalBy(lt, "product_id", dims.Product, schema.TotalByProduct); err != nil {
		return nil, err
	}
	if a.ByStore, err = totalBy(lt, "store_id", dims.Store, schema.TotalByStore); err != nil {
		return nil, err
	}
	if a.ByDate, err = OrderByDate(a.ByOrder); err != nil {
		return nil, err
	}
	if a.ByMonth, err = OrderByMonth(a.ByDate); err != nil {
		return nil, err
	}
	return &a, nil
}

// WithTotal adds total = quantity × price to every line.
func WithTotal(lines *table.Table) (*table.Table, error) {
	return lines.Derive("total", table.Float, func(r table.Row) (any, error) {
		q, ok1 := r.Int("quantity")
		p, ok2 := r.Float("price")
		if !ok1 || !ok2 {
			return nil, nil
		}
		return money.Line(q, p), nil
	})
}

// TotalByOrder sums quantity and total per order id. Order attributes are
// taken from the first line.
func TotalByOrder(lines *table.Table) (*table.Table, error) {
	g, err := lines.GroupBy("id")
	if err != nil {
		return nil, err
	}
	out, err := g.Agg(
		table.First("customer_id"),
		table.First("store_id"),
		table.First("time"),
		table.Sum("quantity"),
		table.Sum("total"),
	)
	if err != nil {
		return nil, err
	}
	return finish(out, schema.TotalByOrder, "total", table.Asc("id"))
}

// totalBy sums quantity and total per key and left-joins the dimension,
// whose "id" column matches key.
func totalBy(lines *table.Table, key string, dim *table.Table, s schema.Schema) (*table.Table, error) {
	g, err := lines.GroupBy(key)
	if err != nil {
		return nil, err
	}
	sums, err := g.Agg(table.Sum("quantity"), table.Sum("total"))
	if err != nil {
		return nil, err
	}
	d, err := dim.Rename(map[string]string{"id": key})
	if err != nil {
		return nil, err
	}
	joined, err := table.LeftJoin(sums, d, key)
	if err != nil {
		return nil, err
	}
	return finish(joined, s, "total", table.Asc(key))
}

// OrderByDate counts orders and sums quantity and total per calendar day.
func OrderByDate(byOrder *table.Table) (*table.Table, error) {
	dated, err := byOrder.Derive("date", table.Date, func(r table.Row) (any, error) {
		t, ok := r.Get("time").(time.Time)
		if !ok {
			return nil, nil
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	})
	if err != nil {
		return nil, err
	}
	g, err := dated.GroupBy("date")
	if err != nil {
		return nil, err
	}
	out, err := g.Agg(table.Count().As("orders"), table.Sum("quantity"), table.Sum("total"))
	if err != nil {
		return nil, err
	}
	return finish(out, schema.OrderByDate, "total", table.Asc("date"))
}

// OrderByMonth rolls the daily table up to the first day of each month.
func OrderByMonth(byDate *table.Table) (*table.Table, error) {
	monthly, err := byDate.Derive("month", table.Date, func(r table.Row) (any, error) {
		t, ok := r.Get("date").(time.Time)
		if !ok {
			return nil, nil
		}
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	})
	if err != nil {
		return nil, err
	}
	g, err := monthly.GroupBy("month")
	if err != nil {
		return nil, err
	}
	out, err := g.Agg(table.Sum("orders"), table.Sum("quantity"), table.Sum("total"))
	if err != nil {
		return nil, err
	}
	return finish(out, schema.OrderByMonth, "total", table.Asc("month"))
}

// finish rounds the money column, projects to s, sorts and checks the
// result against s.
func finish(t *table.Table, s schema.Schema, moneyCol string, sortKeys ...table.SortKey) (*table.Table, error) {
	t, err := roundColumn(t, moneyCol)
	if err != nil {
		return nil, err
	}
	if t, err = t.Select(s.Names()...); err != nil {
		return nil, err
	}
	if t, err = t.SortBy(sortKeys...); err != nil {
		return nil, err
	}
	if err := schema.Conform(t, s); err != nil {
		return nil, err
	}
	return t, nil
}

func roundColumn(t *table.Table, name string) (*table.Table, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, &schema.SchemaError{Detail: "missing money column " + name}
	}
	vals := make([]any, len(c.Values))
	for i, v := range c.Values {
		if f, ok := v.(float64); ok {
			vals[i] = money.Round(f)
		}
	}
	return t.WithColumn(table.Column{Name: name, Type: c.Type, Values: vals})
}
