package pipeline

import (
	"reflect"
	"testing"
	"time"

	"salesetl/internal/schema"
)

/*
TestReidentify checks that order ids are dense 1..N in time order, that
every line survives the join, and that two raw transactions sharing the
order key collapse into one order.
*/
func TestReidentify(t *testing.T) {
	t.Parallel()

	lines := salesTable(t,
		line{900, 1, 2, 10, 1, 2, 2.5, "2022-01-01T08:00:00"},
		line{900, 1, 2, 10, 2, 1, 3.0, "2022-01-01T08:00:00"},
		line{901, 1, 2, 11, 1, 1, 2.5, "2022-01-01T09:00:00"},
		// Same key as 900 under another raw id.
		line{905, 1, 2, 10, 3, 1, 4.0, "2022-01-01T08:00:00"},
		line{902, 1, 3, 10, 1, 1, 2.5, "2022-01-02T08:00:00"},
	)
	got, err := Reidentify(lines)
	if err != nil {
		t.Fatalf("Reidentify: %v", err)
	}
	if err := schema.Conform(got, schema.OrderLines); err != nil {
		t.Fatalf("Conform: %v", err)
	}
	if got.NumRows() != lines.NumRows() {
		t.Fatalf("rows = %d, want %d", got.NumRows(), lines.NumRows())
	}
	wantIDs := []any{int64(1), int64(1), int64(1), int64(2), int64(3)}
	if !reflect.DeepEqual(col(t, got, "id"), wantIDs) {
		t.Fatalf("id = %v, want %v", col(t, got, "id"), wantIDs)
	}
	wantProducts := []any{int64(1), int64(2), int64(3), int64(1), int64(1)}
	if !reflect.DeepEqual(col(t, got, "product_id"), wantProducts) {
		t.Fatalf("product_id = %v, want %v", col(t, got, "product_id"), wantProducts)
	}
}

func TestReidentifyIDsAreDense(t *testing.T) {
	t.Parallel()

	var ls []line
	for i := int64(0); i < 40; i++ {
		ls = append(ls, line{1000 + i, 1 + i%3, 1, 20 + i%7, i % 5, 1, 1, at("2022-03-01T08:00:00").Add(time.Duration(i/2)*30*time.Minute).Format("2006-01-02T15:04:05")})
	}
	got, err := Reidentify(salesTable(t, ls...))
	if err != nil {
		t.Fatalf("Reidentify: %v", err)
	}
	seen := map[int64]bool{}
	var top int64
	for _, v := range col(t, got, "id") {
		id := v.(int64)
		seen[id] = true
		if id > top {
			top = id
		}
	}
	if int64(len(seen)) != top {
		t.Fatalf("ids are not contiguous: %d distinct, max %d", len(seen), top)
	}
	for id := int64(1); id <= top; id++ {
		if !seen[id] {
			t.Fatalf("id %d missing", id)
		}
	}
	keys, _ := salesTable(t, ls...).Select(orderKey...)
	if n := keys.Unique().NumRows(); int64(n) != top {
		t.Fatalf("N = %d, want %d distinct order keys", top, n)
	}
}
