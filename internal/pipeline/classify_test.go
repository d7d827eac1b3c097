package pipeline

import (
	"reflect"
	"testing"

	"salesetl/internal/table"
)

/*
TestClassifyPartitions verifies that customers above the threshold route to
B2B, that the partitions cover every line exactly once, and that a customer
exactly at the threshold stays retail.
*/
func TestClassifyPartitions(t *testing.T) {
	t.Parallel()

	sales := salesTable(t,
		line{1, 1, 1, 500, 1, 1, 1, "2022-01-01T08:00:00"},
		line{2, 1, 1, 600, 1, 1, 1, "2022-01-01T08:01:00"},
		line{3, 1, 1, 500, 1, 1, 1, "2022-01-01T08:02:00"},
		line{4, 1, 1, 500, 1, 1, 1, "2022-01-01T08:03:00"},
		line{5, 1, 1, 600, 1, 1, 1, "2022-01-01T08:04:00"},
		line{6, 1, 1, 700, 1, 1, 1, "2022-01-01T08:05:00"},
	)
	p, err := Classify(sales, 2)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if want := []any{int64(500)}; !reflect.DeepEqual(col(t, p.NonRetail, "customer_id"), want) {
		t.Fatalf("non_retail = %v, want %v", col(t, p.NonRetail, "customer_id"), want)
	}
	if want := []any{int64(3)}; !reflect.DeepEqual(col(t, p.NonRetail, "count"), want) {
		t.Fatalf("count = %v, want %v", col(t, p.NonRetail, "count"), want)
	}
	if want := []any{int64(1), int64(3), int64(4)}; !reflect.DeepEqual(col(t, p.B2B, "id"), want) {
		t.Fatalf("b2b ids = %v, want %v", col(t, p.B2B, "id"), want)
	}

	if p.B2B.NumRows()+p.B2C.NumRows() != sales.NumRows() {
		t.Fatalf("partition sizes %d + %d != %d", p.B2B.NumRows(), p.B2C.NumRows(), sales.NumRows())
	}
	union, err := table.Concat(p.B2B, p.B2C)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	sorted, _ := union.SortBy(table.Asc("id"))
	if !table.Equal(sorted, sales) {
		t.Fatalf("B2B ∪ B2C differs from the input")
	}
}

func TestClassifyEmpty(t *testing.T) {
	t.Parallel()

	p, err := Classify(salesTable(t), 1000)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if p.NonRetail.NumRows() != 0 || p.B2B.NumRows() != 0 || p.B2C.NumRows() != 0 {
		t.Fatalf("expected empty partitions")
	}
}
