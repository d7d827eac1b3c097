package pipeline

import (
	"reflect"
	"testing"
	"time"

	"salesetl/internal/schema"
	"salesetl/internal/table"
)

func byOrder(t *testing.T, customers []int64, at []time.Time, totals []float64) *table.Table {
	t.Helper()
	ids := make([]int64, len(customers))
	qty := make([]int64, len(customers))
	stores := make([]int64, len(customers))
	for i := range ids {
		ids[i], qty[i], stores[i] = int64(i+1), 1, 1
	}
	return mustTable(t,
		ints("id", ids...),
		ints("customer_id", customers...),
		ints("store_id", stores...),
		times("time", at...),
		ints("quantity", qty...),
		floatCol("total", totals...),
	)
}

/*
TestRFMExample: orders on 2022-01-10 and 2022-04-20 totalling 50.00 and
30.00, scored as of 2022-05-01, give recency 11, frequency 2, monetary 80.
*/
func TestRFMExample(t *testing.T) {
	t.Parallel()

	orders := byOrder(t,
		[]int64{1, 1},
		[]time.Time{at("2022-01-10T00:00:00"), at("2022-04-20T00:00:00")},
		[]float64{50, 30},
	)
	got, err := RFM(orders, time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RFM: %v", err)
	}
	want := mustTable(t,
		ints("customer_id", 1),
		ints("recency", 11),
		ints("frequency", 2),
		floatCol("monetary", 80),
	)
	if err := table.Compare(got, want); err != nil {
		t.Fatalf("RFM: %v", err)
	}
}

func TestRFMOrdering(t *testing.T) {
	t.Parallel()

	asOf := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)
	orders := byOrder(t,
		[]int64{7, 8, 8, 9, 9},
		[]time.Time{
			at("2022-04-30T23:00:00"), // under a day: recency 0
			at("2022-04-01T12:00:00"),
			at("2022-04-02T12:00:00"),
			at("2022-03-01T00:00:00"),
			at("2022-03-02T00:00:00"),
		},
		[]float64{1.005, 2, 3, 4, 5},
	)
	got, err := RFM(orders, asOf)
	if err != nil {
		t.Fatalf("RFM: %v", err)
	}
	if err := schema.Conform(got, schema.RFM); err != nil {
		t.Fatalf("Conform: %v", err)
	}
	// Ties on frequency keep first-encounter order.
	if want := []any{int64(8), int64(9), int64(7)}; !reflect.DeepEqual(col(t, got, "customer_id"), want) {
		t.Fatalf("customer order = %v, want %v", col(t, got, "customer_id"), want)
	}
	if want := []any{int64(28), int64(60), int64(0)}; !reflect.DeepEqual(col(t, got, "recency"), want) {
		t.Fatalf("recency = %v, want %v", col(t, got, "recency"), want)
	}
	if want := []any{5.0, 9.0, 1.01}; !reflect.DeepEqual(col(t, got, "monetary"), want) {
		t.Fatalf("monetary = %v, want %v", col(t, got, "monetary"), want)
	}
}
