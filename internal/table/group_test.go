package table

import (
	"reflect"
	"testing"
)

func TestGroupByAggregates(t *testing.T) {
	t.Parallel()

	tb := mustNew(t,
		Column{Name: "store", Type: Int, Values: ints(int64(5), int64(3), int64(5), int64(3), int64(5))},
		Column{Name: "qty", Type: Int, Values: ints(int64(1), int64(2), int64(3), nil, int64(4))},
		Column{Name: "total", Type: Float, Values: ints(1.5, 2.0, 3.0, 4.0, 0.5)},
	)
	g, err := tb.GroupBy("store")
	if err != nil {
		t.Fatalf("GroupBy: %v", err)
	}
	if g.Len() != 2 {
		t.Fatalf("groups = %d, want 2", g.Len())
	}
	got, err := g.Agg(Sum("qty"), Sum("total"), Count().As("lines"), Max("total").As("max"), Min("qty").As("min"))
	if err != nil {
		t.Fatalf("Agg: %v", err)
	}
	want := mustNew(t,
		Column{Name: "store", Type: Int, Values: ints(int64(5), int64(3))},
		Column{Name: "qty", Type: Int, Values: ints(int64(8), int64(2))},
		Column{Name: "total", Type: Float, Values: ints(5.0, 6.0)},
		Column{Name: "lines", Type: Int, Values: ints(int64(3), int64(2))},
		Column{Name: "max", Type: Float, Values: ints(3.0, 4.0)},
		Column{Name: "min", Type: Int, Values: ints(int64(1), int64(2))},
	)
	if err := Compare(got, want); err != nil {
		t.Fatalf("Agg mismatch: %v", err)
	}
}

func TestGroupByEmptyTable(t *testing.T) {
	t.Parallel()

	tb := Empty([]Field{{Name: "k", Type: String}, {Name: "v", Type: Int}})
	g, err := tb.GroupBy("k")
	if err != nil {
		t.Fatalf("GroupBy: %v", err)
	}
	got, err := g.Agg(Sum("v"))
	if err != nil {
		t.Fatalf("Agg: %v", err)
	}
	if got.NumRows() != 0 {
		t.Fatalf("rows = %d, want 0", got.NumRows())
	}
	if names := got.Names(); !reflect.DeepEqual(names, []string{"k", "v"}) {
		t.Fatalf("names = %v", names)
	}
}

func TestSumRejectsStrings(t *testing.T) {
	t.Parallel()

	tb := mustNew(t, Column{Name: "s", Type: String, Values: ints("a")})
	g, err := tb.GroupBy("s")
	if err != nil {
		t.Fatalf("GroupBy: %v", err)
	}
	if _, err := g.Agg(Sum("s")); err == nil {
		t.Fatalf("expected error summing strings")
	}
}
