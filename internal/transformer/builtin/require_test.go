package builtin

import (
	"errors"
	"reflect"
	"testing"

	"salesetl/internal/schema"
	"salesetl/internal/table"
	"salesetl/internal/transformer"
)

func TestRequire(t *testing.T) {
	t.Parallel()

	in := mustTable(t, strCol("a", "1"))
	if _, err := (Require{Table: "x", Fields: []string{"a"}}).Apply(in); err != nil {
		t.Fatalf("Require present: %v", err)
	}
	_, err := Require{Table: "x", Fields: []string{"a", "b"}}.Apply(in)
	var se *schema.SchemaError
	if !errors.As(err, &se) || !reflect.DeepEqual(se.Missing, []string{"b"}) {
		t.Fatalf("err = %v, want SchemaError missing b", err)
	}
}

/*
TestChainOfBuiltins runs a representative dimension cleanup: project, drop
null rows, dedup, rename, sort, and conform to the output schema.
*/
func TestChainOfBuiltins(t *testing.T) {
	t.Parallel()

	in := mustTable(t,
		table.Column{Name: "store_id", Type: table.Int, Values: []any{int64(5), int64(3), nil, int64(5)}},
		strCol("store_type", "kiosk", "retail", "retail", "kiosk"),
		strCol("extra", "x", "y", "z", "w"),
	)
	dropped := 0
	c := transformer.Chain{
		Select{Fields: []string{"store_id", "store_type"}},
		DropNulls{OnDrop: func(n int) { dropped += n }},
		DeDup{},
		Rename{Mapping: map[string]string{"store_id": "id", "store_type": "type"}},
		Sort{Keys: []table.SortKey{table.Asc("id")}},
		Conform{Schema: schema.Schema{Name: "store", Fields: []schema.Field{
			{Name: "id", Type: table.Int}, {Name: "type", Type: table.String},
		}}},
	}
	out, err := c.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	ids, _ := out.Column("id")
	if want := []any{int64(3), int64(5)}; !reflect.DeepEqual(ids.Values, want) {
		t.Fatalf("ids = %v, want %v", ids.Values, want)
	}
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
}

func TestDropNullsColumns(t *testing.T) {
	t.Parallel()

	in := mustTable(t,
		strCol("id", "1", nil, "3"),
		strCol("note", nil, "b", "c"),
	)
	dropped := 0
	out, err := DropNulls{Columns: []string{"id"}, OnDrop: func(n int) { dropped += n }}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	ids, _ := out.Column("id")
	if want := []any{"1", "3"}; !reflect.DeepEqual(ids.Values, want) {
		t.Fatalf("ids = %v, want %v (a null outside Columns keeps the row)", ids.Values, want)
	}
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}

	var se *schema.SchemaError
	if _, err := (DropNulls{Columns: []string{"missing"}}).Apply(in); !errors.As(err, &se) {
		t.Fatalf("err = %v, want SchemaError", err)
	}
}
