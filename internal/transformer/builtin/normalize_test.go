package builtin

import (
	"reflect"
	"testing"

	"salesetl/internal/table"
)

/*
TestNormalizeApply_TableDriven verifies the core normalization semantics:

  - Replaces U+00A0 NO-BREAK SPACE with ASCII space and trims.
  - Maps exact placeholder values via Replace.
  - Turns blank strings into null.
  - Leaves non-string columns and unlisted columns unchanged.
*/
func TestNormalizeApply_TableDriven(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    Normalize
		in   []any
		want []any
	}{
		{"trim_nbsp", Normalize{}, []any{" foo ", "\tbar\n"}, []any{"foo", "bar"}},
		{"placeholder", Normalize{Replace: map[string]string{"Not Specified": "na"}}, []any{"M", " Not Specified", nil}, []any{"M", "na", nil}},
		{"blank_to_null", Normalize{}, []any{"  ", "x"}, []any{nil, "x"}},
		{"other_column_only", Normalize{Columns: []string{"other"}}, []any{" x "}, []any{" x "}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := mustTable(t,
				strCol("gender", tt.in...),
				table.Column{Name: "n", Type: table.Int, Values: make([]any, len(tt.in))},
			)
			out, err := tt.n.Apply(in)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			c, _ := out.Column("gender")
			if !reflect.DeepEqual(c.Values, tt.want) {
				t.Fatalf("got %#v want %#v", c.Values, tt.want)
			}
		})
	}
}
