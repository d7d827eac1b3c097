package schema

import (
	"errors"
	"strings"
	"testing"

	"salesetl/internal/table"
)

func TestRequireListsEveryMissingColumn(t *testing.T) {
	t.Parallel()

	tb := table.Empty([]table.Field{{Name: "customer_id", Type: table.String}})
	err := Require(tb, "customer", RawCustomer.Names()...)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if len(se.Missing) != 4 {
		t.Fatalf("missing = %v, want 4 columns", se.Missing)
	}
	if !strings.Contains(err.Error(), "birthdate") {
		t.Fatalf("error %q does not name birthdate", err)
	}
}

func TestConform(t *testing.T) {
	t.Parallel()

	ok := table.Empty(NonRetail.TableFields())
	if err := Conform(ok, NonRetail); err != nil {
		t.Fatalf("Conform: %v", err)
	}

	bad := table.Empty([]table.Field{{Name: "customer_id", Type: table.String}, {Name: "count", Type: table.Int}})
	var se *SchemaError
	if err := Conform(bad, NonRetail); !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
}

func TestErrorKindsUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	pe := &ParseError{Table: "sales", Column: "unit_price", Row: 3, Value: "x", Err: cause}
	if !errors.Is(pe, cause) {
		t.Fatalf("ParseError does not unwrap")
	}
	ie := &IntegrityError{Path: "out.csv", Err: cause}
	if !errors.Is(ie, cause) {
		t.Fatalf("IntegrityError does not unwrap")
	}
	dk := &DuplicateKeyError{Table: "customer", Dropped: 2}
	if got := dk.Error(); !strings.Contains(got, "all columns") {
		t.Fatalf("DuplicateKeyError = %q", got)
	}
}
