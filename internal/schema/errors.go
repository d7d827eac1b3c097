package schema

import (
	"fmt"
	"strings"
)

// SchemaError reports a table whose columns do not match what a stage needs.
type SchemaError struct {
	Table   string
	Missing []string
	Detail  string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("schema %s: missing required column(s) %s", e.Table, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("schema %s: %s", e.Table, e.Detail)
}

// ParseError reports a raw value that could not be converted to its column
// type. Row is the 0-based data row (header excluded).
type ParseError struct {
	Table  string
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s.%s row %d: %q: %v", e.Table, e.Column, e.Row, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IntegrityError reports a written table that did not read back identical.
type IntegrityError struct {
	Path string
	Err  error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity %s: round trip mismatch: %v", e.Path, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// DuplicateKeyError describes rows removed by keep-first deduplication. It is
// never fatal; stages collect it for logging and the run summary.
type DuplicateKeyError struct {
	Table   string
	Keys    []string
	Dropped int
}

func (e *DuplicateKeyError) Error() string {
	keys := "all columns"
	if len(e.Keys) > 0 {
		keys = strings.Join(e.Keys, ", ")
	}
	return fmt.Sprintf("%s: dropped %d duplicate row(s) on %s", e.Table, e.Dropped, keys)
}
