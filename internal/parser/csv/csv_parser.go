// Package csv reads delimited text into a table.Table. Every cell is read as
// text; typing is applied afterwards with ParseValue or Infer.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"salesetl/internal/logging"
	"salesetl/internal/table"
)

// Options configures the parser. All fields are optional.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each value.
	TrimSpace bool

	// HeaderMap maps normalized source header names to canonical names.
	HeaderMap map[string]string

	// KeepHeaders disables header normalization; only the BOM is stripped.
	KeepHeaders bool

	// Strict makes rows with the wrong field count an error instead of
	// being skipped and counted.
	Strict bool
}

// Parser parses delimited input according to Options. It is safe to reuse
// across inputs but not for concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps the number of per-row warnings.
const skipLogLimit = 400

// Parse reads the header and every data row of r. The result has one String
// column per header cell; empty cells are nil. It also returns the number of
// rows skipped for having the wrong width.
func (p *Parser) Parse(r io.Reader) (*table.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("read csv header: empty input")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := normalizeHeaders(h, p.opt.HeaderMap, p.opt.KeepHeaders)
	if err := checkHeaders(headers); err != nil {
		return nil, 0, err
	}

	cols := make([][]any, len(headers))
	skipped := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil && len(row) != len(headers) {
			err = fmt.Errorf("incorrect number of fields (expected %d, got %d)", len(headers), len(row))
		}
		if err != nil {
			if p.opt.Strict {
				return nil, skipped, fmt.Errorf("line %d: %w", line, err)
			}
			if skipped < skipLogLimit {
				logging.Warn().Int("line", line).Err(err).Msg("skipping csv row")
			}
			skipped++
			continue
		}
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			cols[i] = append(cols[i], emptyToNil(val))
		}
	}

	out := make([]table.Column, len(headers))
	for i, name := range headers {
		vals := cols[i]
		if vals == nil {
			vals = []any{}
		}
		out[i] = table.Column{Name: name, Type: table.String, Values: vals}
	}
	t, err := table.New(out...)
	if err != nil {
		return nil, skipped, err
	}
	return t, skipped, nil
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func checkHeaders(headers []string) error {
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		if h == "" {
			return fmt.Errorf("csv header: column %d has no name", i+1)
		}
		if j, dup := seen[h]; dup {
			return fmt.Errorf("csv header: columns %d and %d both normalize to %q", j+1, i+1, h)
		}
		seen[h] = i
	}
	return nil
}
