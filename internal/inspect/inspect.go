// Package inspect profiles a raw extract before it is fed to a run. It sniffs
// the delimiter, infers a type per column and matches the header against the
// raw input schemas so that header_map entries and data defects can be fixed
// up front.
package inspect

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"salesetl/internal/datasource/file"
	csvparser "salesetl/internal/parser/csv"
	"salesetl/internal/schema"
	"salesetl/internal/table"
)

// Options configures Inspect. All fields are optional.
type Options struct {
	// Delimiter forces the field delimiter. When zero it is sniffed from the
	// header line.
	Delimiter rune

	// HeaderMap renames normalized headers, as in the run configuration.
	HeaderMap map[string]string
}

// Column is the profile of one column.
type Column struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Layout string `json:"layout,omitempty"`
	Nulls  int    `json:"nulls"`

	// CommaDecimal is set when the column only parses as Float after
	// replacing a comma decimal separator.
	CommaDecimal bool `json:"comma_decimal,omitempty"`

	// Expected is the type the matched raw schema declares, if any.
	Expected string `json:"expected,omitempty"`
}

// Report is the profile of one file.
type Report struct {
	Path      string   `json:"path"`
	Delimiter string   `json:"delimiter"`
	Rows      int      `json:"rows"`
	Skipped   int      `json:"skipped"`
	Schema    string   `json:"schema,omitempty"`
	Missing   []string `json:"missing,omitempty"`
	Columns   []Column `json:"columns"`
}

// Mismatches lists the columns whose inferred type cannot be coerced to the
// type the matched schema expects.
func (r Report) Mismatches() []string {
	var out []string
	for _, c := range r.Columns {
		if c.Expected != "" && !compatible(c.Type, c.Expected) {
			out = append(out, c.Name)
		}
	}
	return out
}

// rawSchemas are the candidates a file is matched against.
var rawSchemas = []schema.Schema{
	schema.RawCustomer,
	schema.RawEmployee,
	schema.RawStore,
	schema.RawProduct,
	schema.RawSales,
}

// candidates are the delimiters the sniffer considers.
var candidates = []rune{',', ';', '\t', '|'}

// File profiles the CSV file at path.
func File(ctx context.Context, path string, opt Options) (Report, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return Report{}, err
	}
	defer rc.Close()
	rep, err := Inspect(rc, opt)
	if err != nil {
		return Report{}, fmt.Errorf("inspect %s: %w", path, err)
	}
	rep.Path = path
	return rep, nil
}

// Inspect profiles CSV data read from r.
func Inspect(r io.Reader, opt Options) (Report, error) {
	br := bufio.NewReader(r)
	delim := opt.Delimiter
	if delim == 0 {
		head, err := peekLine(br)
		if err != nil {
			return Report{}, err
		}
		delim = Sniff(head)
	}

	p := csvparser.NewParser(csvparser.Options{
		Comma:     delim,
		TrimSpace: true,
		HeaderMap: opt.HeaderMap,
	})
	t, skipped, err := p.Parse(br)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		Delimiter: string(delim),
		Rows:      t.NumRows(),
		Skipped:   skipped,
	}
	for _, c := range t.Columns() {
		rep.Columns = append(rep.Columns, profile(c))
	}
	match(&rep, t.Names())
	return rep, nil
}

func profile(c table.Column) Column {
	col := Column{Name: c.Name}
	for _, v := range c.Values {
		if v == nil {
			col.Nulls++
		}
	}
	typ, layout := csvparser.Infer(c.Values)
	if typ == table.String && commaDecimal(c.Values) {
		typ, col.CommaDecimal = table.Float, true
	}
	col.Type, col.Layout = typ.String(), layout
	return col
}

// commaDecimal reports whether every non-null value parses as a number once
// a single comma is read as the decimal separator.
func commaDecimal(vals []any) bool {
	seen := false
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if strings.Count(s, ",") > 1 {
			return false
		}
		if _, err := csvparser.ParseValue(strings.Replace(s, ",", ".", 1), table.Float, ""); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// match picks the raw schema sharing the most columns with names, records
// the schema columns the file lacks and annotates the expected types.
func match(rep *Report, names []string) {
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	best, bestHits := -1, 0
	for i, s := range rawSchemas {
		hits := 0
		for _, f := range s.Fields {
			if have[f.Name] || have[aliasFor(f.Name)] {
				hits++
			}
		}
		// More than half the schema must be present to call it a match.
		if hits*2 > len(s.Fields) && hits > bestHits {
			best, bestHits = i, hits
		}
	}
	if best < 0 {
		return
	}
	s := rawSchemas[best]
	rep.Schema = s.Name
	for _, f := range s.Fields {
		if !have[f.Name] && !have[aliasFor(f.Name)] {
			rep.Missing = append(rep.Missing, f.Name)
		}
	}
	sort.Strings(rep.Missing)
	for i := range rep.Columns {
		name := rep.Columns[i].Name
		if canonical, ok := schema.RawSalesAliases[name]; ok && s.Name == schema.RawSales.Name {
			name = canonical
		}
		if f, ok := s.Field(name); ok {
			rep.Columns[i].Expected = f.Type.String()
		}
	}
}

// aliasFor returns the raw header that stands in for a canonical name.
func aliasFor(name string) string {
	for alias, canonical := range schema.RawSalesAliases {
		if canonical == name {
			return alias
		}
	}
	return ""
}

// compatible reports whether a column inferred as got coerces into want.
// Bool columns hold Y/N flags which infer as String.
func compatible(got, want string) bool {
	switch {
	case got == want:
		return true
	case want == table.String.String():
		return true
	case want == table.Float.String() && got == table.Int.String():
		return true
	case want == table.Bool.String() && got == table.String.String():
		return true
	}
	return false
}

// Sniff returns the candidate delimiter that occurs most often in the header
// line, outside quotes. Ties and headers without any candidate yield ','.
func Sniff(header []byte) rune {
	counts := make(map[rune]int, len(candidates))
	quoted := false
	for _, r := range string(header) {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if !quoted {
			counts[r]++
		}
	}
	best, n := ',', counts[',']
	for _, c := range candidates[1:] {
		if counts[c] > n {
			best, n = c, counts[c]
		}
	}
	return best
}

// DecodeDelimiter converts a flag value into a delimiter rune. "\t" and
// "tab" name a tab; an empty value means sniff.
func DecodeDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("delimiter %q must be a single character", s)
	}
	return r, nil
}

// peekLine returns the first line of br without consuming it.
func peekLine(br *bufio.Reader) ([]byte, error) {
	for n := 512; ; n *= 2 {
		b, err := br.Peek(n)
		if i := bytes.IndexByte(b, '\n'); i >= 0 {
			return b[:i], nil
		}
		if errors.Is(err, io.EOF) {
			if len(b) == 0 {
				return nil, fmt.Errorf("read csv header: empty input")
			}
			return b, nil
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			return b, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
