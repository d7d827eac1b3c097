// Package tableio loads tables from delimited files and stores them with a
// read-back verification.
package tableio

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"salesetl/internal/datasource"
	"salesetl/internal/datasource/file"
	"salesetl/internal/logging"
	pcsv "salesetl/internal/parser/csv"
	"salesetl/internal/schema"
	"salesetl/internal/table"
)

// LoadText reads path with every column as String. Empty cells are nil.
func LoadText(ctx context.Context, path string, opt pcsv.Options) (*table.Table, error) {
	return read(ctx, file.NewLocal(path), path, opt)
}

// Load reads path and types its columns. With a schema, the schema's columns
// must be present and are parsed to their declared types; other columns stay
// String. With a nil schema every column type is inferred. Header names are
// taken verbatim.
func Load(ctx context.Context, path string, s *schema.Schema) (*table.Table, error) {
	raw, err := read(ctx, file.NewLocal(path), path, pcsv.Options{Strict: true, KeepHeaders: true})
	if err != nil {
		return nil, err
	}
	if s == nil {
		return Infer(raw)
	}
	return Apply(raw, *s)
}

func read(ctx context.Context, src datasource.Source, path string, opt pcsv.Options) (*table.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, skipped, err := pcsv.NewParser(opt).Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if skipped > 0 {
		logging.Warn().Str("path", path).Int("skipped", skipped).Msg("rows skipped while loading")
	}
	return t, nil
}

// Apply parses the String columns named by s into their declared types.
// A missing column yields *schema.SchemaError; an unparsable value yields
// *schema.ParseError.
func Apply(raw *table.Table, s schema.Schema) (*table.Table, error) {
	if err := schema.Require(raw, s.Name, s.Names()...); err != nil {
		return nil, err
	}
	out := raw
	for _, f := range s.Fields {
		c, _ := raw.Column(f.Name)
		typed, err := parseColumn(s.Name, c, f.Type, f.Layout)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(typed); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Infer types every String column of raw with pcsv.Infer.
func Infer(raw *table.Table) (*table.Table, error) {
	out := raw
	for _, c := range raw.Columns() {
		if c.Type != table.String {
			continue
		}
		typ, layout := pcsv.Infer(c.Values)
		if typ == table.String {
			continue
		}
		typed, err := parseColumn("", c, typ, layout)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(typed); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseColumn(tableName string, c table.Column, typ table.Type, layout string) (table.Column, error) {
	if c.Type == typ {
		return c, nil
	}
	if c.Type != table.String {
		return table.Column{}, &schema.SchemaError{Table: tableName,
			Detail: fmt.Sprintf("column %q is %s, want %s", c.Name, c.Type, typ)}
	}
	vals := make([]any, len(c.Values))
	for i, v := range c.Values {
		if v == nil {
			continue
		}
		s := v.(string)
		pv, err := pcsv.ParseValue(s, typ, layout)
		if err != nil {
			return table.Column{}, &schema.ParseError{Table: tableName, Column: c.Name, Row: i, Value: s, Err: err}
		}
		vals[i] = pv
	}
	return table.Column{Name: c.Name, Type: typ, Values: vals}, nil
}

// Store writes t to path as CSV, then reads the file back with t's own
// schema and compares. A difference is returned as *schema.IntegrityError
// and the written file is removed.
func Store(ctx context.Context, t *table.Table, path string) error {
	start := time.Now()
	if err := write(ctx, file.NewLocal(path), t); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("store %s: %w", path, err)
	}

	s := schema.FromTable(path, t)
	back, err := Load(ctx, path, &s)
	if err == nil {
		err = table.Compare(back, t)
	}
	if err != nil {
		_ = os.Remove(path)
		return &schema.IntegrityError{Path: path, Err: err}
	}
	logging.Debug().Str("path", path).Int("rows", t.NumRows()).
		Dur("elapsed", time.Since(start)).Msg("stored table")
	return nil
}

func write(ctx context.Context, sink datasource.Sink, t *table.Table) (err error) {
	w, err := sink.Create(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return err
	}
	cols := t.Columns()
	rec := make([]string, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			rec[j] = pcsv.FormatTyped(c.Values[i], c.Type)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
