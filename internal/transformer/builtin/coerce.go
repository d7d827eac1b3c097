package builtin

import (
	"fmt"
	"strings"

	pcsv "salesetl/internal/parser/csv"
	"salesetl/internal/schema"
	"salesetl/internal/table"
)

// Coerce parses String columns into the types declared by Fields. Columns
// that are already typed, or absent, are left alone.
//
// Raw dialect:
//   - Bool: values in Truthy map to true, values in Falsy to false, anything
//     else becomes null.
//   - Float: when DecimalComma is set, ',' is read as the decimal separator.
//   - Date/Datetime: parsed with the field Layout.
//
// Any other unparsable value fails with *schema.ParseError.
type Coerce struct {
	Table        string
	Fields       []schema.Field
	Truthy       []string
	Falsy        []string
	DecimalComma bool
}

// Default Y/N flag vocabulary.
var (
	DefaultTruthy = []string{"Y"}
	DefaultFalsy  = []string{"N"}
)

func (c Coerce) Apply(in *table.Table) (*table.Table, error) {
	truthy, falsy := c.Truthy, c.Falsy
	if truthy == nil && falsy == nil {
		truthy, falsy = DefaultTruthy, DefaultFalsy
	}
	flags := make(map[string]bool, len(truthy)+len(falsy))
	for _, s := range truthy {
		flags[s] = true
	}
	for _, s := range falsy {
		flags[s] = false
	}

	out := in
	for _, f := range c.Fields {
		col, ok := in.Column(f.Name)
		if !ok || col.Type != table.String || f.Type == table.String {
			continue
		}
		vals := make([]any, len(col.Values))
		for i, v := range col.Values {
			if v == nil {
				continue
			}
			s := v.(string)
			switch f.Type {
			case table.Bool:
				if b, ok := flags[s]; ok {
					vals[i] = b
				}
				continue
			case table.Float:
				if c.DecimalComma {
					s = strings.Replace(s, ",", ".", 1)
				}
			}
			pv, err := pcsv.ParseValue(s, f.Type, f.Layout)
			if err != nil {
				return nil, &schema.ParseError{Table: c.Table, Column: f.Name, Row: i, Value: v.(string), Err: err}
			}
			vals[i] = pv
		}
		var err error
		out, err = out.WithColumn(table.Column{Name: f.Name, Type: f.Type, Values: vals})
		if err != nil {
			return nil, fmt.Errorf("coerce %s: %w", f.Name, err)
		}
	}
	return out, nil
}
