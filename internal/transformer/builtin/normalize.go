package builtin

import (
	"strings"

	"salesetl/internal/table"
)

// Normalize cleans String columns: NBSP becomes a space, values are trimmed,
// and exact placeholder values are replaced per Replace. A value that
// trims to "" becomes null. Columns limits the work to the named columns;
// empty means every String column.
type Normalize struct {
	Columns []string
	Replace map[string]string
}

func (n Normalize) Apply(in *table.Table) (*table.Table, error) {
	only := make(map[string]struct{}, len(n.Columns))
	for _, c := range n.Columns {
		only[c] = struct{}{}
	}
	out := in
	for _, col := range in.Columns() {
		if col.Type != table.String {
			continue
		}
		if _, ok := only[col.Name]; len(only) > 0 && !ok {
			continue
		}
		vals := make([]any, len(col.Values))
		for i, v := range col.Values {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
			if r, ok := n.Replace[s]; ok {
				s = r
			}
			if s != "" {
				vals[i] = s
			}
		}
		var err error
		if out, err = out.WithColumn(table.Column{Name: col.Name, Type: col.Type, Values: vals}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
