package csv

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"salesetl/internal/table"
)

// Canonical text layouts used when writing and re-reading tables.
const (
	DateLayout     = "2006-01-02"
	DatetimeLayout = "2006-01-02T15:04:05"
)

var (
	dateLayouts     = []string{DateLayout, "1/2/2006"}
	datetimeLayouts = []string{DatetimeLayout, "2006-01-02 15:04:05", "1/2/2006 15:04:05"}
)

// ParseValue converts text to a value of typ. layout overrides the canonical
// date/datetime layout when non-empty.
func ParseValue(s string, typ table.Type, layout string) (any, error) {
	switch typ {
	case table.String:
		return s, nil
	case table.Int:
		return strconv.ParseInt(s, 10, 64)
	case table.Float:
		return strconv.ParseFloat(s, 64)
	case table.Bool:
		return strconv.ParseBool(s)
	case table.Date:
		if layout == "" {
			layout = DateLayout
		}
		return time.Parse(layout, s)
	case table.Datetime:
		if layout == "" {
			layout = DatetimeLayout
		}
		return time.Parse(layout, s)
	}
	return nil, fmt.Errorf("cannot parse into %s", typ)
}

// FormatValue renders a value in the canonical text form read back by
// ParseValue. nil renders as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(DateLayout)
		}
		return x.Format(DatetimeLayout)
	}
	return fmt.Sprint(v)
}

// FormatTyped is FormatValue with the column type deciding date vs datetime.
func FormatTyped(v any, typ table.Type) string {
	if ts, ok := v.(time.Time); ok {
		if typ == table.Datetime {
			return ts.Format(DatetimeLayout)
		}
		return ts.Format(DateLayout)
	}
	return FormatValue(v)
}

// formatFloat uses the shortest representation that round-trips, always
// with a decimal point so the column re-infers as Float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// Infer picks the narrowest type that parses every non-null value of a text
// column, trying Int, Float, Bool, Date, Datetime and finally String. It
// returns the matching layout for dates and datetimes. An all-null column is
// String.
func Infer(vals []any) (table.Type, string) {
	var texts []string
	for _, v := range vals {
		if s, ok := v.(string); ok {
			texts = append(texts, s)
		}
	}
	if len(texts) == 0 {
		return table.String, ""
	}
	if allMatch(texts, func(s string) bool { _, err := strconv.ParseInt(s, 10, 64); return err == nil }) {
		return table.Int, ""
	}
	if allMatch(texts, func(s string) bool { _, err := strconv.ParseFloat(s, 64); return err == nil }) {
		return table.Float, ""
	}
	if allMatch(texts, isBool) {
		return table.Bool, ""
	}
	for _, layout := range dateLayouts {
		if allMatch(texts, parses(layout)) {
			return table.Date, layout
		}
	}
	for _, layout := range datetimeLayouts {
		if allMatch(texts, parses(layout)) {
			return table.Datetime, layout
		}
	}
	return table.String, ""
}

func isBool(s string) bool {
	switch s {
	case "true", "false", "True", "False", "TRUE", "FALSE":
		return true
	}
	return false
}

func parses(layout string) func(string) bool {
	return func(s string) bool {
		_, err := time.Parse(layout, s)
		return err == nil
	}
}

// allMatch reports whether every value satisfies fn.
func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}
