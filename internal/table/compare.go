package table

import (
	"fmt"
	"strings"
	"time"
)

// compareValues orders two values of the same column. nil sorts before any
// value; int64 and float64 compare numerically with each other.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmpOrdered(x, y)
		case float64:
			return cmpOrdered(float64(x), y)
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmpOrdered(x, y)
		case int64:
			return cmpOrdered(x, float64(y))
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	// Mixed types: fall back to a stable textual order.
	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Compare returns nil when a and b have the same fields, row order and
// values, and otherwise an error describing the first difference.
func Compare(a, b *Table) error {
	fa, fb := a.Fields(), b.Fields()
	if len(fa) != len(fb) {
		return fmt.Errorf("column count %d != %d", len(fa), len(fb))
	}
	for i := range fa {
		if fa[i] != fb[i] {
			return fmt.Errorf("column %d: %s %s != %s %s", i, fa[i].Name, fa[i].Type, fb[i].Name, fb[i].Type)
		}
	}
	if a.rows != b.rows {
		return fmt.Errorf("row count %d != %d", a.rows, b.rows)
	}
	for j := range a.cols {
		va, vb := a.cols[j].Values, b.cols[j].Values
		for i := 0; i < a.rows; i++ {
			if !sameValue(va[i], vb[i]) {
				return fmt.Errorf("row %d column %q: %v != %v", i, fa[j].Name, va[i], vb[i])
			}
		}
	}
	return nil
}

// Equal reports whether Compare finds no difference.
func Equal(a, b *Table) bool { return Compare(a, b) == nil }

func sameValue(a, b any) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if fmt.Sprintf("%T", a) != fmt.Sprintf("%T", b) {
		return false
	}
	return compareValues(a, b) == 0
}
