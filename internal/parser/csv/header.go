package csv

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeHeaders produces canonical header keys: BOM stripped from the
// first cell, trimmed, accents folded, lower-cased, spaces to underscores,
// then remapped through headerMap when it has an entry. With keep set only
// the BOM is removed.
func normalizeHeaders(h []string, headerMap map[string]string, keep bool) []string {
	res := make([]string, len(h))
	for i, col := range h {
		if i == 0 {
			col = strings.TrimPrefix(col, utf8BOM)
		}
		if keep {
			res[i] = col
			continue
		}
		c := NormalizeHeader(col)
		if m, ok := headerMap[c]; ok {
			c = m
		}
		res[i] = c
	}
	return res
}

// NormalizeHeader folds one header cell to its canonical form.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), "_")
}
