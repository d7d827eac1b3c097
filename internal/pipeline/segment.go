package pipeline

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"

	"salesetl/internal/schema"
	"salesetl/internal/table"
)

// Bins is the number of quantile scores per metric.
const Bins = 5

// segmentRule maps a two-digit R‖F code pattern to a segment name.
type segmentRule struct {
	pattern *regexp.Regexp
	name    string
}

// segmentRules are tried in order; the first match wins.
var segmentRules = []segmentRule{
	{regexp.MustCompile(`^[1-2][1-2]$`), "hibernating"},
	{regexp.MustCompile(`^[1-2][3-4]$`), "at_risk"},
	{regexp.MustCompile(`^[1-2]5$`), "cant_loose"},
	{regexp.MustCompile(`^3[1-2]$`), "about_to_sleep"},
	{regexp.MustCompile(`^33$`), "need_attention"},
	{regexp.MustCompile(`^[3-4][4-5]$`), "loyal_customers"},
	{regexp.MustCompile(`^41$`), "promising"},
	{regexp.MustCompile(`^51$`), "new_customers"},
	{regexp.MustCompile(`^[4-5][2-3]$`), "potential_loyalists"},
	{regexp.MustCompile(`^5[4-5]$`), "champions"},
}

// SegmentName returns the segment of an R‖F code such as "54".
func SegmentName(code string) (string, error) {
	for _, r := range segmentRules {
		if r.pattern.MatchString(code) {
			return r.name, nil
		}
	}
	return "", fmt.Errorf("segment: no rule for code %q", code)
}

// Segment scores the RFM table into 5 quantile bins per metric and names
// each customer's segment from the recency and frequency scores. Recency is
// binned on its first-occurrence rank with labels 5..1, so the most recent
// customers score 5; frequency and monetary are binned on their values with
// labels 1..5. The monetary score is reported but not used for naming.
func Segment(rfm *table.Table) (*table.Table, error) {
	if err := schema.Conform(rfm, schema.RFM); err != nil {
		return nil, err
	}
	recency, err := floats(rfm, "recency")
	if err != nil {
		return nil, err
	}
	frequency, err := floats(rfm, "frequency")
	if err != nil {
		return nil, err
	}
	monetary, err := floats(rfm, "monetary")
	if err != nil {
		return nil, err
	}

	r := QuantileScores(RankFirst(recency), true)
	f := QuantileScores(frequency, false)
	m := QuantileScores(monetary, false)

	n := rfm.NumRows()
	rv, fv, mv := make([]any, n), make([]any, n), make([]any, n)
	codes, names := make([]any, n), make([]any, n)
	for i := 0; i < n; i++ {
		rv[i], fv[i], mv[i] = int64(r[i]), int64(f[i]), int64(m[i])
		code := strconv.Itoa(r[i]) + strconv.Itoa(f[i])
		name, err := SegmentName(code)
		if err != nil {
			return nil, err
		}
		codes[i], names[i] = code, name
	}

	out := rfm
	for _, c := range []table.Column{
		{Name: "R", Type: table.Int, Values: rv},
		{Name: "F", Type: table.Int, Values: fv},
		{Name: "M", Type: table.Int, Values: mv},
		{Name: "RFM", Type: table.String, Values: codes},
		{Name: "segment", Type: table.String, Values: names},
	} {
		if out, err = out.WithColumn(c); err != nil {
			return nil, err
		}
	}
	if err := schema.Conform(out, schema.Segment); err != nil {
		return nil, err
	}
	return out, nil
}

// SegmentCount counts customers per segment, sorted by count ascending and
// then by name.
func SegmentCount(segments *table.Table) (*table.Table, error) {
	g, err := segments.GroupBy("segment")
	if err != nil {
		return nil, err
	}
	out, err := g.Agg(table.Count())
	if err != nil {
		return nil, err
	}
	if out, err = out.SortBy(table.Asc("count"), table.Asc("segment")); err != nil {
		return nil, err
	}
	if err := schema.Conform(out, schema.SegmentCount); err != nil {
		return nil, err
	}
	return out, nil
}

// RankFirst returns the 1-based ascending rank of each value; equal values
// are ranked in order of occurrence.
func RankFirst(vals []float64) []float64 {
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return vals[idx[a]] < vals[idx[b]] })
	out := make([]float64, len(vals))
	for rank, i := range idx {
		out[i] = float64(rank + 1)
	}
	return out
}

// QuantileEdges returns the Bins+1 quantile cut points of vals at 0, 1/Bins,
// ..., 1 using linear interpolation between order statistics.
func QuantileEdges(vals []float64) []float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	edges := make([]float64, Bins+1)
	if len(sorted) == 0 {
		return edges
	}
	last := float64(len(sorted) - 1)
	for k := range edges {
		pos := last * float64(k) / Bins
		lo := math.Floor(pos)
		i := int(lo)
		edges[k] = sorted[i]
		if i+1 < len(sorted) {
			edges[k] += (sorted[i+1] - sorted[i]) * (pos - lo)
		}
	}
	return edges
}

// QuantileScores bins each value into 1..Bins by QuantileEdges. Bins are
// right-closed and the lowest edge is included; with repeated edges a value
// falls in the lowest bin whose upper edge reaches it. When descending is
// set the labels run Bins..1 instead of 1..Bins.
func QuantileScores(vals []float64, descending bool) []int {
	edges := QuantileEdges(vals)
	out := make([]int, len(vals))
	for i, v := range vals {
		bin := Bins
		for k := 1; k <= Bins; k++ {
			if v <= edges[k] {
				bin = k
				break
			}
		}
		if descending {
			bin = Bins + 1 - bin
		}
		out[i] = bin
	}
	return out
}

func floats(t *table.Table, name string) ([]float64, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", table.ErrNoColumn, name)
	}
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		switch x := v.(type) {
		case int64:
			out[i] = float64(x)
		case float64:
			out[i] = x
		default:
			return nil, fmt.Errorf("column %q row %d: not numeric: %v", name, i, v)
		}
	}
	return out, nil
}
