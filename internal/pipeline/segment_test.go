package pipeline

import (
	"reflect"
	"strconv"
	"testing"

	"salesetl/internal/schema"
	"salesetl/internal/table"
)

func TestSegmentName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code, want string
	}{
		{"54", "champions"},
		{"11", "hibernating"},
		{"22", "hibernating"},
		{"13", "at_risk"},
		{"25", "cant_loose"},
		{"32", "about_to_sleep"},
		{"33", "need_attention"},
		{"35", "loyal_customers"},
		{"44", "loyal_customers"},
		{"41", "promising"},
		{"51", "new_customers"},
		{"43", "potential_loyalists"},
		{"52", "potential_loyalists"},
		{"55", "champions"},
	}
	for _, tt := range tests {
		got, err := SegmentName(tt.code)
		if err != nil || got != tt.want {
			t.Errorf("SegmentName(%q) = %q, %v; want %q", tt.code, got, err, tt.want)
		}
	}

	// Every R‖F combination has a segment.
	for r := 1; r <= Bins; r++ {
		for f := 1; f <= Bins; f++ {
			if _, err := SegmentName(strconv.Itoa(r) + strconv.Itoa(f)); err != nil {
				t.Errorf("code %d%d: %v", r, f, err)
			}
		}
	}
	for _, bad := range []string{"", "6", "06", "155", "x1"} {
		if _, err := SegmentName(bad); err == nil {
			t.Errorf("SegmentName(%q) succeeded, want error", bad)
		}
	}
}

func TestRankFirst(t *testing.T) {
	t.Parallel()

	got := RankFirst([]float64{30, 10, 30, 20})
	if want := []float64{3, 1, 4, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("RankFirst = %v, want %v", got, want)
	}
}

func TestQuantileScores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		vals       []float64
		descending bool
		want       []int
	}{
		{
			name: "ten distinct values, two per bin",
			vals: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			want: []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5},
		},
		{
			name:       "descending labels",
			vals:       []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			descending: true,
			want:       []int{5, 5, 4, 4, 3, 3, 2, 2, 1, 1},
		},
		{
			name: "repeated edges use the lowest bin",
			vals: []float64{1, 1, 1, 1, 1, 1, 2, 3},
			want: []int{1, 1, 1, 1, 1, 1, 5, 5},
		},
		{
			name: "single value",
			vals: []float64{42},
			want: []int{1},
		},
		{
			name: "empty",
			vals: nil,
			want: []int{},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := QuantileScores(tt.vals, tt.descending); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("QuantileScores = %v, want %v (edges %v)", got, tt.want, QuantileEdges(tt.vals))
			}
		})
	}
}

/*
TestSegment scores ten customers: recency ranks put the most recent in R=5,
frequency and monetary bin ascending, and the code combines R and F only.
*/
func TestSegment(t *testing.T) {
	t.Parallel()

	rfm := mustTable(t,
		ints("customer_id", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10),
		ints("recency", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10),
		ints("frequency", 10, 9, 8, 7, 6, 5, 4, 3, 2, 1),
		floatCol("monetary", 1, 1, 1, 1, 1, 1, 1, 1, 1, 100),
	)
	got, err := Segment(rfm)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if err := schema.Conform(got, schema.Segment); err != nil {
		t.Fatalf("Conform: %v", err)
	}
	if want := []any{"55", "55", "44", "44", "33", "33", "22", "22", "11", "11"}; !reflect.DeepEqual(col(t, got, "RFM"), want) {
		t.Fatalf("RFM = %v, want %v", col(t, got, "RFM"), want)
	}
	wantSeg := []any{"champions", "champions", "loyal_customers", "loyal_customers", "need_attention",
		"need_attention", "hibernating", "hibernating", "hibernating", "hibernating"}
	if !reflect.DeepEqual(col(t, got, "segment"), wantSeg) {
		t.Fatalf("segment = %v, want %v", col(t, got, "segment"), wantSeg)
	}
	if m := col(t, got, "M"); m[9] != int64(5) || m[0] != int64(1) {
		t.Fatalf("M = %v", m)
	}

	counts, err := SegmentCount(got)
	if err != nil {
		t.Fatalf("SegmentCount: %v", err)
	}
	want := mustTable(t,
		text("segment", "champions", "loyal_customers", "need_attention", "hibernating"),
		ints("count", 2, 2, 2, 4),
	)
	if err := table.Compare(counts, want); err != nil {
		t.Fatalf("SegmentCount: %v", err)
	}
}

func TestSegmentRejectsWrongSchema(t *testing.T) {
	t.Parallel()

	if _, err := Segment(mustTable(t, ints("customer_id", 1))); err == nil {
		t.Fatalf("expected SchemaError")
	}
}
