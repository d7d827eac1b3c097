package bitmap

import (
	"fmt"
	"testing"
)

// TestNew locks in the word count for a given maxID: enough words to cover
// [0, maxID], nothing for a negative bound.
func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		maxID   int64
		wantLen int
	}{
		{"negative bound is empty", -1, 0},
		{"zero needs one word", 0, 1},
		{"63 fits in one word", 63, 1},
		{"64 starts a second word", 64, 2},
		{"large bound", 150000, 150000/64 + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := len(New(tt.maxID).data); got != tt.wantLen {
				t.Fatalf("New(%d) words = %d, want %d", tt.maxID, got, tt.wantLen)
			}
		})
	}
}

// TestAddAndHas covers word boundaries, negative ids and growth past the
// initial bound.
func TestAddAndHas(t *testing.T) {
	t.Parallel()

	bm := New(200)
	if bm.Has(0) || bm.Has(199) || bm.Len() != 0 {
		t.Fatalf("bitmap should start empty")
	}

	for _, id := range []int64{-1, 0, 63, 64, 199, 1000, 64} {
		bm.Add(id)
	}

	tests := []struct {
		id   int64
		want bool
	}{
		{-1, false},
		{0, true},
		{1, false},
		{63, true},
		{64, true},
		{199, true},
		{200, false},
		{1000, true},
		{1001, false},
		{1 << 40, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("id=%d", tt.id), func(t *testing.T) {
			t.Parallel()
			if got := bm.Has(tt.id); got != tt.want {
				t.Fatalf("Has(%d) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
	if bm.Len() != 5 {
		t.Fatalf("Len = %d, want 5 (duplicates and negatives not counted)", bm.Len())
	}
}

func TestZeroValue(t *testing.T) {
	t.Parallel()

	var bm Bitmap
	if bm.Has(3) {
		t.Fatal("zero value should be empty")
	}
	bm.Add(3)
	if !bm.Has(3) || bm.Len() != 1 {
		t.Fatalf("Add on zero value: Has=%v Len=%d", bm.Has(3), bm.Len())
	}
}

// BenchmarkHas measures lookups on a bitmap sized like a customer table.
func BenchmarkHas(b *testing.B) {
	const n = 1 << 16
	bm := New(n)
	for i := int64(0); i < n; i += 3 {
		bm.Add(i)
	}
	b.ResetTimer()
	var hits int
	for i := 0; i < b.N; i++ {
		if bm.Has(int64(i % n)) {
			hits++
		}
	}
	_ = hits
}
