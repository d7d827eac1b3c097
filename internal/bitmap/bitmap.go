// Package bitmap provides a bitset over non-negative int64 ids. Customer,
// store and product ids are dense surrogate keys, so a bitset is the
// smallest membership set for them.
package bitmap

// Bitmap is a set of non-negative ids backed by uint64 words. The zero value
// is an empty set ready for use.
type Bitmap struct {
	data []uint64
	n    int
}

// New allocates a bitmap with room for ids in [0, maxID]. Larger ids are
// still accepted by Add, which grows the backing slice.
func New(maxID int64) *Bitmap {
	if maxID < 0 {
		return &Bitmap{}
	}
	return &Bitmap{data: make([]uint64, maxID/64+1)}
}

// Add inserts id. Negative ids are ignored.
func (b *Bitmap) Add(id int64) {
	if id < 0 {
		return
	}
	word := int(id / 64)
	if word >= len(b.data) {
		grown := make([]uint64, word+1)
		copy(grown, b.data)
		b.data = grown
	}
	mask := uint64(1) << uint(id%64)
	if b.data[word]&mask == 0 {
		b.data[word] |= mask
		b.n++
	}
}

// Has reports whether id is in the set.
func (b *Bitmap) Has(id int64) bool {
	if id < 0 {
		return false
	}
	word := int(id / 64)
	if word >= len(b.data) {
		return false
	}
	return b.data[word]&(uint64(1)<<uint(id%64)) != 0
}

// Len returns the number of ids in the set.
func (b *Bitmap) Len() int { return b.n }
