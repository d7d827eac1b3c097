package table

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/zeebo/xxh3"
)

// keyer hashes the values of a fixed set of columns at a given row. Hash
// collisions are resolved by comparing the values themselves, so the hash is
// only a bucket selector.
type keyer struct {
	cols []Column
	buf  []byte
}

func newKeyer(cols []Column) *keyer { return &keyer{cols: cols, buf: make([]byte, 0, 64)} }

func (k *keyer) hash(i int) uint64 {
	k.buf = k.buf[:0]
	for _, c := range k.cols {
		k.buf = appendValue(k.buf, c.Values[i])
	}
	return xxh3.Hash(k.buf)
}

// equal reports whether row i under k and row j under o carry the same key.
func (k *keyer) equal(i int, o *keyer, j int) bool {
	for n := range k.cols {
		if compareValues(k.cols[n].Values[i], o.cols[n].Values[j]) != 0 {
			return false
		}
	}
	return true
}

func appendValue(b []byte, v any) []byte {
	switch x := v.(type) {
	case nil:
		return append(b, 0)
	case int64:
		b = append(b, 1)
		return binary.LittleEndian.AppendUint64(b, uint64(x))
	case float64:
		b = append(b, 2)
		return binary.LittleEndian.AppendUint64(b, math.Float64bits(x))
	case string:
		b = append(b, 3)
		b = binary.AppendUvarint(b, uint64(len(x)))
		return append(b, x...)
	case bool:
		if x {
			return append(b, 4, 1)
		}
		return append(b, 4, 0)
	case time.Time:
		b = append(b, 5)
		return binary.LittleEndian.AppendUint64(b, uint64(x.UnixNano()))
	default:
		panic("table: unsupported value type")
	}
}

// keySet remembers which keys have been seen, in first-seen order.
type keySet struct {
	buckets map[uint64][]int
	order   []int
}

func newKeySet(capacity int) *keySet {
	return &keySet{buckets: make(map[uint64][]int, capacity)}
}

// add records row i and reports whether its key was new.
func (s *keySet) add(k *keyer, i int) bool {
	_, isNew := s.slot(k, i)
	return isNew
}

// slot returns the group number of row i, creating a group when the key has
// not been seen before.
func (s *keySet) slot(k *keyer, i int) (int, bool) {
	h := k.hash(i)
	for _, g := range s.buckets[h] {
		if k.equal(i, k, s.order[g]) {
			return g, false
		}
	}
	g := len(s.order)
	s.order = append(s.order, i)
	s.buckets[h] = append(s.buckets[h], g)
	return g, true
}
