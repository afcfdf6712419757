package clusterx

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
)

// Vector is an encoded sequence. It is never mutated after creation.
type Vector struct {
	bits    *bitset.BitSet
	length  int // symbols
	unknown int // symbols encoded with the fallback chunk
}

// Len returns the number of encoded symbols
func (v *Vector) Len() int {
	return v.length
}

// Unknown returns the number of unrecognized symbols in the source sequence
func (v *Vector) Unknown() int {
	return v.unknown
}

// equal reports whether both vectors encode the same symbols
func (v *Vector) equal(other *Vector) bool {
	return v.length == other.length && v.bits.Equal(other.bits)
}

// Key returns a string that is equal for two vectors iff they are equal.
// It is the symbol length followed by the positions of all set bits.
func (v *Vector) Key() string {
	buf := make([]byte, 0, binary.MaxVarintLen64*(1+int(v.bits.Count())))
	buf = binary.AppendUvarint(buf, uint64(v.length))
	for i, ok := v.bits.NextSet(0); ok; i, ok = v.bits.NextSet(i + 1) {
		buf = binary.AppendUvarint(buf, uint64(i))
	}
	return string(buf)
}

// setBits returns the positions of all set bits
func (v *Vector) setBits() []uint {
	positions := make([]uint, 0, v.bits.Count())
	for i, ok := v.bits.NextSet(0); ok; i, ok = v.bits.NextSet(i + 1) {
		positions = append(positions, i)
	}
	return positions
}

// vectorFromBits rebuilds a vector of length symbols of the given width
func vectorFromBits(length, width int, positions []uint) (*Vector, bool) {
	size := uint(length * width)
	v := &Vector{bits: bitset.New(size), length: length}
	seen := make([]bool, length)
	for _, p := range positions {
		if p >= size {
			return nil, false
		}
		v.bits.Set(p)
		seen[p/uint(width)] = true
	}
	for _, ok := range seen {
		if !ok {
			v.unknown++
		}
	}
	return v, true
}

// Mismatches returns the raw bit-mismatch count between a and b.
// Vectors of different symbol length cannot be compared.
func Mismatches(a, b *Vector) (uint, error) {
	if a.length != b.length || a.bits.Len() != b.bits.Len() {
		return 0, &LengthError{Want: a.length, Got: b.length}
	}
	return a.bits.SymmetricDifferenceCardinality(b.bits), nil
}

// Distances writes the raw bit-mismatch count between query and every
// vector of vectors into dst, which must have the same length as vectors.
func Distances(vectors []*Vector, query *Vector, dst []uint) error {
	if len(dst) != len(vectors) {
		panic("clusterx: distance buffer does not match vectors")
	}
	for i, v := range vectors {
		d, err := Mismatches(v, query)
		if err != nil {
			return err
		}
		dst[i] = d
	}
	return nil
}
