// Package bitset provides a fixed-length packed bit set.
package bitset

import (
	"encoding/binary"
	"math/bits"
)

// BitSet is a fixed-length sequence of bits packed into uint64 words.
// Bit i lives in word i>>6 at position i&63 (LSB0 order), so the
// little-endian byte serialization matches plain byte-level packing
// where bit i is the (i&7)-th bit of byte i>>3.
//
// A BitSet is mutated only while a filter is being built. After the build
// completes it is read-only, so concurrent Test calls need no
// synchronization.
type BitSet struct {
	length uint64
	words  []uint64
}

// New returns a zeroed bit set with the given length in bits.
func New(length uint64) *BitSet {
	return &BitSet{
		length: length,
		words:  make([]uint64, (length+63)/64),
	}
}

// Len returns the length in bits.
func (b *BitSet) Len() uint64 {
	return b.length
}

// Set sets bit i. Panics if i >= Len().
func (b *BitSet) Set(i uint64) {
	if i >= b.length {
		panic("bitset: index out of range")
	}
	b.words[i>>6] |= 1 << (i & 63)
}

// Test reports whether bit i is set. Panics if i >= Len().
func (b *BitSet) Test(i uint64) bool {
	if i >= b.length {
		panic("bitset: index out of range")
	}
	return b.words[i>>6]&(1<<(i&63)) != 0
}

// OnesCount returns the number of set bits.
func (b *BitSet) OnesCount() uint64 {
	var n uint64
	for _, w := range b.words {
		n += uint64(bits.OnesCount64(w))
	}
	return n
}

// Bytes returns the packed little-endian representation, ceil(Len()/8) bytes.
func (b *BitSet) Bytes() []byte {
	out := make([]byte, (b.length+7)/8)
	var tmp [8]byte
	for i, w := range b.words {
		binary.LittleEndian.PutUint64(tmp[:], w)
		copy(out[i*8:], tmp[:])
	}
	return out
}

// FromBytes reconstructs a bit set of the given bit length from its packed
// representation. Returns ok=false if len(data) is not ceil(length/8).
// Stray bits beyond length in the final byte are masked off.
func FromBytes(data []byte, length uint64) (*BitSet, bool) {
	if uint64(len(data)) != (length+7)/8 {
		return nil, false
	}
	b := New(length)
	var tmp [8]byte
	for i := range b.words {
		clear(tmp[:])
		copy(tmp[:], data[i*8:])
		b.words[i] = binary.LittleEndian.Uint64(tmp[:])
	}
	if r := length & 63; r != 0 {
		b.words[len(b.words)-1] &= (uint64(1) << r) - 1
	}
	return b, true
}
