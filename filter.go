package sift

import (
	"github.com/siftd/sift/internal/bitset"
)

// Filter answers approximate membership queries over a set fixed at build
// time.
//
// Implementations are immutable: Contains is safe for unlimited concurrent
// readers without synchronization. There is no insert, remove, or resize;
// changing the set means building a new Filter and swapping the reference
// (see registry.Registry for the serving-side swap discipline).
type Filter interface {
	// Contains reports whether item is possibly a member. A false result is
	// authoritative for ModeBitSet and for any exact-backed filter; a true
	// result may be a false positive at roughly the configured rate.
	Contains(item []byte) bool

	// Count returns the number of distinct items the filter was built from.
	Count() int
}

// Stats describes a filter for logging and metadata listings.
type Stats struct {
	Mode       Mode
	FilterSize uint64
	NumItems   int
	TargetRate float64
	ExactItems bool
}

// Describe returns build-time statistics for filters produced by this
// package. ok is false for foreign Filter implementations.
func Describe(f Filter) (Stats, bool) {
	s, ok := f.(interface{ Stats() Stats })
	if !ok {
		return Stats{}, false
	}
	return s.Stats(), true
}

// filterMeta carries the fields shared by every filter variant.
type filterMeta struct {
	size     uint64
	numItems int
	rate     float64
	items    map[string]struct{} // nil under the probabilistic-only policy
}

// exactHit reports whether item is in the retained exact set, if any.
func (m *filterMeta) exactHit(item []byte) bool {
	if m.items == nil {
		return false
	}
	_, ok := m.items[string(item)]
	return ok
}

// bitSetFilter is the ModeBitSet variant: a packed table of 0/1 cells.
type bitSetFilter struct {
	meta filterMeta
	bits *bitset.BitSet
}

func (f *bitSetFilter) Contains(item []byte) bool {
	if f.meta.exactHit(item) {
		return true
	}
	if f.meta.size == 0 {
		return false
	}
	for seed := uint32(0); seed < probeCount; seed++ {
		if !f.bits.Test(indexHash(item, seed) % f.meta.size) {
			return false
		}
	}
	return true
}

func (f *bitSetFilter) Count() int {
	return f.meta.numItems
}

func (f *bitSetFilter) Stats() Stats {
	return Stats{
		Mode:       ModeBitSet,
		FilterSize: f.meta.size,
		NumItems:   f.meta.numItems,
		TargetRate: f.meta.rate,
		ExactItems: f.meta.items != nil,
	}
}

// xorAccumFilter is the ModeXORAccum variant: 32-bit fingerprints
// XOR-accumulated into shared cells. See the ModeXORAccum caveat.
type xorAccumFilter struct {
	meta filterMeta
	fps  []uint32
}

func (f *xorAccumFilter) Contains(item []byte) bool {
	if f.meta.exactHit(item) {
		return true
	}
	if f.meta.size == 0 {
		return false
	}
	var acc uint32
	for seed := uint32(0); seed < probeCount; seed++ {
		idx := indexHash(item, seed) % f.meta.size
		acc ^= f.fps[idx] ^ fingerprintHash(item, seed)
	}
	return acc == 0
}

func (f *xorAccumFilter) Count() int {
	return f.meta.numItems
}

func (f *xorAccumFilter) Stats() Stats {
	return Stats{
		Mode:       ModeXORAccum,
		FilterSize: f.meta.size,
		NumItems:   f.meta.numItems,
		TargetRate: f.meta.rate,
		ExactItems: f.meta.items != nil,
	}
}
