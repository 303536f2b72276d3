package sift

import (
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

const (
	// probeCount is the number of probe seeds used per item. Three probes is
	// the standard arity for this class of filter.
	probeCount = 3

	// fingerprintSeedOffset shifts fingerprint seeds away from index seeds so
	// the two streams are decorrelated while reusing a single hash family.
	fingerprintSeedOffset = 100
)

// indexHash returns the table-index hash for item under the given probe seed.
//
// The value is deterministic across processes and platforms for a fixed
// (item, seed) pair: xxh3 folds the seed into the digest directly, so no
// seed-prefix encoding of the item is needed. Callers reduce the result
// modulo the table size to select a cell.
func indexHash(item []byte, seed uint32) uint64 {
	return xxh3.HashSeed(item, uint64(seed))
}

// fingerprintHash returns the 32-bit fingerprint for item under the given
// probe seed. A second algorithm (murmur3) plus the seed offset keeps
// fingerprints independent of the index stream.
func fingerprintHash(item []byte, seed uint32) uint32 {
	return murmur3.Sum32WithSeed(item, seed+fingerprintSeedOffset)
}
