package sift

import (
	"fmt"
	"math"

	sifterrors "github.com/siftd/sift/errors"
	"github.com/siftd/sift/internal/bitset"
)

// Build constructs an immutable Filter from items.
//
// Duplicate items collapse and input order is irrelevant; Count reports the
// number of distinct items. The target false-positive rate defaults to 0.01
// and must lie in (0, 1) when overridden via WithRate, otherwise Build
// returns ErrInvalidRate.
//
// An empty input is not an error: it yields a degenerate filter with
// Count() == 0 and a zero-length table whose Contains always returns false.
//
// The table holds max(ceil(-n·ln(p)/(ln 2)²), n) cells, the standard
// bit-budget approximation for bloom-style structures. The rate is a target,
// not a hard bound.
func Build(items [][]byte, opts ...BuildOption) (Filter, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	// The negated form also rejects NaN.
	if !(cfg.rate > 0 && cfg.rate < 1) {
		return nil, fmt.Errorf("%w: got %v", sifterrors.ErrInvalidRate, cfg.rate)
	}

	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[string(item)] = struct{}{}
	}
	size := tableSize(uint64(len(set)), cfg.rate)

	meta := filterMeta{
		size:     size,
		numItems: len(set),
		rate:     cfg.rate,
	}

	switch cfg.mode {
	case ModeBitSet:
		if cfg.exactItems {
			meta.items = set
		}
		bits := bitset.New(size)
		for item := range set {
			for seed := uint32(0); seed < probeCount; seed++ {
				bits.Set(indexHash([]byte(item), seed) % size)
			}
		}
		return &bitSetFilter{meta: meta, bits: bits}, nil

	case ModeXORAccum:
		// The accumulation probe can cancel a member's own encoding as
		// later items land in shared cells, so the exact set is always
		// retained in this mode.
		meta.items = set
		fps := make([]uint32, size)
		for item := range set {
			for seed := uint32(0); seed < probeCount; seed++ {
				idx := indexHash([]byte(item), seed) % size
				fps[idx] ^= fingerprintHash([]byte(item), seed)
			}
		}
		return &xorAccumFilter{meta: meta, fps: fps}, nil
	}
	return nil, fmt.Errorf("%w: %d", sifterrors.ErrUnknownMode, cfg.mode)
}

// tableSize returns the cell count for n distinct items at target rate p:
// max(ceil(-n·ln(p)/(ln 2)²), n), or 0 when n == 0.
func tableSize(n uint64, p float64) uint64 {
	if n == 0 {
		return 0
	}
	cells := math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	if cells < float64(n) {
		return n
	}
	return uint64(cells)
}
