package sift

import (
	"fmt"

	sifterrors "github.com/siftd/sift/errors"
)

// Mode identifies the construction strategy backing a filter.
// It is stored in the binary file header and the portable encoding.
type Mode uint16

const (
	// ModeBitSet stores 0/1 flags and probes probeCount cells per item.
	// An item is a possible member iff all probed cells are set, so members
	// can never read absent: no false negatives, ever.
	ModeBitSet Mode = 0

	// ModeXORAccum XOR-accumulates 32-bit fingerprints into shared cells.
	// Later insertions can corrupt an earlier member's encoding, so the
	// probe alone may produce false negatives. Build always retains the
	// exact item set in this mode to keep real members true; decoding a
	// persisted value without its item list reproduces the weaker probe
	// behavior as serialized.
	ModeXORAccum Mode = 1
)

// String returns the mode name used in the portable encoding.
func (m Mode) String() string {
	switch m {
	case ModeBitSet:
		return "bitset"
	case ModeXORAccum:
		return "xor"
	default:
		return "unknown"
	}
}

// parseMode maps a portable encoding mode string back to a Mode.
func parseMode(s string) (Mode, error) {
	switch s {
	case "bitset":
		return ModeBitSet, nil
	case "xor":
		return ModeXORAccum, nil
	case "":
		return 0, fmt.Errorf("%w: missing mode", sifterrors.ErrInvalidFormat)
	}
	return 0, fmt.Errorf("%w: %q", sifterrors.ErrUnknownMode, s)
}
