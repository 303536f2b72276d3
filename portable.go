package sift

import (
	"bytes"
	"fmt"
	"slices"

	sifterrors "github.com/siftd/sift/errors"
	"github.com/siftd/sift/internal/bitset"
)

// Portable is the language-neutral encoding of a Filter, suitable for JSON
// persistence and transport.
//
// Exactly one table field is populated depending on Mode: BitSet holds the
// packed cell flags for "bitset" (base64 under encoding/json), Fingerprints
// holds the 32-bit cells for "xor". Items is present only for exact-backed
// filters; omitting it trades the member-exactness guarantee for space.
// Items are arbitrary byte strings and therefore base64-encoded like BitSet;
// encoding them as JSON strings would mangle non-UTF-8 members.
type Portable struct {
	Mode              string   `json:"mode"`
	FilterSize        uint64   `json:"filter_size"`
	NumItems          int      `json:"num_items"`
	FalsePositiveRate float64  `json:"false_positive_rate"`
	BitSet            []byte   `json:"bitset,omitempty"`
	Fingerprints      []uint32 `json:"fingerprints,omitempty"`
	Items             [][]byte `json:"items,omitempty"`
}

// portabler is implemented by every filter variant in this package.
type portabler interface {
	portable() Portable
}

// Encode converts a filter built or decoded by this package into its
// portable value. Foreign Filter implementations are rejected with
// ErrUnknownMode.
//
// For any filter F and any probe item i, Decode(Encode(F)).Contains(i)
// equals F.Contains(i).
func Encode(f Filter) (Portable, error) {
	p, ok := f.(portabler)
	if !ok {
		return Portable{}, fmt.Errorf("%w: %T is not encodable", sifterrors.ErrUnknownMode, f)
	}
	return p.portable(), nil
}

// Decode reconstructs a Filter from its portable value.
//
// Required fields are validated up front: a missing or unrecognized mode, a
// rate outside (0, 1), a filter size below the item count, or an item list
// whose length disagrees with num_items fail with ErrInvalidFormat (or
// ErrUnknownMode); a table whose length disagrees with filter_size fails
// with ErrTableSizeMismatch. Corruption is never discovered lazily at query
// time.
func Decode(p Portable) (Filter, error) {
	mode, err := parseMode(p.Mode)
	if err != nil {
		return nil, err
	}
	if !(p.FalsePositiveRate > 0 && p.FalsePositiveRate < 1) {
		return nil, fmt.Errorf("%w: false_positive_rate %v outside (0, 1)",
			sifterrors.ErrInvalidFormat, p.FalsePositiveRate)
	}
	if p.NumItems < 0 || uint64(p.NumItems) > p.FilterSize {
		return nil, fmt.Errorf("%w: filter_size %d below num_items %d",
			sifterrors.ErrInvalidFormat, p.FilterSize, p.NumItems)
	}

	meta := filterMeta{
		size:     p.FilterSize,
		numItems: p.NumItems,
		rate:     p.FalsePositiveRate,
	}
	if p.Items != nil {
		set := make(map[string]struct{}, len(p.Items))
		for _, item := range p.Items {
			set[string(item)] = struct{}{}
		}
		if len(set) != p.NumItems {
			return nil, fmt.Errorf("%w: %d distinct items listed, num_items says %d",
				sifterrors.ErrInvalidFormat, len(set), p.NumItems)
		}
		meta.items = set
	}

	switch mode {
	case ModeBitSet:
		bits, ok := bitset.FromBytes(p.BitSet, p.FilterSize)
		if !ok {
			return nil, fmt.Errorf("%w: bitset holds %d bytes, want %d for %d cells",
				sifterrors.ErrTableSizeMismatch, len(p.BitSet), (p.FilterSize+7)/8, p.FilterSize)
		}
		return &bitSetFilter{meta: meta, bits: bits}, nil
	case ModeXORAccum:
		if uint64(len(p.Fingerprints)) != p.FilterSize {
			return nil, fmt.Errorf("%w: %d fingerprint cells, filter_size says %d",
				sifterrors.ErrTableSizeMismatch, len(p.Fingerprints), p.FilterSize)
		}
		fps := slices.Clone(p.Fingerprints)
		if fps == nil {
			fps = []uint32{}
		}
		return &xorAccumFilter{meta: meta, fps: fps}, nil
	}
	return nil, fmt.Errorf("%w: %d", sifterrors.ErrUnknownMode, mode)
}

// portableMeta fills the fields shared by every variant. Items are emitted
// sorted so encoding is deterministic.
func portableMeta(mode Mode, m *filterMeta) Portable {
	p := Portable{
		Mode:              mode.String(),
		FilterSize:        m.size,
		NumItems:          m.numItems,
		FalsePositiveRate: m.rate,
	}
	if m.items != nil {
		items := make([][]byte, 0, len(m.items))
		for item := range m.items {
			items = append(items, []byte(item))
		}
		slices.SortFunc(items, bytes.Compare)
		p.Items = items
	}
	return p
}

func (f *bitSetFilter) portable() Portable {
	p := portableMeta(ModeBitSet, &f.meta)
	p.BitSet = f.bits.Bytes()
	return p
}

func (f *xorAccumFilter) portable() Portable {
	p := portableMeta(ModeXORAccum, &f.meta)
	p.Fingerprints = slices.Clone(f.fps)
	return p
}
