// Package sift implements approximate membership filters: compact structures
// built once from a finite set of byte strings that answer "is this item
// possibly a member?" with a tunable false-positive rate.
//
// # Basic Usage
//
// Building and querying a filter:
//
//	filter, err := sift.Build(items, sift.WithRate(0.01))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if filter.Contains([]byte("alice")) {
//	    // possibly a member
//	}
//
// Persisting and reloading via the portable encoding:
//
//	value, err := sift.Encode(filter)
//	// ... marshal value to JSON, store, load, unmarshal ...
//	filter, err = sift.Decode(value)
//
// Or via the compact binary file format:
//
//	err := sift.WriteFile("allow.sift", filter)
//	filter, err := sift.ReadFile("allow.sift")
//
// # Guarantees
//
// The default ModeBitSet construction has no false negatives: every item
// passed to Build reads true from Contains, always. ModeXORAccum is a
// heuristic fingerprint accumulation kept for compatibility with existing
// persisted filters; its probe alone can miss real members, so builds in
// that mode always retain the exact item set.
//
// Filters are immutable after construction. Contains is safe for unlimited
// concurrent readers; replacing a filter is a reference swap performed by
// the caller (see the registry package).
//
// # Package Structure
//
//   - Public API: builder.go (Build), filter.go (Filter, Stats)
//   - Configuration: options.go (BuildOption, With* functions)
//   - Hashing: hash.go (seeded index and fingerprint hashes)
//   - Portable encoding: portable.go (Portable, Encode, Decode)
//   - Binary format: format.go (header/footer), file.go (WriteFile, Open, ReadFile)
//   - Serving: registry/ (directory store, atomic reload), cmd/siftd, cmd/sift-train
package sift
