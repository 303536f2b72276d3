package sift

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	randv2 "math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x5AFE5EEDC0FFEE00
	testSeed2 = 0x0123456789ABCDEF
)

// newTestRNG returns a deterministic RNG keyed by the test name, so each
// test sees a stable but distinct stream across runs and processes.
func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

// distinctItems returns n distinct items carrying prefix. Items generated
// with different prefixes never collide with each other.
func distinctItems(rng *randv2.Rand, prefix string, n int) [][]byte {
	items := make([][]byte, n)
	for i := range items {
		items[i] = fmt.Appendf(nil, "%s-%d-%016x", prefix, i, rng.Uint64())
	}
	return items
}

// mustBuild builds a filter or fails the test.
func mustBuild(t testing.TB, items [][]byte, opts ...BuildOption) Filter {
	t.Helper()
	f, err := Build(items, opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return f
}
