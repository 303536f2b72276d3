package sift

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	sifterrors "github.com/siftd/sift/errors"
)

// writeTestFile persists f under dir and returns the path.
func writeTestFile(t *testing.T, dir string, f Filter) string {
	t.Helper()
	path := filepath.Join(dir, "filter.sift")
	if err := WriteFile(path, f); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestFileRoundTrip(t *testing.T) {
	rng := newTestRNG(t)
	items := distinctItems(rng, "member", 500)
	f := mustBuild(t, items)
	path := writeTestFile(t, t.TempDir(), f)

	ff, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ff.Close()

	if ff.Count() != f.Count() {
		t.Fatalf("Count: got %d, want %d", ff.Count(), f.Count())
	}
	probes := append(items, distinctItems(rng, "absent", 500)...)
	for _, probe := range probes {
		if got, want := ff.Contains(probe), f.Contains(probe); got != want {
			t.Fatalf("file filter disagrees on %q: got %v, want %v", probe, got, want)
		}
	}

	stats := ff.Stats()
	if stats.Mode != ModeBitSet || stats.NumItems != len(items) {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestReadFileMatchesOpen(t *testing.T) {
	rng := newTestRNG(t)
	items := distinctItems(rng, "member", 200)
	path := writeTestFile(t, t.TempDir(), mustBuild(t, items))

	heap, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	mapped, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer mapped.Close()

	for _, probe := range append(items, distinctItems(rng, "absent", 200)...) {
		if heap.Contains(probe) != mapped.Contains(probe) {
			t.Fatalf("heap and mapped filters disagree on %q", probe)
		}
	}
}

func TestOpenBytesRoundTrip(t *testing.T) {
	rng := newTestRNG(t)
	items := distinctItems(rng, "member", 100)
	f := mustBuild(t, items)
	path := writeTestFile(t, t.TempDir(), f)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	ff, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	for _, item := range items {
		if !ff.Contains(item) {
			t.Fatalf("member %q reads absent", item)
		}
	}
	if err := ff.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestWriteFileEmptyFilter(t *testing.T) {
	f := mustBuild(t, nil)
	path := writeTestFile(t, t.TempDir(), f)

	ff, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ff.Close()
	if ff.Count() != 0 {
		t.Errorf("Count() = %d, want 0", ff.Count())
	}
	if ff.Contains([]byte("anything")) {
		t.Error("empty file filter reports membership")
	}
}

func TestWriteFileRejectsXOR(t *testing.T) {
	rng := newTestRNG(t)
	f := mustBuild(t, distinctItems(rng, "member", 10), WithMode(ModeXORAccum))
	err := WriteFile(filepath.Join(t.TempDir(), "x.sift"), f)
	if !errors.Is(err, sifterrors.ErrBinaryUnsupported) {
		t.Errorf("got %v, want ErrBinaryUnsupported", err)
	}
}

func TestOpenBytesRejectsCorruption(t *testing.T) {
	rng := newTestRNG(t)
	items := distinctItems(rng, "member", 100)
	path := writeTestFile(t, t.TempDir(), mustBuild(t, items))
	good, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(data []byte) []byte
		want   error
	}{
		{"truncated below minimum", func(d []byte) []byte { return d[:minFileSize-1] }, sifterrors.ErrTruncatedFile},
		{"truncated table", func(d []byte) []byte { return d[:len(d)-fileFooterSize-1] }, sifterrors.ErrTruncatedFile},
		{"trailing garbage", func(d []byte) []byte { return append(d, 0) }, sifterrors.ErrTruncatedFile},
		{"bad magic", func(d []byte) []byte {
			binary.LittleEndian.PutUint32(d[0:4], 0xDEADBEEF)
			return d
		}, sifterrors.ErrInvalidMagic},
		{"bad version", func(d []byte) []byte {
			binary.LittleEndian.PutUint16(d[4:6], 0xFFFF)
			return d
		}, sifterrors.ErrInvalidVersion},
		{"bad mode", func(d []byte) []byte {
			binary.LittleEndian.PutUint16(d[6:8], 0x07)
			return d
		}, sifterrors.ErrBinaryUnsupported},
		{"flipped table bit", func(d []byte) []byte {
			d[fileHeaderSize] ^= 0x01
			return d
		}, sifterrors.ErrChecksumFailed},
		{"flipped checksum", func(d []byte) []byte {
			d[len(d)-fileFooterSize] ^= 0x01
			return d
		}, sifterrors.ErrChecksumFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.mutate(append([]byte(nil), good...))
			if _, err := OpenBytes(data); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	rng := newTestRNG(t)
	path := writeTestFile(t, t.TempDir(), mustBuild(t, distinctItems(rng, "member", 10)))
	ff, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ff.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := ff.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
