package bitset

import (
	"testing"
)

func TestSetAndTest(t *testing.T) {
	b := New(200)
	if b.Len() != 200 {
		t.Fatalf("Len() = %d, want 200", b.Len())
	}
	set := []uint64{0, 1, 7, 8, 63, 64, 65, 127, 128, 199}
	for _, i := range set {
		b.Set(i)
	}
	next := 0
	for i := uint64(0); i < 200; i++ {
		want := next < len(set) && set[next] == i
		if want {
			next++
		}
		if got := b.Test(i); got != want {
			t.Errorf("Test(%d) = %v, want %v", i, got, want)
		}
	}
	if got := b.OnesCount(); got != uint64(len(set)) {
		t.Errorf("OnesCount() = %d, want %d", got, len(set))
	}
}

func TestOutOfRangePanics(t *testing.T) {
	b := New(10)
	for _, f := range []func(){
		func() { b.Set(10) },
		func() { _ = b.Test(10) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Error("expected panic for out-of-range index")
				}
			}()
			f()
		}()
	}
}

func TestBytesRoundTrip(t *testing.T) {
	for _, length := range []uint64{0, 1, 7, 8, 9, 63, 64, 65, 200, 1000} {
		b := New(length)
		for i := uint64(0); i < length; i += 3 {
			b.Set(i)
		}
		data := b.Bytes()
		if uint64(len(data)) != (length+7)/8 {
			t.Fatalf("length %d: Bytes() has %d bytes, want %d", length, len(data), (length+7)/8)
		}
		c, ok := FromBytes(data, length)
		if !ok {
			t.Fatalf("length %d: FromBytes rejected own serialization", length)
		}
		for i := uint64(0); i < length; i++ {
			if b.Test(i) != c.Test(i) {
				t.Fatalf("length %d: bit %d differs after round trip", length, i)
			}
		}
	}
}

func TestFromBytesLengthMismatch(t *testing.T) {
	if _, ok := FromBytes(make([]byte, 2), 64); ok {
		t.Error("accepted 2 bytes for 64 bits")
	}
	if _, ok := FromBytes(make([]byte, 9), 64); ok {
		t.Error("accepted 9 bytes for 64 bits")
	}
}

// Stray bits beyond the declared length must not survive FromBytes.
func TestFromBytesMasksTail(t *testing.T) {
	data := []byte{0xFF, 0xFF}
	b, ok := FromBytes(data, 12)
	if !ok {
		t.Fatal("FromBytes rejected valid input")
	}
	if got := b.OnesCount(); got != 12 {
		t.Errorf("OnesCount() = %d, want 12", got)
	}
}
