package sift

import (
	"encoding/binary"
	"math"

	sifterrors "github.com/siftd/sift/errors"
)

const (
	// magic number for sift filter files, "SIFT" in little-endian
	fileMagic = uint32(0x53494654)

	// fileVersion is the current format version
	fileVersion = uint16(0x0001)

	// fileHeaderSize is the exact size of the serialized header (64 bytes)
	fileHeaderSize = 64

	// fileFooterSize is the exact size of the serialized footer (16 bytes)
	fileFooterSize = 16

	// minFileSize is the smallest well-formed file: header plus footer
	// around an empty table (the degenerate zero-item filter).
	minFileSize = fileHeaderSize + fileFooterSize
)

// fileHeader is the 64-byte file header.
//
// Layout:
//
//	Offset  Size  Field       Type
//	0       4     Magic       0x53494654 ("SIFT")
//	4       2     Version     0x0001
//	6       2     Mode        uint16_le (0=bitset)
//	8       8     FilterSize  uint64_le (table cells)
//	16      8     NumItems    uint64_le
//	24      8     TargetRate  float64_le (IEEE 754 bits)
//	32      8     TableBytes  uint64_le (table region length)
//	40      24    Reserved    [24]byte (zero)
//
// The binary format carries no item list: it implements the
// probabilistic-only policy, which is why only ModeBitSet (whose probe alone
// never yields false negatives) may be written. Exact-backed filters belong
// in the JSON envelope.
type fileHeader struct {
	Magic      uint32
	Version    uint16
	Mode       Mode
	FilterSize uint64
	NumItems   uint64
	TargetRate float64
	TableBytes uint64
	Reserved   [24]byte
}

// encodeTo serializes the header into an existing 64-byte buffer.
func (h *fileHeader) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], uint16(h.Mode))
	binary.LittleEndian.PutUint64(buf[8:16], h.FilterSize)
	binary.LittleEndian.PutUint64(buf[16:24], h.NumItems)
	binary.LittleEndian.PutUint64(buf[24:32], math.Float64bits(h.TargetRate))
	binary.LittleEndian.PutUint64(buf[32:40], h.TableBytes)
	copy(buf[40:64], h.Reserved[:])
}

// decodeFileHeader parses a 64-byte header.
func decodeFileHeader(buf []byte) (*fileHeader, error) {
	if len(buf) < fileHeaderSize {
		return nil, sifterrors.ErrTruncatedFile
	}

	h := &fileHeader{
		Magic:      binary.LittleEndian.Uint32(buf[0:4]),
		Version:    binary.LittleEndian.Uint16(buf[4:6]),
		Mode:       Mode(binary.LittleEndian.Uint16(buf[6:8])),
		FilterSize: binary.LittleEndian.Uint64(buf[8:16]),
		NumItems:   binary.LittleEndian.Uint64(buf[16:24]),
		TargetRate: math.Float64frombits(binary.LittleEndian.Uint64(buf[24:32])),
		TableBytes: binary.LittleEndian.Uint64(buf[32:40]),
	}
	copy(h.Reserved[:], buf[40:64])

	if h.Magic != fileMagic {
		return nil, sifterrors.ErrInvalidMagic
	}
	if h.Version != fileVersion {
		return nil, sifterrors.ErrInvalidVersion
	}
	if h.Mode != ModeBitSet {
		return nil, sifterrors.ErrBinaryUnsupported
	}
	if !(h.TargetRate > 0 && h.TargetRate < 1) {
		return nil, sifterrors.ErrInvalidFormat
	}
	if h.NumItems > h.FilterSize {
		return nil, sifterrors.ErrInvalidFormat
	}
	if h.TableBytes != (h.FilterSize+7)/8 {
		return nil, sifterrors.ErrTableSizeMismatch
	}

	return h, nil
}

// fileFooter is the 16-byte file footer.
//
// Layout:
//
//	Offset  Size  Field      Type
//	0       8     TableHash  uint64_le (xxHash64 of the table region)
//	8       8     Reserved   [8]byte (zero)
type fileFooter struct {
	TableHash uint64
	Reserved  [8]byte
}

// encodeTo serializes the footer into an existing 16-byte buffer.
func (f *fileFooter) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.TableHash)
	copy(buf[8:16], f.Reserved[:])
}

// decodeFileFooter parses a 16-byte footer.
func decodeFileFooter(buf []byte) (*fileFooter, error) {
	if len(buf) < fileFooterSize {
		return nil, sifterrors.ErrTruncatedFile
	}
	f := &fileFooter{
		TableHash: binary.LittleEndian.Uint64(buf[0:8]),
	}
	copy(f.Reserved[:], buf[8:16])
	return f, nil
}
