package sift

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	sifterrors "github.com/siftd/sift/errors"
	"github.com/siftd/sift/internal/bitset"
)

// WriteFile persists a filter in the compact binary format at path.
//
// Layout: [Header 64B][Table region][Footer 16B], where the table region is
// the packed bit table and the footer carries its xxHash64. The file is
// written to a temporary sibling and renamed into place so a concurrently
// rescanning registry never observes a partial file.
//
// Only ModeBitSet filters are accepted; the binary format stores no item
// list, and dropping the exact set from a bit-set filter cannot change any
// Contains result. Other modes fail with ErrBinaryUnsupported.
func WriteFile(path string, f Filter) error {
	p, err := Encode(f)
	if err != nil {
		return err
	}
	if p.Mode != ModeBitSet.String() {
		return fmt.Errorf("%w: cannot write %q filter", sifterrors.ErrBinaryUnsupported, p.Mode)
	}

	hdr := fileHeader{
		Magic:      fileMagic,
		Version:    fileVersion,
		Mode:       ModeBitSet,
		FilterSize: p.FilterSize,
		NumItems:   uint64(p.NumItems),
		TargetRate: p.FalsePositiveRate,
		TableBytes: uint64(len(p.BitSet)),
	}
	ftr := fileFooter{
		TableHash: xxhash.Sum64(p.BitSet),
	}

	buf := make([]byte, fileHeaderSize+len(p.BitSet)+fileFooterSize)
	hdr.encodeTo(buf[:fileHeaderSize])
	copy(buf[fileHeaderSize:], p.BitSet)
	ftr.encodeTo(buf[fileHeaderSize+len(p.BitSet):])

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create filter file: %w", err)
	}
	if _, err := tmp.Write(buf); err != nil {
		return errors.Join(fmt.Errorf("write filter file: %w", err), tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Sync(); err != nil {
		return errors.Join(fmt.Errorf("sync filter file: %w", err), tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("close filter file: %w", err), os.Remove(tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Join(fmt.Errorf("rename filter file: %w", err), os.Remove(tmp.Name()))
	}
	return nil
}

// FileFilter is a read-only bit-set filter backed by a memory-mapped file.
//
// Thread safety:
//   - Contains and Count are safe for concurrent use
//   - Close is NOT safe to call concurrently with queries
//   - After Close returns, no methods may be called on the FileFilter
type FileFilter struct {
	mmap   mmap.MMap
	table  []byte // view into the mapped table region
	header *fileHeader
	closed atomic.Bool
}

// Open opens a binary filter file for querying. The file is memory-mapped
// and the descriptor is closed before returning; the table checksum is
// verified eagerly so corruption surfaces here, never at query time.
func Open(path string) (*FileFilter, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open filter file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat filter file: %w", err)
	}
	if stat.Size() < minFileSize {
		return nil, sifterrors.ErrTruncatedFile
	}

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap filter file: %w", err)
	}

	f := &FileFilter{mmap: mm}
	if err := f.initFromData([]byte(mm)); err != nil {
		return nil, errors.Join(err, f.Close())
	}

	// Ask the kernel to pull the mapping in ahead of the first queries.
	// The whole region is advised: madvise wants a page-aligned address,
	// which the table view into the mapping is not.
	adviseWillNeed([]byte(mm))
	return f, nil
}

// OpenBytes creates a FileFilter from an in-memory encoding of the binary
// format. No file is opened or memory-mapped; Close is a no-op. The caller
// must not modify data while the filter is in use.
func OpenBytes(data []byte) (*FileFilter, error) {
	if len(data) < minFileSize {
		return nil, sifterrors.ErrTruncatedFile
	}
	f := &FileFilter{}
	if err := f.initFromData(data); err != nil {
		return nil, err
	}
	return f, nil
}

// ReadFile loads a binary filter file into an ordinary heap-backed Filter.
// The mapping is released before returning, so the result has no Close
// obligation and can outlive any number of registry reloads.
func ReadFile(path string) (Filter, error) {
	ff, err := Open(path)
	if err != nil {
		return nil, err
	}
	f, err := Decode(ff.portable())
	return f, errors.Join(err, ff.Close())
}

// initFromData parses and validates header, table, and footer.
func (f *FileFilter) initFromData(data []byte) error {
	hdr, err := decodeFileHeader(data[:fileHeaderSize])
	if err != nil {
		return err
	}
	if uint64(len(data)) != fileHeaderSize+hdr.TableBytes+fileFooterSize {
		return sifterrors.ErrTruncatedFile
	}
	table := data[fileHeaderSize : fileHeaderSize+hdr.TableBytes]

	ftr, err := decodeFileFooter(data[fileHeaderSize+hdr.TableBytes:])
	if err != nil {
		return err
	}
	if xxhash.Sum64(table) != ftr.TableHash {
		return sifterrors.ErrChecksumFailed
	}

	f.header = hdr
	f.table = table
	return nil
}

// Contains reports whether item is possibly a member. Probes the mapped
// table directly; bit i is the (i&7)-th bit of byte i>>3, matching the
// packed bitset serialization.
func (f *FileFilter) Contains(item []byte) bool {
	size := f.header.FilterSize
	if size == 0 {
		return false
	}
	for seed := uint32(0); seed < probeCount; seed++ {
		i := indexHash(item, seed) % size
		if f.table[i>>3]&(1<<(i&7)) == 0 {
			return false
		}
	}
	return true
}

// Count returns the number of distinct items the filter was built from.
func (f *FileFilter) Count() int {
	return int(f.header.NumItems)
}

// Stats returns build-time statistics recorded in the file header.
func (f *FileFilter) Stats() Stats {
	return Stats{
		Mode:       f.header.Mode,
		FilterSize: f.header.FilterSize,
		NumItems:   int(f.header.NumItems),
		TargetRate: f.header.TargetRate,
	}
}

func (f *FileFilter) portable() Portable {
	bits, _ := bitset.FromBytes(f.table, f.header.FilterSize)
	return Portable{
		Mode:              ModeBitSet.String(),
		FilterSize:        f.header.FilterSize,
		NumItems:          int(f.header.NumItems),
		FalsePositiveRate: f.header.TargetRate,
		BitSet:            bits.Bytes(),
	}
}

// Close releases the memory mapping. Idempotent; must only be called after
// all queries have completed.
func (f *FileFilter) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	if f.mmap == nil {
		return nil
	}
	mm := f.mmap
	f.mmap = nil
	f.table = nil
	if err := mm.Unmap(); err != nil {
		return fmt.Errorf("unmap filter file: %w", err)
	}
	return nil
}
