package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/siftd/sift"
	sifterrors "github.com/siftd/sift/errors"
)

// Envelope is the on-disk JSON wrapper around a portable filter value.
// One file per filter, named <uuid>.json (optionally zstd-compressed as
// <uuid>.json.zst).
type Envelope struct {
	UUID       string        `json:"uuid"`
	SourceFile string        `json:"source_file"`
	NumEntries int           `json:"num_entries"`
	FilterData sift.Portable `json:"filter_data"`
}

// loadEntry loads a single filter file in any of the supported formats.
func loadEntry(path string) (*Entry, error) {
	switch {
	case strings.HasSuffix(path, ".sift"):
		return loadBinary(path)
	case strings.HasSuffix(path, ".json.zst"):
		return loadEnvelope(path, true)
	default:
		return loadEnvelope(path, false)
	}
}

// loadBinary loads a compact binary filter file. The binary format has no
// envelope, so the UUID is the file name stem.
func loadBinary(path string) (*Entry, error) {
	f, err := sift.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Entry{
		UUID:       strings.TrimSuffix(filepath.Base(path), ".sift"),
		NumEntries: f.Count(),
		Filter:     f,
	}, nil
}

func loadEnvelope(path string, compressed bool) (*Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter file: %w", err)
	}
	if compressed {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("init zstd: %w", err)
		}
		defer dec.Close()
		raw, err = dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd decompress: %v", sifterrors.ErrInvalidFormat, err)
		}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", sifterrors.ErrInvalidFormat, err)
	}
	if env.UUID == "" {
		return nil, fmt.Errorf("%w: missing uuid", sifterrors.ErrInvalidFormat)
	}

	f, err := sift.Decode(env.FilterData)
	if err != nil {
		return nil, err
	}
	return &Entry{
		UUID:       env.UUID,
		SourceFile: env.SourceFile,
		NumEntries: env.NumEntries,
		Filter:     f,
	}, nil
}

// WriteEnvelope persists env as <dir>/<uuid>.json, or <uuid>.json.zst when
// compress is set. The file is written to a temporary sibling and renamed
// into place so a concurrent Reload never observes a partial file.
// Returns the path written.
func WriteEnvelope(dir string, env *Envelope, compress bool) (string, error) {
	if env.UUID == "" {
		return "", fmt.Errorf("%w: missing uuid", sifterrors.ErrInvalidFormat)
	}
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	name := env.UUID + ".json"
	if compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return "", fmt.Errorf("init zstd: %w", err)
		}
		raw = enc.EncodeAll(raw, nil)
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("close zstd: %w", err)
		}
		name += ".zst"
	}

	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, name+".tmp*")
	if err != nil {
		return "", fmt.Errorf("create filter file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		return "", errors.Join(fmt.Errorf("write filter file: %w", err), tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Join(fmt.Errorf("close filter file: %w", err), os.Remove(tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Join(fmt.Errorf("rename filter file: %w", err), os.Remove(tmp.Name()))
	}
	return path, nil
}
