// Package registry maintains the set of persisted filters served by siftd.
//
// A Registry maps filter UUIDs to loaded filters. Lookups are lock-free
// reads of an immutable snapshot; Reload scans the filter directory, builds
// a complete replacement snapshot, and swaps it in atomically, so in-flight
// lookups observe either the old or the new set in its entirety, never a
// partially loaded one.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/siftd/sift"
	sifterrors "github.com/siftd/sift/errors"
)

// Entry is one loaded filter together with its envelope metadata.
type Entry struct {
	UUID       string
	SourceFile string
	NumEntries int
	Filter     sift.Filter
}

// snapshot is an immutable view of the loaded filters. Never mutated after
// publication.
type snapshot struct {
	entries map[string]*Entry
	uuids   []string // sorted
}

var emptySnapshot = &snapshot{entries: map[string]*Entry{}}

// Registry maps filter UUIDs to loaded filters backed by a directory of
// filter files. The zero value is not usable; call New.
type Registry struct {
	dir string
	log *slog.Logger

	active atomic.Pointer[snapshot]

	// reloadMu serializes Reload calls. Lookups never take it.
	reloadMu sync.Mutex
}

// New returns a registry serving filters from dir. No files are loaded
// until the first Reload. A nil logger discards reload diagnostics.
func New(dir string, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	r := &Registry{dir: dir, log: log}
	r.active.Store(emptySnapshot)
	return r
}

// Lookup returns the entry for uuid, or ErrFilterNotFound.
func (r *Registry) Lookup(uuid string) (*Entry, error) {
	e, ok := r.active.Load().entries[uuid]
	if !ok {
		return nil, fmt.Errorf("%w: %q", sifterrors.ErrFilterNotFound, uuid)
	}
	return e, nil
}

// Len returns the number of loaded filters.
func (r *Registry) Len() int {
	return len(r.active.Load().entries)
}

// UUIDs returns the loaded filter UUIDs in sorted order.
func (r *Registry) UUIDs() []string {
	return slices.Clone(r.active.Load().uuids)
}

// Entries returns the loaded entries sorted by UUID.
func (r *Registry) Entries() []*Entry {
	snap := r.active.Load()
	out := make([]*Entry, 0, len(snap.uuids))
	for _, id := range snap.uuids {
		out = append(out, snap.entries[id])
	}
	return out
}

// Reload rescans the filter directory and replaces the loaded set
// wholesale. Files are loaded concurrently; a malformed file is logged and
// skipped without failing the reload. A missing directory is not an error
// and yields an empty set. Returns the number of filters loaded.
func (r *Registry) Reload(ctx context.Context) (int, error) {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	paths, err := r.scan()
	if err != nil {
		return 0, err
	}

	var (
		mu      sync.Mutex
		entries = make(map[string]*Entry, len(paths))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := loadEntry(path)
			if err != nil {
				r.log.Warn("skipping malformed filter file",
					"path", path, "error", err)
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if prev, ok := entries[e.UUID]; ok {
				r.log.Warn("duplicate filter uuid, keeping first loaded",
					"uuid", e.UUID, "kept", prev.SourceFile, "skipped", path)
				return nil
			}
			entries[e.UUID] = e
			r.log.Info("loaded filter",
				"uuid", e.UUID, "entries", e.NumEntries, "path", path)
			return nil
		})
	}
	// Only context cancellation propagates; per-file failures are skipped.
	if err := g.Wait(); err != nil {
		return 0, err
	}

	snap := &snapshot{
		entries: maps.Clone(entries),
		uuids:   slices.Sorted(maps.Keys(entries)),
	}
	r.active.Store(snap)
	r.log.Info("filters reloaded", "count", len(snap.entries))
	return len(snap.entries), nil
}

// scan lists loadable filter files in the registry directory.
func (r *Registry) scan() ([]string, error) {
	dirents, err := os.ReadDir(r.dir)
	if os.IsNotExist(err) {
		r.log.Warn("filters directory does not exist", "dir", r.dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan filters directory: %w", err)
	}
	var paths []string
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		switch {
		case strings.HasSuffix(name, ".json"),
			strings.HasSuffix(name, ".json.zst"),
			strings.HasSuffix(name, ".sift"):
			paths = append(paths, filepath.Join(r.dir, name))
		}
	}
	return paths, nil
}
