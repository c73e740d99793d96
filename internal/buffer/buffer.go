// Package buffer gives the rest of autodoc one way to read and rewrite source files. Each path has a reader/writer lock: reads (locating,
// collecting) share it, and an Edit holds it exclusively for its whole read-modify-write sequence. Nothing is cached; every Read goes to disk,
// unless the store is a dry run, in which case edits stay in memory and can be rendered as diffs.
package buffer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/codalotl/autodoc/internal/diff"
)

// Store serializes access to files by path.
type Store struct {
	dryRun bool

	mu    sync.Mutex
	locks map[string]*sync.RWMutex

	// Dry-run state, guarded by mu.
	overlay  map[string][]byte
	original map[string][]byte
}

// NewStore returns a Store. With dryRun, edits are kept in memory and never written.
func NewStore(dryRun bool) *Store {
	return &Store{
		dryRun:   dryRun,
		locks:    make(map[string]*sync.RWMutex),
		overlay:  make(map[string][]byte),
		original: make(map[string][]byte),
	}
}

// DryRun reports whether edits are kept in memory.
func (s *Store) DryRun() bool {
	return s.dryRun
}

func key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (s *Store) lock(k string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[k]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[k] = l
	}
	return l
}

// Read returns the current contents of path.
func (s *Store) Read(path string) ([]byte, error) {
	k := key(path)
	l := s.lock(k)
	l.RLock()
	defer l.RUnlock()
	return s.load(k, path)
}

// load must be called with the path's lock held.
func (s *Store) load(k, path string) ([]byte, error) {
	if s.dryRun {
		s.mu.Lock()
		b, ok := s.overlay[k]
		s.mu.Unlock()
		if ok {
			return bytes.Clone(b), nil
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return b, nil
}

// Edit holds path's exclusive lock while it calls fn with the current contents and stores what fn returns. If fn returns an error, nothing is
// written. Returning the contents unchanged is a no-op.
func (s *Store) Edit(path string, fn func(src []byte) ([]byte, error)) error {
	k := key(path)
	l := s.lock(k)
	l.Lock()
	defer l.Unlock()

	src, err := s.load(k, path)
	if err != nil {
		return err
	}
	updated, err := fn(bytes.Clone(src))
	if err != nil {
		return err
	}
	if bytes.Equal(src, updated) {
		return nil
	}

	if s.dryRun {
		s.mu.Lock()
		if _, ok := s.original[k]; !ok {
			s.original[k] = src
		}
		s.overlay[k] = updated
		s.mu.Unlock()
		return nil
	}

	if err := os.WriteFile(path, updated, 0644); err != nil {
		return fmt.Errorf("failed to write contents to file %s: %w", path, err)
	}
	return nil
}

// Changed returns the absolute paths edited during a dry run, sorted.
func (s *Store) Changed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.overlay))
	for k := range s.overlay {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Diff returns the line diff of a dry-run edited path against its contents before the first edit. The diff is empty for untouched paths.
func (s *Store) Diff(path string) diff.Diff {
	k := key(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	orig, ok := s.original[k]
	if !ok {
		return diff.Lines("", "")
	}
	return diff.Lines(string(orig), string(s.overlay[k]))
}
