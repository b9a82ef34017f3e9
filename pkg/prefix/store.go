// pkg/prefix/store.go
package prefix

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apwojcik/cget/pkg/fsutil"
	"github.com/apwojcik/cget/pkg/pkgspec"
)

// Marker and suffix conventions encoding store-entry state on disk.
const (
	ignoreMarker   = "ignore"    // entry is a placeholder, never built
	completeMarker = ".complete" // entry finished build and link
	dependDir      = ".depend"   // dependency-edge records
	unlinkSuffix   = ".unlink"   // entry unlinked but preserved
	installDir     = "install"
)

// EntryState is the lifecycle state of one store entry, derived from
// directory names and marker files alone.
type EntryState int

const (
	// StateAbsent means no entry exists for the fname
	StateAbsent EntryState = iota
	// StateBuilding means the entry exists but never finished a build
	StateBuilding
	// StateLinked means the entry is built and published into the prefix
	StateLinked
	// StateUnlinked means the entry is preserved but withdrawn from the prefix
	StateUnlinked
	// StateIgnored means the entry is a marker that must never be built
	StateIgnored
)

func (s EntryState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateBuilding:
		return "building"
	case StateLinked:
		return "linked"
	case StateUnlinked:
		return "unlinked"
	case StateIgnored:
		return "ignored"
	}
	return fmt.Sprintf("EntryState(%d)", int(s))
}

// Store is the private per-package directory hierarchy under
// prefix/cget. All state lives in directory names and marker files; no
// database is involved.
type Store struct {
	root string
}

// NewStore creates a store rooted at the private directory of a prefix.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Path returns the store's private root directory.
func (s *Store) Path() string {
	return s.root
}

// EntryPath returns the directory for a linked (or building) entry.
func (s *Store) EntryPath(fname string) string {
	return filepath.Join(s.root, fname)
}

// UnlinkPath returns the directory an entry is renamed to on unlink.
func (s *Store) UnlinkPath(fname string) string {
	return filepath.Join(s.root, fname+unlinkSuffix)
}

// InstallPath returns an entry's private install tree.
func (s *Store) InstallPath(fname string) string {
	return filepath.Join(s.EntryPath(fname), installDir)
}

// State derives the entry's lifecycle state from the filesystem.
func (s *Store) State(fname string) EntryState {
	if info, err := os.Stat(s.EntryPath(fname)); err == nil && info.IsDir() {
		if _, err := os.Stat(filepath.Join(s.EntryPath(fname), ignoreMarker)); err == nil {
			return StateIgnored
		}
		if _, err := os.Stat(filepath.Join(s.EntryPath(fname), completeMarker)); err == nil {
			return StateLinked
		}
		return StateBuilding
	}
	if info, err := os.Stat(s.UnlinkPath(fname)); err == nil && info.IsDir() {
		return StateUnlinked
	}
	return StateAbsent
}

// Exists reports whether any entry, linked or unlinked, is present.
func (s *Store) Exists(fname string) bool {
	return s.State(fname) != StateAbsent
}

// Create makes an empty entry directory.
func (s *Store) Create(fname string) error {
	if err := os.MkdirAll(s.EntryPath(fname), 0755); err != nil {
		return fmt.Errorf("creating store entry: %w", err)
	}
	return nil
}

// Delete removes the entry entirely, whichever state it is in.
func (s *Store) Delete(fname string) error {
	if err := os.RemoveAll(s.EntryPath(fname)); err != nil {
		return fmt.Errorf("deleting store entry: %w", err)
	}
	if err := os.RemoveAll(s.UnlinkPath(fname)); err != nil {
		return fmt.Errorf("deleting store entry: %w", err)
	}
	return nil
}

// MarkIgnored creates a placeholder entry that install treats as
// already present and never builds.
func (s *Store) MarkIgnored(fname string) error {
	return fsutil.MkFile(s.EntryPath(fname), ignoreMarker, ignoreMarker)
}

// MarkComplete records that the entry finished its build and link.
func (s *Store) MarkComplete(fname string) error {
	return fsutil.MkFile(s.EntryPath(fname), completeMarker, "")
}

// entryDir locates the on-disk directory for an entry in any state.
func (s *Store) entryDir(fname string) (string, bool) {
	if info, err := os.Stat(s.EntryPath(fname)); err == nil && info.IsDir() {
		return s.EntryPath(fname), true
	}
	if info, err := os.Stat(s.UnlinkPath(fname)); err == nil && info.IsDir() {
		return s.UnlinkPath(fname), true
	}
	return "", false
}

// RecordEdge records that parent required child. Recording the same
// edge twice leaves a single marker, and the record survives link and
// unlink of either side.
func (s *Store) RecordEdge(child, parent string) error {
	if parent == "" {
		return nil
	}
	dir, ok := s.entryDir(child)
	if !ok {
		dir = s.EntryPath(child)
	}
	return fsutil.MkFile(filepath.Join(dir, dependDir, child), parent, "")
}

// Dependents returns the fnames recorded as requiring child.
func (s *Store) Dependents(child string) ([]string, error) {
	dir, ok := s.entryDir(child)
	if !ok {
		return nil, nil
	}
	entries, err := os.ReadDir(filepath.Join(dir, dependDir, child))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading dependency edges: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Entries lists every store entry's fname, linked and unlinked alike.
func (s *Store) Entries() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading store: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), unlinkSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// List enumerates store entries as displayable package sources. With a
// starting fname, the entry itself is followed by its recorded
// dependents; recursive walks the edges transitively.
func (s *Store) List(fname string, recursive bool) ([]*pkgspec.PackageSource, error) {
	var roots []string
	if fname == "" {
		all, err := s.Entries()
		if err != nil {
			return nil, err
		}
		roots = all
	} else {
		deps, err := s.Dependents(fname)
		if err != nil {
			return nil, err
		}
		roots = append([]string{fname}, deps...)
	}

	var out []*pkgspec.PackageSource
	seen := make(map[string]bool)
	stack := append([]string(nil), roots...)
	for len(stack) > 0 {
		name := stack[0]
		stack = stack[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		if !s.Exists(name) {
			continue
		}
		out = append(out, pkgspec.FnameToPkg(name))
		if recursive {
			deps, err := s.Dependents(name)
			if err != nil {
				return nil, err
			}
			stack = append(stack, deps...)
		}
	}
	return out, nil
}
