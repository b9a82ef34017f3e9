// pkg/prefix/farm.go
package prefix

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/apwojcik/cget/pkg/fsutil"
)

// Link publishes an unlinked entry back into the prefix tree, then
// cascades: every unlinked entry this package recorded a dependency on
// is linked too, restoring a previously torn-down chain in one call.
func (p *Prefix) Link(fname string) error {
	queue := []string{fname}
	seen := map[string]bool{fname: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if err := p.linkEntry(current); err != nil {
			return err
		}

		deps, err := p.unlinkedDependenciesOf(current)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return nil
}

// linkEntry restores and publishes a single entry, no cascade.
func (p *Prefix) linkEntry(fname string) error {
	switch p.store.State(fname) {
	case StateAbsent:
		return &StateError{Fname: fname, Err: ErrNotInstalled}
	case StateIgnored:
		return nil
	case StateUnlinked:
		if err := os.Rename(p.store.UnlinkPath(fname), p.store.EntryPath(fname)); err != nil {
			return &StateError{Fname: fname, Err: fmt.Errorf("restoring entry: %w", err)}
		}
	}

	p.logger.Debug("link", "package", fname, "symlinks", p.settings.UseSymlinks)
	install := p.store.InstallPath(fname)
	var err error
	if p.settings.UseSymlinks {
		err = fsutil.LinkTree(install, p.settings.Root)
	} else {
		err = fsutil.MergeTree(install, p.settings.Root)
	}
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &StateError{Fname: fname, Err: fmt.Errorf("%w: %v", ErrCollision, err)}
		}
		return &StateError{Fname: fname, Err: err}
	}
	return nil
}

// unlinkedDependenciesOf finds unlinked store entries that fname was
// recorded as depending on: those whose dependent set contains fname.
func (p *Prefix) unlinkedDependenciesOf(fname string) ([]string, error) {
	all, err := p.store.Entries()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, candidate := range all {
		if candidate == fname || p.store.State(candidate) != StateUnlinked {
			continue
		}
		dependents, err := p.store.Dependents(candidate)
		if err != nil {
			return nil, err
		}
		for _, d := range dependents {
			if d == fname {
				out = append(out, candidate)
				break
			}
		}
	}
	return out, nil
}

// Unlink withdraws an entry's files from the prefix tree. With delete
// the entry is removed outright; otherwise it is renamed aside with its
// install tree and edge records intact, ready for a later Link.
func (p *Prefix) Unlink(fname string, delete bool) error {
	state := p.store.State(fname)
	p.logger.Debug("unlink", "package", fname, "state", state, "delete", delete)

	switch state {
	case StateAbsent:
		return &StateError{Fname: fname, Err: ErrNotInstalled}

	case StateUnlinked:
		if delete {
			return p.store.Delete(fname)
		}
		return nil

	default:
		install := p.store.InstallPath(fname)
		var err error
		if p.settings.UseSymlinks {
			err = fsutil.UnlinkTree(install, p.settings.Root)
		} else {
			err = fsutil.RemoveDupTree(install, p.settings.Root)
		}
		if err != nil {
			return &StateError{Fname: fname, Err: err}
		}
		if err := fsutil.PruneEmptyDirs(p.settings.Root); err != nil {
			return &StateError{Fname: fname, Err: err}
		}
		if delete {
			return p.store.Delete(fname)
		}
		if err := os.Rename(p.store.EntryPath(fname), p.store.UnlinkPath(fname)); err != nil {
			return &StateError{Fname: fname, Err: fmt.Errorf("setting entry aside: %w", err)}
		}
		return nil
	}
}
