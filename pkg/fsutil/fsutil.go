// fsutil.go
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MkFile creates dir if needed and writes a small marker file into it.
func MkFile(dir, name, content string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// CopyFile copies a single regular file, creating the destination
// directory if needed.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// CopyTree copies every file under src into dst, preserving relative
// paths and overwriting existing files.
func CopyTree(src, dst string) error {
	return walkFiles(src, func(path, rel string) error {
		return CopyFile(path, filepath.Join(dst, rel))
	})
}

// LinkTree publishes every file under src into dst as relative-path
// mirrored symlinks. An existing destination path that is not already a
// symlink to the same source file is a collision and reported with
// fs.ErrExist.
func LinkTree(src, dst string) error {
	return walkFiles(src, func(path, rel string) error {
		target := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if existing, err := os.Readlink(target); err == nil {
			if existing == path {
				return nil
			}
			return fmt.Errorf("publishing %s: %w (owned by %s)", rel, fs.ErrExist, existing)
		}
		if _, err := os.Lstat(target); err == nil {
			return fmt.Errorf("publishing %s: %w", rel, fs.ErrExist)
		}
		return os.Symlink(path, target)
	})
}

// MergeTree publishes every file under src into dst as copies, for
// hosts without symlink support. An existing destination file is a
// collision and reported with fs.ErrExist.
func MergeTree(src, dst string) error {
	return walkFiles(src, func(path, rel string) error {
		target := filepath.Join(dst, rel)
		if _, err := os.Lstat(target); err == nil {
			return fmt.Errorf("publishing %s: %w", rel, fs.ErrExist)
		}
		return CopyFile(path, target)
	})
}

// UnlinkTree removes, for every file under src, the matching symlink in
// dst. Symlinks pointing elsewhere are left alone.
func UnlinkTree(src, dst string) error {
	return walkFiles(src, func(path, rel string) error {
		target := filepath.Join(dst, rel)
		existing, err := os.Readlink(target)
		if err != nil {
			return nil // absent or not a symlink
		}
		if existing != path {
			return nil
		}
		return os.Remove(target)
	})
}

// RemoveDupTree removes, for every file under src, the duplicate copy
// in dst. The source files are kept.
func RemoveDupTree(src, dst string) error {
	return walkFiles(src, func(path, rel string) error {
		target := filepath.Join(dst, rel)
		if _, err := os.Lstat(target); err != nil {
			return nil
		}
		return os.Remove(target)
	})
}

// RemoveSymlinksUnder removes every symlink found under root.
func RemoveSymlinksUnder(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return os.Remove(path)
		}
		return nil
	})
}

// PruneEmptyDirs removes empty directories under root, deepest first.
// The root itself is kept.
func PruneEmptyDirs(root string) error {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(os.PathSeparator)) > strings.Count(dirs[j], string(os.PathSeparator))
	})
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err == nil && len(entries) == 0 {
			os.Remove(dir)
		}
	}
	return nil
}

// CanSymlink probes whether the filesystem under dir supports symlinks.
func CanSymlink(dir string) bool {
	probe := filepath.Join(dir, ".cget-symlink-probe")
	defer os.Remove(probe)
	os.Remove(probe)
	if err := os.Symlink(dir, probe); err != nil {
		return false
	}
	return true
}

// walkFiles calls fn for every regular file (or symlink) under root
// with its absolute path and root-relative path.
func walkFiles(root string, fn func(path, rel string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return fn(path, rel)
	})
}
