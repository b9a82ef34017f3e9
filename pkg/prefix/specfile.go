// pkg/prefix/specfile.go
package prefix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/apwojcik/cget/pkg/pkgspec"
)

// specFrame is one open specification file on the include worklist.
type specFrame struct {
	path  string
	base  string // directory includes and local sources resolve against
	lines []string
}

// FromFile parses a specification or requirements file into resolved
// builds. A missing file yields a nil slice and no error; a file with
// no package lines yields an empty one. Lines are shell-tokenized, so quoting and # comments behave
// as in a shell. A -f/--file line is a textual include, expanded in
// place relative to the including file (or to srcURL's directory when
// the source is a file:// URL). Includes are processed with an explicit
// stack rather than recursion, and an include cycle is an error.
func (p *Prefix) FromFile(file, srcURL string, noRecipe bool) ([]*pkgspec.PackageBuild, error) {
	if file == "" {
		return nil, nil
	}
	if !exists(file) {
		p.logger.Debug("specification file not found", "file", file)
		return nil, nil
	}

	base := filepath.Dir(file)
	if strings.HasPrefix(srcURL, "file://") {
		base = strings.TrimPrefix(srcURL, "file://")
	}

	frame, err := openSpecFile(file, base)
	if err != nil {
		return nil, err
	}
	stack := []*specFrame{frame}
	active := map[string]bool{canonical(file): true}

	// Non-nil even when the file lists nothing, so callers can tell an
	// empty file from a missing one.
	out := []*pkgspec.PackageBuild{}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if len(top.lines) == 0 {
			delete(active, canonical(top.path))
			stack = stack[:len(stack)-1]
			continue
		}
		line := top.lines[0]
		top.lines = top.lines[1:]

		tokens, err := shell.Fields(line, func(string) string { return "" })
		if err != nil {
			return nil, &ConfigError{Path: top.path, Err: fmt.Errorf("tokenizing %q: %w", line, err)}
		}
		if len(tokens) == 0 {
			continue
		}
		pb, err := pkgspec.ParseBuildTokens(tokens)
		if err != nil {
			return nil, &ConfigError{Path: top.path, Err: err}
		}

		if pb.File != "" {
			include := actualPath(pb.File, top.base)
			if active[canonical(include)] {
				return nil, &ConfigError{Path: top.path, Err: fmt.Errorf("including %s: %w", include, ErrCycle)}
			}
			if !exists(include) {
				p.logger.Debug("included file not found", "file", include)
				continue
			}
			next, err := openSpecFile(include, filepath.Dir(include))
			if err != nil {
				return nil, err
			}
			active[canonical(include)] = true
			stack = append(stack, next)
			continue
		}

		resolved, err := p.ResolveBuild(pb, top.base, noRecipe)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

func openSpecFile(path, base string) (*specFrame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return &specFrame{
		path:  path,
		base:  base,
		lines: strings.Split(string(data), "\n"),
	}, nil
}

func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
