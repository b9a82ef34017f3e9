// pkg/prefix/resolver.go
package prefix

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/apwojcik/cget/pkg/pkgspec"
)

// parseAlias splits an explicit display name off a token. The
// separator is a comma; a leading colon is accepted for compatibility
// but deprecated, and never fires inside a URL scheme or Windows drive.
func (p *Prefix) parseAlias(token string) (name, rest string) {
	if i := strings.Index(token, ","); i > 0 {
		return token[:i], token[i+1:]
	}
	scheme := strings.Index(token, "://")
	if i := strings.Index(token, ":"); i > 0 && (scheme < 0 || i < scheme) {
		if i+1 < len(token) && token[i+1] == '\\' {
			return "", token
		}
		p.logger.Warn("using ':' for aliases is deprecated, use ',' instead", "token", token)
		return token[:i], token[i+1:]
	}
	return "", token
}

// parseSrcName splits name@version shorthand and collapses owner/repo
// pairs where both segments are the same name.
func parseSrcName(src, defaultVersion string) (name, version string) {
	name, version, found := strings.Cut(src, "@")
	if !found {
		version = defaultVersion
	}
	if parts := strings.Split(name, "/"); len(parts) > 1 {
		same := true
		for _, part := range parts[1:] {
			if part != parts[0] {
				same = false
			}
		}
		if same {
			name = parts[0]
		}
	}
	return name, version
}

// actualPath resolves a possibly relative path against a starting
// directory.
func actualPath(p, start string) string {
	if filepath.IsAbs(p) || start == "" {
		return p
	}
	return filepath.Join(start, p)
}

// ResolveSource maps a raw token onto a package source. Resolution
// order: alias split, local path relative to start, recipe lookup
// (skipped with noRecipe, used while already expanding a recipe),
// explicit URL scheme, GitHub archive shorthand.
func (p *Prefix) ResolveSource(token, start string, noRecipe bool) (*pkgspec.PackageSource, error) {
	name, rest := p.parseAlias(token)
	p.logger.Debug("resolve source", "name", name, "rest", rest)

	if strings.Contains(rest, "://") {
		return &pkgspec.PackageSource{Name: name, URL: rest}, nil
	}

	if local := actualPath(rest, start); exists(local) {
		abs, err := filepath.Abs(local)
		if err != nil {
			return nil, &ResolutionError{Token: token, Err: err}
		}
		return &pkgspec.PackageSource{Name: name, URL: "file://" + abs}, nil
	}

	if !noRecipe {
		if src := p.findRecipe(name, rest); src != nil {
			return src, nil
		}
	}

	return p.githubSource(name, rest)
}

// findRecipe looks for <recipe-root>/<name>/<version-or-empty>.
func (p *Prefix) findRecipe(name, rest string) *pkgspec.PackageSource {
	pkg, version := parseSrcName(rest, "")
	for _, root := range p.settings.RecipeDirs {
		dir := filepath.Join(root, pkg, version)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if name == "" {
				name = pkg
			}
			return &pkgspec.PackageSource{Name: name, Version: version, Recipe: dir}
		}
	}
	return nil
}

// githubSource synthesizes an archive URL from owner/repo@ref
// shorthand. A bare repo doubles as its own owner, and the ref
// defaults to HEAD.
func (p *Prefix) githubSource(name, rest string) (*pkgspec.PackageSource, error) {
	pkg, version := parseSrcName(rest, "HEAD")
	if pkg == "" {
		return nil, &ResolutionError{Token: rest, Err: fmt.Errorf("empty package name")}
	}
	var url string
	if strings.Contains(pkg, "/") {
		url = fmt.Sprintf("https://github.com/%s/archive/%s.tar.gz", pkg, version)
	} else {
		url = fmt.Sprintf("https://github.com/%s/%s/archive/%s.tar.gz", pkg, pkg, version)
	}
	if name == "" {
		name = path.Base(pkg)
	}
	return &pkgspec.PackageSource{Name: name, Version: version, URL: url}, nil
}

// ResolveBuild resolves a build's source, expanding a recipe when the
// source names one. The caller's options win over recipe defaults.
func (p *Prefix) ResolveBuild(pb *pkgspec.PackageBuild, start string, noRecipe bool) (*pkgspec.PackageBuild, error) {
	if pb.Resolved() {
		return pb, nil
	}
	src := pb.Source
	if src == nil {
		var err error
		src, err = p.ResolveSource(pb.Token, start, noRecipe)
		if err != nil {
			return nil, err
		}
	}
	if src.Recipe != "" {
		return p.fromRecipe(src, pb, start)
	}

	out := pb.Merge(nil) // clone
	out.Source = src
	if out.CMake != "" {
		out.CMake = actualPath(out.CMake, start)
	}
	return out, nil
}

// fromRecipe expands a recipe directory: package.txt is required and
// parsed with recipe lookup disabled so expansion cannot recurse; a
// sibling requirements.txt becomes the default requirements file.
func (p *Prefix) fromRecipe(src *pkgspec.PackageSource, caller *pkgspec.PackageBuild, start string) (*pkgspec.PackageBuild, error) {
	pkgFile := filepath.Join(src.Recipe, "package.txt")
	if !exists(pkgFile) {
		return nil, &ConfigError{Path: pkgFile, Err: fmt.Errorf("recipe has no package.txt")}
	}
	builds, err := p.FromFile(pkgFile, "", true)
	if err != nil {
		return nil, err
	}
	if len(builds) == 0 {
		return nil, &ConfigError{Path: pkgFile, Err: fmt.Errorf("recipe package.txt is empty")}
	}
	base := builds[0]
	if base.Source == nil {
		return nil, &ConfigError{Path: pkgFile, Err: fmt.Errorf("recipe entry has no source")}
	}

	if base.Requirements == "" {
		if req := filepath.Join(src.Recipe, "requirements.txt"); exists(req) {
			base.Requirements = req
		}
	}
	base.Source.Recipe = ""
	if base.CMake != "" {
		base.CMake = actualPath(base.CMake, src.Recipe)
	}

	over := caller.Merge(nil) // clone
	if over.CMake != "" {
		over.CMake = actualPath(over.CMake, start)
	}
	merged := base.Merge(over)
	merged.Source = base.Source
	// The caller's chosen name wins over the recipe's.
	if src.Name != "" {
		merged.Source.Name = src.Name
	}
	if merged.Source.Version == "" {
		merged.Source.Version = src.Version
	}
	return merged, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
