// package.go
package pkgspec

import (
	"path"
	"strings"
)

// PackageSource identifies where the code for a package comes from.
// Exactly one of URL or Recipe is set once the source is resolved.
type PackageSource struct {
	Name    string // Optional display name
	URL     string // file:// or remote archive URL
	Version string // Version or ref, when known (e.g. from owner/repo@ref)
	Recipe  string // Path to a recipe directory, cleared after expansion
}

// DisplayName returns the best name available for user-facing output.
func (s *PackageSource) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Recipe != "" {
		return path.Base(filepathToSlash(s.Recipe))
	}
	if s.URL != "" {
		base := path.Base(strings.TrimPrefix(s.URL, "file://"))
		for _, suffix := range []string{".tar.gz", ".tar.xz", ".tar.bz2", ".tgz", ".zip", ".git"} {
			base = strings.TrimSuffix(base, suffix)
		}
		return base
	}
	return ""
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// PackageBuild identifies how to build a package. It owns a PackageSource
// plus build options. A build is unresolved while Source is nil and the
// raw user token is still in Token.
type PackageBuild struct {
	Token  string         // Raw user-supplied token, before resolution
	Source *PackageSource // Resolved source, nil until resolved

	Defines            map[string]string // CMake cache defines (key=value)
	Variant            string            // Build variant, e.g. Release or Debug
	CMake              string            // Custom CMakeLists.txt override
	Requirements       string            // Requirements file override
	File               string            // Include directive: another spec file, not a package
	Hash               string            // Expected content hash, e.g. sha256:<hex>
	Test               bool              // Dependency needed only when testing
	Build              bool              // Dependency needed only at build time
	IgnoreRequirements bool              // Skip the source tree's requirements file

	// Parent is the fname of the package that required this one. It is
	// recorded as a dependency edge, never part of the identity.
	Parent string
}

// NewBuild creates an unresolved build from a raw token.
func NewBuild(token string) *PackageBuild {
	return &PackageBuild{Token: token}
}

// Resolved reports whether the source has been fully determined.
func (b *PackageBuild) Resolved() bool {
	return b.Source != nil && b.Source.Recipe == ""
}

// Name returns the display name for the build.
func (b *PackageBuild) Name() string {
	if b.Source != nil {
		if n := b.Source.DisplayName(); n != "" {
			return n
		}
	}
	return b.Token
}

// Merge combines a base build (typically from a recipe) with caller
// overrides. Caller fields win on conflict; defines are merged key by
// key with the caller winning.
func (b *PackageBuild) Merge(caller *PackageBuild) *PackageBuild {
	out := b.clone()
	if caller == nil {
		return out
	}
	if len(caller.Defines) > 0 {
		if out.Defines == nil {
			out.Defines = make(map[string]string, len(caller.Defines))
		}
		for k, v := range caller.Defines {
			out.Defines[k] = v
		}
	}
	if caller.Variant != "" {
		out.Variant = caller.Variant
	}
	if caller.CMake != "" {
		out.CMake = caller.CMake
	}
	if caller.Requirements != "" {
		out.Requirements = caller.Requirements
	}
	if caller.Hash != "" {
		out.Hash = caller.Hash
	}
	out.Test = out.Test || caller.Test
	out.Build = out.Build || caller.Build
	out.IgnoreRequirements = out.IgnoreRequirements || caller.IgnoreRequirements
	if caller.Parent != "" {
		out.Parent = caller.Parent
	}
	return out
}

// Of returns a copy of the build tagged with parent as its dependent,
// so the install records a dependency edge from this package to parent.
func (b *PackageBuild) Of(parent *PackageBuild) *PackageBuild {
	out := b.clone()
	out.Parent = parent.Fname()
	return out
}

func (b *PackageBuild) clone() *PackageBuild {
	out := *b
	if b.Source != nil {
		src := *b.Source
		out.Source = &src
	}
	if b.Defines != nil {
		out.Defines = make(map[string]string, len(b.Defines))
		for k, v := range b.Defines {
			out.Defines[k] = v
		}
	}
	return &out
}
