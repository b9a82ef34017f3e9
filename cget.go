// cget.go
package cget

import (
	"github.com/apwojcik/cget/pkg/builder"
	"github.com/apwojcik/cget/pkg/pkgspec"
	"github.com/apwojcik/cget/pkg/prefix"
)

// Re-export core types for convenience
type (
	Prefix           = prefix.Prefix
	Settings         = prefix.Settings
	Store            = prefix.Store
	EntryState       = prefix.EntryState
	InstallOptions   = prefix.InstallOptions
	BuildOptions     = prefix.BuildOptions
	PackageSource    = pkgspec.PackageSource
	PackageBuild     = pkgspec.PackageBuild
	Builder          = builder.Builder
	ToolchainOptions = builder.ToolchainOptions
)

// Re-export store states
const (
	StateAbsent   = prefix.StateAbsent
	StateBuilding = prefix.StateBuilding
	StateLinked   = prefix.StateLinked
	StateUnlinked = prefix.StateUnlinked
	StateIgnored  = prefix.StateIgnored
)

// NewPrefix opens (creating if needed) a prefix with default settings:
// symlink mode probed from the filesystem, recipes under
// etc/cget/recipes, a discard logger.
func NewPrefix(root string) (*Prefix, error) {
	return prefix.New(prefix.DefaultSettings(root), nil)
}

// NewPrefixWithSettings opens a prefix with explicit settings.
func NewPrefixWithSettings(settings Settings) (*Prefix, error) {
	return prefix.New(settings, nil)
}

// NewBuild wraps a raw package token for resolution.
func NewBuild(token string) *PackageBuild {
	return pkgspec.NewBuild(token)
}

// ParseBuildTokens parses a requirements-file line already split into
// shell tokens.
func ParseBuildTokens(tokens []string) (*PackageBuild, error) {
	return pkgspec.ParseBuildTokens(tokens)
}
