// errors.go
package cget

import (
	"github.com/apwojcik/cget/pkg/builder"
	"github.com/apwojcik/cget/pkg/prefix"
)

// Re-export sentinel errors so callers can errors.Is against the root
// package alone.
var (
	// ErrNotInstalled indicates the package has no store entry
	ErrNotInstalled = prefix.ErrNotInstalled

	// ErrCycle indicates a dependency or include cycle
	ErrCycle = prefix.ErrCycle

	// ErrPartialBuild indicates a store entry from an interrupted build
	ErrPartialBuild = prefix.ErrPartialBuild

	// ErrCollision indicates two packages publish the same path
	ErrCollision = prefix.ErrCollision

	// ErrHashMismatch indicates a source hash verification failure
	ErrHashMismatch = builder.ErrHashMismatch

	// ErrUnsupportedArchive indicates an archive format cget cannot extract
	ErrUnsupportedArchive = builder.ErrUnsupportedArchive

	// ErrNoSource indicates a build specification without a usable source
	ErrNoSource = builder.ErrNoSource
)

// Re-export typed errors
type (
	ResolutionError = prefix.ResolutionError
	ConfigError     = prefix.ConfigError
	StateError      = prefix.StateError
	BuildError      = builder.Error
)
