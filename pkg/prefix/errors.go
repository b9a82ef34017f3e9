// pkg/prefix/errors.go
package prefix

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInstalled indicates the package has no store entry
	ErrNotInstalled = errors.New("package is not installed")

	// ErrCycle indicates a dependency or include cycle
	ErrCycle = errors.New("cycle detected")

	// ErrPartialBuild indicates a store entry left behind by a failed
	// build; remove it or install with update to retry
	ErrPartialBuild = errors.New("package entry is partially built")

	// ErrCollision indicates two packages publish the same prefix path
	ErrCollision = errors.New("path already owned by another package")
)

// ResolutionError reports a specification that cannot be mapped to a
// package source.
type ResolutionError struct {
	Token string // The user-supplied token
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %q: %v", e.Token, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ConfigError reports a missing or malformed recipe or specification
// file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// StateError reports unexpected on-disk store state.
type StateError struct {
	Fname string
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("package %s: %v", e.Fname, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}
