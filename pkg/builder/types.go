// pkg/builder/types.go
package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

var (
	// ErrUnsupportedArchive indicates the archive format is not recognized
	ErrUnsupportedArchive = errors.New("unsupported archive format")

	// ErrHashMismatch indicates a content hash verification failure
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrNoSource indicates no buildable source tree was found
	ErrNoSource = errors.New("no buildable source found")
)

// Builder fetches package sources and drives the build tool to produce
// an install tree. All operations are synchronous; the context governs
// subprocess and network cancellation.
type Builder interface {
	// Fetch obtains the package source and returns the directory to
	// configure from.
	Fetch(ctx context.Context, opts FetchOptions) (string, error)

	// Configure generates the build system for a fetched source tree.
	Configure(ctx context.Context, srcDir string, opts ConfigureOptions) error

	// Build compiles the configured tree, optionally a single target.
	Build(ctx context.Context, variant, target string) error

	// Test runs the configured tree's test suite.
	Test(ctx context.Context, variant string) error
}

// Factory creates a Builder bound to one package's work directory. The
// env slice is appended to the subprocess environment.
type Factory func(workDir string, env []string, logger *log.Logger) Builder

// FetchOptions selects what to fetch and how to verify it.
type FetchOptions struct {
	URL          string // file://, http(s):// or git source
	Hash         string // Expected hash, e.g. sha256:<hex>; empty skips verification
	CustomConfig bool   // A custom CMakeLists.txt will be supplied
	Insecure     bool   // Skip TLS certificate verification
}

// ConfigureOptions carries everything the configure step needs.
type ConfigureOptions struct {
	Defines       map[string]string // Cache defines, key may carry a :TYPE suffix
	Generator     string            // Build-system generator, empty for the default
	InstallPrefix string            // Where the install target publishes
	Toolchain     string            // Toolchain file path, empty to omit
	Variant       string            // Build variant, e.g. Release
	Test          bool              // Enable the test targets
}

// Error is a build failure with the captured tool output attached.
type Error struct {
	Op     string // Step that failed: fetch, configure, build, test
	Msg    string
	Output []byte // Raw subprocess output, may be empty
	Err    error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
