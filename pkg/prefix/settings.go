// pkg/prefix/settings.go
package prefix

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/apwojcik/cget/pkg/fsutil"
)

// Settings is the environment-derived configuration threaded through
// the store, the link farm and the orchestrator. It is decided once at
// startup so every operation on a prefix composes it the same way.
type Settings struct {
	// Root is the shared installation prefix.
	Root string

	// BuildPath overrides the per-package build directory when set.
	BuildPath string

	// UseSymlinks selects the link-farm composition mode. It must stay
	// constant for the lifetime of a prefix or farm entries are
	// orphaned.
	UseSymlinks bool

	// RecipeDirs are searched for named recipes, in order.
	RecipeDirs []string

	// Verbose raises the logger to debug level.
	Verbose bool

	// Logger receives progress and diagnostics. Defaults to a discard
	// logger.
	Logger *log.Logger
}

// DefaultSettings derives settings for a prefix directory: recipes
// under etc/cget/recipes, symlink mode probed from the filesystem.
func DefaultSettings(root string) Settings {
	abs, err := filepath.Abs(root)
	if err == nil {
		root = abs
	}
	return Settings{
		Root:        root,
		UseSymlinks: probeSymlinks(root),
		RecipeDirs:  []string{filepath.Join(root, "etc", "cget", "recipes")},
		Logger:      log.New(io.Discard),
	}
}

func probeSymlinks(root string) bool {
	if err := os.MkdirAll(root, 0755); err != nil {
		return fsutil.CanSymlink(os.TempDir())
	}
	return fsutil.CanSymlink(root)
}
