// pkg/prefix/prefix.go
package prefix

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/apwojcik/cget/pkg/builder"
	"github.com/apwojcik/cget/pkg/fsutil"
	"github.com/apwojcik/cget/pkg/pkgspec"
)

// privateDir is the component of the prefix holding the package store.
const privateDir = "cget"

// toolchainFile is written into the private directory at init and
// handed to every configure step.
const toolchainFile = "cget.cmake"

// cmakeOriginalName is where a package's own CMakeLists.txt is moved
// when a custom one is supplied.
const cmakeOriginalName = "__cget_original_cmake_file__.cmake"

// Prefix is the top-level install orchestrator for one shared
// installation tree. It owns the package store under <root>/cget and
// composes entries into the prefix via the link farm.
type Prefix struct {
	settings   Settings
	store      *Store
	newBuilder builder.Factory
	logger     *log.Logger
}

// New opens (creating if needed) a prefix with the given settings,
// using factory to construct per-package builders.
func New(settings Settings, factory builder.Factory) (*Prefix, error) {
	if settings.Root == "" {
		settings.Root = "cget"
	}
	abs, err := filepath.Abs(settings.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving prefix: %w", err)
	}
	settings.Root = abs
	if settings.Logger == nil {
		settings.Logger = log.New(io.Discard)
	}
	if settings.Verbose {
		settings.Logger.SetLevel(log.DebugLevel)
	}
	if factory == nil {
		factory = builder.New
	}

	p := &Prefix{
		settings:   settings,
		store:      NewStore(filepath.Join(settings.Root, privateDir)),
		newBuilder: factory,
		logger:     settings.Logger,
	}
	if err := os.MkdirAll(p.store.Path(), 0755); err != nil {
		return nil, fmt.Errorf("creating prefix: %w", err)
	}
	if err := builder.WriteToolchain(p.ToolchainPath(), settings.Root, builder.ToolchainOptions{}, false); err != nil {
		return nil, err
	}
	return p, nil
}

// Root returns the shared prefix directory.
func (p *Prefix) Root() string {
	return p.settings.Root
}

// Store exposes the package store, mainly for inspection and tests.
func (p *Prefix) Store() *Store {
	return p.store
}

// ToolchainPath returns the generated toolchain file location.
func (p *Prefix) ToolchainPath() string {
	return filepath.Join(p.store.Path(), toolchainFile)
}

// WriteToolchain regenerates the prefix toolchain file with the given
// compiler setup. Used by init.
func (p *Prefix) WriteToolchain(opts builder.ToolchainOptions) error {
	return builder.WriteToolchain(p.ToolchainPath(), p.settings.Root, opts, true)
}

// InstallOptions controls one install invocation.
type InstallOptions struct {
	Test      bool   // Run this package's tests after building
	TestAll   bool   // Run tests for dependencies too
	Update    bool   // Discard any existing entry and rebuild
	Track     bool   // Record the dependency edge named by the build's parent
	Generator string // Build-system generator passed to configure
	Insecure  bool   // Skip TLS verification on fetch
}

// Install resolves a build specification and drives it through the
// store state machine: relink an unlinked entry, report an existing
// one, or fetch, build dependencies depth-first, build, publish and
// record the dependency edge. The returned status is a human-readable
// summary of which path was taken.
func (p *Prefix) Install(ctx context.Context, pb *pkgspec.PackageBuild, opts InstallOptions) (string, error) {
	return p.install(ctx, pb, opts, make(map[string]bool))
}

func (p *Prefix) install(ctx context.Context, pb *pkgspec.PackageBuild, opts InstallOptions, visiting map[string]bool) (string, error) {
	pb, err := p.ResolveBuild(pb, "", false)
	if err != nil {
		return "", err
	}
	fname := pb.Fname()
	name := pb.Name()

	if visiting[fname] {
		return "", &ResolutionError{Token: name, Err: fmt.Errorf("dependency %w", ErrCycle)}
	}
	visiting[fname] = true
	defer delete(visiting, fname)

	state := p.store.State(fname)
	p.logger.Debug("install", "package", name, "fname", fname, "state", state)

	switch state {
	case StateUnlinked:
		if !opts.Update {
			if err := p.Link(fname); err != nil {
				return "", err
			}
			if err := p.recordParent(pb, opts.Track); err != nil {
				return "", err
			}
			return fmt.Sprintf("Linking package %s", name), nil
		}
		if err := p.store.Delete(fname); err != nil {
			return "", err
		}

	case StateIgnored:
		if err := p.recordParent(pb, opts.Track); err != nil {
			return "", err
		}
		return fmt.Sprintf("Package %s already installed", name), nil

	case StateLinked:
		if err := p.recordParent(pb, opts.Track); err != nil {
			return "", err
		}
		if !opts.Update {
			return fmt.Sprintf("Package %s already installed", name), nil
		}
		if err := p.Unlink(fname, true); err != nil {
			return "", err
		}

	case StateBuilding:
		if !opts.Update {
			return "", &StateError{Fname: fname, Err: fmt.Errorf("%w; rerun with update or remove it", ErrPartialBuild)}
		}
		if err := p.store.Delete(fname); err != nil {
			return "", err
		}
	}

	if err := p.buildAndLink(ctx, pb, fname, opts, visiting); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully installed %s", name), nil
}

// buildAndLink performs the full fetch/deps/configure/build/install
// sequence into a fresh store entry, then publishes it. A failure
// leaves the partial entry in place; the remediation is an install
// with update, or remove.
func (p *Prefix) buildAndLink(ctx context.Context, pb *pkgspec.PackageBuild, fname string, opts InstallOptions, visiting map[string]bool) error {
	if err := p.store.Create(fname); err != nil {
		return err
	}
	b := p.newBuilder(p.store.EntryPath(fname), p.EnvList(), p.logger)

	srcDir, err := b.Fetch(ctx, builder.FetchOptions{
		URL:          pb.Source.URL,
		Hash:         pb.Hash,
		CustomConfig: pb.CMake != "",
		Insecure:     opts.Insecure,
	})
	if err != nil {
		return err
	}

	if err := p.installDeps(ctx, pb, srcDir, opts, visiting); err != nil {
		return err
	}

	if pb.CMake != "" {
		target := filepath.Join(srcDir, "CMakeLists.txt")
		if exists(target) {
			if err := os.Rename(target, filepath.Join(srcDir, cmakeOriginalName)); err != nil {
				return fmt.Errorf("setting aside CMakeLists.txt: %w", err)
			}
		}
		if err := fsutil.CopyFile(pb.CMake, target); err != nil {
			return fmt.Errorf("placing custom CMakeLists.txt: %w", err)
		}
	}

	testing := opts.Test || opts.TestAll
	if err := b.Configure(ctx, srcDir, builder.ConfigureOptions{
		Defines:       pb.Defines,
		Generator:     opts.Generator,
		InstallPrefix: p.store.InstallPath(fname),
		Toolchain:     p.ToolchainPath(),
		Variant:       pb.Variant,
		Test:          testing,
	}); err != nil {
		return err
	}
	if err := b.Build(ctx, pb.Variant, ""); err != nil {
		return err
	}
	if testing {
		if err := b.Test(ctx, pb.Variant); err != nil {
			return err
		}
	}
	if err := b.Build(ctx, pb.Variant, "install"); err != nil {
		return err
	}

	if err := p.Link(fname); err != nil {
		return err
	}
	if err := p.store.MarkComplete(fname); err != nil {
		return err
	}
	return p.recordParent(pb, opts.Track)
}

// installDeps installs every dependency named by the build's
// requirements, depth-first, so each is published into the prefix
// before the dependent configures. Test- and build-only dependencies
// are transient: they install without recording further edges.
func (p *Prefix) installDeps(ctx context.Context, pb *pkgspec.PackageBuild, srcDir string, opts InstallOptions, visiting map[string]bool) error {
	reqFile := pb.Requirements
	if reqFile == "" && !pb.IgnoreRequirements {
		reqFile = filepath.Join(srcDir, "requirements.txt")
	}
	srcURL := ""
	if pb.Source != nil {
		srcURL = pb.Source.URL
	}
	deps, err := p.FromFile(reqFile, srcURL, false)
	if err != nil {
		return err
	}

	testing := opts.Test || opts.TestAll
	for _, dep := range deps {
		if dep.Test && !testing {
			continue
		}
		transient := dep.Test || dep.Build
		_, err := p.install(ctx, dep.Of(pb), InstallOptions{
			TestAll:   opts.TestAll,
			Track:     !transient,
			Generator: opts.Generator,
			Insecure:  opts.Insecure,
		}, visiting)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Prefix) recordParent(pb *pkgspec.PackageBuild, track bool) error {
	if !track || pb.Parent == "" {
		return nil
	}
	return p.store.RecordEdge(pb.Fname(), pb.Parent)
}

// Remove deletes a package's store entry and withdraws it from the
// prefix tree.
func (p *Prefix) Remove(pb *pkgspec.PackageBuild) (string, error) {
	pb, err := p.ResolveBuild(pb, "", false)
	if err != nil {
		return "", err
	}
	if err := p.Unlink(pb.Fname(), true); err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed package %s", pb.Name()), nil
}

// Ignore creates a placeholder entry so the package is treated as
// installed without ever building. An existing entry, real or ignored,
// is never overwritten.
func (p *Prefix) Ignore(pb *pkgspec.PackageBuild) (string, error) {
	pb, err := p.ResolveBuild(pb, "", false)
	if err != nil {
		return "", err
	}
	fname := pb.Fname()
	if p.store.Exists(fname) {
		return fmt.Sprintf("Package %s already installed", pb.Name()), nil
	}
	if err := p.store.MarkIgnored(fname); err != nil {
		return "", err
	}
	return fmt.Sprintf("Ignoring package %s", pb.Name()), nil
}

// List enumerates installed packages. With pb set, lists that package
// and its recorded dependents; recursive follows edges transitively.
func (p *Prefix) List(pb *pkgspec.PackageBuild, recursive bool) ([]*pkgspec.PackageSource, error) {
	if pb == nil {
		return p.store.List("", recursive)
	}
	resolved, err := p.ResolveBuild(pb, "", false)
	if err != nil {
		return nil, err
	}
	return p.store.List(resolved.Fname(), recursive)
}

// BuildOptions controls a development build of a local source tree.
type BuildOptions struct {
	Test      bool
	Target    string
	Generator string
}

// Build configures and builds a local source tree in place for
// development, installing its requirements into the prefix first but
// never publishing the tree itself. dev-requirements.txt is preferred
// over requirements.txt when present.
func (p *Prefix) Build(ctx context.Context, pb *pkgspec.PackageBuild, opts BuildOptions) error {
	pb, err := p.ResolveBuild(pb, "", false)
	if err != nil {
		return err
	}
	srcDir := localSourceDir(pb.Source.URL)
	if srcDir == "" {
		return &ResolutionError{Token: pb.Name(), Err: fmt.Errorf("build requires a local source directory")}
	}

	if pb.Requirements == "" {
		for _, req := range []string{"dev-requirements.txt", "requirements.txt"} {
			if candidate := filepath.Join(srcDir, req); exists(candidate) {
				pb.Requirements = candidate
				break
			}
		}
	}

	fname := pb.Fname()
	workDir := p.store.EntryPath(fname)
	if p.settings.BuildPath != "" {
		workDir = p.settings.BuildPath
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("creating build directory: %w", err)
	}
	b := p.newBuilder(workDir, p.EnvList(), p.logger)

	if err := p.installDeps(ctx, pb, srcDir, InstallOptions{Test: opts.Test, Generator: opts.Generator}, make(map[string]bool)); err != nil {
		return err
	}

	configured := exists(filepath.Join(workDir, "build"))
	if !configured {
		if err := b.Configure(ctx, srcDir, builder.ConfigureOptions{
			Defines:   pb.Defines,
			Generator: opts.Generator,
			Toolchain: p.ToolchainPath(),
			Variant:   pb.Variant,
			Test:      opts.Test,
		}); err != nil {
			return err
		}
	}
	if err := b.Build(ctx, pb.Variant, opts.Target); err != nil {
		return err
	}
	if opts.Test {
		return b.Test(ctx, pb.Variant)
	}
	return nil
}

// BuildClean removes a package's build directory.
func (p *Prefix) BuildClean(pb *pkgspec.PackageBuild) error {
	pb, err := p.ResolveBuild(pb, "", false)
	if err != nil {
		return err
	}
	if p.settings.BuildPath != "" {
		return os.RemoveAll(p.settings.BuildPath)
	}
	return os.RemoveAll(p.store.EntryPath(pb.Fname()))
}

// Clean tears down the whole prefix: every package is withdrawn and
// the store deleted. In symlink mode the farm is swept wholesale; in
// copy mode each package is removed individually so only owned files
// disappear.
func (p *Prefix) Clean() error {
	if p.settings.UseSymlinks {
		if err := os.RemoveAll(p.store.Path()); err != nil {
			return fmt.Errorf("deleting store: %w", err)
		}
		if err := fsutil.RemoveSymlinksUnder(p.settings.Root); err != nil {
			return fmt.Errorf("sweeping symlinks: %w", err)
		}
		return fsutil.PruneEmptyDirs(p.settings.Root)
	}

	entries, err := p.store.Entries()
	if err != nil {
		return err
	}
	for _, fname := range entries {
		if err := p.Unlink(fname, true); err != nil {
			return err
		}
	}
	if err := os.RemoveAll(p.store.Path()); err != nil {
		return fmt.Errorf("deleting store: %w", err)
	}
	return fsutil.PruneEmptyDirs(p.settings.Root)
}

// localSourceDir extracts the directory behind a file:// URL, or ""
// when the source is not local.
func localSourceDir(url string) string {
	const scheme = "file://"
	if strings.HasPrefix(url, scheme) {
		return strings.TrimPrefix(url, scheme)
	}
	return ""
}
