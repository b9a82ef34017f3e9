// internal/cli/install.go
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apwojcik/cget/pkg/pkgspec"
	"github.com/apwojcik/cget/pkg/prefix"
)

var (
	installUpdate    bool
	installTest      bool
	installTestAll   bool
	installInsecure  bool
	installFiles     []string
	installDefines   []string
	installCMake     string
	installHash      string
	installVariant   string
	installGenerator string
)

var installCmd = &cobra.Command{
	Use:   "install [package...]",
	Short: "Install one or more packages into the prefix",
	Long: `Install packages by building them from source into the prefix.

A package is a URL, a local directory, owner/repo GitHub shorthand, or
a recipe name, optionally aliased with "name,source".

Examples:
  cget install zlib/zlib@v1.2.13
  cget install danmar/cppcheck -DHAVE_RULES=ON
  cget install mylib,./src/mylib
  cget install -f requirements.txt`,
	Aliases: []string{"add"},
	RunE:    runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installUpdate, "update", "U", false, "rebuild the package if it is already installed")
	installCmd.Flags().BoolVarP(&installTest, "test", "t", false, "run the package's tests after building")
	installCmd.Flags().BoolVar(&installTestAll, "test-all", false, "run tests for the package and its dependencies")
	installCmd.Flags().BoolVar(&installInsecure, "insecure", false, "skip TLS certificate verification on download")
	installCmd.Flags().StringArrayVarP(&installFiles, "file", "f", nil, "install packages listed in a requirements file")
	installCmd.Flags().StringArrayVarP(&installDefines, "define", "D", nil, "cmake cache define passed to the build")
	installCmd.Flags().StringVar(&installCMake, "cmake", "", "replacement CMakeLists.txt for sources without one")
	installCmd.Flags().StringVarP(&installHash, "hash", "H", "", "expected sha256 of the downloaded source")
	installCmd.Flags().StringVar(&installVariant, "variant", "", "build variant, e.g. Debug")
	installCmd.Flags().StringVarP(&installGenerator, "generator", "G", "", "cmake generator")
}

func runInstall(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && len(installFiles) == 0 {
		return fmt.Errorf("nothing to install: name a package or a requirements file")
	}

	p, err := newPrefix()
	if err != nil {
		return fmt.Errorf("opening prefix: %w", err)
	}
	ctx := context.Background()
	opts := prefix.InstallOptions{
		Test:      installTest,
		TestAll:   installTestAll,
		Update:    installUpdate,
		Track:     true,
		Generator: installGenerator,
		Insecure:  installInsecure,
	}

	var builds []*pkgspec.PackageBuild
	for _, file := range installFiles {
		fromFile, err := p.FromFile(file, "", false)
		if err != nil {
			return err
		}
		if fromFile == nil {
			return fmt.Errorf("requirements file not found: %s", file)
		}
		builds = append(builds, fromFile...)
	}
	for _, arg := range args {
		pb, err := buildFromArg(arg)
		if err != nil {
			return err
		}
		builds = append(builds, pb)
	}

	failed := 0
	for _, pb := range builds {
		status, err := p.Install(ctx, pb, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to install %s: %v\n", pb.Name(), err)
			failed++
			continue
		}
		fmt.Println(status)
	}
	if failed > 0 {
		return fmt.Errorf("%d package(s) failed to install", failed)
	}
	return nil
}

// buildFromArg combines one positional package token with the shared
// install flags, reusing the requirements-line parser so flag syntax
// stays identical in both places.
func buildFromArg(arg string) (*pkgspec.PackageBuild, error) {
	tokens := []string{arg}
	for _, d := range installDefines {
		tokens = append(tokens, "-D"+d)
	}
	if installCMake != "" {
		tokens = append(tokens, "--cmake", installCMake)
	}
	if installHash != "" {
		tokens = append(tokens, "-H", installHash)
	}
	if installVariant != "" {
		tokens = append(tokens, "--variant", installVariant)
	}
	return pkgspec.ParseBuildTokens(tokens)
}
