// internal/cli/build.go
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apwojcik/cget/pkg/pkgspec"
	"github.com/apwojcik/cget/pkg/prefix"
)

var (
	buildTest      bool
	buildClean     bool
	buildTarget    string
	buildGenerator string
)

var buildCmd = &cobra.Command{
	Use:   "build [package]",
	Short: "Build a local source tree against the prefix",
	Long: `Build a local source tree for development without installing it.

The tree's requirements are installed into the prefix first, then the
tree itself is configured and built in place. Defaults to the current
directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVarP(&buildTest, "test", "t", false, "run the tests after building")
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "remove the build directory instead of building")
	buildCmd.Flags().StringVar(&buildTarget, "target", "", "build a specific target")
	buildCmd.Flags().StringVarP(&buildGenerator, "generator", "G", "", "cmake generator")
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := newPrefix()
	if err != nil {
		return fmt.Errorf("opening prefix: %w", err)
	}

	token := "."
	if len(args) == 1 {
		token = args[0]
	}
	pb := pkgspec.NewBuild(token)

	if buildClean {
		return p.BuildClean(pb)
	}
	return p.Build(context.Background(), pb, prefix.BuildOptions{
		Test:      buildTest,
		Target:    buildTarget,
		Generator: buildGenerator,
	})
}
