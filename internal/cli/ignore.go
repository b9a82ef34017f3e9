// internal/cli/ignore.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apwojcik/cget/pkg/pkgspec"
)

var ignoreCmd = &cobra.Command{
	Use:   "ignore [package...]",
	Short: "Mark packages as installed without building them",
	Long: `Mark packages as installed without building them.

An ignored package satisfies dependency requirements but contributes
nothing to the prefix, for dependencies the system already provides.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIgnore,
}

func runIgnore(cmd *cobra.Command, args []string) error {
	p, err := newPrefix()
	if err != nil {
		return fmt.Errorf("opening prefix: %w", err)
	}

	failed := 0
	for _, arg := range args {
		status, err := p.Ignore(pkgspec.NewBuild(arg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to ignore %s: %v\n", arg, err)
			failed++
			continue
		}
		fmt.Println(status)
	}
	if failed > 0 {
		return fmt.Errorf("%d package(s) failed", failed)
	}
	return nil
}
