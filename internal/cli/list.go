// internal/cli/list.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apwojcik/cget/pkg/pkgspec"
)

var listRecursive bool

var listCmd = &cobra.Command{
	Use:   "list [package]",
	Short: "List installed packages",
	Long: `List installed packages.

With a package argument, lists that package followed by the packages
recorded as depending on it.`,
	Aliases: []string{"ls"},
	Args:    cobra.MaximumNArgs(1),
	RunE:    runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listRecursive, "recursive", "R", false, "follow dependency records transitively")
}

func runList(cmd *cobra.Command, args []string) error {
	p, err := newPrefix()
	if err != nil {
		return fmt.Errorf("opening prefix: %w", err)
	}

	var pb *pkgspec.PackageBuild
	if len(args) == 1 {
		pb = pkgspec.NewBuild(args[0])
	}
	pkgs, err := p.List(pb, listRecursive)
	if err != nil {
		return err
	}
	for _, pkg := range pkgs {
		fmt.Println(pkg.DisplayName())
	}
	return nil
}
