// internal/cli/remove.go
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apwojcik/cget/pkg/pkgspec"
	"github.com/apwojcik/cget/pkg/prefix"
)

var removeUnlink bool

var removeCmd = &cobra.Command{
	Use:     "remove [package...]",
	Short:   "Remove installed packages from the prefix",
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRemove,
}

func init() {
	removeCmd.Flags().BoolVar(&removeUnlink, "unlink", false, "withdraw from the prefix but keep the built package")
}

func runRemove(cmd *cobra.Command, args []string) error {
	p, err := newPrefix()
	if err != nil {
		return fmt.Errorf("opening prefix: %w", err)
	}

	failed := 0
	for _, arg := range args {
		pb := pkgspec.NewBuild(arg)
		var status string
		if removeUnlink {
			status, err = unlinkOne(p, pb)
		} else {
			status, err = p.Remove(pb)
		}
		if err != nil {
			if errors.Is(err, prefix.ErrNotInstalled) {
				fmt.Fprintf(os.Stderr, "Package %s is not installed\n", arg)
			} else {
				fmt.Fprintf(os.Stderr, "Failed to remove %s: %v\n", arg, err)
			}
			failed++
			continue
		}
		fmt.Println(status)
	}
	if failed > 0 {
		return fmt.Errorf("%d package(s) failed to remove", failed)
	}
	return nil
}

func unlinkOne(p *prefix.Prefix, pb *pkgspec.PackageBuild) (string, error) {
	resolved, err := p.ResolveBuild(pb, "", false)
	if err != nil {
		return "", err
	}
	if err := p.Unlink(resolved.Fname(), false); err != nil {
		return "", err
	}
	return fmt.Sprintf("Unlinked package %s", resolved.Name()), nil
}
