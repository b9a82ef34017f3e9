// internal/cli/clean.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apwojcik/cget/pkg/builder"
)

var cleanCache bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove everything cget installed into the prefix",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanCache, "cache", false, "also remove the download cache")
}

func runClean(cmd *cobra.Command, args []string) error {
	p, err := newPrefix()
	if err != nil {
		return fmt.Errorf("opening prefix: %w", err)
	}
	if err := p.Clean(); err != nil {
		return err
	}
	fmt.Printf("Cleaned prefix %s\n", p.Root())

	if cleanCache {
		if err := builder.CleanCache(); err != nil {
			return fmt.Errorf("cleaning download cache: %w", err)
		}
		fmt.Println("Cleaned download cache")
	}
	return nil
}
