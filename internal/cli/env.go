// internal/cli/env.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print environment variables for using the prefix",
	Long: `Print environment variables for using the prefix.

The output is shell-eval ready:
  eval $(cget env)`,
	Args: cobra.NoArgs,
	RunE: runEnv,
}

func runEnv(cmd *cobra.Command, args []string) error {
	p, err := newPrefix()
	if err != nil {
		return fmt.Errorf("opening prefix: %w", err)
	}
	for _, kv := range p.EnvList() {
		fmt.Println(kv)
	}
	return nil
}
