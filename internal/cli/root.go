// internal/cli/root.go
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/apwojcik/cget/pkg/config"
	"github.com/apwojcik/cget/pkg/prefix"
)

var (
	cfgFile   string
	prefixDir string
	buildPath string
	verbose   bool
	cfg       *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cget",
	Short: "CMake package retrieval",
	Long: `cget - CMake package retrieval

Builds and installs source packages into a shared prefix. Packages are
fetched from URLs, local directories or GitHub shorthand, built with
CMake in isolation, and composed into the prefix as a link farm so a
single toolchain file makes every installed dependency visible.`,
	Version:       "0.2.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/cget/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&prefixDir, "prefix", "p", "", "installation prefix (default is $CGET_PREFIX or ./cget)")
	rootCmd.PersistentFlags().StringVarP(&buildPath, "build-path", "B", "", "directory for development builds")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(ignoreCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// Override config with flags
	if prefixDir != "" {
		cfg.Prefix = prefixDir
	}
	if buildPath != "" {
		cfg.BuildPath = buildPath
	}
	if verbose {
		cfg.Verbose = true
	}
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newPrefix assembles the prefix from config and flags.
func newPrefix() (*prefix.Prefix, error) {
	settings := prefix.DefaultSettings(cfg.Prefix)
	settings.BuildPath = cfg.BuildPath
	settings.Verbose = cfg.Verbose
	settings.Logger = newLogger()
	if cfg.UseSymlinks != nil {
		settings.UseSymlinks = *cfg.UseSymlinks
	}
	settings.RecipeDirs = append(settings.RecipeDirs, cfg.RecipeDirs...)
	return prefix.New(settings, nil)
}
