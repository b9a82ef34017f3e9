// internal/cli/init.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apwojcik/cget/pkg/builder"
)

var (
	initCC        string
	initCXX       string
	initCFlags    string
	initCXXFlags  string
	initLDFlags   string
	initStd       string
	initToolchain string
	initDefines   []string
	initShared    bool
	initStatic    bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the prefix and write its toolchain file",
	Long: `Initialize the prefix and write its toolchain file.

The toolchain file records the compiler setup every package in this
prefix is built with. Re-running init regenerates it.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initCC, "cc", "", "C compiler")
	initCmd.Flags().StringVar(&initCXX, "cxx", "", "C++ compiler")
	initCmd.Flags().StringVar(&initCFlags, "cflags", "", "C compiler flags")
	initCmd.Flags().StringVar(&initCXXFlags, "cxxflags", "", "C++ compiler flags")
	initCmd.Flags().StringVar(&initLDFlags, "ldflags", "", "linker flags")
	initCmd.Flags().StringVar(&initStd, "std", "", "C++ standard, e.g. c++17")
	initCmd.Flags().StringVarP(&initToolchain, "toolchain", "t", "", "existing toolchain file to chain-include")
	initCmd.Flags().StringArrayVarP(&initDefines, "define", "D", nil, "cmake cache define baked into the toolchain")
	initCmd.Flags().BoolVar(&initShared, "shared", false, "default to shared libraries")
	initCmd.Flags().BoolVar(&initStatic, "static", false, "default to static libraries")
}

func runInit(cmd *cobra.Command, args []string) error {
	if initShared && initStatic {
		return fmt.Errorf("--shared and --static are mutually exclusive")
	}

	p, err := newPrefix()
	if err != nil {
		return fmt.Errorf("opening prefix: %w", err)
	}

	opts := builder.ToolchainOptions{
		Toolchain: initToolchain,
		CC:        initCC,
		CXX:       initCXX,
		CFlags:    initCFlags,
		CXXFlags:  initCXXFlags,
		LDFlags:   initLDFlags,
		Std:       initStd,
	}
	if len(initDefines) > 0 {
		opts.Defines = make(map[string]string, len(initDefines))
		for _, d := range initDefines {
			key, value, found := strings.Cut(d, "=")
			if !found {
				value = "ON"
			}
			opts.Defines[key] = value
		}
	}
	if initShared || initStatic {
		shared := initShared
		opts.Shared = &shared
	}

	if err := p.WriteToolchain(opts); err != nil {
		return err
	}
	fmt.Printf("Initialized prefix %s\n", p.Root())
	return nil
}
