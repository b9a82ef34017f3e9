// pkg/builder/toolchain.go
package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ToolchainOptions captures the compiler setup baked into the generated
// toolchain file at init time.
type ToolchainOptions struct {
	Toolchain string            // Existing toolchain file to chain-include
	CC        string            // C compiler
	CXX       string            // C++ compiler
	CFlags    string
	CXXFlags  string
	LDFlags   string
	Std       string            // C++ standard, e.g. c++17
	Defines   map[string]string // Extra cache defines, key may carry :TYPE
	Shared    *bool             // BUILD_SHARED_LIBS, nil leaves it unset
}

// GenerateToolchain renders the toolchain file contents for a prefix.
// Every package build is configured with this file so dependencies
// already published into the prefix tree are found first.
func GenerateToolchain(prefix string, opts ToolchainOptions) []byte {
	var b strings.Builder
	set := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	set("set(CGET_PREFIX %s)", quote(prefix))
	set("set(CMAKE_PREFIX_PATH %s)", quote(prefix))
	set(`if (${CMAKE_VERSION} VERSION_LESS "3.6.0")`)
	set("    include_directories(SYSTEM ${CGET_PREFIX}/include)")
	set("else ()")
	set("    set(CMAKE_CXX_STANDARD_INCLUDE_DIRECTORIES ${CGET_PREFIX}/include)")
	set("    set(CMAKE_C_STANDARD_INCLUDE_DIRECTORIES ${CGET_PREFIX}/include)")
	set("endif()")
	if opts.Toolchain != "" {
		abs, err := filepath.Abs(opts.Toolchain)
		if err != nil {
			abs = opts.Toolchain
		}
		set("include(%s)", quote(abs))
	}
	set("if (CMAKE_CROSSCOMPILING)")
	set("    list(APPEND CMAKE_FIND_ROOT_PATH %s)", quote(prefix))
	set("endif()")
	set("if (CMAKE_INSTALL_PREFIX_INITIALIZED_TO_DEFAULT)")
	set("    set(CMAKE_INSTALL_PREFIX %s)", quote(prefix))
	set("endif()")
	if opts.CXX != "" {
		set("set(CMAKE_CXX_COMPILER %s)", quote(opts.CXX))
	}
	if opts.CC != "" {
		set("set(CMAKE_C_COMPILER %s)", quote(opts.CC))
	}
	if opts.Std != "" {
		set(`if (NOT "${CMAKE_CXX_COMPILER_ID}" STREQUAL "MSVC")`)
		set(`    set(CMAKE_CXX_STD_FLAG "-std=%s")`, opts.Std)
		set("endif()")
	}
	if opts.CFlags != "" {
		set(`set(CMAKE_C_FLAGS "$ENV{CFLAGS} ${CMAKE_C_FLAGS_INIT} %s" CACHE STRING "")`, opts.CFlags)
	}
	if opts.CXXFlags != "" || opts.Std != "" {
		set(`set(CMAKE_CXX_FLAGS "$ENV{CXXFLAGS} ${CMAKE_CXX_FLAGS_INIT} ${CMAKE_CXX_STD_FLAG} %s" CACHE STRING "")`, opts.CXXFlags)
	}
	if opts.LDFlags != "" {
		for _, linkType := range []string{"STATIC", "SHARED", "MODULE", "EXE"} {
			set(`set(CMAKE_%s_LINKER_FLAGS "$ENV{LDFLAGS} %s" CACHE STRING "")`, linkType, opts.LDFlags)
		}
	}
	if opts.Shared != nil {
		value := "OFF"
		if *opts.Shared {
			value = "ON"
		}
		set(`set(BUILD_SHARED_LIBS %s CACHE BOOL "")`, value)
	}
	keys := make([]string, 0, len(opts.Defines))
	for k := range opts.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name, vtype, value := ParseCMakeVar(k, opts.Defines[k])
		if vtype == "BOOL" {
			set(`set(%s %s CACHE BOOL "")`, name, value)
		} else {
			set(`set(%s %s CACHE %s "")`, name, quote(value), vtype)
		}
	}
	set("if (BUILD_SHARED_LIBS)")
	set(`    set(CMAKE_WINDOWS_EXPORT_ALL_SYMBOLS ON CACHE BOOL "")`)
	set("endif()")
	set(`set(CMAKE_FIND_FRAMEWORK LAST CACHE STRING "")`)
	set(`set(CMAKE_INSTALL_RPATH "${CGET_PREFIX}/lib" CACHE STRING "")`)

	return []byte(b.String())
}

// WriteToolchain writes the generated toolchain file, creating parent
// directories as needed. An existing file is only rewritten when force
// is set, so repeated installs keep the init-time configuration.
func WriteToolchain(path, prefix string, opts ToolchainOptions, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating toolchain directory: %w", err)
	}
	if err := os.WriteFile(path, GenerateToolchain(prefix, opts), 0644); err != nil {
		return fmt.Errorf("writing toolchain: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
