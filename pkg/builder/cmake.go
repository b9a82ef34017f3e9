// pkg/builder/cmake.go
package builder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// CMake drives the cmake and ctest tools for one package. The work
// directory holds the fetched source under src/ and the generated build
// tree under build/.
type CMake struct {
	workDir string
	env     []string
	logger  *log.Logger
}

// New creates a CMake builder bound to workDir. It satisfies Factory.
func New(workDir string, env []string, logger *log.Logger) Builder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CMake{workDir: workDir, env: env, logger: logger}
}

// BuildDir returns the generated build tree location.
func (c *CMake) BuildDir() string {
	return filepath.Join(c.workDir, "build")
}

func (c *CMake) srcRoot() string {
	return filepath.Join(c.workDir, "src")
}

// Configure generates the build system with cmake.
func (c *CMake) Configure(ctx context.Context, srcDir string, opts ConfigureOptions) error {
	args := []string{"-S", srcDir, "-B", c.BuildDir()}
	if opts.Generator != "" {
		args = append(args, "-G", opts.Generator)
	}
	if opts.Toolchain != "" {
		args = append(args, "-DCMAKE_TOOLCHAIN_FILE="+opts.Toolchain)
	}
	if opts.InstallPrefix != "" {
		args = append(args, "-DCMAKE_INSTALL_PREFIX="+opts.InstallPrefix)
	}
	variant := opts.Variant
	if variant == "" {
		variant = "Release"
	}
	args = append(args, "-DCMAKE_BUILD_TYPE="+variant)
	if opts.Test {
		args = append(args, "-DBUILD_TESTING=ON")
	} else {
		args = append(args, "-DBUILD_TESTING=OFF")
	}
	args = append(args, defineArgs(opts.Defines)...)

	if err := c.run(ctx, "configure", c.workDir, "cmake", args...); err != nil {
		return err
	}
	return nil
}

// Build compiles the configured tree. An empty target builds everything.
func (c *CMake) Build(ctx context.Context, variant, target string) error {
	if variant == "" {
		variant = "Release"
	}
	args := []string{"--build", c.BuildDir(), "--config", variant}
	if target != "" {
		args = append(args, "--target", target)
	}
	return c.run(ctx, "build", c.workDir, "cmake", args...)
}

// Test runs ctest inside the build tree.
func (c *CMake) Test(ctx context.Context, variant string) error {
	if variant == "" {
		variant = "Release"
	}
	return c.run(ctx, "test", c.BuildDir(), "ctest", "--output-on-failure", "-C", variant)
}

// run executes a build tool, capturing output for diagnostics. With
// debug logging enabled the output is streamed through as well.
func (c *CMake) run(ctx context.Context, op, dir string, name string, args ...string) error {
	c.logger.Debug("exec", "cmd", name, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), c.env...)

	var out bytes.Buffer
	if c.logger.GetLevel() <= log.DebugLevel {
		w := io.MultiWriter(&out, os.Stderr)
		cmd.Stdout = w
		cmd.Stderr = w
	} else {
		cmd.Stdout = &out
		cmd.Stderr = &out
	}

	if err := cmd.Run(); err != nil {
		return &Error{
			Op:     op,
			Msg:    fmt.Sprintf("%s %s", name, strings.Join(args, " ")),
			Output: out.Bytes(),
			Err:    err,
		}
	}
	return nil
}

// defineArgs renders cache defines as -D arguments, honoring an
// explicit :TYPE suffix on the key and detecting booleans otherwise.
func defineArgs(defines map[string]string) []string {
	keys := make([]string, 0, len(defines))
	for k := range defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, len(keys))
	for _, k := range keys {
		name, vtype, value := ParseCMakeVar(k, defines[k])
		args = append(args, fmt.Sprintf("-D%s:%s=%s", name, vtype, value))
	}
	return args
}

// ParseCMakeVar splits a define key of the form NAME[:TYPE] and infers
// BOOL for on/off style values when no type is given.
func ParseCMakeVar(key, value string) (name, vtype, val string) {
	if i := strings.Index(key, ":"); i >= 0 {
		return key[:i], strings.ToUpper(key[i+1:]), value
	}
	switch strings.ToLower(value) {
	case "on", "off", "true", "false":
		return key, "BOOL", value
	}
	return key, "STRING", value
}
