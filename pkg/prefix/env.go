// pkg/prefix/env.go
package prefix

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// PkgConfigPath returns the pkg-config search path covering every
// layout packages install .pc files under.
func (p *Prefix) PkgConfigPath() string {
	var paths []string
	for _, dir := range []string{"lib", "lib64", "share"} {
		paths = append(paths, filepath.Join(p.settings.Root, dir, "pkgconfig"))
	}
	return strings.Join(paths, string(os.PathListSeparator))
}

// Env returns the environment variables consuming builds need so the
// prefix's libraries and pkg-config files are found.
func (p *Prefix) Env() map[string]string {
	if runtime.GOOS == "windows" {
		return nil
	}
	return map[string]string{
		"LD_LIBRARY_PATH": filepath.Join(p.settings.Root, "lib"),
		"PKG_CONFIG_PATH": p.PkgConfigPath(),
	}
}

// EnvList renders Env as KEY=VALUE pairs for subprocess environments,
// with the prefix bin directory prepended to PATH.
func (p *Prefix) EnvList() []string {
	env := p.Env()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	out = append(out, fmt.Sprintf("PATH=%s%c%s",
		filepath.Join(p.settings.Root, "bin"), os.PathListSeparator, os.Getenv("PATH")))
	return out
}
