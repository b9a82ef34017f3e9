// tokens.go
package pkgspec

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// ParseBuildTokens parses one tokenized line of a specification or
// requirements file into an unresolved PackageBuild. The first
// positional token is the package source; the rest are per-package
// options. A line carrying only -f/--file designates a textual include
// of another specification file.
func ParseBuildTokens(tokens []string) (*PackageBuild, error) {
	fs := pflag.NewFlagSet("package", pflag.ContinueOnError)
	fs.Usage = func() {}

	defines := fs.StringArrayP("define", "D", nil, "extra cmake cache define (KEY=VALUE)")
	hash := fs.StringP("hash", "H", "", "expected content hash of the source archive")
	cmake := fs.String("cmake", "", "custom CMakeLists.txt to build with")
	variant := fs.String("variant", "", "build variant")
	file := fs.StringP("file", "f", "", "include another specification file")
	requirements := fs.String("requirements", "", "requirements file override")
	test := fs.BoolP("test", "t", false, "needed only when testing")
	build := fs.BoolP("build", "b", false, "needed only at build time")
	ignoreReq := fs.Bool("ignore-requirements", false, "skip the source requirements file")

	if err := fs.Parse(tokens); err != nil {
		return nil, fmt.Errorf("parsing package tokens %q: %w", strings.Join(tokens, " "), err)
	}

	pb := &PackageBuild{
		Hash:               *hash,
		CMake:              *cmake,
		Variant:            *variant,
		File:               *file,
		Requirements:       *requirements,
		Test:               *test,
		Build:              *build,
		IgnoreRequirements: *ignoreReq,
	}

	args := fs.Args()
	if len(args) > 0 {
		pb.Token = args[0]
	}
	if len(args) > 1 {
		return nil, fmt.Errorf("unexpected extra tokens: %s", strings.Join(args[1:], " "))
	}
	if pb.Token == "" && pb.File == "" {
		return nil, fmt.Errorf("line names neither a package nor an include file")
	}

	for _, d := range *defines {
		key, value, found := strings.Cut(d, "=")
		if !found {
			value = "ON"
		}
		if pb.Defines == nil {
			pb.Defines = make(map[string]string)
		}
		pb.Defines[key] = value
	}

	return pb, nil
}
