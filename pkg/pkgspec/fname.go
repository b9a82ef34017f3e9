// fname.go
package pkgspec

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"zombiezen.com/go/nix/nixbase32"
)

// fnameSep separates the name, version and digest segments of an fname.
// Sanitized segments never contain a double underscore, so splitting on
// it is unambiguous.
const fnameSep = "__"

// Fname derives the filesystem-safe identity string for a resolved
// build: <name>__<version>__<digest>. Two builds with equal name,
// resolved source and canonicalized options produce the same fname; any
// change to name, source, version, hash or build options changes it.
func (b *PackageBuild) Fname() string {
	version := ""
	if b.Source != nil {
		version = b.Source.Version
	}
	return sanitize(b.identityName()) + fnameSep + sanitize(version) + fnameSep + b.digest()
}

// identityName is the name the fname encodes: the source's display
// name, falling back to the raw token.
func (b *PackageBuild) identityName() string {
	if b.Source != nil {
		if name := b.Source.DisplayName(); name != "" {
			return name
		}
	}
	return b.Token
}

// digest hashes the identity-bearing fields into a short base32 string.
// The nix base32 alphabet keeps it lower-case and filesystem safe. The
// raw name is part of the record: sanitizing the fname prefix can
// collapse distinct names, and those must still encode differently.
func (b *PackageBuild) digest() string {
	var rec strings.Builder
	fmt.Fprintf(&rec, "name=%s\n", b.identityName())
	if b.Source != nil {
		fmt.Fprintf(&rec, "url=%s\n", b.Source.URL)
		fmt.Fprintf(&rec, "version=%s\n", b.Source.Version)
	}
	fmt.Fprintf(&rec, "hash=%s\n", b.Hash)
	fmt.Fprintf(&rec, "variant=%s\n", b.Variant)
	fmt.Fprintf(&rec, "cmake=%s\n", b.CMake)
	keys := make([]string, 0, len(b.Defines))
	for k := range b.Defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&rec, "define=%s=%s\n", k, b.Defines[k])
	}
	sum := sha256.Sum256([]byte(rec.String()))
	return nixbase32.EncodeToString(sum[:20])
}

// FnameToPkg recovers the name and version encoded in an fname for
// display. The build options do not round-trip.
func FnameToPkg(fname string) *PackageSource {
	parts := strings.SplitN(fname, fnameSep, 3)
	src := &PackageSource{Name: parts[0]}
	if len(parts) > 1 {
		src.Version = parts[1]
	}
	return src
}

// sanitize maps a segment onto the fname-safe alphabet. Runs of
// underscores collapse to one so the segment separator stays unique.
func sanitize(s string) string {
	var out strings.Builder
	lastUnderscore := false
	for _, r := range s {
		ok := r >= 'a' && r <= 'z' ||
			r >= 'A' && r <= 'Z' ||
			r >= '0' && r <= '9' ||
			r == '.' || r == '+' || r == '-'
		if ok {
			out.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			out.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(out.String(), "_")
}
