package prefix

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func newSpecPrefix(t *testing.T) *Prefix {
	t.Helper()
	p, err := New(Settings{Root: t.TempDir(), Logger: log.New(io.Discard)}, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return p
}

func writeSpec(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromFileMissingReturnsNothing(t *testing.T) {
	p := newSpecPrefix(t)
	builds, err := p.FromFile(filepath.Join(t.TempDir(), "nope.txt"), "", false)
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if builds != nil {
		t.Errorf("FromFile() = %v, want nil", builds)
	}
}

// An existing file with no package lines is not the same as a missing
// one: the CLI reports missing requirements files as errors.
func TestFromFileEmptyFileIsNotMissing(t *testing.T) {
	p := newSpecPrefix(t)
	path := writeSpec(t, t.TempDir(), "requirements.txt", "# nothing yet\n\n")

	builds, err := p.FromFile(path, "", false)
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if builds == nil {
		t.Fatal("FromFile() = nil for an existing file")
	}
	if len(builds) != 0 {
		t.Errorf("FromFile() = %v, want no builds", builds)
	}
}

func TestFromFileCommentsAndBlanks(t *testing.T) {
	p := newSpecPrefix(t)
	path := writeSpec(t, t.TempDir(), "requirements.txt", `
# build deps
foo/bar@v1   # pinned

baz/qux
`)
	builds, err := p.FromFile(path, "", false)
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if len(builds) != 2 {
		t.Fatalf("FromFile() parsed %d builds, want 2: %v", len(builds), builds)
	}
	if builds[0].Name() != "bar" || builds[1].Name() != "qux" {
		t.Errorf("names = %s, %s", builds[0].Name(), builds[1].Name())
	}
	if builds[0].Source.Version != "v1" {
		t.Errorf("version = %s, trailing comment leaked into token", builds[0].Source.Version)
	}
}

func TestFromFileQuotedDefines(t *testing.T) {
	p := newSpecPrefix(t)
	path := writeSpec(t, t.TempDir(), "requirements.txt",
		`foo/bar -DCMAKE_C_FLAGS="-O2 -g" -DFEATURE`+"\n")

	builds, err := p.FromFile(path, "", false)
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if len(builds) != 1 {
		t.Fatalf("builds = %v", builds)
	}
	if got := builds[0].Defines["CMAKE_C_FLAGS"]; got != "-O2 -g" {
		t.Errorf("quoted define = %q, want %q", got, "-O2 -g")
	}
	if got := builds[0].Defines["FEATURE"]; got != "ON" {
		t.Errorf("bare define = %q, want ON", got)
	}
}

// Including a file must produce the same build list as pasting its
// lines in place.
func TestFromFileIncludeExpansion(t *testing.T) {
	p := newSpecPrefix(t)
	dir := t.TempDir()
	writeSpec(t, dir, "common.txt", "b/b\nc/c\n")
	inline := writeSpec(t, dir, "inline.txt", "a/a\nb/b\nc/c\nd/d\n")
	nested := writeSpec(t, dir, "nested.txt", "a/a\n-f common.txt\nd/d\n")

	want, err := p.FromFile(inline, "", false)
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.FromFile(nested, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("expanded %d builds, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Fname() != want[i].Fname() {
			t.Errorf("build %d = %s, want %s", i, got[i].Fname(), want[i].Fname())
		}
	}
}

func TestFromFileIncludeRelativeToIncludingFile(t *testing.T) {
	p := newSpecPrefix(t)
	dir := t.TempDir()
	sub := filepath.Join(dir, "deps")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	writeSpec(t, sub, "inner.txt", "a/a\n")
	outer := writeSpec(t, dir, "outer.txt", "-f deps/inner.txt\n")

	builds, err := p.FromFile(outer, "", false)
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if len(builds) != 1 || builds[0].Name() != "a" {
		t.Errorf("builds = %v", builds)
	}
}

func TestFromFileIncludeCycle(t *testing.T) {
	p := newSpecPrefix(t)
	dir := t.TempDir()
	writeSpec(t, dir, "a.txt", "-f b.txt\n")
	path := writeSpec(t, dir, "b.txt", "-f a.txt\n")

	_, err := p.FromFile(path, "", false)
	if !errors.Is(err, ErrCycle) {
		t.Errorf("error = %v, want ErrCycle", err)
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("error %T does not name the offending file", err)
	}
}

func TestFromFileSelfInclude(t *testing.T) {
	p := newSpecPrefix(t)
	path := writeSpec(t, t.TempDir(), "self.txt", "-f self.txt\n")

	if _, err := p.FromFile(path, "", false); !errors.Is(err, ErrCycle) {
		t.Errorf("error = %v, want ErrCycle", err)
	}
}
