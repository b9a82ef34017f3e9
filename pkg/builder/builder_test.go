package builder

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTarGz builds a small tar.gz archive with the given members.
func writeTarGz(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for name, content := range members {
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractArchiveTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"pkg-1.0/CMakeLists.txt": "project(pkg)",
		"pkg-1.0/src/pkg.c":      "int main() {}",
	})

	dest := filepath.Join(dir, "out")
	if err := ExtractArchive(archive, dest); err != nil {
		t.Fatalf("ExtractArchive() error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dest, "pkg-1.0", "CMakeLists.txt"))
	if err != nil || string(data) != "project(pkg)" {
		t.Errorf("extracted file = %q, err %v", data, err)
	}
}

func TestExtractArchiveRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar.gz")
	writeTarGz(t, archive, map[string]string{"../evil.txt": "x"})

	if err := ExtractArchive(archive, filepath.Join(dir, "out")); err == nil {
		t.Error("expected error for path traversal member")
	}
}

func TestExtractArchiveUnsupported(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.rar")
	if err := os.WriteFile(archive, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ExtractArchive(archive, dir); !errors.Is(err, ErrUnsupportedArchive) {
		t.Errorf("error = %v, want ErrUnsupportedArchive", err)
	}
}

func TestFetchLocalDirectory(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "CMakeLists.txt"), []byte("project(x)"), 0644); err != nil {
		t.Fatal(err)
	}

	b := New(t.TempDir(), nil, nil)
	got, err := b.Fetch(context.Background(), FetchOptions{URL: "file://" + src})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got != src {
		t.Errorf("Fetch() = %q, want %q", got, src)
	}
}

func TestFetchLocalArchiveDescendsTopDir(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.tar.gz")
	writeTarGz(t, archive, map[string]string{"pkg-1.0/CMakeLists.txt": "project(pkg)"})

	b := New(t.TempDir(), nil, nil)
	got, err := b.Fetch(context.Background(), FetchOptions{URL: "file://" + archive})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if filepath.Base(got) != "pkg-1.0" {
		t.Errorf("Fetch() = %q, want the unpacked top directory", got)
	}
}

func TestFetchHashMismatch(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.tar.gz")
	writeTarGz(t, archive, map[string]string{"pkg/CMakeLists.txt": "x"})

	b := New(t.TempDir(), nil, nil)
	_, err := b.Fetch(context.Background(), FetchOptions{
		URL:  "file://" + archive,
		Hash: "sha256:" + strings.Repeat("0", 64),
	})
	if !errors.Is(err, ErrHashMismatch) {
		t.Errorf("error = %v, want ErrHashMismatch", err)
	}
}

func TestFetchHashMatch(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.tar.gz")
	writeTarGz(t, archive, map[string]string{"pkg/CMakeLists.txt": "x"})

	data, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(data)

	b := New(t.TempDir(), nil, nil)
	if _, err := b.Fetch(context.Background(), FetchOptions{
		URL:  "file://" + archive,
		Hash: "sha256:" + hex.EncodeToString(sum[:]),
	}); err != nil {
		t.Errorf("Fetch() with matching hash error: %v", err)
	}
}

func TestFetchNoSource(t *testing.T) {
	src := t.TempDir() // no CMakeLists.txt anywhere
	b := New(t.TempDir(), nil, nil)
	_, err := b.Fetch(context.Background(), FetchOptions{URL: "file://" + src})
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("error = %v, want ErrNoSource", err)
	}
}

func TestParseCMakeVar(t *testing.T) {
	cases := []struct {
		key, value          string
		name, vtype, wantVal string
	}{
		{"BUILD_SHARED_LIBS", "ON", "BUILD_SHARED_LIBS", "BOOL", "ON"},
		{"CMAKE_CXX_FLAGS:string", "-O2", "CMAKE_CXX_FLAGS", "STRING", "-O2"},
		{"MY_PATH:PATH", "/opt", "MY_PATH", "PATH", "/opt"},
		{"PREFIX", "/usr", "PREFIX", "STRING", "/usr"},
		{"ENABLE_X", "false", "ENABLE_X", "BOOL", "false"},
	}
	for _, tc := range cases {
		name, vtype, value := ParseCMakeVar(tc.key, tc.value)
		if name != tc.name || vtype != tc.vtype || value != tc.wantVal {
			t.Errorf("ParseCMakeVar(%q, %q) = (%q, %q, %q), want (%q, %q, %q)",
				tc.key, tc.value, name, vtype, value, tc.name, tc.vtype, tc.wantVal)
		}
	}
}

func TestGenerateToolchain(t *testing.T) {
	shared := true
	out := string(GenerateToolchain("/opt/prefix", ToolchainOptions{
		CXX:     "clang++",
		Std:     "c++17",
		Defines: map[string]string{"ZLIB_COMPAT": "ON"},
		Shared:  &shared,
	}))

	for _, want := range []string{
		`set(CGET_PREFIX "/opt/prefix")`,
		`set(CMAKE_PREFIX_PATH "/opt/prefix")`,
		`set(CMAKE_CXX_COMPILER "clang++")`,
		`set(CMAKE_CXX_STD_FLAG "-std=c++17")`,
		`set(ZLIB_COMPAT ON CACHE BOOL "")`,
		`set(BUILD_SHARED_LIBS ON CACHE BOOL "")`,
		`set(CMAKE_INSTALL_RPATH "${CGET_PREFIX}/lib" CACHE STRING "")`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("toolchain missing line %q", want)
		}
	}
}

func TestWriteToolchainPreservesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cget", "cget.cmake")
	if err := WriteToolchain(path, "/p1", ToolchainOptions{}, false); err != nil {
		t.Fatalf("WriteToolchain() error: %v", err)
	}
	if err := WriteToolchain(path, "/p2", ToolchainOptions{}, false); err != nil {
		t.Fatalf("second WriteToolchain() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "/p1") {
		t.Error("non-forced write replaced the existing toolchain")
	}

	if err := WriteToolchain(path, "/p2", ToolchainOptions{}, true); err != nil {
		t.Fatalf("forced WriteToolchain() error: %v", err)
	}
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "/p2") {
		t.Error("forced write did not replace the toolchain")
	}
}
