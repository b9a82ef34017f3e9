package pkgspec

import (
	"strings"
	"testing"
)

func build(name, url, version string) *PackageBuild {
	return &PackageBuild{Source: &PackageSource{Name: name, URL: url, Version: version}}
}

func TestFnameDeterministic(t *testing.T) {
	a := build("zlib", "https://github.com/madler/zlib/archive/v1.3.tar.gz", "v1.3")
	b := build("zlib", "https://github.com/madler/zlib/archive/v1.3.tar.gz", "v1.3")
	if a.Fname() != b.Fname() {
		t.Errorf("equal builds produced different fnames: %q vs %q", a.Fname(), b.Fname())
	}
}

func TestFnameDefineOrderIndependent(t *testing.T) {
	a := build("zlib", "file:///src/zlib", "")
	a.Defines = map[string]string{"BUILD_SHARED_LIBS": "ON", "ZLIB_COMPAT": "OFF"}
	b := build("zlib", "file:///src/zlib", "")
	b.Defines = map[string]string{"ZLIB_COMPAT": "OFF", "BUILD_SHARED_LIBS": "ON"}
	if a.Fname() != b.Fname() {
		t.Errorf("define order changed the fname: %q vs %q", a.Fname(), b.Fname())
	}
}

func TestFnameSensitivity(t *testing.T) {
	base := func() *PackageBuild {
		pb := build("zlib", "https://example.com/zlib.tar.gz", "v1.3")
		pb.Defines = map[string]string{"A": "1"}
		pb.Variant = "Release"
		return pb
	}
	ref := base().Fname()

	mutations := map[string]func(*PackageBuild){
		"name":    func(pb *PackageBuild) { pb.Source.Name = "zlib-ng" },
		"url":     func(pb *PackageBuild) { pb.Source.URL = "https://example.com/other.tar.gz" },
		"version": func(pb *PackageBuild) { pb.Source.Version = "v1.4" },
		"hash":    func(pb *PackageBuild) { pb.Hash = "sha256:deadbeef" },
		"variant": func(pb *PackageBuild) { pb.Variant = "Debug" },
		"define":  func(pb *PackageBuild) { pb.Defines["A"] = "2" },
		"cmake":   func(pb *PackageBuild) { pb.CMake = "custom.cmake" },
	}
	for field, mutate := range mutations {
		pb := base()
		mutate(pb)
		if pb.Fname() == ref {
			t.Errorf("changing %s did not change the fname", field)
		}
	}
}

// Names that differ only in characters sanitize maps away share an
// fname prefix, so the digest has to keep them apart.
func TestFnameSanitizeCollidingNames(t *testing.T) {
	a := build("zlib:ng", "https://example.com/zlib.tar.gz", "")
	b := build("zlib ng", "https://example.com/zlib.tar.gz", "")
	if sanitize(a.Source.Name) != sanitize(b.Source.Name) {
		t.Fatalf("test names must sanitize identically: %q vs %q",
			sanitize(a.Source.Name), sanitize(b.Source.Name))
	}
	if a.Fname() == b.Fname() {
		t.Errorf("distinct names encoded identically: %q", a.Fname())
	}
}

func TestFnameIgnoresEdgeTags(t *testing.T) {
	a := build("zlib", "file:///src/zlib", "")
	b := build("zlib", "file:///src/zlib", "")
	b.Parent = "boost__1.84__abc"
	b.Test = true
	if a.Fname() != b.Fname() {
		t.Errorf("parent/test tags changed the fname: %q vs %q", a.Fname(), b.Fname())
	}
}

func TestFnameToPkg(t *testing.T) {
	pb := build("zlib", "https://example.com/zlib.tar.gz", "v1.3")
	src := FnameToPkg(pb.Fname())
	if src.Name != "zlib" {
		t.Errorf("decoded name = %q, want zlib", src.Name)
	}
	if src.Version != "v1.3" {
		t.Errorf("decoded version = %q, want v1.3", src.Version)
	}
}

func TestFnameFilesystemSafe(t *testing.T) {
	pb := build("weird name/with:stuff", "https://example.com/a.tar.gz", "1.0 beta")
	fname := pb.Fname()
	if strings.ContainsAny(fname, "/\\: ") {
		t.Errorf("fname %q contains unsafe characters", fname)
	}
	if n := strings.Count(fname, "__"); n != 2 {
		t.Errorf("fname %q has %d separators, want 2", fname, n)
	}
}

func TestDisplayNameFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://github.com/madler/zlib/archive/v1.3.tar.gz", "v1.3"},
		{"file:///home/user/src/zlib", "zlib"},
		{"https://example.com/boost.tar.xz", "boost"},
		{"https://github.com/madler/zlib.git", "zlib"},
	}
	for _, tc := range cases {
		src := &PackageSource{URL: tc.url}
		if got := src.DisplayName(); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
