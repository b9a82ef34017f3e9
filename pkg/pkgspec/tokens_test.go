package pkgspec

import "testing"

func TestParseBuildTokens(t *testing.T) {
	pb, err := ParseBuildTokens([]string{"madler/zlib@v1.3", "-DBUILD_SHARED_LIBS=ON", "--cmake", "zlib.cmake", "--test"})
	if err != nil {
		t.Fatalf("ParseBuildTokens() error: %v", err)
	}
	if pb.Token != "madler/zlib@v1.3" {
		t.Errorf("Token = %q", pb.Token)
	}
	if pb.Defines["BUILD_SHARED_LIBS"] != "ON" {
		t.Errorf("Defines = %v", pb.Defines)
	}
	if pb.CMake != "zlib.cmake" {
		t.Errorf("CMake = %q", pb.CMake)
	}
	if !pb.Test {
		t.Error("Test flag not set")
	}
}

func TestParseBuildTokensInclude(t *testing.T) {
	pb, err := ParseBuildTokens([]string{"-f", "more.txt"})
	if err != nil {
		t.Fatalf("ParseBuildTokens() error: %v", err)
	}
	if pb.File != "more.txt" {
		t.Errorf("File = %q, want more.txt", pb.File)
	}
	if pb.Token != "" {
		t.Errorf("Token = %q, want empty", pb.Token)
	}
}

func TestParseBuildTokensDefineWithoutValue(t *testing.T) {
	pb, err := ParseBuildTokens([]string{"zlib", "-DZLIB_COMPAT"})
	if err != nil {
		t.Fatalf("ParseBuildTokens() error: %v", err)
	}
	if pb.Defines["ZLIB_COMPAT"] != "ON" {
		t.Errorf("Defines = %v, want ZLIB_COMPAT=ON", pb.Defines)
	}
}

func TestParseBuildTokensEmpty(t *testing.T) {
	if _, err := ParseBuildTokens([]string{"--test"}); err == nil {
		t.Error("expected error for line with no package and no include")
	}
}

func TestParseBuildTokensExtraArgs(t *testing.T) {
	if _, err := ParseBuildTokens([]string{"zlib", "boost"}); err == nil {
		t.Error("expected error for two positional tokens")
	}
}

func TestMergeCallerWins(t *testing.T) {
	recipe := &PackageBuild{
		Source:  &PackageSource{Name: "zlib", URL: "https://example.com/zlib.tar.gz"},
		Defines: map[string]string{"A": "recipe", "B": "recipe"},
		Variant: "Release",
		Hash:    "sha256:aaaa",
	}
	caller := &PackageBuild{
		Defines: map[string]string{"B": "caller", "C": "caller"},
		Variant: "Debug",
	}
	got := recipe.Merge(caller)

	if got.Defines["A"] != "recipe" || got.Defines["B"] != "caller" || got.Defines["C"] != "caller" {
		t.Errorf("merged defines = %v", got.Defines)
	}
	if got.Variant != "Debug" {
		t.Errorf("Variant = %q, want Debug", got.Variant)
	}
	if got.Hash != "sha256:aaaa" {
		t.Errorf("Hash = %q, recipe value should survive when caller is silent", got.Hash)
	}
	if recipe.Defines["B"] != "recipe" {
		t.Error("Merge mutated the receiver")
	}
}

func TestOfRecordsParent(t *testing.T) {
	parent := build("boost", "https://example.com/boost.tar.gz", "1.84")
	dep := build("zlib", "https://example.com/zlib.tar.gz", "v1.3")
	tagged := dep.Of(parent)
	if tagged.Parent != parent.Fname() {
		t.Errorf("Parent = %q, want %q", tagged.Parent, parent.Fname())
	}
	if dep.Parent != "" {
		t.Error("Of mutated the receiver")
	}
}
