package prefix

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStoreStates(t *testing.T) {
	s := NewStore(t.TempDir())
	const fname = "zlib__1.2.13__aaaa"

	if got := s.State(fname); got != StateAbsent {
		t.Fatalf("state = %v, want absent", got)
	}
	if err := s.Create(fname); err != nil {
		t.Fatal(err)
	}
	if got := s.State(fname); got != StateBuilding {
		t.Fatalf("state = %v, want building", got)
	}
	if err := s.MarkComplete(fname); err != nil {
		t.Fatal(err)
	}
	if got := s.State(fname); got != StateLinked {
		t.Fatalf("state = %v, want linked", got)
	}
	if err := os.Rename(s.EntryPath(fname), s.UnlinkPath(fname)); err != nil {
		t.Fatal(err)
	}
	if got := s.State(fname); got != StateUnlinked {
		t.Fatalf("state = %v, want unlinked", got)
	}
	if err := s.Delete(fname); err != nil {
		t.Fatal(err)
	}
	if got := s.State(fname); got != StateAbsent {
		t.Fatalf("state = %v, want absent", got)
	}
}

func TestStoreIgnoredState(t *testing.T) {
	s := NewStore(t.TempDir())
	const fname = "boost__1.84__bbbb"
	if err := s.Create(fname); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkIgnored(fname); err != nil {
		t.Fatal(err)
	}
	if got := s.State(fname); got != StateIgnored {
		t.Fatalf("state = %v, want ignored", got)
	}
}

func TestRecordEdgeIdempotent(t *testing.T) {
	s := NewStore(t.TempDir())
	const (
		child  = "zlib__1.2.13__aaaa"
		parent = "libpng__1.6__bbbb"
	)
	if err := s.Create(child); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.RecordEdge(child, parent); err != nil {
			t.Fatalf("RecordEdge #%d: %v", i, err)
		}
	}
	got, err := s.Dependents(child)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{parent}) {
		t.Errorf("Dependents() = %v, want [%s]", got, parent)
	}
}

func TestEdgesSurviveUnlink(t *testing.T) {
	s := NewStore(t.TempDir())
	const (
		child  = "zlib__1.2.13__aaaa"
		parent = "libpng__1.6__bbbb"
	)
	if err := s.Create(child); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordEdge(child, parent); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(s.EntryPath(child), s.UnlinkPath(child)); err != nil {
		t.Fatal(err)
	}

	got, err := s.Dependents(child)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{parent}) {
		t.Errorf("Dependents() after unlink = %v, want [%s]", got, parent)
	}

	// New edges can still be recorded against the unlinked entry.
	if err := s.RecordEdge(child, "cares__1.27__cccc"); err != nil {
		t.Fatal(err)
	}
	got, err = s.Dependents(child)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("Dependents() = %v, want two parents", got)
	}
}

func TestEntriesListsBothLinkedAndUnlinked(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, fname := range []string{"b__2__bbbb", "a__1__aaaa"} {
		if err := s.Create(fname); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Rename(s.EntryPath("b__2__bbbb"), s.UnlinkPath("b__2__bbbb")); err != nil {
		t.Fatal(err)
	}

	got, err := s.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"a__1__aaaa", "b__2__bbbb"}) {
		t.Errorf("Entries() = %v", got)
	}
}

func TestListRecursive(t *testing.T) {
	s := NewStore(t.TempDir())
	const (
		leaf = "zlib__1.2.13__aaaa"
		mid  = "libpng__1.6__bbbb"
		top  = "app__0.1__cccc"
	)
	for _, fname := range []string{leaf, mid, top} {
		if err := s.Create(fname); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.RecordEdge(leaf, mid); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordEdge(mid, top); err != nil {
		t.Fatal(err)
	}

	flat, err := s.List(leaf, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != 2 {
		t.Fatalf("List(leaf) = %v, want leaf and its direct dependent", flat)
	}

	deep, err := s.List(leaf, true)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, src := range deep {
		names[src.Name] = true
	}
	for _, want := range []string{"zlib", "libpng", "app"} {
		if !names[want] {
			t.Errorf("recursive List missing %s: %v", want, deep)
		}
	}
}

func TestInstallPathLayout(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "prefix"))
	const fname = "zlib__1.2.13__aaaa"
	want := filepath.Join(s.Path(), fname, "install")
	if got := s.InstallPath(fname); got != want {
		t.Errorf("InstallPath() = %s, want %s", got, want)
	}
}
