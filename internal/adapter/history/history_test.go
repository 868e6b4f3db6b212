package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "nonexistent"))
	if len(s.Entries()) != 0 {
		t.Errorf("entries = %v, want empty", s.Entries())
	}
}

func TestLoad_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	content := "/data/a.nc\n\n  \n/data/b.shp\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := Load(path)
	want := []string{"/data/a.nc", "/data/b.shp"}
	if diff := cmp.Diff(want, s.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_KeepsPathsVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	content := "/data/a.nc \n /data/odd name.shp\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := Load(path)
	want := []string{"/data/a.nc ", " /data/odd name.shp"}
	if diff := cmp.Diff(want, s.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestAdd_DedupesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	s := Load(path)

	s.Add("/data/a.nc")
	s.Add("/data/b.nc")
	s.Add("/data/a.nc") // re-open moves it to the front

	want := []string{"/data/a.nc", "/data/b.nc"}
	if diff := cmp.Diff(want, s.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	// A fresh load sees the same list.
	reloaded := Load(path)
	if diff := cmp.Diff(want, reloaded.Entries()); diff != "" {
		t.Errorf("reloaded entries mismatch (-want +got):\n%s", diff)
	}
}

func TestAdd_UnwritablePathDegradesToMemory(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "no", "such", "dir", "history"))
	s.Add("/data/a.nc")
	want := []string{"/data/a.nc"}
	if diff := cmp.Diff(want, s.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "history"))
	s.Add("/data/a.nc")

	entries := s.Entries()
	entries[0] = "mutated"
	if s.Entries()[0] != "/data/a.nc" {
		t.Error("Entries must return a copy")
	}
}
