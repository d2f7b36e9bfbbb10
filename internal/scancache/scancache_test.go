package scancache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lu-zhengda/wiper/internal/scanner"
)

// ---------------------------------------------------------------------------
// Save and Load round-trip
// ---------------------------------------------------------------------------

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "last-scan.json")

	ts := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	snap := Snapshot{
		Timestamp: ts,
		Root:      "/code",
		TotalSize: 5000,
		Projects: []ProjectSnapshot{
			{Path: "/code/web", ModuleSize: 3000},
			{Path: "/code/api", ModuleSize: 2000},
		},
	}

	if err := Save(path, Cache{Roots: map[string]Snapshot{"/code": snap}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got, ok := loaded.Roots["/code"]
	if !ok {
		t.Fatal("missing /code in loaded cache")
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}
	if got.TotalSize != 5000 {
		t.Errorf("TotalSize = %d, want 5000", got.TotalSize)
	}
	if len(got.Projects) != 2 {
		t.Fatalf("len(Projects) = %d, want 2", len(got.Projects))
	}
	if got.Projects[0].Path != "/code/web" || got.Projects[0].ModuleSize != 3000 {
		t.Errorf("Projects[0] = %+v", got.Projects[0])
	}
}

// ---------------------------------------------------------------------------
// Load: missing and corrupt files
// ---------------------------------------------------------------------------

func TestLoad_NotExist(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Roots == nil || len(c.Roots) != 0 {
		t.Errorf("Roots = %v, want empty map", c.Roots)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last-scan.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err == nil {
		t.Fatal("expected error for corrupt file, got nil")
	}
	if c.Roots == nil {
		t.Error("Roots should be usable after a parse error")
	}
}

// ---------------------------------------------------------------------------
// Take
// ---------------------------------------------------------------------------

func TestTake(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.FixedZone("X", 3600))
	finds := []scanner.Find{
		{Path: "/code/a", ModuleSize: 100},
		{Path: "/code/b", ModuleSize: 0},
		{Path: "/code/c", ModuleSize: 250},
	}

	snap := Take("/code", finds, now)
	if snap.TotalSize != 350 {
		t.Errorf("TotalSize = %d, want 350", snap.TotalSize)
	}
	if len(snap.Projects) != 3 {
		t.Errorf("len(Projects) = %d, want 3", len(snap.Projects))
	}
	if snap.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp location = %v, want UTC", snap.Timestamp.Location())
	}
}

// ---------------------------------------------------------------------------
// Diff
// ---------------------------------------------------------------------------

func TestDiff(t *testing.T) {
	prev := Snapshot{
		Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		TotalSize: 10000,
		Projects: []ProjectSnapshot{
			{Path: "/code/web", ModuleSize: 5000},
			{Path: "/code/api", ModuleSize: 3000},
			{Path: "/code/old", ModuleSize: 2000},
		},
	}

	curr := Snapshot{
		Timestamp: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		TotalSize: 12000,
		Projects: []ProjectSnapshot{
			{Path: "/code/web", ModuleSize: 7000}, // grew +2000
			{Path: "/code/api", ModuleSize: 2000}, // shrank -1000
			{Path: "/code/new", ModuleSize: 3000}, // new
			// "/code/old" is absent and should get a negative delta
		},
	}

	result := Diff(prev, curr)

	if !result.PreviousTimestamp.Equal(prev.Timestamp) {
		t.Errorf("PreviousTimestamp = %v, want %v", result.PreviousTimestamp, prev.Timestamp)
	}

	if result.TotalDelta != 2000 {
		t.Errorf("TotalDelta = %d, want 2000", result.TotalDelta)
	}

	web, ok := result.Projects["/code/web"]
	if !ok {
		t.Fatal("missing /code/web in diff")
	}
	if web.PreviousSize != 5000 || web.CurrentSize != 7000 || web.Delta != 2000 {
		t.Errorf("/code/web diff: prev=%d curr=%d delta=%d", web.PreviousSize, web.CurrentSize, web.Delta)
	}
	if web.IsNew {
		t.Error("/code/web should not be marked as new")
	}

	if api := result.Projects["/code/api"]; api.Delta != -1000 {
		t.Errorf("/code/api delta = %d, want -1000", api.Delta)
	}

	nw, ok := result.Projects["/code/new"]
	if !ok {
		t.Fatal("missing /code/new in diff")
	}
	if !nw.IsNew {
		t.Error("/code/new should be marked as new")
	}
	if nw.Delta != 3000 {
		t.Errorf("/code/new delta = %d, want 3000", nw.Delta)
	}

	old, ok := result.Projects["/code/old"]
	if !ok {
		t.Fatal("missing /code/old in diff")
	}
	if old.Delta != -2000 {
		t.Errorf("/code/old delta = %d, want -2000", old.Delta)
	}
	if old.CurrentSize != 0 {
		t.Errorf("/code/old current size = %d, want 0", old.CurrentSize)
	}
}

// ---------------------------------------------------------------------------
// DefaultPath
// ---------------------------------------------------------------------------

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	p := DefaultPath()
	if p != filepath.Join("/data", "wiper", "last-scan.json") {
		t.Errorf("DefaultPath() = %q", p)
	}
	if !strings.HasSuffix(p, "last-scan.json") {
		t.Errorf("DefaultPath should end with last-scan.json, got %q", p)
	}
}
