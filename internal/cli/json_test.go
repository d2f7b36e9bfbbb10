package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/lu-zhengda/wiper/internal/history"
	"github.com/lu-zhengda/wiper/internal/reclaim"
	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/store"
)

func TestBuildScanJSON(t *testing.T) {
	results := map[string][]scanner.Find{
		"/a": {
			{Path: "/a/x", ModuleSize: 1000, ProjectSize: 1500},
			{Path: "/a/y", ModuleSize: 0, ProjectSize: 200},
		},
		"/b": {
			{Path: "/b/z", ModuleSize: 3000, ProjectSize: 3000},
		},
	}

	result := buildScanJSON([]string{"/b", "/a", "/c"}, results, nil)

	if result.Version != version {
		t.Errorf("Version = %q, want %q", result.Version, version)
	}
	if result.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if result.TotalModules != 4000 {
		t.Errorf("TotalModules = %d, want 4000", result.TotalModules)
	}
	if result.TotalProjects != 4700 {
		t.Errorf("TotalProjects = %d, want 4700", result.TotalProjects)
	}
	if result.TotalFindCount != 3 {
		t.Errorf("TotalFindCount = %d, want 3", result.TotalFindCount)
	}
	if len(result.Roots) != 3 {
		t.Fatalf("len(Roots) = %d, want 3", len(result.Roots))
	}
	if result.Roots[0].Path != "/b" || result.Roots[1].Path != "/a" {
		t.Errorf("root order = %s, %s; want /b, /a", result.Roots[0].Path, result.Roots[1].Path)
	}
	if result.Roots[2].Finds == nil {
		t.Error("Finds for a root without results should be empty, not nil")
	}
	sums := result.Roots[1].Summaries
	if len(sums) != 2 || sums[0].Size != 700 || sums[1].Size != 1000 {
		t.Errorf("Summaries = %+v", sums)
	}
}

func TestBuildWipeJSON(t *testing.T) {
	res := reclaim.Result{
		Bytes:  2000,
		Moved:  2,
		Failed: 1,
		Record: history.WipeRecord{ID: "abc", Path: "/code", Bytes: 2000},
	}

	got := buildWipeJSON("/code", res, false, errors.New("disk full"))
	if got.Bytes != 2000 || got.Moved != 2 || got.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 2000/2/1", got.Bytes, got.Moved, got.Failed)
	}
	if got.Record == nil || got.Record.ID != "abc" {
		t.Errorf("Record = %+v, want ID abc", got.Record)
	}
	if got.Error != "disk full" {
		t.Errorf("Error = %q, want %q", got.Error, "disk full")
	}

	dry := buildWipeJSON("/code", res, true, nil)
	if dry.Record != nil {
		t.Error("dry run should not include a record")
	}
	if !dry.DryRun {
		t.Error("DryRun = false, want true")
	}
}

func TestBuildStatsJSON(t *testing.T) {
	now := time.Now().UTC()
	stats := history.Summarize([]history.WipeRecord{
		{ID: "1", Path: "/a", Bytes: 100, Date: now.Add(-time.Hour)},
		{ID: "2", Path: "/a", Bytes: 50, Date: now},
	})

	got := buildStatsJSON(stats, map[string]int64{"/a": 12345})
	if got.TotalBytes != 150 {
		t.Errorf("TotalBytes = %d, want 150", got.TotalBytes)
	}
	if got.Wipes != 2 {
		t.Errorf("Wipes = %d, want 2", got.Wipes)
	}
	if got.ByRoot["/a"].Wipes != 2 {
		t.Errorf("ByRoot[/a].Wipes = %d, want 2", got.ByRoot["/a"].Wipes)
	}
	if got.DiskFree["/a"] != 12345 {
		t.Errorf("DiskFree[/a] = %d, want 12345", got.DiskFree["/a"])
	}

	empty := buildStatsJSON(history.Summarize(nil), nil)
	if empty.Recent == nil {
		t.Error("Recent should be empty, not nil")
	}
}

func TestBuildRootsJSON(t *testing.T) {
	got := buildRootsJSON(nil, nil)
	if got.Roots == nil {
		t.Error("Roots should be empty, not nil")
	}

	roots := []store.WatchRoot{{Path: "/a"}, {Path: "/b"}}
	got = buildRootsJSON(roots, map[string]int64{"/a": 42})
	if len(got.Roots) != 2 {
		t.Fatalf("len(Roots) = %d, want 2", len(got.Roots))
	}
	if got.Roots[0].Size == nil || *got.Roots[0].Size != 42 {
		t.Errorf("Roots[0].Size = %v, want 42", got.Roots[0].Size)
	}
	if got.Roots[1].Size != nil {
		t.Errorf("Roots[1].Size = %v, want nil", *got.Roots[1].Size)
	}
}
