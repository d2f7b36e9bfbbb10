package cli

import (
	"time"

	"github.com/lu-zhengda/wiper/internal/history"
	"github.com/lu-zhengda/wiper/internal/reclaim"
	"github.com/lu-zhengda/wiper/internal/scancache"
	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/store"
)

// ---------------------------------------------------------------------------
// Scan JSON types
// ---------------------------------------------------------------------------

type scanJSON struct {
	Version        string         `json:"version"`
	Timestamp      time.Time      `json:"timestamp"`
	Roots          []scanRootJSON `json:"roots"`
	TotalModules   int64          `json:"total_modules"`
	TotalProjects  int64          `json:"total_projects"`
	TotalFindCount int            `json:"total_find_count"`
}

type scanRootJSON struct {
	Path      string            `json:"path"`
	Summaries []scanner.Summary `json:"summaries"`
	Finds     []scanner.Find    `json:"finds"`
	Diff      *diffJSON         `json:"diff,omitempty"`
}

type diffJSON struct {
	PreviousTimestamp time.Time                        `json:"previous_timestamp"`
	TotalDelta        int64                            `json:"total_delta"`
	Projects          map[string]scancache.ProjectDiff `json:"projects"`
}

// buildScanJSON converts per-root scan results into a JSON-serializable
// structure. roots fixes the output order; diffs may be nil.
func buildScanJSON(roots []string, results map[string][]scanner.Find, diffs map[string]*scancache.DiffResult) scanJSON {
	out := scanJSON{
		Version:   version,
		Timestamp: time.Now().UTC(),
		Roots:     make([]scanRootJSON, 0, len(roots)),
	}
	for _, root := range roots {
		finds := results[root]
		if finds == nil {
			finds = []scanner.Find{}
		}
		r := scanRootJSON{
			Path:      root,
			Summaries: scanner.Summaries(finds),
			Finds:     finds,
		}
		if d := diffs[root]; d != nil {
			r.Diff = &diffJSON{
				PreviousTimestamp: d.PreviousTimestamp,
				TotalDelta:        d.TotalDelta,
				Projects:          d.Projects,
			}
		}
		out.Roots = append(out.Roots, r)
		out.TotalModules += scanner.ModulesSize(finds)
		out.TotalProjects += scanner.ProjectsSize(finds)
		out.TotalFindCount += len(finds)
	}
	return out
}

// ---------------------------------------------------------------------------
// Wipe JSON type
// ---------------------------------------------------------------------------

type wipeJSON struct {
	Version   string              `json:"version"`
	Timestamp time.Time           `json:"timestamp"`
	Root      string              `json:"root"`
	DryRun    bool                `json:"dry_run"`
	Bytes     int64               `json:"bytes"`
	Moved     int                 `json:"moved"`
	Failed    int                 `json:"failed"`
	Record    *history.WipeRecord `json:"record,omitempty"`
	Error     string              `json:"error,omitempty"`
}

func buildWipeJSON(root string, res reclaim.Result, dryRun bool, err error) wipeJSON {
	out := wipeJSON{
		Version:   version,
		Timestamp: time.Now().UTC(),
		Root:      root,
		DryRun:    dryRun,
		Bytes:     res.Bytes,
		Moved:     res.Moved,
		Failed:    res.Failed,
	}
	if !dryRun && res.Record.ID != "" {
		rec := res.Record
		out.Record = &rec
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

// ---------------------------------------------------------------------------
// Stats JSON type
// ---------------------------------------------------------------------------

type statsJSON struct {
	Version    string                       `json:"version"`
	TotalBytes int64                        `json:"total_bytes"`
	Wipes      int                          `json:"wipes"`
	ByRoot     map[string]history.RootStats `json:"by_root"`
	Recent     []history.WipeRecord         `json:"recent"`
	DiskFree   map[string]int64             `json:"disk_free,omitempty"`
}

// buildStatsJSON converts history stats into a JSON-serializable structure.
func buildStatsJSON(stats history.Stats, free map[string]int64) statsJSON {
	recent := stats.Recent
	if recent == nil {
		recent = []history.WipeRecord{}
	}
	return statsJSON{
		Version:    version,
		TotalBytes: stats.TotalBytes,
		Wipes:      stats.Wipes,
		ByRoot:     stats.ByRoot,
		Recent:     recent,
		DiskFree:   free,
	}
}

// ---------------------------------------------------------------------------
// Watch roots JSON type
// ---------------------------------------------------------------------------

type rootsJSON struct {
	Version string         `json:"version"`
	Roots   []rootSizeJSON `json:"roots"`
}

type rootSizeJSON struct {
	store.WatchRoot
	Size *int64 `json:"size,omitempty"`
}

// buildRootsJSON lists roots with their measured sizes, when known.
func buildRootsJSON(roots []store.WatchRoot, sizes map[string]int64) rootsJSON {
	out := rootsJSON{Version: version, Roots: make([]rootSizeJSON, 0, len(roots))}
	for _, r := range roots {
		entry := rootSizeJSON{WatchRoot: r}
		if size, ok := sizes[r.Path]; ok {
			entry.Size = &size
		}
		out.Roots = append(out.Roots, entry)
	}
	return out
}
