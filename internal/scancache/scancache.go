package scancache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/utils"
)

// Snapshot captures the node_modules of one root at a point in time.
type Snapshot struct {
	Timestamp time.Time         `json:"timestamp"`
	Root      string            `json:"root"`
	Projects  []ProjectSnapshot `json:"projects"`
	TotalSize int64             `json:"total_size"`
}

// ProjectSnapshot captures the dependency size of a single project.
type ProjectSnapshot struct {
	Path       string `json:"path"`
	ModuleSize int64  `json:"module_size"`
}

// ProjectDiff describes how a project changed between two snapshots.
type ProjectDiff struct {
	PreviousSize int64 `json:"previous_size"`
	CurrentSize  int64 `json:"current_size"`
	Delta        int64 `json:"delta"`
	IsNew        bool  `json:"is_new,omitempty"`
}

// DiffResult describes the differences between two snapshots.
type DiffResult struct {
	PreviousTimestamp time.Time              `json:"previous_timestamp"`
	TotalDelta        int64                  `json:"total_delta"`
	Projects          map[string]ProjectDiff `json:"projects"`
}

// Cache holds the last snapshot of every scanned root.
type Cache struct {
	Roots map[string]Snapshot `json:"roots"`
}

// DefaultPath returns the default scan cache file location:
// $XDG_DATA_HOME/wiper/last-scan.json
func DefaultPath() string {
	return filepath.Join(utils.DataDir(), "last-scan.json")
}

// Take builds a Snapshot of finds under root.
func Take(root string, finds []scanner.Find, now time.Time) Snapshot {
	snap := Snapshot{
		Timestamp: now.UTC(),
		Root:      root,
		Projects:  make([]ProjectSnapshot, 0, len(finds)),
	}
	for _, f := range finds {
		snap.Projects = append(snap.Projects, ProjectSnapshot{Path: f.Path, ModuleSize: f.ModuleSize})
		snap.TotalSize += f.ModuleSize
	}
	return snap
}

// Save writes the cache to the given path as indented JSON.
// It creates parent directories if they don't exist.
func Save(path string, c Cache) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scan cache: %w", err)
	}

	if err := utils.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scan cache file: %w", err)
	}

	return nil
}

// Load reads the cache from the given path. A missing file yields an empty
// cache.
func Load(path string) (Cache, error) {
	c := Cache{Roots: make(map[string]Snapshot)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("failed to read scan cache file: %w", err)
	}

	if err := json.Unmarshal(data, &c); err != nil {
		return Cache{Roots: make(map[string]Snapshot)}, fmt.Errorf("failed to parse scan cache file: %w", err)
	}
	if c.Roots == nil {
		c.Roots = make(map[string]Snapshot)
	}

	return c, nil
}

// Diff computes per-project differences between two snapshots.
// New projects in curr get IsNew: true. Projects present in prev
// but absent in curr get a negative delta.
func Diff(prev, curr Snapshot) DiffResult {
	result := DiffResult{
		PreviousTimestamp: prev.Timestamp,
		TotalDelta:        curr.TotalSize - prev.TotalSize,
		Projects:          make(map[string]ProjectDiff),
	}

	prevMap := make(map[string]int64, len(prev.Projects))
	for _, p := range prev.Projects {
		prevMap[p.Path] = p.ModuleSize
	}

	for _, p := range curr.Projects {
		prevSize, existed := prevMap[p.Path]
		result.Projects[p.Path] = ProjectDiff{
			PreviousSize: prevSize,
			CurrentSize:  p.ModuleSize,
			Delta:        p.ModuleSize - prevSize,
			IsNew:        !existed,
		}
		delete(prevMap, p.Path)
	}

	// Remaining entries in prevMap are projects that were removed.
	for path, prevSize := range prevMap {
		result.Projects[path] = ProjectDiff{
			PreviousSize: prevSize,
			CurrentSize:  0,
			Delta:        -prevSize,
		}
	}

	return result
}
