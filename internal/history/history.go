package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/lu-zhengda/wiper/internal/utils"
)

// WipeRecord is one reclaim operation on a watch root.
type WipeRecord struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	Bytes    int64     `json:"bytes"`
	Date     time.Time `json:"date"`
	Projects int       `json:"projects"`
	Failed   int       `json:"failed"`
	Method   string    `json:"method"` // "trash" or "permanent"
}

// Ledger is an append-only log of WipeRecords.
type Ledger interface {
	Append(ctx context.Context, r WipeRecord) error
	All(ctx context.Context) ([]WipeRecord, error)
}

// RootStats holds aggregate statistics for a single watch root.
type RootStats struct {
	Bytes int64 `json:"bytes"`
	Wipes int   `json:"wipes"`
}

// Stats holds aggregate reclaim statistics.
type Stats struct {
	TotalBytes int64                `json:"total_bytes"`
	Wipes      int                  `json:"wipes"`
	ByRoot     map[string]RootStats `json:"by_root"`
	Recent     []WipeRecord         `json:"recent"`
}

// File is a Ledger stored as a JSON array.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile creates a File ledger that reads/writes the given path.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultPath returns the default history file location:
// $XDG_DATA_HOME/wiper/history.json
func DefaultPath() string {
	return filepath.Join(utils.DataDir(), "history.json")
}

func (f *File) Path() string {
	return f.path
}

// Append adds r to the ledger file. A missing file is created; a corrupt
// one is an error so that existing records are never overwritten.
func (f *File) Append(ctx context.Context, r WipeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load()
	if err != nil {
		return err
	}
	records = append(records, r)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := utils.WriteFileAtomic(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// All returns every record in insertion order. A missing file has none.
func (f *File) All(ctx context.Context) ([]WipeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) load() ([]WipeRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []WipeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return records, nil
}

// TotalReclaimed sums Bytes over every record in l.
func TotalReclaimed(ctx context.Context, l Ledger) (int64, error) {
	records, err := l.All(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, r := range records {
		total += r.Bytes
	}
	return total, nil
}

// Summarize computes aggregate statistics from records.
func Summarize(records []WipeRecord) Stats {
	s := Stats{
		Wipes:  len(records),
		ByRoot: make(map[string]RootStats),
	}
	if len(records) == 0 {
		return s
	}

	for _, r := range records {
		s.TotalBytes += r.Bytes

		rs := s.ByRoot[r.Path]
		rs.Bytes += r.Bytes
		rs.Wipes++
		s.ByRoot[r.Path] = rs
	}

	sorted := make([]WipeRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	limit := 5
	if len(sorted) < limit {
		limit = len(sorted)
	}
	s.Recent = sorted[:limit]

	return s
}
