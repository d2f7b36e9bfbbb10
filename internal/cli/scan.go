package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/wiper/internal/scancache"
	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/utils"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path...]",
	Short: "Scan paths (or all watch roots) for node_modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmdContext(cmd)

		roots, err := scanRoots(ctx, args)
		if err != nil {
			return err
		}

		results := make(map[string][]scanner.Find, len(roots))
		for _, root := range roots {
			if !jsonFlag {
				fmt.Printf("Scanning %s...\n", root)
			}
			e, err := loadEngine(ctx, root)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			results[root] = e.Finds()
		}

		diffs := updateScanCache(roots, results, time.Now())

		if jsonFlag {
			return printJSON(buildScanJSON(roots, results, diffs))
		}
		for _, root := range roots {
			printScanResults(root, results[root])
			if d := diffs[root]; d != nil {
				fmt.Printf("Since last scan %s: %s\n", utils.TimeAgo(d.PreviousTimestamp), diffIndicator(d.TotalDelta))
			}
		}
		return nil
	},
}

// updateScanCache compares results against the previous scan of each root
// and stores the new snapshots. Roots seen for the first time get no diff.
// Cache failures are logged only.
func updateScanCache(roots []string, results map[string][]scanner.Find, now time.Time) map[string]*scancache.DiffResult {
	path := currentConfig().Storage.ScanCache
	if path == "" {
		path = scancache.DefaultPath()
	}
	cache, err := scancache.Load(path)
	if err != nil {
		logger.Warn("ignoring unreadable scan cache", "path", path, "error", err)
	}

	diffs := make(map[string]*scancache.DiffResult, len(roots))
	for _, root := range roots {
		snap := scancache.Take(root, results[root], now)
		if prev, ok := cache.Roots[root]; ok {
			d := scancache.Diff(prev, snap)
			diffs[root] = &d
		}
		cache.Roots[root] = snap
	}

	if err := scancache.Save(path, cache); err != nil {
		logger.Warn("failed to save scan cache", "path", path, "error", err)
	}
	return diffs
}

// scanRoots resolves the paths given on the command line, falling back to
// the stored watch roots.
func scanRoots(ctx context.Context, args []string) ([]string, error) {
	if len(args) > 0 {
		roots := make([]string, 0, len(args))
		for _, arg := range args {
			p, err := resolveDir(arg)
			if err != nil {
				return nil, err
			}
			roots = append(roots, p)
		}
		return roots, nil
	}

	s, err := openStore()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	stored, err := s.Roots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch roots: %w", err)
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("no watch roots; pass a path or run 'wiper watch add <path>'")
	}
	roots := make([]string, 0, len(stored))
	for _, r := range stored {
		roots = append(roots, r.Path)
	}
	return roots, nil
}

// resolveDir expands ~ and makes p absolute, requiring an existing directory.
func resolveDir(p string) (string, error) {
	abs, err := utils.ExpandPath(p)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", p, err)
	}
	if !utils.DirExists(abs) {
		return "", fmt.Errorf("not a directory: %s", p)
	}
	return abs, nil
}
