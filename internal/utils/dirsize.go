package utils

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DirSize returns the total size of all regular files under path.
//
// Entries that cannot be read contribute 0 and never abort the walk; an
// unreadable directory counts the same as an empty one. Symbolic links are
// not followed, so the result only covers files that physically live in the
// subtree. Every hard link is counted.
func DirSize(path string) int64 {
	var size int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		size += info.Size()
		return nil
	})
	return size
}

// DirSizesParallel computes sizes for multiple paths concurrently.
// Returns a map of path -> size. Paths not measured before ctx is done
// are absent from the map.
func DirSizesParallel(ctx context.Context, paths []string, concurrency int) map[string]int64 {
	if concurrency < 1 {
		concurrency = 1
	}
	result := make(map[string]int64, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, p := range paths {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			size := DirSize(p)
			mu.Lock()
			result[p] = size
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return result
}
