package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lu-zhengda/wiper/internal/utils"
)

// Options configures a Walker.
type Options struct {
	// Ignore lists directory names that are skipped entirely.
	Ignore []string
	// Concurrency bounds how many directories are measured at once.
	// Values below 2 measure sequentially.
	Concurrency int
	Logger      *slog.Logger
}

// Walker visits a root tree and reports every project directory in it.
type Walker struct {
	classifier  Classifier
	ignore      map[string]struct{}
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewWalker returns a Walker using c to recognize projects.
func NewWalker(c Classifier, opts Options) *Walker {
	ignore := make(map[string]struct{}, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignore[name] = struct{}{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Walker{
		classifier:  c,
		ignore:      ignore,
		concurrency: opts.Concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

type walkState struct {
	scanTime time.Time
	root     string
	realRoot string

	visited      map[utils.FileID]struct{}
	visitedPaths map[string]struct{}
}

// firstVisit records dir as visited and reports whether it was new.
// Directories are keyed by device and inode, or by their resolved path when
// the platform reports no inode.
func (st *walkState) firstVisit(dir string, info fs.FileInfo) bool {
	if id, ok := utils.StatFileID(info); ok {
		if _, seen := st.visited[id]; seen {
			return false
		}
		st.visited[id] = struct{}{}
		return true
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return true
	}
	if _, seen := st.visitedPaths[resolved]; seen {
		return false
	}
	st.visitedPaths[resolved] = struct{}{}
	return true
}

// sizePath is the path DirSize measures for dir. A root reached through a
// symlink is measured at its target, since DirSize does not follow links.
func (st *walkState) sizePath(dir string) string {
	if dir == st.root {
		return st.realRoot
	}
	return dir
}

// pending is a Find whose sizes are not measured yet.
type pending struct {
	find       Find
	modulePath string
}

// Walk scans root and returns one Find per project directory. Finds are
// ordered depth-first by name, with a project listed after the projects
// nested inside it. A root that is missing or not a directory yields no
// Finds. The only error returned is ctx's, in which case no Finds are
// returned.
//
// The tree is traversed in one pass; with Concurrency above 1 the size
// measurements, which dominate the cost, run on a bounded pool. The result
// is the same for every Concurrency.
func (w *Walker) Walk(ctx context.Context, root string) ([]Find, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		w.logger.Debug("root is not a readable directory", "path", root, "error", err)
		return nil, nil
	}

	root = filepath.Clean(root)
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		realRoot = root
	}
	st := &walkState{
		scanTime:     w.now(),
		root:         root,
		realRoot:     realRoot,
		visited:      make(map[utils.FileID]struct{}),
		visitedPaths: make(map[string]struct{}),
	}

	found, err := w.visit(ctx, root, info, st)
	if err != nil {
		return nil, err
	}
	return w.measure(ctx, found, st)
}

func (w *Walker) visit(ctx context.Context, dir string, info fs.FileInfo, st *walkState) ([]pending, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !st.firstVisit(dir, info) {
		w.logger.Debug("directory already visited", "path", dir)
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Debug("skipping unreadable directory", "path", dir, "error", err)
		return nil, nil
	}

	var (
		isProject  bool
		modulePath string
		found      []pending
	)
	lastModified := st.scanTime

	for _, entry := range entries {
		name := entry.Name()
		if _, skip := w.ignore[name]; skip {
			continue
		}

		if name == w.classifier.DependencyDir() {
			modulePath = filepath.Join(dir, name)
			if mi, err := os.Lstat(modulePath); err == nil {
				lastModified = mi.ModTime()
			}
			isProject = true
			continue
		}

		if w.classifier.IsMarker(name) {
			isProject = true
			continue
		}

		// DirEntry.IsDir is false for symlinks, so linked trees are never entered.
		if !entry.IsDir() {
			continue
		}
		childInfo, err := entry.Info()
		if err != nil {
			continue
		}
		child, err := w.visit(ctx, filepath.Join(dir, name), childInfo, st)
		if err != nil {
			return nil, err
		}
		found = append(found, child...)
	}

	if !isProject {
		return found, nil
	}
	return append(found, pending{
		find: Find{
			ID:           dir,
			Path:         dir,
			ProjectType:  w.classifier.Type(),
			LastModified: lastModified,
		},
		modulePath: modulePath,
	}), nil
}

// measure fills in ModuleSize and ProjectSize for every pending Find,
// keeping their order.
func (w *Walker) measure(ctx context.Context, found []pending, st *walkState) ([]Find, error) {
	if len(found) == 0 {
		return nil, nil
	}
	finds := make([]Find, len(found))
	limit := w.concurrency
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, p := range found {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f := p.find
			if p.modulePath != "" {
				f.ModuleSize = utils.DirSize(p.modulePath)
			}
			f.ProjectSize = utils.DirSize(st.sizePath(f.Path))
			if f.ProjectSize < f.ModuleSize {
				// The tree changed between the two measurements.
				f.ProjectSize = f.ModuleSize
			}
			finds[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return finds, nil
}
