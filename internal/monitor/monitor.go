package monitor

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Options configures a Service.
type Options struct {
	// Ignore lists directory names that are not watched.
	Ignore []string
	// DependencyDir is never watched or descended into.
	DependencyDir string
	Debounce      time.Duration
	Logger        *slog.Logger
	// OnScan is called with the result of every triggered scan.
	OnScan func(error)
}

// Service watches a project tree and triggers a full rescan when
// directories or files are created, removed or renamed in it.
type Service struct {
	root     string
	scanFn   func(ctx context.Context) error
	ignore   map[string]struct{}
	depDir   string
	debounce time.Duration
	logger   *slog.Logger
	onScan   func(error)

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	watching map[string]bool
}

// New creates a Service for root. scanFn runs once per debounced burst of
// changes.
func New(root string, scanFn func(ctx context.Context) error, opts Options) *Service {
	ignore := make(map[string]struct{}, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignore[name] = struct{}{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	depDir := opts.DependencyDir
	if depDir == "" {
		depDir = "node_modules"
	}
	return &Service{
		root:     root,
		scanFn:   scanFn,
		ignore:   ignore,
		depDir:   depDir,
		debounce: debounce,
		logger:   logger.With("component", "monitor", "root", root),
		onScan:   opts.OnScan,
		watching: make(map[string]bool),
	}
}

// Run blocks until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close() //nolint:errcheck

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	if err := w.Add(s.root); err != nil {
		return fmt.Errorf("watching %s: %w", s.root, err)
	}
	s.markWatched(s.root)
	s.addTree(s.root)
	s.logger.Info("monitor starting", "directories", s.WatchedCount())

	// Starts stopped; reset on each relevant event.
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	scanPending := false

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("monitor stopping")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !s.handleEvent(ev) {
				continue
			}
			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(s.debounce)
			scanPending = true

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("fsnotify error", "error", err)

		case <-debounceTimer.C:
			if !scanPending {
				continue
			}
			scanPending = false
			s.logger.Debug("debounce elapsed, rescanning")
			err := s.scanFn(ctx)
			if err != nil {
				s.logger.Error("rescan failed", "error", err)
			}
			if s.onScan != nil {
				s.onScan(err)
			}
		}
	}
}

// handleEvent updates the watch set and reports whether ev should trigger
// a rescan.
func (s *Service) handleEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		s.mu.Lock()
		delete(s.watching, ev.Name)
		s.mu.Unlock()
	}

	if ev.Has(fsnotify.Create) {
		name := filepath.Base(ev.Name)
		if _, skip := s.ignore[name]; skip {
			return false
		}
		if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() && name != s.depDir {
			s.addTree(ev.Name)
		}
	}

	s.logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
	return true
}

// addTree watches dir and every directory under it except ignored and
// dependency directories. Symlinks are not followed.
func (s *Service) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir {
			name := d.Name()
			if _, skip := s.ignore[name]; skip || name == s.depDir {
				return fs.SkipDir
			}
		}
		if s.isWatched(path) {
			return nil
		}

		s.mu.Lock()
		w := s.watcher
		s.mu.Unlock()
		if err := w.Add(path); err != nil {
			s.logger.Debug("cannot watch directory", "path", path, "error", err)
			return fs.SkipDir
		}
		s.markWatched(path)
		return nil
	})
}

func (s *Service) isWatched(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching[path]
}

func (s *Service) markWatched(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watching[path] = true
}

// WatchedCount returns how many directories are currently watched.
func (s *Service) WatchedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watching)
}

// Watched returns the watched directories in sorted order.
func (s *Service) Watched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.watching))
	for p := range s.watching {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
