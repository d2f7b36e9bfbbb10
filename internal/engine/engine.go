package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lu-zhengda/wiper/internal/reclaim"
	"github.com/lu-zhengda/wiper/internal/scanner"
)

// ErrSuperseded is returned by Load when a newer Load started before the
// walk finished. The superseded result is discarded.
var ErrSuperseded = errors.New("scan superseded by a newer scan")

// Status is the lifecycle state of an Engine.
type Status int

const (
	Idle Status = iota
	Scanning
	Complete
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Walker produces the Finds under a root.
type Walker interface {
	Walk(ctx context.Context, root string) ([]scanner.Find, error)
}

// Reclaimer moves dependency directories out of the way and records the
// result.
type Reclaimer interface {
	Reclaim(ctx context.Context, root string, finds []scanner.Find) (reclaim.Result, error)
}

// Engine owns the scan state of a single watch root.
type Engine struct {
	root        string
	walker      Walker
	logger      *slog.Logger
	excludeFunc func(string) bool

	mu        sync.RWMutex
	finds     []scanner.Find
	status    Status
	scannedAt time.Time
	gen       uint64
	cancel    context.CancelFunc
}

// New returns an Idle engine for root.
func New(root string, w Walker, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		root:   root,
		walker: w,
		logger: logger.With("root", root),
	}
}

// SetExcludeFunc drops every Find whose path fn matches from later scans.
func (e *Engine) SetExcludeFunc(fn func(string) bool) {
	e.excludeFunc = fn
}

func (e *Engine) Root() string {
	return e.root
}

func (e *Engine) filterExcluded(finds []scanner.Find) []scanner.Find {
	if e.excludeFunc == nil {
		return finds
	}
	filtered := make([]scanner.Find, 0, len(finds))
	for _, f := range finds {
		if !e.excludeFunc(f.Path) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// Load walks the root and replaces the current Finds. Starting a Load
// cancels any Load still in flight; the older one returns ErrSuperseded.
// When the walk fails the previous Finds are kept.
func (e *Engine) Load(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.gen++
	gen := e.gen
	e.cancel = cancel
	e.status = Scanning
	e.mu.Unlock()

	start := time.Now()
	e.logger.Debug("scan started")
	finds, err := e.walker.Walk(ctx, e.root)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		e.logger.Debug("scan superseded", "generation", gen)
		return ErrSuperseded
	}
	e.cancel = nil

	if err != nil {
		if e.scannedAt.IsZero() {
			e.status = Idle
		} else {
			e.status = Complete
		}
		return fmt.Errorf("scanning %s: %w", e.root, err)
	}

	e.finds = e.filterExcluded(finds)
	e.status = Complete
	e.scannedAt = time.Now()
	e.logger.Info("scan complete",
		"projects", len(e.finds),
		"module_bytes", scanner.ModulesSize(e.finds),
		"duration", time.Since(start))
	return nil
}

// Start runs Load in the background. The returned channel receives Load's
// result and is then closed.
func (e *Engine) Start(ctx context.Context) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- e.Load(ctx)
	}()
	return ch
}

// Cancel stops the in-flight Load, if any.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Finds returns a copy of the current Finds.
func (e *Engine) Finds() []scanner.Find {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]scanner.Find, len(e.finds))
	copy(out, e.finds)
	return out
}

func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// ScannedAt is the completion time of the last successful Load, or the
// zero time if none has finished.
func (e *Engine) ScannedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scannedAt
}

func (e *Engine) Summaries() []scanner.Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return scanner.Summaries(e.finds)
}

func (e *Engine) ModulesSize() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return scanner.ModulesSize(e.finds)
}

// Reclaim hands the current Finds to r and then rescans the root. The
// reclaim result is returned even when recording or rescanning fails.
func (e *Engine) Reclaim(ctx context.Context, r Reclaimer) (reclaim.Result, error) {
	e.mu.RLock()
	gen := e.gen
	e.mu.RUnlock()

	res, err := r.Reclaim(ctx, e.root, e.Finds())

	e.mu.Lock()
	if gen == e.gen {
		e.finds = res.Finds
	}
	e.mu.Unlock()

	if loadErr := e.Load(ctx); loadErr != nil {
		err = errors.Join(err, loadErr)
	}
	return res, err
}
