package reclaim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lu-zhengda/wiper/internal/history"
	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/trash"
)

// Result describes one reclaim run.
type Result struct {
	// Bytes counts only dependency directories that were actually moved.
	Bytes  int64 `json:"bytes"`
	Moved  int   `json:"moved"`
	Failed int   `json:"failed"`
	// Finds is the input with moved entries updated to an empty
	// dependency directory.
	Finds  []scanner.Find     `json:"finds"`
	Record history.WipeRecord `json:"record"`
}

// Executor moves dependency directories to the trash and records what was
// reclaimed.
type Executor struct {
	Trash  trash.Mover
	Ledger history.Ledger
	// Classifier names the dependency directory of each Find. Defaults to
	// scanner.NodeClassifier.
	Classifier scanner.Classifier
	Logger     *slog.Logger
	Now        func() time.Time
	// Method is stored on the WipeRecord. Defaults to "trash".
	Method string
	// DryRun reports what would be moved without touching the disk or
	// the ledger.
	DryRun bool
}

// Reclaim moves the dependency directory of every Find under root that has
// one. A failed move is logged and skipped. One WipeRecord is appended per
// call, even when nothing was moved. The returned error is the ledger's;
// the Result is valid either way.
func (x *Executor) Reclaim(ctx context.Context, root string, finds []scanner.Find) (Result, error) {
	logger := x.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("root", root)
	classifier := x.Classifier
	if classifier == nil {
		classifier = scanner.NodeClassifier{}
	}

	res := Result{Finds: make([]scanner.Find, len(finds))}
	copy(res.Finds, finds)

	for i, f := range res.Finds {
		if f.ModuleSize <= 0 {
			continue
		}
		if ctx.Err() != nil {
			logger.Warn("reclaim interrupted", "error", ctx.Err())
			break
		}

		target := scanner.DependencyPath(f, classifier)
		if x.DryRun {
			logger.Info("would move", "path", target, "bytes", f.ModuleSize)
			res.Bytes += f.ModuleSize
			res.Moved++
			continue
		}

		if err := x.Trash.Trash(target); err != nil {
			logger.Warn("failed to move dependency directory", "path", target, "error", err)
			res.Failed++
			continue
		}
		logger.Debug("moved dependency directory", "path", target, "bytes", f.ModuleSize)

		res.Bytes += f.ModuleSize
		res.Moved++
		res.Finds[i].ProjectSize -= f.ModuleSize
		res.Finds[i].ModuleSize = 0
	}

	if x.DryRun {
		return res, nil
	}

	res.Record = history.WipeRecord{
		ID:       uuid.NewString(),
		Path:     root,
		Bytes:    res.Bytes,
		Date:     x.now(),
		Projects: res.Moved,
		Failed:   res.Failed,
		Method:   x.method(),
	}
	// Moves already happened; record them even if ctx was cancelled meanwhile.
	if err := x.Ledger.Append(context.WithoutCancel(ctx), res.Record); err != nil {
		logger.Error("failed to record wipe", "error", err)
		return res, fmt.Errorf("recording wipe of %s: %w", root, err)
	}

	logger.Info("reclaim complete", "bytes", res.Bytes, "moved", res.Moved, "failed", res.Failed)
	return res, nil
}

func (x *Executor) now() time.Time {
	if x.Now != nil {
		return x.Now()
	}
	return time.Now()
}

func (x *Executor) method() string {
	if x.Method != "" {
		return x.Method
	}
	return "trash"
}
