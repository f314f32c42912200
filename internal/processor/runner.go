package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var ErrOutputDir = errors.New("cannot create output folder")

const (
	kib = 1024
	mib = 1024 * 1024
)

// Runner drives a batch: one Transcode per path, strictly in input order.
type Runner struct {
	log *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{log: log}
}

// Run processes paths sequentially and reports through obs. Per-file failures
// are logged and counted, never returned. The returned error is non-nil only
// when the output folder cannot be created or ctx is cancelled between files.
func (r *Runner) Run(ctx context.Context, paths []string, s Settings, obs Observer) (Summary, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	summary := Summary{Total: len(paths)}

	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		err = fmt.Errorf("%w %s: %v", ErrOutputDir, s.OutputDir, err)
		r.log.Error("output folder setup failed", zap.String("dir", s.OutputDir), zap.Error(err))
		obs.OnLog(fmt.Sprintf("❌ ERROR: %v", err))
		return summary, err
	}

	r.log.Info("batch started",
		zap.Int("files", len(paths)),
		zap.String("output", s.OutputDir),
		zap.Stringer("mode", s.Mode),
		zap.Int("resolution", s.Resolution),
		zap.Stringer("format", s.Format),
	)

	var runErr error
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			obs.OnLog(fmt.Sprintf("⚠️ Cancelled after %d of %d files.", i, len(paths)))
			runErr = err
			break
		}

		outcome := Transcode(path, s, obs.OnLog)
		summary.add(outcome)
		r.report(outcome, obs)

		obs.OnProgress((i + 1) * 100 / len(paths))
	}

	obs.OnLog(fmt.Sprintf("\n🎉 Optimization complete! Total saved: %.2f MB", float64(summary.SavedBytes)/mib))
	r.log.Info("batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int64("saved_bytes", summary.SavedBytes),
	)

	return summary, runErr
}

func (r *Runner) report(o Outcome, obs Observer) {
	name := filepath.Base(o.Path)
	switch o.Kind {
	case OutcomeProcessed:
		r.log.Debug("file processed",
			zap.String("path", o.Path),
			zap.String("output", o.OutputPath),
			zap.Stringer("source", o.Source),
			zap.Int("width", o.Width),
			zap.Int("height", o.Height),
			zap.Int64("original", o.OriginalBytes),
			zap.Int64("optimized", o.OptimizedBytes),
		)
		obs.OnLog(fmt.Sprintf("✅ Processed: %s\n  -> Original: %.2f KB | Optimized: %.2f KB | Saved: %.2f KB",
			name,
			float64(o.OriginalBytes)/kib,
			float64(o.OptimizedBytes)/kib,
			float64(o.Saved())/kib,
		))
	case OutcomeSkipped:
		r.log.Debug("path skipped", zap.String("path", o.Path), zap.String("reason", o.Reason))
	case OutcomeFailed:
		r.log.Warn("file failed", zap.String("path", o.Path), zap.Error(o.Err))
		obs.OnLog(fmt.Sprintf("❌ ERROR: processing file '%s' - %v", name, o.Err))
	}
}
