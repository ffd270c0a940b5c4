// Package watch converts images as they appear in a drop folder.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"wirthmage/internal/processor"
	"wirthmage/pkg/imgutil"
)

// Result reports the outcome for one dropped file.
type Result struct {
	Source  string
	Outputs []string
	Err     error
}

// Watcher converts files created or rewritten in a directory. A file is
// converted once it has been quiet for the settle interval, so partially
// copied files are not picked up.
type Watcher struct {
	conv   *processor.Converter
	tmpl   processor.Request
	logger *zap.Logger
	settle time.Duration
}

func New(conv *processor.Converter, tmpl processor.Request, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{conv: conv, tmpl: tmpl, logger: logger, settle: 500 * time.Millisecond}
}

// SetSettle changes how long a file must be quiet before conversion.
func (w *Watcher) SetSettle(d time.Duration) {
	if d > 0 {
		w.settle = d
	}
}

// minPoll is the floor for how often pending files are checked.
const minPoll = time.Millisecond

func (w *Watcher) pollInterval() time.Duration {
	return max(w.settle/2, minPoll)
}

// Run watches dir until ctx is done, calling report after each file.
// Conversions run one at a time on the calling goroutine.
func (w *Watcher) Run(ctx context.Context, dir string, report func(Result)) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if absOut, err := filepath.Abs(w.tmpl.OutputDir); err == nil && absOut == absDir {
		return fmt.Errorf("output directory %s must differ from the watched directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(absDir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("watching", zap.String("dir", absDir))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !acceptedName(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case now := <-ticker.C:
			for _, path := range settled(pending, now, w.settle) {
				delete(pending, path)
				report(w.convert(ctx, path))
			}
		}
	}
}

func (w *Watcher) convert(ctx context.Context, path string) Result {
	req := w.tmpl
	req.Path = path

	outputs, err := w.conv.Convert(context.WithoutCancel(ctx), req)
	if errors.Is(err, processor.ErrNotFound) {
		w.logger.Debug("dropped file vanished", zap.String("source", path))
	}
	return Result{Source: path, Outputs: outputs, Err: err}
}

// settled returns the pending paths quiet for at least d, oldest first.
func settled(pending map[string]time.Time, now time.Time, d time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= d {
			ready = append(ready, path)
		}
	}
	slices.SortFunc(ready, func(a, b string) int {
		return pending[a].Compare(pending[b])
	})
	return ready
}

func acceptedName(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(imgutil.Extensions, ext)
}
