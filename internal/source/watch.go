package source

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zantac/OSN/internal/logging"
)

const defaultDebounce = 250 * time.Millisecond

// Watch calls onChange after path is written, created or replaced, until
// ctx is done. Bursts of events within the debounce window collapse into
// one call. The parent directory is watched so editors that save by
// rename are still seen.
func Watch(ctx context.Context, path string, logger *logging.Logger, onChange func()) error {
	return watch(ctx, path, defaultDebounce, logging.OrNop(logger).Named("watch"), onChange)
}

func watch(
	ctx context.Context,
	path string,
	debounce time.Duration,
	logger *logging.Logger,
	onChange func(),
) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Infow("Watching subtitle file", "path", abs)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debugw("Subtitle file changed", "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("File watcher error", "error", err)
		}
	}
}
