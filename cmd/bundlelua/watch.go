// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/BlockOG/bundle-lua/internal/watch"
)

// watchPatterns selects the files whose changes trigger a rebundle.
var watchPatterns = []string{"**/*.lua"}

// errWatchFailed marks watcher setup and fatal watcher errors.
var errWatchFailed = errors.New("watch failed")

// runWatchMode bundles once, then rebundles on every Lua change under baseDir.
// It blocks until the context is cancelled (e.g., Ctrl+C). A failing bundle
// is logged and the watcher keeps running so the user can fix and save again.
func runWatchMode(ctx context.Context, app *App, s *session, baseDir, output string, rebundle func(ctx context.Context) error) error {
	ignore := slices.Clone(s.cfg.Watch.Ignore)
	if pattern, ok := watch.IgnorePatternFor(baseDir, output); ok {
		ignore = append(ignore, pattern)
	}

	debounce, err := s.cfg.Watch.Debounce.Duration()
	if err != nil {
		return fmt.Errorf("%w: %w", errWatchFailed, err)
	}

	if err := rebundle(ctx); err != nil {
		s.logger.Error("initial bundle failed", "err", formatErrorForDisplay(err, s.verbose))
	}

	w, err := watch.New(watch.Config{
		Patterns: watchPatterns,
		Ignore:   ignore,
		Debounce: debounce,
		BaseDir:  baseDir,
		OnChange: func(ctx context.Context, changed []string) error {
			s.logger.Info("change detected, rebundling", "files", len(changed))
			for _, path := range changed {
				s.logger.Debug("changed", "path", path)
			}
			return rebundle(ctx)
		},
		Stdout: app.stdout,
		Logger: s.logger,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errWatchFailed, err)
	}

	s.logger.Info("watching for changes (Ctrl+C to stop)", "dir", w.BaseDir())
	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("%w: %w", errWatchFailed, err)
	}
	return nil
}
