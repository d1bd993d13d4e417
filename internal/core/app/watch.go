package app

import (
	"context"
	"log/slog"

	"snapdiff/internal/core/watcher"
	"snapdiff/internal/shared/observability"
)

// StartWatcher begins watching the configured paths and re-analyzes modules
// as their files change. Runs until Close.
func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	a.activeWatcher = w
	return w.Watch(a.Config.WatchPaths)
}

// HandleChanges re-analyzes the modules behind a debounced batch of changed
// paths. The rate limiter, when configured, drops whole batches rather than
// waiting so that the watcher loop never stalls.
func (a *App) HandleChanges(paths []string) {
	if a.limiter != nil && !a.limiter.Allow(len(paths)) {
		slog.Warn("change batch dropped by rate limiter", "count", len(paths))
		return
	}

	slog.Info("detected changes", "count", len(paths))
	ctx := context.Background()
	for _, path := range paths {
		if _, err := a.ProcessFile(ctx, path); err != nil {
			slog.Warn("failed to re-process file", "path", path, "error", err)
		}
	}

	if modules, err := a.TrackedModules(); err == nil {
		observability.TrackedModules.Set(float64(len(modules)))
	}
}
