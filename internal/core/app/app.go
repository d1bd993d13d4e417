package app

import (
	"context"
	"log/slog"
	"sync"

	"snapdiff/internal/core/config"
	"snapdiff/internal/core/errors"
	"snapdiff/internal/core/watcher"
	"snapdiff/internal/data/genstore"
	"snapdiff/internal/engine/astdiff"
	"snapdiff/internal/engine/frontend"
	"snapdiff/internal/shared/observability"
	"snapdiff/internal/shared/util"
)

// Update describes the outcome of re-analyzing one module.
type Update struct {
	Module       string
	GenerationID string
	Triggers     []string
	FirstSeen    bool
	Removed      bool
}

type App struct {
	Config    *config.Config
	extractor *frontend.Extractor
	store     *genstore.Store
	limiter   *util.Limiter

	activeWatcher *watcher.Watcher

	updateMu sync.RWMutex
	onUpdate func(Update)

	// Fallback generation cache used when the store is disabled. Keyed by
	// module name.
	genMu       sync.RWMutex
	generations map[string]astdiff.ScopeSnapshot
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}

	a := &App{
		Config:      cfg,
		extractor:   frontend.NewExtractor(),
		generations: make(map[string]astdiff.ScopeSnapshot),
	}

	if cfg.DB.Enabled {
		store, err := genstore.Open(cfg.DB.Path, cfg.Projects.Active)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxPath, cfg.DB.Path)
		}
		a.store = store
	}

	if cfg.Watch.RateLimit > 0 {
		a.limiter = util.NewLimiter(cfg.Watch.RateLimit, cfg.Watch.Burst)
	}

	return a, nil
}

func (a *App) SetUpdateHandler(handler func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) emitUpdate(update Update) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(update)
	}
}

func (a *App) projectRoot() string {
	if a.Config.Paths.ProjectRoot != "" {
		return a.Config.Paths.ProjectRoot
	}
	return "."
}

// priorGeneration returns the last persisted snapshot for module, or nil when
// the module has never been seen.
func (a *App) priorGeneration(module string) (astdiff.ScopeSnapshot, error) {
	if a.store != nil {
		snap, _, err := a.store.LoadGeneration(module)
		return snap, err
	}
	a.genMu.RLock()
	defer a.genMu.RUnlock()
	return a.generations[module], nil
}

func (a *App) saveGeneration(module, generationID string, snap astdiff.ScopeSnapshot) error {
	if a.store != nil {
		if err := a.store.SaveGeneration(module, generationID, snap); err != nil {
			return err
		}
		observability.GenerationsStored.Inc()
		return nil
	}
	a.genMu.Lock()
	a.generations[module] = snap
	a.genMu.Unlock()
	observability.GenerationsStored.Inc()
	return nil
}

func (a *App) forgetModule(module string) error {
	if a.store != nil {
		return a.store.DeleteModule(module)
	}
	a.genMu.Lock()
	delete(a.generations, module)
	a.genMu.Unlock()
	return nil
}

// TrackedModules lists the modules that currently have a stored generation.
func (a *App) TrackedModules() ([]string, error) {
	if a.store != nil {
		return a.store.Modules()
	}
	a.genMu.RLock()
	defer a.genMu.RUnlock()
	return util.SortedStringKeys(a.generations), nil
}

func (a *App) Close(ctx context.Context) error {
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
		a.activeWatcher = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			return errors.AddContext(err, errors.CtxOperation, "close_store")
		}
		a.store = nil
	}
	return nil
}
