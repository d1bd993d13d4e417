package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"snapdiff/internal/core/errors"
	"snapdiff/internal/engine/astdiff"
	"snapdiff/internal/shared/observability"
	"snapdiff/internal/shared/util"
)

// ProcessFile re-analyzes the module backing one source file: extract its
// scope, build a definition snapshot, diff it against the stored generation,
// and persist the new generation. A file that no longer exists drops the
// module and fires a trigger for every symbol it used to define.
//
// Files that do not map to a module under the project root are skipped and
// return a zero Update.
func (a *App) ProcessFile(ctx context.Context, path string) (Update, error) {
	module := util.ModuleNameFromPath(a.projectRoot(), path)
	if module == "" {
		return Update{}, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return a.removeModule(module)
	}

	ctx, span := observability.Tracer.Start(ctx, "app.ProcessFile",
		trace.WithAttributes(attribute.String("module", module)))
	defer span.End()

	source, err := os.ReadFile(path)
	if err != nil {
		return Update{}, errors.AddContext(err, errors.CtxPath, path)
	}

	extractStart := time.Now()
	scope, err := a.extractor.ExtractModule(source, module)
	if err != nil {
		return Update{}, errors.AddContext(err, errors.CtxModule, module)
	}
	observability.ExtractionDuration.WithLabelValues(module).Observe(time.Since(extractStart).Seconds())

	snapStart := time.Now()
	snap := astdiff.SnapshotScope(module, scope)
	observability.SnapshotDuration.Observe(time.Since(snapStart).Seconds())
	observability.ModulesSnapshotted.Inc()

	prev, err := a.priorGeneration(module)
	if err != nil {
		return Update{}, errors.AddContext(err, errors.CtxModule, module)
	}

	update := Update{
		Module:       module,
		GenerationID: uuid.NewString(),
		FirstSeen:    prev == nil,
	}
	if prev != nil {
		diffStart := time.Now()
		triggers := astdiff.Diff(module, prev, snap)
		observability.DiffDuration.Observe(time.Since(diffStart).Seconds())
		observability.TriggersTotal.Add(float64(len(triggers)))
		update.Triggers = triggers.Sorted()
	}

	if err := a.saveGeneration(module, update.GenerationID, snap); err != nil {
		err = errors.AddContext(err, errors.CtxModule, module)
		return Update{}, errors.AddContext(err, errors.CtxGen, update.GenerationID)
	}

	if len(update.Triggers) > 0 {
		slog.Debug("definitions changed", "module", module, "triggers", len(update.Triggers))
	}
	a.emitUpdate(update)
	return update, nil
}

// removeModule deletes the stored generation and reports every previously
// recorded symbol, plus the module itself, as changed.
func (a *App) removeModule(module string) (Update, error) {
	prev, err := a.priorGeneration(module)
	if err != nil {
		return Update{}, errors.AddContext(err, errors.CtxModule, module)
	}
	if prev == nil {
		return Update{}, nil
	}

	triggers := make(astdiff.TriggerSet)
	triggers.Add(module)
	for name := range prev {
		triggers.Add(module + "." + name)
	}
	observability.TriggersTotal.Add(float64(len(triggers)))

	if err := a.forgetModule(module); err != nil {
		return Update{}, errors.AddContext(err, errors.CtxModule, module)
	}

	update := Update{Module: module, Triggers: triggers.Sorted(), Removed: true}
	slog.Info("module removed", "module", module, "triggers", len(triggers))
	a.emitUpdate(update)
	return update, nil
}
