package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"snapdiff/internal/core/errors"
	"snapdiff/internal/engine/astdiff"
	"snapdiff/internal/shared/observability"
)

// ScanResult summarizes one full pass over the configured paths.
type ScanResult struct {
	ModulesScanned int
	Triggers       astdiff.TriggerSet
	Warnings       []string
}

// RunScan walks the configured watch paths, re-analyzes every Python module
// found, and returns the union of triggers fired against the stored
// generations. Modules seen for the first time produce no triggers.
func (a *App) RunScan(ctx context.Context) (ScanResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.RunScan", trace.WithAttributes())
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}

	files, err := a.ScanDirectories(a.Config.WatchPaths, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return ScanResult{}, errors.AddContext(err, errors.CtxOperation, "scan_directories")
	}

	result := ScanResult{Triggers: make(astdiff.TriggerSet)}
	for _, filePath := range files {
		if err := ctx.Err(); err != nil {
			return ScanResult{}, err
		}
		update, err := a.ProcessFile(ctx, filePath)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("process file %s: %v", filePath, err))
			continue
		}
		if update.Module == "" {
			continue
		}
		result.ModulesScanned++
		for _, trigger := range update.Triggers {
			result.Triggers.Add(trigger)
		}
	}

	if modules, err := a.TrackedModules(); err == nil {
		observability.TrackedModules.Set(float64(len(modules)))
	}

	span.SetAttributes(
		attribute.Int("modules_scanned", result.ModulesScanned),
		attribute.Int("triggers", len(result.Triggers)),
	)
	slog.Info("scan complete",
		"modules", result.ModulesScanned,
		"triggers", len(result.Triggers),
		"warnings", len(result.Warnings))
	return result, nil
}

// ScanDirectories walks the given roots and collects Python source files,
// honoring the exclude glob patterns for directory and file base names.
func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	dirGlobs, err := compileGlobs(excludeDirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(excludeFiles, "exclude file")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !strings.HasSuffix(base, ".py") {
				return nil
			}
			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func compileGlobs(patterns []string, kind string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", kind, p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}
