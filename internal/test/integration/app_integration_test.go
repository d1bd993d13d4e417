package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"snapdiff/internal/core/app"
	"snapdiff/internal/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProject(t *testing.T, tmpDir string) {
	err := os.MkdirAll(filepath.Join(tmpDir, "pkg"), 0o755)
	require.NoError(t, err)

	mainPy := `from pkg.util import helper

class Service:
    def run(self, count: int) -> bool: ...

def main() -> None: ...
`
	err = os.WriteFile(filepath.Join(tmpDir, "main.py"), []byte(mainPy), 0o644)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(tmpDir, "pkg", "__init__.py"), nil, 0o644)
	require.NoError(t, err)

	utilPy := `def helper(value: str) -> str: ...
`
	err = os.WriteFile(filepath.Join(tmpDir, "pkg", "util.py"), []byte(utilPy), 0o644)
	require.NoError(t, err)
}

func TestFullPipelineWithStore(t *testing.T) {
	tmpDir := t.TempDir()
	createTestProject(t, tmpDir)

	cfg := config.Default()
	cfg.Paths.ProjectRoot = tmpDir
	cfg.Paths.StateDir = filepath.Join(tmpDir, ".snapdiff")
	cfg.WatchPaths = []string{tmpDir}
	cfg.DB.Enabled = true
	cfg.DB.Path = filepath.Join(tmpDir, ".snapdiff", "generations.db")
	cfg.Projects.Active = "integration"

	appInstance, err := app.New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	result, err := appInstance.RunScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ModulesScanned)
	assert.Empty(t, result.Triggers)

	modules, err := appInstance.TrackedModules()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main", "pkg", "pkg.util"}, modules)

	// Generations survive a process restart.
	require.NoError(t, appInstance.Close(ctx))
	appInstance, err = app.New(cfg)
	require.NoError(t, err)
	defer appInstance.Close(ctx)

	changed := `def helper(value: str, flag: bool) -> str: ...
`
	err = os.WriteFile(filepath.Join(tmpDir, "pkg", "util.py"), []byte(changed), 0o644)
	require.NoError(t, err)

	result, err = appInstance.RunScan(ctx)
	require.NoError(t, err)
	assert.True(t, result.Triggers.Has("pkg.util.helper"),
		"expected pkg.util.helper trigger, got %v", result.Triggers.Sorted())
	assert.False(t, result.Triggers.Has("main.main"),
		"unrelated module must stay quiet, got %v", result.Triggers.Sorted())
}

func TestRemovedModuleFiresSymbolTriggers(t *testing.T) {
	tmpDir := t.TempDir()
	createTestProject(t, tmpDir)

	cfg := config.Default()
	cfg.Paths.ProjectRoot = tmpDir
	cfg.WatchPaths = []string{tmpDir}

	appInstance, err := app.New(cfg)
	require.NoError(t, err)
	defer appInstance.Close(context.Background())

	ctx := context.Background()
	_, err = appInstance.RunScan(ctx)
	require.NoError(t, err)

	utilPath := filepath.Join(tmpDir, "pkg", "util.py")
	require.NoError(t, os.Remove(utilPath))

	update, err := appInstance.ProcessFile(ctx, utilPath)
	require.NoError(t, err)
	assert.True(t, update.Removed)
	assert.Contains(t, update.Triggers, "pkg.util")
	assert.Contains(t, update.Triggers, "pkg.util.helper")
}
