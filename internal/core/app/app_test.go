package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snapdiff/internal/core/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestApp(t *testing.T, root string) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.ProjectRoot = root
	cfg.WatchPaths = []string{root}
	cfg.Output.Directory = filepath.Join(root, "out")

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func TestRunScanFirstGenerationProducesNoTriggers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "m.py"), "def f(x: int) -> str: ...\n")

	a := newTestApp(t, root)
	result, err := a.RunScan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.ModulesScanned != 1 {
		t.Fatalf("expected 1 module scanned, got %d", result.ModulesScanned)
	}
	if len(result.Triggers) != 0 {
		t.Fatalf("expected no triggers on first scan, got %v", result.Triggers.Sorted())
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}
}

func TestRunScanDetectsSignatureChange(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "m.py")
	writeFile(t, path, "def f(x: int) -> str: ...\n")

	a := newTestApp(t, root)
	if _, err := a.RunScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, "def f(x: int) -> bytes: ...\n")
	result, err := a.RunScan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Triggers.Has("m.f") {
		t.Fatalf("expected trigger m.f, got %v", result.Triggers.Sorted())
	}
	if result.Triggers.Has("m") {
		t.Fatalf("module symbol set did not change, got triggers %v", result.Triggers.Sorted())
	}
}

func TestRunScanUnchangedFileIsQuiet(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkg", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "pkg", "m.py"), "class C:\n    def get(self) -> int: ...\n")

	a := newTestApp(t, root)
	if _, err := a.RunScan(context.Background()); err != nil {
		t.Fatal(err)
	}
	result, err := a.RunScan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Triggers) != 0 {
		t.Fatalf("expected no triggers for unchanged sources, got %v", result.Triggers.Sorted())
	}
}

func TestProcessFileRemovalFiresModuleTriggers(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "m.py")
	writeFile(t, path, "def f() -> None: ...\ndef g() -> None: ...\n")

	a := newTestApp(t, root)
	if _, err := a.RunScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	update, err := a.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if !update.Removed {
		t.Fatal("expected removal update")
	}
	want := map[string]bool{"m": true, "m.f": true, "m.g": true}
	if len(update.Triggers) != len(want) {
		t.Fatalf("expected triggers %v, got %v", want, update.Triggers)
	}
	for _, trigger := range update.Triggers {
		if !want[trigger] {
			t.Fatalf("unexpected trigger %q", trigger)
		}
	}

	modules, err := a.TrackedModules()
	if err != nil {
		t.Fatal(err)
	}
	if len(modules) != 0 {
		t.Fatalf("expected module to be forgotten, still tracking %v", modules)
	}
}

func TestProcessFileSkipsForeignPaths(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, root)

	update, err := a.ProcessFile(context.Background(), filepath.Join(root, "notes.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if update.Module != "" {
		t.Fatalf("expected zero update for non-module path, got %+v", update)
	}
}

func TestWriteReports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "m.py"), "def f(x: int) -> str: ...\n")

	a := newTestApp(t, root)
	a.Config.Output.Formats = []string{"text", "jsonl"}

	if _, err := a.RunScan(context.Background()); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "m.py"), "def f(x: int) -> bytes: ...\n")
	result, err := a.RunScan(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if err := a.WriteReports(result); err != nil {
		t.Fatal(err)
	}

	text, err := os.ReadFile(filepath.Join(a.Config.Output.Directory, "triggers.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !containsLine(string(text), "m.f") {
		t.Fatalf("text report missing trigger m.f:\n%s", text)
	}
	jsonl, err := os.ReadFile(filepath.Join(a.Config.Output.Directory, "triggers.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if len(jsonl) == 0 {
		t.Fatal("jsonl report is empty")
	}
}

func containsLine(content, line string) bool {
	for _, l := range strings.Split(content, "\n") {
		if l == line {
			return true
		}
	}
	return false
}
