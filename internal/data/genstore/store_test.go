package genstore

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"snapdiff/internal/engine/astdiff"
	"snapdiff/internal/engine/typesys"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "generations.db"), "test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleScope(ret typesys.Type) typesys.Scope {
	return typesys.Scope{
		"C": {
			Kind:     typesys.KindDef,
			Public:   true,
			FullName: "m.C",
			Def: &typesys.ClassDef{
				FullName: "m.C",
				MRO:      []string{"m.C", "builtins.object"},
				Names: typesys.Scope{
					"foo": {
						Kind:     typesys.KindDef,
						Public:   true,
						FullName: "m.C.foo",
						Def: &typesys.FuncDef{Signature: &typesys.Callable{
							ArgTypes: []typesys.Type{&typesys.Instance{ClassName: "m.C"}},
							ArgNames: []string{"self"},
							ArgKinds: []typesys.ArgKind{typesys.ArgPos},
							Ret:      ret,
						}},
					},
				},
			},
		},
		"x": {
			Kind:     typesys.KindDef,
			Public:   true,
			FullName: "m.x",
			Def:      &typesys.VarDef{Declared: &typesys.Instance{ClassName: "builtins.int"}},
		},
	}
}

func TestSaveAndLoadGenerationRoundTrip(t *testing.T) {
	store := openTestStore(t)
	snap := astdiff.SnapshotScope("m", sampleScope(&typesys.Instance{ClassName: "builtins.int"}))

	if err := store.SaveGeneration("m", "gen-1", snap); err != nil {
		t.Fatal(err)
	}
	loaded, genID, err := store.LoadGeneration("m")
	if err != nil {
		t.Fatal(err)
	}
	if genID != "gen-1" {
		t.Errorf("expected generation id gen-1, got %q", genID)
	}

	// A stored generation must diff as equal against the snapshot it came
	// from, and catch real changes against a new generation.
	if got := astdiff.Diff("m", loaded, snap); len(got) != 0 {
		t.Errorf("round-trip produced triggers %v", got.Sorted())
	}

	changed := astdiff.SnapshotScope("m", sampleScope(&typesys.Instance{ClassName: "builtins.str"}))
	got := astdiff.Diff("m", loaded, changed)
	want := []string{"m.C.foo"}
	if diff := cmp.Diff(want, got.Sorted()); diff != "" {
		t.Errorf("stored-vs-new triggers mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingGeneration(t *testing.T) {
	store := openTestStore(t)
	snap, genID, err := store.LoadGeneration("missing")
	if err != nil {
		t.Fatal(err)
	}
	if snap != nil || genID != "" {
		t.Errorf("expected empty result for unknown module, got %v %q", snap, genID)
	}
}

func TestSaveGenerationReplacesPrevious(t *testing.T) {
	store := openTestStore(t)
	first := astdiff.SnapshotScope("m", sampleScope(&typesys.Instance{ClassName: "builtins.int"}))
	second := astdiff.SnapshotScope("m", typesys.Scope{
		"x": {
			Kind:     typesys.KindDef,
			Public:   true,
			FullName: "m.x",
			Def:      &typesys.VarDef{Declared: &typesys.Instance{ClassName: "builtins.int"}},
		},
	})

	if err := store.SaveGeneration("m", "gen-1", first); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveGeneration("m", "gen-2", second); err != nil {
		t.Fatal(err)
	}

	loaded, genID, err := store.LoadGeneration("m")
	if err != nil {
		t.Fatal(err)
	}
	if genID != "gen-2" {
		t.Errorf("expected generation id gen-2, got %q", genID)
	}
	if got := astdiff.Diff("m", loaded, second); len(got) != 0 {
		t.Errorf("replacement left stale rows: %v", got.Sorted())
	}
	if _, ok := loaded["C"]; ok {
		t.Error("class rows from the first generation were not replaced")
	}
}

func TestDeleteModuleAndList(t *testing.T) {
	store := openTestStore(t)
	snap := astdiff.SnapshotScope("m", sampleScope(&typesys.Instance{ClassName: "builtins.int"}))
	if err := store.SaveGeneration("a", "gen-1", snap); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveGeneration("b", "gen-2", snap); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteModule("a"); err != nil {
		t.Fatal(err)
	}
	modules, err := store.Modules()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b"}, modules); diff != "" {
		t.Errorf("module list mismatch (-want +got):\n%s", diff)
	}

	loaded, _, err := store.LoadGeneration("a")
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Error("deleted module still has a stored generation")
	}
}
