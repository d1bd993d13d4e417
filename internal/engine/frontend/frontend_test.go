package frontend

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"snapdiff/internal/engine/astdiff"
	"snapdiff/internal/engine/typesys"
)

func extract(t *testing.T, code string) typesys.Scope {
	t.Helper()
	scope, err := NewExtractor().ExtractModule([]byte(code), "m")
	if err != nil {
		t.Fatal(err)
	}
	return scope
}

func TestExtractImports(t *testing.T) {
	scope := extract(t, `
import os
import collections.abc
import sys as system
from auth.utils import login as do_login, logout
`)

	osEntry, ok := scope["os"]
	if !ok || osEntry.Kind != typesys.KindModuleRef {
		t.Fatalf("expected module ref for os, got %+v", osEntry)
	}
	if scope["collections"] == nil || scope["collections"].FullName != "collections.abc" {
		t.Errorf("dotted import should bind top-level name: %+v", scope["collections"])
	}
	if scope["system"] == nil || scope["system"].FullName != "sys" {
		t.Errorf("aliased import mis-bound: %+v", scope["system"])
	}
	if scope["do_login"] == nil || scope["do_login"].FullName != "auth.utils.login" {
		t.Errorf("aliased from-import mis-bound: %+v", scope["do_login"])
	}
	if scope["logout"] == nil || scope["logout"].FullName != "auth.utils.logout" {
		t.Errorf("from-import mis-bound: %+v", scope["logout"])
	}
}

func TestExtractFunctionSignature(t *testing.T) {
	scope := extract(t, `
def greet(name: str, times: int = 1) -> str:
    return name * times
`)
	entry := scope["greet"]
	if entry == nil {
		t.Fatal("greet not extracted")
	}
	fn, ok := entry.Def.(*typesys.FuncDef)
	if !ok {
		t.Fatalf("expected FuncDef, got %T", entry.Def)
	}
	callable, ok := fn.Signature.(*typesys.Callable)
	if !ok {
		t.Fatalf("expected Callable signature, got %T", fn.Signature)
	}

	wantNames := []string{"name", "times"}
	if diff := cmp.Diff(wantNames, callable.ArgNames); diff != "" {
		t.Errorf("arg names mismatch (-want +got):\n%s", diff)
	}
	wantKinds := []typesys.ArgKind{typesys.ArgPos, typesys.ArgOpt}
	if diff := cmp.Diff(wantKinds, callable.ArgKinds); diff != "" {
		t.Errorf("arg kinds mismatch (-want +got):\n%s", diff)
	}
	if ret, ok := callable.Ret.(*typesys.Instance); !ok || ret.ClassName != "builtins.str" {
		t.Errorf("return type mis-parsed: %#v", callable.Ret)
	}
}

func TestExtractClassWithMethods(t *testing.T) {
	scope := extract(t, `
class Greeter(Base):
    count: int = 0

    def greet(self) -> str:
        return "hi"

    class Inner:
        pass
`)
	entry := scope["Greeter"]
	if entry == nil {
		t.Fatal("Greeter not extracted")
	}
	cls, ok := entry.Def.(*typesys.ClassDef)
	if !ok {
		t.Fatalf("expected ClassDef, got %T", entry.Def)
	}
	wantMRO := []string{"m.Greeter", "m.Base", "builtins.object"}
	if diff := cmp.Diff(wantMRO, cls.MRO); diff != "" {
		t.Errorf("MRO mismatch (-want +got):\n%s", diff)
	}
	if cls.Names["greet"] == nil || cls.Names["greet"].FullName != "m.Greeter.greet" {
		t.Errorf("method mis-qualified: %+v", cls.Names["greet"])
	}
	if cls.Names["count"] == nil {
		t.Error("annotated class variable not extracted")
	}
	inner, ok := cls.Names["Inner"]
	if !ok {
		t.Fatal("nested class not extracted")
	}
	if inner.Def.(*typesys.ClassDef).FullName != "m.Greeter.Inner" {
		t.Errorf("nested class mis-qualified: %+v", inner.Def)
	}
}

func TestExtractAbstractAndEnumFlags(t *testing.T) {
	scope := extract(t, `
from abc import ABC, abstractmethod
from enum import Enum

class Shape(ABC):
    @abstractmethod
    def area(self) -> float: ...

class Color(Enum):
    RED = 1
`)
	shape := scope["Shape"].Def.(*typesys.ClassDef)
	if !shape.Abstract {
		t.Error("ABC subclass with abstract method should be abstract")
	}
	color := scope["Color"].Def.(*typesys.ClassDef)
	if !color.Enum {
		t.Error("Enum subclass should carry the enum flag")
	}
}

func TestExtractPropertyAndOverload(t *testing.T) {
	scope := extract(t, `
from typing import overload

class Box:
    @property
    def value(self) -> int:
        return 1

    @overload
    def get(self, key: int) -> int: ...
    @overload
    def get(self, key: str) -> str: ...
`)
	box := scope["Box"].Def.(*typesys.ClassDef)

	value := box.Names["value"].Def.(*typesys.FuncDef)
	if !value.IsProperty {
		t.Error("property decorator not detected")
	}

	get := box.Names["get"].Def.(*typesys.FuncDef)
	overloaded, ok := get.Signature.(*typesys.Overloaded)
	if !ok {
		t.Fatalf("expected overloaded signature, got %T", get.Signature)
	}
	if len(overloaded.Items) != 2 {
		t.Errorf("expected 2 overload alternatives, got %d", len(overloaded.Items))
	}
}

func TestExtractTypeVarAndAlias(t *testing.T) {
	scope := extract(t, `
from typing import TypeAlias, TypeVar

T = TypeVar('T', bound=int)
Number: TypeAlias = int | float
`)
	tv := scope["T"]
	if tv == nil || tv.Kind != typesys.KindTypeVarDef {
		t.Fatalf("expected tvar-def entry, got %+v", tv)
	}
	tvar := tv.Def.(*typesys.TypeVarDef).TVar
	if bound, ok := tvar.UpperBound.(*typesys.Instance); !ok || bound.ClassName != "builtins.int" {
		t.Errorf("bound mis-parsed: %#v", tvar.UpperBound)
	}

	alias := scope["Number"]
	if alias == nil || alias.Kind != typesys.KindTypeAliasDef {
		t.Fatalf("expected alias-def entry, got %+v", alias)
	}
	target := alias.Def.(*typesys.TypeAliasDef).Target
	if _, ok := target.(*typesys.Union); !ok {
		t.Errorf("alias target mis-parsed: %#v", target)
	}
}

func TestExtractAnnotationForms(t *testing.T) {
	scope := extract(t, `
from typing import Callable, Optional, Tuple, Union

a: Optional[int] = None
b: Union[int, str] = 0
c: int | str = 0
d: Tuple[int, str] = (1, "x")
e: Callable[[int], str] = str
f: Callable[..., int] = int
g: "Forward" = None
`)
	declared := func(name string) typesys.Type {
		t.Helper()
		entry := scope[name]
		if entry == nil {
			t.Fatalf("%s not extracted", name)
		}
		return entry.Def.(*typesys.VarDef).Declared
	}

	if _, ok := declared("a").(*typesys.Union); !ok {
		t.Errorf("Optional should parse to a union: %#v", declared("a"))
	}
	// Union[...] and X | Y spell the same type; the snapshots must agree.
	if !astdiff.Equal(astdiff.SnapshotType(declared("b")), astdiff.SnapshotType(declared("c"))) {
		t.Error("Union[int, str] and int | str snapshot differently")
	}
	if tup, ok := declared("d").(*typesys.Tuple); !ok || len(tup.Items) != 2 {
		t.Errorf("tuple annotation mis-parsed: %#v", declared("d"))
	}
	if callable, ok := declared("e").(*typesys.Callable); !ok || len(callable.ArgTypes) != 1 || callable.IsEllipsisArgs {
		t.Errorf("callable annotation mis-parsed: %#v", declared("e"))
	}
	if callable, ok := declared("f").(*typesys.Callable); !ok || !callable.IsEllipsisArgs {
		t.Errorf("ellipsis callable mis-parsed: %#v", declared("f"))
	}
	if fwd, ok := declared("g").(*typesys.Unbound); !ok || fwd.Name != "Forward" {
		t.Errorf("forward reference mis-parsed: %#v", declared("g"))
	}
}

// End-to-end shape check: two extractions of the same source always snapshot
// identically, and a return-type edit triggers exactly the method name.
func TestExtractionFeedsDiff(t *testing.T) {
	before := `
class C:
    def foo(self, x: int) -> int:
        return x
`
	after := `
class C:
    def foo(self, x: int) -> str:
        return str(x)
`
	s1 := astdiff.SnapshotScope("m", extract(t, before))
	s2 := astdiff.SnapshotScope("m", extract(t, before))
	if got := astdiff.Diff("m", s1, s2); len(got) != 0 {
		t.Errorf("re-extraction of identical source produced triggers %v", got.Sorted())
	}

	s3 := astdiff.SnapshotScope("m", extract(t, after))
	got := astdiff.Diff("m", s1, s3)
	want := []string{"m.C.foo"}
	if diff := cmp.Diff(want, got.Sorted()); diff != "" {
		t.Errorf("triggers mismatch (-want +got):\n%s", diff)
	}
}
