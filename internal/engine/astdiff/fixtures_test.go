package astdiff

import (
	"snapdiff/internal/engine/typesys"
)

// Fixture builders. Each call constructs a fresh value so tests exercise
// identity independence by default: two calls never share AST state.

func intType() typesys.Type { return &typesys.Instance{ClassName: "builtins.int"} }
func strType() typesys.Type { return &typesys.Instance{ClassName: "builtins.str"} }

func instance(name string, args ...typesys.Type) typesys.Type {
	return &typesys.Instance{ClassName: name, Args: args}
}

func union(items ...typesys.Type) typesys.Type {
	return &typesys.Union{Items: items}
}

func method(self string, ret typesys.Type, params ...typesys.Type) *typesys.Callable {
	argTypes := append([]typesys.Type{&typesys.Instance{ClassName: self}}, params...)
	argNames := make([]string, len(argTypes))
	argKinds := make([]typesys.ArgKind, len(argTypes))
	argNames[0] = "self"
	for i := 1; i < len(argNames); i++ {
		argNames[i] = "x"
	}
	return &typesys.Callable{
		ArgTypes: argTypes,
		ArgNames: argNames,
		ArgKinds: argKinds,
		Ret:      ret,
	}
}

func funcEntry(fullName string, sig typesys.Type) *typesys.SymbolEntry {
	return &typesys.SymbolEntry{
		Kind:     typesys.KindDef,
		Public:   true,
		FullName: fullName,
		Def:      &typesys.FuncDef{Signature: sig},
	}
}

func varEntry(fullName string, declared typesys.Type) *typesys.SymbolEntry {
	return &typesys.SymbolEntry{
		Kind:     typesys.KindDef,
		Public:   true,
		FullName: fullName,
		Def:      &typesys.VarDef{Declared: declared},
	}
}

func classEntry(def *typesys.ClassDef) *typesys.SymbolEntry {
	return &typesys.SymbolEntry{
		Kind:     typesys.KindDef,
		Public:   true,
		FullName: def.FullName,
		Def:      def,
	}
}

// moduleWithClassC builds module m containing class C with a single method
// foo(self, x: int) -> ret.
func moduleWithClassC(ret typesys.Type) typesys.Scope {
	return typesys.Scope{
		"C": classEntry(&typesys.ClassDef{
			FullName: "m.C",
			MRO:      []string{"m.C", "builtins.object"},
			Names: typesys.Scope{
				"foo": funcEntry("m.C.foo", method("m.C", ret, intType())),
			},
		}),
	}
}
