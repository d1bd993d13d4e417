package typesys

import "strings"

// SymbolKind is the binding kind of a scope entry. It mirrors the numeric
// kind carried in snapshot common fields, so the values are stable.
type SymbolKind int

const (
	// KindDef is a locally ownable definition (function, variable or class).
	KindDef SymbolKind = iota
	// KindModuleRef is a reference to another module as a whole.
	KindModuleRef
	// KindTypeVarDef is a module-level type variable definition.
	KindTypeVarDef
	// KindTypeAliasDef is a module-level type alias definition.
	KindTypeAliasDef
)

// Scope maps names to their entries for one module or class. Insertion order
// is irrelevant; snapshots depend only on the name set and entry shapes.
type Scope map[string]*SymbolEntry

// SymbolEntry is one name bound in a scope.
type SymbolEntry struct {
	Kind SymbolKind
	// Public reports whether the name is visible outside the module.
	Public bool
	// FullName is the fully qualified name of the entry's target, or empty
	// when unknown. For module refs it names the referenced module; for
	// definitions it names the owning definition, which is how cross-module
	// re-exports are detected.
	FullName string
	// Def is the associated definition for locally owned kinds; nil for
	// module references.
	Def Definition
}

// Definition is the sealed interface over definition nodes attached to
// scope entries.
type Definition interface {
	def()
}

// FuncDef is a function or method definition.
type FuncDef struct {
	IsProperty bool
	// Signature is the declared type: *Callable, *Overloaded, or nil when
	// the function is unannotated.
	Signature Type
}

// VarDef is a variable definition with an optional declared type.
type VarDef struct {
	Declared Type
}

// ClassDef is a class definition: a named type-introducing scope.
type ClassDef struct {
	FullName      string
	Abstract      bool
	Enum          bool
	FallbackToAny bool
	NamedTuple    bool
	NewType       bool
	// MRO is the ordered method-resolution sequence of ancestor fully
	// qualified names, starting with the class itself.
	MRO []string
	// Names is the class's own scope, qualified by FullName.
	Names Scope
}

// TypeVarDef is a module-level type variable definition.
type TypeVarDef struct {
	TVar *TypeVar
}

// TypeAliasDef is a module-level type alias definition.
type TypeAliasDef struct {
	Target Type
}

func (*FuncDef) def() {}
func (*VarDef) def() {}
func (*ClassDef) def() {}
func (*TypeVarDef) def() {}
func (*TypeAliasDef) def() {}

// ParentName returns the qualified name of the immediate parent scope of a
// fully qualified name: "m.C.foo" -> "m.C", "m" -> "".
func ParentName(fullName string) string {
	idx := strings.LastIndex(fullName, ".")
	if idx < 0 {
		return ""
	}
	return fullName[:idx]
}
