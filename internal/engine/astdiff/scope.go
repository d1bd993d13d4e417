package astdiff

import (
	"bytes"
	"fmt"

	"snapdiff/internal/core/errors"
	"snapdiff/internal/engine/typesys"
)

// ScopeSnapshot maps names to their entry snapshots for one module or class
// scope.
type ScopeSnapshot map[string]SymbolSnapshot

// SymbolSnapshot is the snapshot of a single scope entry. Tag identifies the
// entry kind, ShallowKey encodes every field except nested scopes, and
// Nested returns the class member snapshot or nil for leaf kinds.
type SymbolSnapshot interface {
	Tag() string
	ShallowKey() string
	Nested() ScopeSnapshot
}

// Common carries the fields shared by every entry kind: the target fully
// qualified name (empty if unknown), the binding kind, and the public
// visibility flag.
type Common struct {
	FullName string
	Kind     typesys.SymbolKind
	Public   bool
}

func (c Common) writeKey(b *bytes.Buffer) {
	writeString(b, c.FullName)
	b.WriteByte(',')
	writeInt(b, int64(c.Kind))
	b.WriteByte(',')
	writeBool(b, c.Public)
}

// ModuleRefSnapshot is a shallow snapshot of a reference to another module.
// The referenced module's own snapshot pass is responsible for its contents.
type ModuleRefSnapshot struct {
	Common Common
}

func (s *ModuleRefSnapshot) Tag() string { return "module-ref" }
func (s *ModuleRefSnapshot) Nested() ScopeSnapshot { return nil }
func (s *ModuleRefSnapshot) ShallowKey() string {
	var b bytes.Buffer
	b.WriteString("module-ref(")
	s.Common.writeKey(&b)
	b.WriteByte(')')
	return b.String()
}

// CrossRefSnapshot is a shallow snapshot of an entry whose definition is
// owned by a different module; compared by target name only.
type CrossRefSnapshot struct {
	Common Common
}

func (s *CrossRefSnapshot) Tag() string { return "cross-ref" }
func (s *CrossRefSnapshot) Nested() ScopeSnapshot { return nil }
func (s *CrossRefSnapshot) ShallowKey() string {
	var b bytes.Buffer
	b.WriteString("cross-ref(")
	s.Common.writeKey(&b)
	b.WriteByte(')')
	return b.String()
}

// FuncSnapshot is the snapshot of a function or method definition.
type FuncSnapshot struct {
	Common     Common
	IsProperty bool
	Signature  Item // callable or overloaded type, nil when unannotated
}

func (s *FuncSnapshot) Tag() string { return "func" }
func (s *FuncSnapshot) Nested() ScopeSnapshot { return nil }
func (s *FuncSnapshot) ShallowKey() string {
	var b bytes.Buffer
	b.WriteString("func(")
	s.Common.writeKey(&b)
	b.WriteByte(',')
	writeBool(&b, s.IsProperty)
	b.WriteByte(',')
	b.WriteString(Key(s.Signature))
	b.WriteByte(')')
	return b.String()
}

// VarSnapshot is the snapshot of a variable definition.
type VarSnapshot struct {
	Common   Common
	Declared Item // nil when the variable has no declared type
}

func (s *VarSnapshot) Tag() string { return "var" }
func (s *VarSnapshot) Nested() ScopeSnapshot { return nil }
func (s *VarSnapshot) ShallowKey() string {
	var b bytes.Buffer
	b.WriteString("var(")
	s.Common.writeKey(&b)
	b.WriteByte(',')
	b.WriteString(Key(s.Declared))
	b.WriteByte(')')
	return b.String()
}

// ClassFlags are the ownership-relevant flags of a class definition.
type ClassFlags struct {
	Abstract      bool
	Enum          bool
	FallbackToAny bool
	NamedTuple    bool
	NewType       bool
}

// ClassSnapshot is the snapshot of a class definition. Names is the nested
// member scope and is excluded from the shallow key; the comparator diffs it
// recursively and independently of the class header.
type ClassSnapshot struct {
	Common Common
	Flags  ClassFlags
	MRO    []string
	Names  ScopeSnapshot
}

func (s *ClassSnapshot) Tag() string { return "class" }
func (s *ClassSnapshot) Nested() ScopeSnapshot { return s.Names }
func (s *ClassSnapshot) ShallowKey() string {
	var b bytes.Buffer
	b.WriteString("class(")
	s.Common.writeKey(&b)
	b.WriteByte(',')
	writeBool(&b, s.Flags.Abstract)
	writeBool(&b, s.Flags.Enum)
	writeBool(&b, s.Flags.FallbackToAny)
	writeBool(&b, s.Flags.NamedTuple)
	writeBool(&b, s.Flags.NewType)
	b.WriteByte(',')
	b.WriteByte('[')
	for i, ancestor := range s.MRO {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(&b, ancestor)
	}
	b.WriteByte(']')
	b.WriteByte(')')
	return b.String()
}

// TypeVarDefSnapshot is the snapshot of a module-level type variable
// definition.
type TypeVarDefSnapshot struct {
	Common Common
	TVar   Item
}

func (s *TypeVarDefSnapshot) Tag() string { return "tvar-def" }
func (s *TypeVarDefSnapshot) Nested() ScopeSnapshot { return nil }
func (s *TypeVarDefSnapshot) ShallowKey() string {
	var b bytes.Buffer
	b.WriteString("tvar-def(")
	s.Common.writeKey(&b)
	b.WriteByte(',')
	b.WriteString(Key(s.TVar))
	b.WriteByte(')')
	return b.String()
}

// AliasSnapshot is the snapshot of a module-level type alias definition.
type AliasSnapshot struct {
	Common Common
	Target Item
}

func (s *AliasSnapshot) Tag() string { return "alias-def" }
func (s *AliasSnapshot) Nested() ScopeSnapshot { return nil }
func (s *AliasSnapshot) ShallowKey() string {
	var b bytes.Buffer
	b.WriteString("alias-def(")
	s.Common.writeKey(&b)
	b.WriteByte(',')
	b.WriteString(Key(s.Target))
	b.WriteByte(')')
	return b.String()
}

// SnapshotScope builds the snapshot of one scope. prefix is the fully
// qualified name of the scope itself (module or class); entries whose owning
// name lives under a different parent are recorded as shallow cross
// references rather than recursed into.
func SnapshotScope(prefix string, scope typesys.Scope) ScopeSnapshot {
	result := make(ScopeSnapshot, len(scope))
	for name, entry := range scope {
		common := Common{FullName: entry.FullName, Kind: entry.Kind, Public: entry.Public}
		switch entry.Kind {
		case typesys.KindModuleRef:
			result[name] = &ModuleRefSnapshot{Common: common}
		case typesys.KindTypeVarDef:
			def, ok := entry.Def.(*typesys.TypeVarDef)
			if !ok || def.TVar == nil {
				panic(errors.New(errors.CodeInternal,
					fmt.Sprintf("type variable entry %q has no definition", name)))
			}
			result[name] = &TypeVarDefSnapshot{Common: common, TVar: SnapshotType(def.TVar)}
		case typesys.KindTypeAliasDef:
			def, ok := entry.Def.(*typesys.TypeAliasDef)
			if !ok {
				panic(errors.New(errors.CodeInternal,
					fmt.Sprintf("type alias entry %q has no definition", name)))
			}
			result[name] = &AliasSnapshot{Common: common, Target: snapshotOptionalType(def.Target)}
		case typesys.KindDef:
			if entry.FullName != "" && typesys.ParentName(entry.FullName) != prefix {
				// Owned by another module; the owner's own snapshot pass
				// catches changes to the target.
				result[name] = &CrossRefSnapshot{Common: common}
				continue
			}
			result[name] = snapshotDefinition(name, common, entry.Def)
		default:
			panic(errors.New(errors.CodeInternal,
				fmt.Sprintf("unknown symbol kind %d for %q", entry.Kind, name)))
		}
	}
	return result
}

func snapshotDefinition(name string, common Common, def typesys.Definition) SymbolSnapshot {
	switch def := def.(type) {
	case *typesys.FuncDef:
		return &FuncSnapshot{
			Common:     common,
			IsProperty: def.IsProperty,
			Signature:  snapshotOptionalType(def.Signature),
		}
	case *typesys.VarDef:
		return &VarSnapshot{Common: common, Declared: snapshotOptionalType(def.Declared)}
	case *typesys.ClassDef:
		return &ClassSnapshot{
			Common: common,
			Flags: ClassFlags{
				Abstract:      def.Abstract,
				Enum:          def.Enum,
				FallbackToAny: def.FallbackToAny,
				NamedTuple:    def.NamedTuple,
				NewType:       def.NewType,
			},
			MRO:   append([]string(nil), def.MRO...),
			Names: SnapshotScope(def.FullName, def.Names),
		}
	default:
		panic(errors.New(errors.CodeInternal,
			fmt.Sprintf("unknown definition %T for %q", def, name)))
	}
}
