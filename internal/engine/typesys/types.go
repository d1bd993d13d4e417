// Package typesys holds the structural type model produced by the front end
// and consumed by the snapshot/diff engine. The variant set is closed: every
// Type value is one of the concrete kinds below, and consumers dispatch with
// an exhaustive type switch.
package typesys

// Type is the sealed interface over all structural type kinds.
type Type interface {
	typ()
}

// ArgKind describes how a callable argument is passed.
type ArgKind int

const (
	ArgPos ArgKind = iota
	ArgOpt
	ArgStar
	ArgNamed
	ArgStar2
	ArgNamedOpt
)

// Variance of a type variable.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

// Unbound is a reference that has not been resolved to a definition.
type Unbound struct {
	Name            string
	Optional        bool
	EmptyTupleIndex bool
	Args            []Type
}

// Any is the dynamic type.
type Any struct{}

// None is the none/unit type.
type None struct{}

// Uninhabited is the bottom type.
type Uninhabited struct{}

// Erased marks a type erased during generic inference.
type Erased struct{}

// Deleted marks a name that was deleted from a scope.
type Deleted struct{}

// Instance is a nominal class type. ClassName is fully qualified so that
// instances built from different analysis generations of the same class
// compare equal by name.
type Instance struct {
	ClassName string
	Args      []Type
}

// TypeVar is a reference to a type variable.
type TypeVar struct {
	Name       string
	FullName   string
	ID         int64
	MetaLevel  int
	Values     []Type
	UpperBound Type
	Variance   Variance
}

// Callable is a function signature. ArgNames entries may be empty for
// positional-only arguments; ArgTypes, ArgNames and ArgKinds are parallel.
type Callable struct {
	ArgTypes       []Type
	ArgNames       []string
	ArgKinds       []ArgKind
	Ret            Type
	IsTypeObj      bool
	IsEllipsisArgs bool
}

// Tuple is a fixed-length heterogeneous tuple.
type Tuple struct {
	Items []Type
}

// TypedDictField is one named field of a TypedDict.
type TypedDictField struct {
	Name string
	Type Type
}

// TypedDict is a structured record with a fixed field set.
type TypedDict struct {
	Fields []TypedDictField
}

// Union is an unordered set of alternatives. Items may arrive in any order
// and may contain duplicates; normalization happens at snapshot time.
type Union struct {
	Items []Type
}

// Overloaded is an ordered list of callable alternatives. Resolution order
// is observable, so the order is significant.
type Overloaded struct {
	Items []*Callable
}

// TypeType wraps a type as a value (the type object of Item).
type TypeType struct {
	Item Type
}

// Partial is a transient in-progress placeholder used by type inference.
// It must never reach the snapshot or identity engines.
type Partial struct{}

func (*Unbound) typ() {}
func (*Any) typ() {}
func (*None) typ() {}
func (*Uninhabited) typ() {}
func (*Erased) typ() {}
func (*Deleted) typ() {}
func (*Instance) typ() {}
func (*TypeVar) typ() {}
func (*Callable) typ() {}
func (*Tuple) typ() {}
func (*TypedDict) typ() {}
func (*Union) typ() {}
func (*Overloaded) typ() {}
func (*TypeType) typ() {}
func (*Partial) typ() {}
