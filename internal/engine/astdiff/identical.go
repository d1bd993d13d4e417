package astdiff

import (
	"fmt"

	"snapdiff/internal/core/errors"
	"snapdiff/internal/engine/typesys"
)

// IsIdentical is a cheap structural equality check on live type values,
// independent of the snapshot machinery. The contract is asymmetric: it may
// answer false for two types that are semantically equal (the caller only
// pays extra invalidation work), but it must never answer true for two types
// that differ. Unbound and erased types are too unreliable to trust and
// always compare not identical. Unlike the snapshot builder, union members
// are compared in order; permuted unions count as different, a deliberately
// weaker and cheaper check.
func IsIdentical(t, s typesys.Type) bool {
	switch t := t.(type) {
	case *typesys.Unbound:
		return false
	case *typesys.Erased:
		return false
	case *typesys.Any:
		_, ok := s.(*typesys.Any)
		return ok
	case *typesys.None:
		_, ok := s.(*typesys.None)
		return ok
	case *typesys.Uninhabited:
		_, ok := s.(*typesys.Uninhabited)
		return ok
	case *typesys.Deleted:
		_, ok := s.(*typesys.Deleted)
		return ok
	case *typesys.Instance:
		right, ok := s.(*typesys.Instance)
		return ok && t.ClassName == right.ClassName && isIdenticalList(t.Args, right.Args)
	case *typesys.TypeVar:
		right, ok := s.(*typesys.TypeVar)
		return ok && t.ID == right.ID && t.MetaLevel == right.MetaLevel
	case *typesys.Callable:
		right, ok := s.(*typesys.Callable)
		return ok && isIdenticalCallable(t, right)
	case *typesys.Tuple:
		right, ok := s.(*typesys.Tuple)
		return ok && isIdenticalList(t.Items, right.Items)
	case *typesys.TypedDict:
		right, ok := s.(*typesys.TypedDict)
		if !ok || len(t.Fields) != len(right.Fields) {
			return false
		}
		// Same field-name set with identical per-field types; field order
		// is not significant for records.
		byName := make(map[string]typesys.Type, len(right.Fields))
		for _, f := range right.Fields {
			byName[f.Name] = f.Type
		}
		for _, f := range t.Fields {
			other, ok := byName[f.Name]
			if !ok || !IsIdentical(f.Type, other) {
				return false
			}
		}
		return true
	case *typesys.Union:
		right, ok := s.(*typesys.Union)
		return ok && isIdenticalList(t.Items, right.Items)
	case *typesys.Overloaded:
		right, ok := s.(*typesys.Overloaded)
		if !ok || len(t.Items) != len(right.Items) {
			return false
		}
		for i, alt := range t.Items {
			if !isIdenticalCallable(alt, right.Items[i]) {
				return false
			}
		}
		return true
	case *typesys.TypeType:
		right, ok := s.(*typesys.TypeType)
		return ok && IsIdentical(t.Item, right.Item)
	case *typesys.Partial:
		// A partial type is not fully defined; the answer would be
		// indeterminate. We shouldn't get here.
		panic(errors.New(errors.CodeInternal, "identity check on transient partial type"))
	default:
		panic(errors.New(errors.CodeInternal, fmt.Sprintf("identity check on unknown type variant %T", t)))
	}
}

func isIdenticalList(a, b []typesys.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !IsIdentical(a[i], b[i]) {
			return false
		}
	}
	return true
}

func isIdenticalCallable(left, right *typesys.Callable) bool {
	if !isIdenticalOptional(left.Ret, right.Ret) || !isIdenticalList(left.ArgTypes, right.ArgTypes) {
		return false
	}
	if len(left.ArgNames) != len(right.ArgNames) || len(left.ArgKinds) != len(right.ArgKinds) {
		return false
	}
	for i := range left.ArgNames {
		if left.ArgNames[i] != right.ArgNames[i] {
			return false
		}
	}
	for i := range left.ArgKinds {
		if left.ArgKinds[i] != right.ArgKinds[i] {
			return false
		}
	}
	return left.IsTypeObj == right.IsTypeObj && left.IsEllipsisArgs == right.IsEllipsisArgs
}

func isIdenticalOptional(a, b typesys.Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return IsIdentical(a, b)
}
