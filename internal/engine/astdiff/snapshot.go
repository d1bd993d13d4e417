package astdiff

import (
	"fmt"
	"sort"

	"snapdiff/internal/core/errors"
	"snapdiff/internal/engine/typesys"
)

// SnapshotType builds the snapshot of a single type. Every variant of the
// closed type set has a case; an unknown variant or a transient partial type
// is an internal invariant violation and panics.
func SnapshotType(t typesys.Type) Item {
	switch t := t.(type) {
	case *typesys.Unbound:
		return &UnboundItem{
			Name:            t.Name,
			Optional:        t.Optional,
			EmptyTupleIndex: t.EmptyTupleIndex,
			Args:            snapshotTypes(t.Args),
		}
	case *typesys.Any:
		return &SimpleItem{Tag: "Any"}
	case *typesys.None:
		return &SimpleItem{Tag: "None"}
	case *typesys.Uninhabited:
		return &SimpleItem{Tag: "Uninhabited"}
	case *typesys.Erased:
		return &SimpleItem{Tag: "Erased"}
	case *typesys.Deleted:
		return &SimpleItem{Tag: "Deleted"}
	case *typesys.Instance:
		return &InstanceItem{ClassName: t.ClassName, Args: snapshotTypes(t.Args)}
	case *typesys.TypeVar:
		return &TypeVarItem{
			Name:      t.Name,
			FullName:  t.FullName,
			ID:        t.ID,
			MetaLevel: t.MetaLevel,
			Values:    snapshotTypes(t.Values),
			Bound:     snapshotOptionalType(t.UpperBound),
			Variance:  t.Variance,
		}
	case *typesys.Callable:
		return snapshotCallable(t)
	case *typesys.Tuple:
		return &TupleItem{Items: snapshotTypes(t.Items)}
	case *typesys.TypedDict:
		fields := make([]FieldItem, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = FieldItem{Name: f.Name, Type: SnapshotType(f.Type)}
		}
		// Field order in source records is not externally observable; sort
		// by name so the diff sees a set of fields.
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		return &TypedDictItem{Fields: fields}
	case *typesys.Union:
		return snapshotUnion(t)
	case *typesys.Overloaded:
		items := make([]Item, len(t.Items))
		for i, alt := range t.Items {
			items[i] = snapshotCallable(alt)
		}
		return &OverloadedItem{Items: items}
	case *typesys.TypeType:
		return &TypeTypeItem{Item: SnapshotType(t.Item)}
	case *typesys.Partial:
		// A partial type is not fully defined; reaching one here is a bug
		// in the caller.
		panic(errors.New(errors.CodeInternal, "snapshot of transient partial type"))
	default:
		panic(errors.New(errors.CodeInternal, fmt.Sprintf("snapshot of unknown type variant %T", t)))
	}
}

func snapshotTypes(types []typesys.Type) []Item {
	items := make([]Item, len(types))
	for i, t := range types {
		items[i] = SnapshotType(t)
	}
	return items
}

func snapshotOptionalType(t typesys.Type) Item {
	if t == nil {
		return nil
	}
	return SnapshotType(t)
}

func snapshotCallable(t *typesys.Callable) *CallableItem {
	return &CallableItem{
		Args:           snapshotTypes(t.ArgTypes),
		Ret:            snapshotOptionalType(t.Ret),
		ArgNames:       append([]string(nil), t.ArgNames...),
		ArgKinds:       append([]typesys.ArgKind(nil), t.ArgKinds...),
		IsTypeObj:      t.IsTypeObj,
		IsEllipsisArgs: t.IsEllipsisArgs,
	}
}

// snapshotUnion sorts members by canonical key and drops duplicates so that
// permuted or repeated alternatives produce identical snapshots.
func snapshotUnion(t *typesys.Union) *UnionItem {
	keyed := make(map[string]Item, len(t.Items))
	keys := make([]string, 0, len(t.Items))
	for _, member := range t.Items {
		it := SnapshotType(member)
		k := Key(it)
		if _, seen := keyed[k]; seen {
			continue
		}
		keyed[k] = it
		keys = append(keys, k)
	}
	sort.Strings(keys)
	items := make([]Item, len(keys))
	for i, k := range keys {
		items[i] = keyed[k]
	}
	return &UnionItem{Items: items}
}
