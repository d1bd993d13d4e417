package astdiff

import "sort"

// TriggerSet is an unordered set of fully qualified names whose snapshot
// changed between two generations.
type TriggerSet map[string]struct{}

func (s TriggerSet) Add(name string) {
	s[name] = struct{}{}
}

func (s TriggerSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s TriggerSet) Union(other TriggerSet) {
	for name := range other {
		s[name] = struct{}{}
	}
}

// Sorted returns the trigger names in lexical order, for reporting.
func (s TriggerSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Diff returns the fully qualified names that differ between two snapshots
// of the same scope. A name present in only one generation is always a
// trigger. For classes the header fields and the member scope are diffed
// independently: the nested scope is recursed into even when the header is
// unchanged, since that is the only way member-level additions inside an
// otherwise untouched class are caught.
func Diff(prefix string, snapshot1, snapshot2 ScopeSnapshot) TriggerSet {
	triggers := make(TriggerSet)
	for name := range snapshot1 {
		if _, ok := snapshot2[name]; !ok {
			triggers.Add(prefix + "." + name)
		}
	}
	for name := range snapshot2 {
		if _, ok := snapshot1[name]; !ok {
			triggers.Add(prefix + "." + name)
		}
	}

	for name, entry1 := range snapshot1 {
		entry2, ok := snapshot2[name]
		if !ok {
			continue
		}
		qualified := prefix + "." + name
		if entry1.Tag() != entry2.Tag() {
			// Different kind of entry in the two generations.
			triggers.Add(qualified)
			continue
		}
		if entry1.Tag() == "class" {
			if entry1.ShallowKey() != entry2.ShallowKey() {
				triggers.Add(qualified)
			}
			triggers.Union(Diff(qualified, entry1.Nested(), entry2.Nested()))
			continue
		}
		if entry1.ShallowKey() != entry2.ShallowKey() {
			triggers.Add(qualified)
		}
	}
	return triggers
}
