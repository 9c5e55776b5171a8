package enumerate

import (
	"slices"

	"github.com/chromatree/chromatree/pkg/coloring"
)

// ExclusionSet is the monotonically growing set of solver-discovered
// complete assignments. It never holds duplicates and preserves discovery
// order.
//
// The set is owned by a single driver goroutine during enumeration; the
// accessors hand out copies, so a snapshot taken by another goroutine is
// never invalidated by later growth.
type ExclusionSet struct {
	ordered []coloring.Assignment
	keys    map[string]bool
}

// NewExclusionSet creates an empty set.
func NewExclusionSet() *ExclusionSet {
	return &ExclusionSet{keys: make(map[string]bool)}
}

// Add inserts an assignment and reports whether it was new.
func (s *ExclusionSet) Add(a coloring.Assignment) bool {
	key := a.Key()
	if s.keys[key] {
		return false
	}
	s.keys[key] = true
	s.ordered = append(s.ordered, a.Clone())
	return true
}

// Contains reports whether the assignment was already discovered.
func (s *ExclusionSet) Contains(a coloring.Assignment) bool {
	return s.keys[a.Key()]
}

// Len returns the number of discovered assignments.
func (s *ExclusionSet) Len() int { return len(s.ordered) }

// Assignments returns the discovered assignments in discovery order.
// The slice is a copy; mutating it does not affect the set.
func (s *ExclusionSet) Assignments() []coloring.Assignment {
	out := make([]coloring.Assignment, len(s.ordered))
	for i, a := range s.ordered {
		out[i] = a.Clone()
	}
	return out
}

// Keys returns the canonical-key view used for tree annotation.
// The map is a copy.
func (s *ExclusionSet) Keys() map[string]bool {
	out := make(map[string]bool, len(s.keys))
	for k := range s.keys {
		out[k] = true
	}
	return out
}

// SortedKeys returns the canonical keys in lexicographic order, for
// deterministic output.
func (s *ExclusionSet) SortedKeys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
