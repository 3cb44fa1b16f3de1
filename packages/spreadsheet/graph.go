package spreadsheet

import (
	"sort"
)

type nameSet map[string]struct{}

// sorted returns the members of the set in ascending order
func (ns nameSet) sorted() []string {
	result := make([]string, 0, len(ns))
	for name := range ns {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// DependencyGraph holds ordered pairs (s, t) meaning "t depends on s". s is
// a dependee of t and t is a dependent of s. both directions are indexed and
// a name is only present as a key while it has at least one pair in that
// direction.
type DependencyGraph struct {
	dependents map[string]nameSet // s -> every t that depends on s
	dependees  map[string]nameSet // t -> every s that t depends on
	size       int
}

// NewDependencyGraph creates a new empty dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		dependents: make(map[string]nameSet),
		dependees:  make(map[string]nameSet),
	}
}

// Size returns the number of ordered pairs in the graph
func (dg *DependencyGraph) Size() int {
	return dg.size
}

// DependeeCount returns the number of dependees of s
func (dg *DependencyGraph) DependeeCount(s string) int {
	return len(dg.dependees[s])
}

// HasDependents reports whether anything depends on s
func (dg *DependencyGraph) HasDependents(s string) bool {
	return len(dg.dependents[s]) > 0
}

// HasDependees reports whether s depends on anything
func (dg *DependencyGraph) HasDependees(s string) bool {
	return len(dg.dependees[s]) > 0
}

// Dependents returns a sorted snapshot of everything that depends on s
func (dg *DependencyGraph) Dependents(s string) []string {
	return dg.dependents[s].sorted()
}

// Dependees returns a sorted snapshot of everything s depends on
func (dg *DependencyGraph) Dependees(s string) []string {
	return dg.dependees[s].sorted()
}

// forEachDependent calls fn for each dependent of s in sorted order
func (dg *DependencyGraph) forEachDependent(s string, fn func(t string)) {
	set := dg.dependents[s]
	if len(set) == 0 {
		return
	}
	for _, t := range set.sorted() {
		fn(t)
	}
}

// AddDependency adds the pair (s, t), t depends on s. adding an existing
// pair is a no-op.
func (dg *DependencyGraph) AddDependency(s, t string) {
	if _, exists := dg.dependents[s][t]; exists {
		return
	}
	if dg.dependents[s] == nil {
		dg.dependents[s] = make(nameSet)
	}
	if dg.dependees[t] == nil {
		dg.dependees[t] = make(nameSet)
	}
	dg.dependents[s][t] = struct{}{}
	dg.dependees[t][s] = struct{}{}
	dg.size++
}

// RemoveDependency removes the pair (s, t) if present
func (dg *DependencyGraph) RemoveDependency(s, t string) {
	if _, exists := dg.dependents[s][t]; !exists {
		return
	}
	delete(dg.dependents[s], t)
	delete(dg.dependees[t], s)
	dg.size--
	dg.cleanupNodeIfEmpty(s)
	dg.cleanupNodeIfEmpty(t)
}

// cleanupNodeIfEmpty drops empty sets so keys only exist for names with
// pairs in that direction
func (dg *DependencyGraph) cleanupNodeIfEmpty(name string) {
	if set, exists := dg.dependents[name]; exists && len(set) == 0 {
		delete(dg.dependents, name)
	}
	if set, exists := dg.dependees[name]; exists && len(set) == 0 {
		delete(dg.dependees, name)
	}
}

// ReplaceDependents removes every pair (s, r) and adds (s, t) for each t in
// newDependents
func (dg *DependencyGraph) ReplaceDependents(s string, newDependents []string) {
	for _, r := range dg.Dependents(s) {
		dg.RemoveDependency(s, r)
	}
	for _, t := range newDependents {
		dg.AddDependency(s, t)
	}
}

// ReplaceDependees removes every pair (r, s) and adds (t, s) for each t in
// newDependees
func (dg *DependencyGraph) ReplaceDependees(s string, newDependees []string) {
	for _, r := range dg.Dependees(s) {
		dg.RemoveDependency(r, s)
	}
	for _, t := range newDependees {
		dg.AddDependency(t, s)
	}
}
