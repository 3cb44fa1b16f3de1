package spreadsheet

import (
	"fmt"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertConsistent checks that both directions of the graph describe the
// same pairs and that no empty sets are kept
func assertConsistent(t *testing.T, dg *DependencyGraph) {
	t.Helper()
	pairs := 0
	for s, dependents := range dg.dependents {
		require.NotEmpty(t, dependents, "empty dependents set kept for %s", s)
		for d := range dependents {
			_, ok := dg.dependees[d][s]
			require.True(t, ok, "(%s, %s) missing from dependees", s, d)
			pairs++
		}
	}
	for s, dependees := range dg.dependees {
		require.NotEmpty(t, dependees, "empty dependees set kept for %s", s)
		for d := range dependees {
			_, ok := dg.dependents[d][s]
			require.True(t, ok, "(%s, %s) missing from dependents", d, s)
		}
	}
	require.Equal(t, pairs, dg.Size())
}

func TestGraphEmpty(t *testing.T) {
	dg := NewDependencyGraph()
	assert.Equal(t, 0, dg.Size())
	assert.Empty(t, dg.Dependents("a"))
	assert.Empty(t, dg.Dependees("a"))
	assert.False(t, dg.HasDependents("a"))
	assert.False(t, dg.HasDependees("a"))
	assert.Equal(t, 0, dg.DependeeCount("a"))

	dg.RemoveDependency("a", "b")
	assert.Equal(t, 0, dg.Size())
	assertConsistent(t, dg)
}

func TestGraphAddAndRemove(t *testing.T) {
	dg := NewDependencyGraph()
	dg.AddDependency("a", "b")
	dg.AddDependency("a", "c")
	dg.AddDependency("b", "c")
	dg.AddDependency("a", "b") // duplicate

	assert.Equal(t, 3, dg.Size())
	assert.Equal(t, []string{"b", "c"}, dg.Dependents("a"))
	assert.Equal(t, []string{"a", "b"}, dg.Dependees("c"))
	assert.Equal(t, 2, dg.DependeeCount("c"))
	assert.True(t, dg.HasDependents("b"))
	assert.True(t, dg.HasDependees("b"))
	assert.False(t, dg.HasDependees("a"))
	assertConsistent(t, dg)

	dg.RemoveDependency("a", "c")
	dg.RemoveDependency("a", "z") // absent
	assert.Equal(t, 2, dg.Size())
	assert.Equal(t, []string{"b"}, dg.Dependees("c"))
	assertConsistent(t, dg)

	dg.RemoveDependency("a", "b")
	dg.RemoveDependency("b", "c")
	assert.Equal(t, 0, dg.Size())
	assert.Empty(t, dg.dependents)
	assert.Empty(t, dg.dependees)
}

func TestGraphSnapshotsAreCopies(t *testing.T) {
	dg := NewDependencyGraph()
	dg.AddDependency("a", "b")
	snapshot := dg.Dependents("a")
	snapshot[0] = "mutated"
	dg.AddDependency("a", "c")

	assert.Equal(t, []string{"mutated"}, snapshot)
	assert.Equal(t, []string{"b", "c"}, dg.Dependents("a"))
}

func TestGraphReplaceDependees(t *testing.T) {
	dg := NewDependencyGraph()
	dg.AddDependency("x", "t")
	dg.AddDependency("y", "t")
	dg.AddDependency("y", "u")

	dg.ReplaceDependees("t", []string{"y", "z"})
	assert.Equal(t, []string{"y", "z"}, dg.Dependees("t"))
	assert.Empty(t, dg.Dependents("x"))
	assert.Equal(t, []string{"t", "u"}, dg.Dependents("y"))
	assert.Equal(t, 3, dg.Size())
	assertConsistent(t, dg)

	dg.ReplaceDependees("t", nil)
	assert.False(t, dg.HasDependees("t"))
	assert.Equal(t, 1, dg.Size())
	assertConsistent(t, dg)
}

func TestGraphReplaceDependents(t *testing.T) {
	dg := NewDependencyGraph()
	dg.AddDependency("s", "a")
	dg.AddDependency("s", "b")
	dg.AddDependency("q", "a")

	dg.ReplaceDependents("s", []string{"b", "c", "c"})
	assert.Equal(t, []string{"b", "c"}, dg.Dependents("s"))
	assert.Equal(t, []string{"q"}, dg.Dependees("a"))
	assert.Equal(t, 3, dg.Size())
	assertConsistent(t, dg)
}

func TestGraphStress(t *testing.T) {
	dg := NewDependencyGraph()
	const n = 200
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("n%d", i)
	}

	// add (i, j) for every i < j, then remove every pair where j-i is odd
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dg.AddDependency(names[i], names[j])
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j += 2 {
			dg.RemoveDependency(names[i], names[j])
		}
	}
	assertConsistent(t, dg)

	for i := 0; i < n; i++ {
		var want []string
		for j := i + 2; j < n; j += 2 {
			want = append(want, names[j])
		}
		got := dg.Dependents(names[i])
		if len(want) == 0 {
			assert.Empty(t, got)
			continue
		}
		sort.Strings(want)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Dependents(%s) mismatch (-want +got):\n%s", names[i], diff)
		}
	}
}
