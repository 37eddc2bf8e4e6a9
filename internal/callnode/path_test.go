package callnode

import (
	"errors"
	"testing"

	"github.com/stacklens/stacklens/internal/errorutil"
	"github.com/stacklens/stacklens/internal/testutil"
	"github.com/stacklens/stacklens/internal/trace"
)

// testTable builds the call-node tree for:
//
//	A -> B -> C
//	A -> D
//	E
func testTable(t *testing.T) Table {
	t.Helper()
	stacks := newStacks(
		[]int{trace.None, 0, 1, 0, trace.None},
		[]int{0, 1, 2, 3, 4},
	)
	frames := newFrames(5)
	return Build(&stacks, &frames, defaultCategory).Table
}

func TestPathRoundTrip(t *testing.T) {
	table := testTable(t)
	for node := 0; node < table.Length; node++ {
		path := PathForIndex(node, &table)
		resolved, err := IndexForPath(path, &table)
		if err != nil {
			t.Fatalf("node %d: unexpected error: %v", node, err)
		}
		if resolved != node {
			t.Errorf("node %d round-tripped to %d via path %v", node, resolved, path)
		}
	}
}

func TestPathForIndex(t *testing.T) {
	table := testTable(t)
	if diff := testutil.Diff(Path{0, 1, 2}, PathForIndex(2, &table)); diff != "" {
		t.Fatalf("path mismatch: %v", diff)
	}
}

func TestIndexForPathMissing(t *testing.T) {
	table := testTable(t)
	// D (func 3) has no child C (func 2) in this tree: a stale path.
	node, err := IndexForPath(Path{0, 3, 2}, &table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node != trace.None {
		t.Fatalf("got node %d, want none", node)
	}
}

func TestIndexForPathEmpty(t *testing.T) {
	table := testTable(t)
	_, err := IndexForPath(Path{}, &table)
	if !errors.Is(err, errorutil.ErrDataIntegrity) {
		t.Fatalf("got %v, want a data integrity error", err)
	}
}

func TestPathResolverMatchesUncached(t *testing.T) {
	table := testTable(t)
	resolver := NewPathResolver(&table)

	paths := []Path{
		{0, 1, 2},
		{0, 1},
		{0, 3},
		{4},
		{0, 1, 2}, // repeated, served from the cache
		{0, 3, 2}, // missing
		{9},       // missing
	}
	for _, path := range paths {
		want, err := IndexForPath(path, &table)
		if err != nil {
			t.Fatalf("path %v: unexpected error: %v", path, err)
		}
		got, err := resolver.IndexForPath(path)
		if err != nil {
			t.Fatalf("path %v: unexpected error: %v", path, err)
		}
		if got != want {
			t.Errorf("path %v: resolver found %d, plain resolution found %d", path, got, want)
		}
	}
}

func TestCompareTreeOrder(t *testing.T) {
	table := testTable(t)
	// Indices: 0=A 1=B 2=C 3=D 4=E. Tree order: A, B, C, D, E.
	ordered := []int{0, 1, 2, 3, 4}
	for i, a := range ordered {
		for j, b := range ordered {
			got := table.CompareTreeOrder(a, b)
			switch {
			case i < j && got >= 0:
				t.Errorf("cmp(%d, %d) = %d, want negative", a, b, got)
			case i > j && got <= 0:
				t.Errorf("cmp(%d, %d) = %d, want positive", a, b, got)
			case i == j && got != 0:
				t.Errorf("cmp(%d, %d) = %d, want 0", a, b, got)
			}
		}
	}
}

func TestCompareTreeOrderNulls(t *testing.T) {
	table := testTable(t)
	if got := table.CompareTreeOrder(trace.None, 0); got <= 0 {
		t.Errorf("none should sort after node 0, got %d", got)
	}
	if got := table.CompareTreeOrder(4, trace.None); got >= 0 {
		t.Errorf("node 4 should sort before none, got %d", got)
	}
	if got := table.CompareTreeOrder(trace.None, trace.None); got != 0 {
		t.Errorf("two nones should be equal, got %d", got)
	}
}
