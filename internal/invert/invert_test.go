package invert

import (
	"sort"
	"testing"

	"github.com/stacklens/stacklens/internal/testutil"
	"github.com/stacklens/stacklens/internal/trace"
)

const defaultCategory = 0

func newThread(prefixes, frames []int, sampleStacks []int) trace.Thread {
	frameCount := 0
	for _, f := range frames {
		if f >= frameCount {
			frameCount = f + 1
		}
	}
	thread := trace.Thread{
		Stacks: trace.StackTable{
			Prefix:      prefixes,
			Frame:       frames,
			Category:    make([]int, len(prefixes)),
			Subcategory: make([]int, len(prefixes)),
			Length:      len(prefixes),
		},
	}
	for i := 0; i < frameCount; i++ {
		thread.Frames.Func = append(thread.Frames.Func, i)
		thread.Frames.InnerWindowID = append(thread.Frames.InnerWindowID, 0)
		thread.Frames.Implementation = append(thread.Frames.Implementation, "")
	}
	thread.Frames.Length = frameCount
	for i, stack := range sampleStacks {
		thread.Samples.Time = append(thread.Samples.Time, float64(i))
		thread.Samples.Stack = append(thread.Samples.Stack, stack)
	}
	thread.Samples.Length = len(sampleStacks)
	return thread
}

// samplePaths returns, per sample, the frame indices from root to leaf.
func samplePaths(thread trace.Thread) [][]int {
	paths := make([][]int, thread.Samples.Length)
	for i := 0; i < thread.Samples.Length; i++ {
		var path []int
		for s := thread.Samples.Stack[i]; s != trace.None; s = thread.Stacks.Prefix[s] {
			path = append(path, thread.Stacks.Frame[s])
		}
		for a, b := 0, len(path)-1; a < b; a, b = a+1, b-1 {
			path[a], path[b] = path[b], path[a]
		}
		paths[i] = path
	}
	return paths
}

func TestCallTreeSwapsRootAndLeaf(t *testing.T) {
	// A -> B -> C sampled at C.
	thread := newThread(
		[]int{trace.None, 0, 1},
		[]int{0, 1, 2},
		[]int{2},
	)
	inverted := CallTree(thread, defaultCategory)

	got := samplePaths(inverted)
	if diff := testutil.Diff([][]int{{2, 1, 0}}, got); diff != "" {
		t.Fatalf("inverted sample path mismatch: %v", diff)
	}
}

func TestCallTreeGroupsByLeaf(t *testing.T) {
	// A -> C and B -> C: both sampled leaves are C, so the inverted tree
	// has a single root carrying C's frame shared by both samples.
	thread := newThread(
		[]int{trace.None, 0, trace.None, 2},
		[]int{0, 2, 1, 2},
		[]int{1, 3},
	)
	inverted := CallTree(thread, defaultCategory)

	root0 := rootOf(&inverted.Stacks, inverted.Samples.Stack[0])
	root1 := rootOf(&inverted.Stacks, inverted.Samples.Stack[1])
	if root0 != root1 {
		t.Fatalf("samples should share an inverted root, got %d and %d", root0, root1)
	}
	if frame := inverted.Stacks.Frame[root0]; frame != 2 {
		t.Fatalf("inverted root carries frame %d, want 2", frame)
	}
}

func TestCallTreeCategoryConflict(t *testing.T) {
	// The same leaf frame under two categories: the shared inverted root
	// falls back to the default category.
	thread := newThread(
		[]int{trace.None, 0, trace.None, 2},
		[]int{0, 2, 1, 2},
		[]int{1, 3},
	)
	thread.Stacks.Category = []int{1, 1, 3, 3}
	inverted := CallTree(thread, defaultCategory)

	root := rootOf(&inverted.Stacks, inverted.Samples.Stack[0])
	if got := inverted.Stacks.Category[root]; got != defaultCategory {
		t.Fatalf("conflicting categories should downgrade to %d, got %d", defaultCategory, got)
	}
}

func TestCallTreeTwiceKeepsPaths(t *testing.T) {
	thread := newThread(
		[]int{trace.None, 0, 1, 0, trace.None},
		[]int{0, 1, 2, 2, 1},
		[]int{2, 3, 4, 0},
	)
	twice := CallTree(CallTree(thread, defaultCategory), defaultCategory)

	want := samplePaths(thread)
	got := samplePaths(twice)
	sortPaths(want)
	sortPaths(got)
	if diff := testutil.Diff(want, got); diff != "" {
		t.Fatalf("double inversion changed the sample paths: %v", diff)
	}
}

func rootOf(stacks *trace.StackTable, stack int) int {
	for stacks.Prefix[stack] != trace.None {
		stack = stacks.Prefix[stack]
	}
	return stack
}

func sortPaths(paths [][]int) {
	sort.Slice(paths, func(i, j int) bool {
		a, b := paths[i], paths[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
}
