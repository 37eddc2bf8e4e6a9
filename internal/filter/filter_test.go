package filter

import (
	"testing"

	"github.com/stacklens/stacklens/internal/testutil"
	"github.com/stacklens/stacklens/internal/trace"
)

type funcSpec struct {
	name          string
	fileName      string
	isJS          bool
	relevantForJS bool
}

// newThread builds a thread with one frame per function and the given stack
// tree, each stack's frame picked by its position in funcs order via the
// frames argument.
func newThread(funcs []funcSpec, prefixes, frames, sampleStacks []int) trace.Thread {
	var thread trace.Thread
	for _, f := range funcs {
		thread.Funcs.Name = append(thread.Funcs.Name, f.name)
		thread.Funcs.FileName = append(thread.Funcs.FileName, f.fileName)
		thread.Funcs.LineNumber = append(thread.Funcs.LineNumber, trace.None)
		thread.Funcs.ColumnNumber = append(thread.Funcs.ColumnNumber, trace.None)
		thread.Funcs.Resource = append(thread.Funcs.Resource, trace.None)
		thread.Funcs.IsJS = append(thread.Funcs.IsJS, f.isJS)
		thread.Funcs.RelevantForJS = append(thread.Funcs.RelevantForJS, f.relevantForJS)
		thread.Frames.Func = append(thread.Frames.Func, thread.Funcs.Length)
		thread.Frames.InnerWindowID = append(thread.Frames.InnerWindowID, 0)
		thread.Frames.Implementation = append(thread.Frames.Implementation, "")
		thread.Funcs.Length++
		thread.Frames.Length++
	}
	thread.Stacks = trace.StackTable{
		Prefix:      prefixes,
		Frame:       frames,
		Category:    make([]int, len(prefixes)),
		Subcategory: make([]int, len(prefixes)),
		Length:      len(prefixes),
	}
	for i, stack := range sampleStacks {
		thread.Samples.Time = append(thread.Samples.Time, float64(i))
		thread.Samples.Stack = append(thread.Samples.Stack, stack)
	}
	thread.Samples.Length = len(sampleStacks)
	return thread
}

func TestByImplementationSplicesFrames(t *testing.T) {
	// native -> js -> native: filtering to cpp must reattach the leaf to
	// the root instead of dropping the subtree.
	thread := newThread(
		[]funcSpec{
			{name: "main"},
			{name: "onClick", isJS: true},
			{name: "paint"},
		},
		[]int{trace.None, 0, 1},
		[]int{0, 1, 2},
		[]int{2},
	)
	filtered := ByImplementation(thread, ImplementationCpp)

	leaf := filtered.Samples.Stack[0]
	if leaf == trace.None {
		t.Fatal("sample lost its stack entirely")
	}
	var frames []int
	for s := leaf; s != trace.None; s = filtered.Stacks.Prefix[s] {
		frames = append(frames, filtered.Stacks.Frame[s])
	}
	if diff := testutil.Diff([]int{2, 0}, frames); diff != "" {
		t.Fatalf("spliced chain mismatch: %v", diff)
	}
}

func TestByImplementationJS(t *testing.T) {
	thread := newThread(
		[]funcSpec{
			{name: "main"},
			{name: "onClick", isJS: true},
			{name: "Element.addEventListener", relevantForJS: true},
		},
		[]int{trace.None, 0, 1},
		[]int{0, 1, 2},
		[]int{2},
	)
	filtered := ByImplementation(thread, ImplementationJS)

	var frames []int
	for s := filtered.Samples.Stack[0]; s != trace.None; s = filtered.Stacks.Prefix[s] {
		frames = append(frames, filtered.Stacks.Frame[s])
	}
	if diff := testutil.Diff([]int{2, 1}, frames); diff != "" {
		t.Fatalf("js view mismatch: %v", diff)
	}
}

func TestByImplementationJITFrames(t *testing.T) {
	// A synthesized 0x name with no resource is JIT-generated code and not
	// part of the cpp view.
	thread := newThread(
		[]funcSpec{
			{name: "main"},
			{name: "0x7f3a91b2"},
		},
		[]int{trace.None, 0},
		[]int{0, 1},
		[]int{1},
	)
	filtered := ByImplementation(thread, ImplementationCpp)

	leaf := filtered.Samples.Stack[0]
	if frame := filtered.Stacks.Frame[leaf]; frame != 0 {
		t.Fatalf("leaf frame: got %d, want 0", frame)
	}
}

func TestBySearchString(t *testing.T) {
	thread := newThread(
		[]funcSpec{
			{name: "main"},
			{name: "renderFrame", fileName: "gfx/render.cpp"},
			{name: "idle"},
		},
		[]int{trace.None, 0, trace.None},
		[]int{0, 1, 2},
		[]int{1, 2, 0},
	)

	tests := []struct {
		name   string
		search string
		want   []int
	}{
		{
			name:   "function name match",
			search: "RENDER",
			want:   []int{1, trace.None, trace.None},
		},
		{
			name:   "ancestor match keeps the whole chain",
			search: "main",
			want:   []int{1, trace.None, 0},
		},
		{
			name:   "file name match",
			search: "gfx/",
			want:   []int{1, trace.None, trace.None},
		},
		{
			name:   "no match nulls every sample",
			search: "nosuchthing",
			want:   []int{trace.None, trace.None, trace.None},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := BySearchString(thread, tt.search)
			if diff := testutil.Diff(tt.want, filtered.Samples.Stack); diff != "" {
				t.Fatalf("sample stacks mismatch: %v", diff)
			}
		})
	}
}

func TestBySearchStringIdempotent(t *testing.T) {
	thread := newThread(
		[]funcSpec{
			{name: "main"},
			{name: "renderFrame"},
		},
		[]int{trace.None, 0},
		[]int{0, 1},
		[]int{1, 0},
	)
	once := BySearchString(thread, "render")
	twice := BySearchString(once, "render")
	if diff := testutil.Diff(once, twice); diff != "" {
		t.Fatalf("second application changed the thread: %v", diff)
	}
}

func TestBySearchStringsIsLogicalAnd(t *testing.T) {
	thread := newThread(
		[]funcSpec{
			{name: "main"},
			{name: "renderFrame"},
			{name: "parseStyle"},
		},
		[]int{trace.None, 0, 0},
		[]int{0, 1, 2},
		[]int{1, 2},
	)
	a := BySearchStrings(thread, []string{"main", "render"})
	b := BySearchStrings(thread, []string{"render", "main"})
	if diff := testutil.Diff(a, b); diff != "" {
		t.Fatalf("search string order changed the result: %v", diff)
	}
	if diff := testutil.Diff([]int{1, trace.None}, a.Samples.Stack); diff != "" {
		t.Fatalf("intersection mismatch: %v", diff)
	}
}

func TestByTab(t *testing.T) {
	thread := newThread(
		[]funcSpec{
			{name: "main"},
			{name: "onLoad"},
			{name: "helper"},
		},
		[]int{trace.None, 0, 1},
		[]int{0, 1, 2},
		[]int{2, 0},
	)
	// Only the middle frame belongs to the relevant tab; its descendant
	// survives by propagation, the root alone does not.
	thread.Frames.InnerWindowID[1] = 7

	filtered := ByTab(thread, map[uint64]struct{}{7: {}})
	if diff := testutil.Diff([]int{2, trace.None}, filtered.Samples.Stack); diff != "" {
		t.Fatalf("tab filtering mismatch: %v", diff)
	}
}

func TestByRangeHalfOpen(t *testing.T) {
	thread := newThread(
		[]funcSpec{{name: "main"}},
		[]int{trace.None},
		[]int{0},
		[]int{0, 0, 0, 0},
	)
	thread.Samples.Time = []float64{0, 5, 10, 15}

	filtered := ByRange(thread, 5, 15)
	if diff := testutil.Diff([]float64{5, 10}, filtered.Samples.Time); diff != "" {
		t.Fatalf("range samples mismatch: %v", diff)
	}
}

func TestByRangeSlicesAllocations(t *testing.T) {
	thread := newThread(
		[]funcSpec{{name: "main"}},
		[]int{trace.None},
		[]int{0},
		[]int{0, 0, 0},
	)
	thread.Samples.Time = []float64{0, 10, 20}
	thread.NativeAllocations = &trace.NativeAllocationsTable{
		Time:   []float64{1, 11, 21},
		Stack:  []int{0, 0, 0},
		Weight: []float64{8, 16, 24},
		Length: 3,
	}

	filtered := ByRange(thread, 10, 21)
	if diff := testutil.Diff([]float64{16}, filtered.NativeAllocations.Weight); diff != "" {
		t.Fatalf("allocation slice mismatch: %v", diff)
	}
}

func TestCounterByRange(t *testing.T) {
	counter := trace.Counter{
		Name: "malloc",
		Samples: trace.CounterSamplesTable{
			Time:   []float64{0, 5, 10, 15, 20},
			Count:  []float64{3, 1, 4, 1, 5},
			Number: []uint64{3, 4, 8, 9, 14},
			Length: 5,
		},
	}

	t.Run("keeps one reading outside each bound", func(t *testing.T) {
		got := CounterByRange(counter, 10, 15)
		if diff := testutil.Diff([]float64{5, 10, 15}, got.Samples.Time); diff != "" {
			t.Fatalf("retained window mismatch: %v", diff)
		}
		if got.Samples.Count[0] != 1 {
			t.Errorf("count[0]: got %v, want 1", got.Samples.Count[0])
		}
	})

	t.Run("zeroes the unreliable first reading", func(t *testing.T) {
		got := CounterByRange(counter, 0, 15)
		if got.Samples.Count[0] != 0 || got.Samples.Number[0] != 0 {
			t.Errorf("first reading should be zeroed, got count %v number %d",
				got.Samples.Count[0], got.Samples.Number[0])
		}
		if got.Samples.Count[1] != 1 {
			t.Errorf("count[1]: got %v, want 1", got.Samples.Count[1])
		}
	})
}
