// Package timings aggregates self and total time for a call node and its
// function across a whole sample set, broken down by JS execution tier and
// by category.
package timings

import (
	"math"

	"github.com/stacklens/stacklens/internal/callnode"
	"github.com/stacklens/stacklens/internal/trace"
)

type (
	// CategoryBreakdown accumulates time for one category and each of its
	// subcategories.
	CategoryBreakdown struct {
		EntireCategoryValue  float64   `json:"entireCategoryValue"`
		SubcategoryBreakdown []float64 `json:"subcategoryBreakdown"`
	}

	// Timing is one accumulated duration plus its breakdowns. Both breakdown
	// containers stay nil until the first contribution so that unused
	// breakdowns cost nothing.
	Timing struct {
		Value                     float64             `json:"value"`
		BreakdownByImplementation map[string]float64  `json:"breakdownByImplementation,omitempty"`
		BreakdownByCategory       []CategoryBreakdown `json:"breakdownByCategory,omitempty"`
	}

	// ItemTimings carries the self and total timings of one tree item.
	ItemTimings struct {
		SelfTime  Timing `json:"selfTime"`
		TotalTime Timing `json:"totalTime"`
	}

	// PathTimings is the full aggregate for a selected call node: timings
	// for the exact path, timings for every node sharing the path's leaf
	// function, and the whole tree's root time.
	PathTimings struct {
		ForPath  ItemTimings `json:"forPath"`
		ForFunc  ItemTimings `json:"forFunc"`
		RootTime float64     `json:"rootTime"`
	}
)

func (t *Timing) add(value float64, implementation string, category, subcategory int, categories trace.CategoryList) {
	t.Value += value
	if t.BreakdownByImplementation == nil {
		t.BreakdownByImplementation = make(map[string]float64)
	}
	t.BreakdownByImplementation[implementation] += value
	if category == trace.None {
		return
	}
	if t.BreakdownByCategory == nil {
		t.BreakdownByCategory = make([]CategoryBreakdown, len(categories))
		for i := range categories {
			t.BreakdownByCategory[i].SubcategoryBreakdown = make([]float64, len(categories[i].Subcategories))
		}
	}
	t.BreakdownByCategory[category].EntireCategoryValue += value
	t.BreakdownByCategory[category].SubcategoryBreakdown[subcategory] += value
}

// ForCallNode computes the timings of one call node (or of nothing, for
// trace.None) over every sample of the filtered thread.
//
// Self time lands on the sample's leaf call node, or on the root-most
// ancestor when the tree is inverted, since inversion turns leaves into
// roots. Total time lands on the node if it appears anywhere on the sample's
// ancestor chain, and on the function if any chain node shares it; the chain
// walk exits as soon as both have matched, except on inverted trees where it
// must reach the root anyway.
//
// Breakdowns are resolved against the unfiltered thread, because range or
// search filtering can strip the stacks that carry implementation and
// category context; sampleOffset realigns filtered sample indices into the
// unfiltered tables.
func ForCallNode(
	needle int,
	info *callnode.Info,
	inverted bool,
	unfilteredThread *trace.Thread,
	sampleOffset int,
	categories trace.CategoryList,
	samples, unfilteredSamples *trace.SamplesTable,
) PathTimings {
	var timings PathTimings
	if needle == trace.None {
		return timings
	}
	table := &info.Table
	needleFunc := table.Func[needle]

	for i := 0; i < samples.Length; i++ {
		stackIndex := samples.Stack[i]
		if stackIndex == trace.None {
			continue
		}
		weight := math.Abs(samples.WeightAt(i))
		timings.RootTime += weight

		implementation := "native"
		category, subcategory := trace.None, trace.None
		if unfilteredStack := unfilteredSamples.Stack[i+sampleOffset]; unfilteredStack != trace.None {
			implementation = implementationForStack(unfilteredStack, unfilteredThread)
			category = unfilteredThread.Stacks.Category[unfilteredStack]
			subcategory = unfilteredThread.Stacks.Subcategory[unfilteredStack]
		}

		leafNode := info.StackToNode[stackIndex]
		if !inverted {
			if leafNode == needle {
				timings.ForPath.SelfTime.add(weight, implementation, category, subcategory, categories)
			}
			if table.Func[leafNode] == needleFunc {
				timings.ForFunc.SelfTime.add(weight, implementation, category, subcategory, categories)
			}
		}

		pathMatched, funcMatched := false, false
		walk := table.Ancestors(leafNode)
		for node, ok := walk.Next(); ok; node, ok = walk.Next() {
			if !pathMatched && node == needle {
				timings.ForPath.TotalTime.add(weight, implementation, category, subcategory, categories)
				pathMatched = true
			}
			if !funcMatched && table.Func[node] == needleFunc {
				timings.ForFunc.TotalTime.add(weight, implementation, category, subcategory, categories)
				funcMatched = true
			}
			if inverted && table.Prefix[node] == trace.None {
				// The root-most ancestor of an inverted walk is the original
				// sample leaf, so self time lands here.
				if node == needle {
					timings.ForPath.SelfTime.add(weight, implementation, category, subcategory, categories)
				}
				if table.Func[node] == needleFunc {
					timings.ForFunc.SelfTime.add(weight, implementation, category, subcategory, categories)
				}
			}
			if !inverted && pathMatched && funcMatched {
				break
			}
		}
	}
	return timings
}

// implementationForStack names the JS execution tier of a sample by walking
// its stack toward the root until a JS frame is found. A JS frame with no
// recorded tier ran in the interpreter; a stack with no JS frame at all is
// native.
func implementationForStack(stackIndex int, thread *trace.Thread) string {
	for s := stackIndex; s != trace.None; s = thread.Stacks.Prefix[s] {
		frameIndex := thread.Stacks.Frame[s]
		funcIndex := thread.Frames.Func[frameIndex]
		if !thread.Funcs.IsJS[funcIndex] {
			continue
		}
		if implementation := thread.Frames.Implementation[frameIndex]; implementation != "" {
			return implementation
		}
		return "interpreter"
	}
	return "native"
}
