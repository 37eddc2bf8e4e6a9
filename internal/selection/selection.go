// Package selection classifies samples relative to a selected call node and
// orders samples by the call tree's total order.
package selection

import (
	"github.com/stacklens/stacklens/internal/callnode"
	"github.com/stacklens/stacklens/internal/trace"
)

// State is the selection state of one sample.
type State uint8

const (
	// StateFilteredOutByTransform marks samples whose stack was removed by a
	// transform filter.
	StateFilteredOutByTransform State = iota
	// StateFilteredOutByTab marks samples not relevant to the active tab.
	StateFilteredOutByTab
	// StateSelected marks samples inside the selected node's subtree.
	StateSelected
	// StateBeforeSelected marks unselected samples ordering before the
	// selected node in tree order.
	StateBeforeSelected
	// StateAfterSelected marks unselected samples ordering after it.
	StateAfterSelected
)

// States classifies every sample against the selected call node.
// sampleCallNodes holds each sample's call node after transform filtering,
// tabFilteredCallNodes the same after tab filtering. With no selection
// (trace.None), every sample that survived filtering is selected, so nothing
// is dimmed.
func States(table *callnode.Table, selected int, sampleCallNodes, tabFilteredCallNodes []int) []State {
	states := make([]State, len(sampleCallNodes))

	// The selected node's ancestor chain, indexed by depth. Precomputed once
	// so each sample only walks its own chain.
	var selectedChain []int
	selectedDepth := 0
	if selected != trace.None {
		selectedDepth = table.Depth[selected]
		selectedChain = make([]int, selectedDepth+1)
		walk := table.Ancestors(selected)
		for node, ok := walk.Next(); ok; node, ok = walk.Next() {
			selectedChain[table.Depth[node]] = node
		}
	}

	for i, node := range sampleCallNodes {
		switch {
		case node == trace.None:
			states[i] = StateFilteredOutByTransform
		case tabFilteredCallNodes != nil && tabFilteredCallNodes[i] == trace.None:
			states[i] = StateFilteredOutByTab
		case selected == trace.None:
			states[i] = StateSelected
		default:
			states[i] = classify(table, node, selected, selectedDepth, selectedChain)
		}
	}
	return states
}

func classify(table *callnode.Table, node, selected, selectedDepth int, selectedChain []int) State {
	nodeDepth := table.Depth[node]

	// Align the sample's node with the selected chain at the shallower of
	// the two depths.
	depth := nodeDepth
	cur := node
	for depth > selectedDepth {
		cur = table.Prefix[cur]
		depth--
	}
	if cur == selectedChain[depth] {
		if nodeDepth >= selectedDepth {
			// The sample's node is the selected node or one of its
			// descendants.
			return StateSelected
		}
		// A proper ancestor orders before its descendants.
		return StateBeforeSelected
	}

	// Walk up to the lowest common ancestor, then order by the two children
	// visited last. Sibling index order is tree order.
	for depth > 0 && table.Prefix[cur] != selectedChain[depth-1] {
		cur = table.Prefix[cur]
		depth--
	}
	if cur < selectedChain[depth] {
		return StateBeforeSelected
	}
	return StateAfterSelected
}

// SampleComparator returns a comparison over sample indices following the
// tree order of their call nodes: a strict weak ordering where samples with
// no call node sort after all others.
func SampleComparator(table *callnode.Table, sampleCallNodes []int) func(i, j int) int {
	return func(i, j int) int {
		return table.CompareTreeOrder(sampleCallNodes[i], sampleCallNodes[j])
	}
}
