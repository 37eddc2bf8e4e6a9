package selection

import (
	"github.com/stacklens/stacklens/internal/callnode"
	"github.com/stacklens/stacklens/internal/trace"
)

// BestAncestorByCategory finds the root-most ancestor of a clicked call node
// that can be selected without highlighting any sample whose true category
// differs from the clicked node's category.
//
// The candidate run is the maximal contiguous chain of same-category
// ancestors starting at the clicked node. Every sample of a different
// category whose ancestry intersects the run truncates it, so that the
// run's root-most member is never an ancestor of such a sample. Returns the
// clicked node itself when the run empties, or when the run reaches the true
// root (the whole path shares the category, nothing can conflict by going
// shallower).
func BestAncestorByCategory(table *callnode.Table, clicked int, sampleCallNodes, sampleCategories []int) int {
	clickedCategory := table.Category[clicked]
	clickedDepth := table.Depth[clicked]

	// candidates[0] is the clicked node, growing toward the root.
	var candidates []int
	node := clicked
	for node != trace.None && table.Category[node] == clickedCategory {
		candidates = append(candidates, node)
		node = table.Prefix[node]
	}
	if node == trace.None {
		return clicked
	}

	handled := make([]bool, table.Length)
	for i, sampleNode := range sampleCallNodes {
		if sampleNode == trace.None || sampleCategories[i] == clickedCategory {
			continue
		}
		walk := table.Ancestors(sampleNode)
		for ancestor, ok := walk.Next(); ok; ancestor, ok = walk.Next() {
			if handled[ancestor] {
				// This chain was already walked for an earlier sample.
				break
			}
			handled[ancestor] = true
			depth := table.Depth[ancestor]
			if depth > clickedDepth {
				continue
			}
			if depth <= clickedDepth-len(candidates) {
				// Shallower than the run's root-most member, no
				// intersection possible further up.
				break
			}
			pos := clickedDepth - depth
			if candidates[pos] != ancestor {
				continue
			}
			// The run member at pos is an ancestor of this conflicting
			// sample, and so is everything above it. Cut them off.
			candidates = candidates[:pos]
			if len(candidates) == 0 {
				return clicked
			}
			break
		}
	}
	return candidates[len(candidates)-1]
}
