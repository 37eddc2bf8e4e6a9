// Package invert rebuilds a thread's stack tree with root and leaf swapped
// per sample, grouping the tree's top level by where time was spent instead
// of by who called it.
package invert

import (
	"github.com/stacklens/stacklens/internal/trace"
)

// invertedKey identifies an inverted stack node by its inverted parent and
// frame, mirroring the dedup key of the call-node builder.
type invertedKey struct {
	prefix int
	frame  int
}

// CallTree returns a copy of the thread whose stack table is the inverted
// tree. For every original stack, the chain is walked from leaf to root and
// each step reuses or allocates an inverted node keyed by (inverted parent,
// frame). Nodes merging stacks with conflicting categories fall back to
// defaultCategory with the "Other" subcategory, the same rule the call-node
// builder applies.
func CallTree(thread trace.Thread, defaultCategory int) trace.Thread {
	oldStacks := &thread.Stacks
	newStacks := trace.StackTable{}
	keyToStack := make(map[invertedKey]int, oldStacks.Length)
	oldToNew := make([]int, oldStacks.Length)
	for i := range oldToNew {
		oldToNew[i] = trace.None
	}

	convert := func(oldStack int) int {
		if newStack := oldToNew[oldStack]; newStack != trace.None {
			return newStack
		}
		newStack := trace.None
		for current := oldStack; current != trace.None; current = oldStacks.Prefix[current] {
			key := invertedKey{prefix: newStack, frame: oldStacks.Frame[current]}
			index, exists := keyToStack[key]
			if !exists {
				index = newStacks.Length
				newStacks.Prefix = append(newStacks.Prefix, newStack)
				newStacks.Frame = append(newStacks.Frame, key.frame)
				newStacks.Category = append(newStacks.Category, oldStacks.Category[current])
				newStacks.Subcategory = append(newStacks.Subcategory, oldStacks.Subcategory[current])
				newStacks.Length++
				keyToStack[key] = index
			} else if newStacks.Category[index] != oldStacks.Category[current] {
				newStacks.Category[index] = defaultCategory
				newStacks.Subcategory[index] = trace.OtherSubcategory
			} else if newStacks.Subcategory[index] != oldStacks.Subcategory[current] {
				newStacks.Subcategory[index] = trace.OtherSubcategory
			}
			newStack = index
		}
		oldToNew[oldStack] = newStack
		return newStack
	}

	return thread.UpdateStacks(&newStacks, convert)
}
