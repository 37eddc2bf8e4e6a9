package filter

import (
	"github.com/stacklens/stacklens/internal/trace"
)

// ByTab nulls out the stack of every sample not relevant to the given
// browser tab. A stack is relevant when its frame's innerWindowID belongs to
// relevantWindowIDs or when any ancestor is relevant; frames without a
// window (innerWindowID 0) never match on their own but do not interrupt
// propagation from an ancestor.
func ByTab(thread trace.Thread, relevantWindowIDs map[uint64]struct{}) trace.Thread {
	stacks := &thread.Stacks
	relevant := make([]bool, stacks.Length)
	for stackIndex := 0; stackIndex < stacks.Length; stackIndex++ {
		if prefix := stacks.Prefix[stackIndex]; prefix != trace.None && relevant[prefix] {
			relevant[stackIndex] = true
			continue
		}
		if windowID := thread.Frames.InnerWindowID[stacks.Frame[stackIndex]]; windowID > 0 {
			_, relevant[stackIndex] = relevantWindowIDs[windowID]
		}
	}

	stackTable := thread.Stacks
	return thread.UpdateStacks(&stackTable, func(oldStack int) int {
		if relevant[oldStack] {
			return oldStack
		}
		return trace.None
	})
}
