// Package filter derives filtered views of a thread. Every filter is pure:
// it allocates and returns a new thread value and never mutates its input
// tables.
package filter

import (
	"strings"

	"github.com/stacklens/stacklens/internal/trace"
)

// Implementation filter names.
const (
	ImplementationCpp = "cpp"
	ImplementationJS  = "js"
)

type stackKey struct {
	prefix int
	frame  int
}

// ByImplementation keeps only the frames whose function belongs to the given
// implementation tier, splicing filtered-out frames by reattaching their
// children to the nearest surviving ancestor. Whole subtrees are never
// dropped. An empty implementation returns the thread unchanged.
func ByImplementation(thread trace.Thread, implementation string) trace.Thread {
	var funcPasses func(funcIndex int) bool
	switch implementation {
	case ImplementationCpp:
		funcPasses = func(funcIndex int) bool {
			return !thread.Funcs.IsJS[funcIndex] && !isJITGenerated(&thread.Funcs, funcIndex)
		}
	case ImplementationJS:
		funcPasses = func(funcIndex int) bool {
			return thread.Funcs.IsJS[funcIndex] || thread.Funcs.RelevantForJS[funcIndex]
		}
	default:
		return thread
	}

	oldStacks := &thread.Stacks
	newStacks := trace.StackTable{}
	keyToStack := make(map[stackKey]int, oldStacks.Length)
	oldToNew := make([]int, oldStacks.Length)

	for stackIndex := 0; stackIndex < oldStacks.Length; stackIndex++ {
		newPrefix := trace.None
		if prefix := oldStacks.Prefix[stackIndex]; prefix != trace.None {
			newPrefix = oldToNew[prefix]
		}
		frameIndex := oldStacks.Frame[stackIndex]
		if !funcPasses(thread.Frames.Func[frameIndex]) {
			// Spliced out: this stack's children reattach to its parent.
			oldToNew[stackIndex] = newPrefix
			continue
		}
		key := stackKey{prefix: newPrefix, frame: frameIndex}
		newStack, exists := keyToStack[key]
		if !exists {
			newStack = newStacks.Length
			newStacks.Prefix = append(newStacks.Prefix, newPrefix)
			newStacks.Frame = append(newStacks.Frame, frameIndex)
			newStacks.Category = append(newStacks.Category, oldStacks.Category[stackIndex])
			newStacks.Subcategory = append(newStacks.Subcategory, oldStacks.Subcategory[stackIndex])
			newStacks.Length++
			keyToStack[key] = newStack
		}
		oldToNew[stackIndex] = newStack
	}

	return thread.UpdateStacks(&newStacks, func(oldStack int) int {
		return oldToNew[oldStack]
	})
}

// isJITGenerated detects synthesized frames for JIT-generated code: a
// hex-address name with no owning resource.
func isJITGenerated(funcs *trace.FuncTable, funcIndex int) bool {
	return strings.HasPrefix(funcs.Name[funcIndex], "0x") && funcs.Resource[funcIndex] == trace.None
}
