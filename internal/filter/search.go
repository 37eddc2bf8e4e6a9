package filter

import (
	"strings"

	"github.com/stacklens/stacklens/internal/trace"
)

// BySearchStrings restricts samples to stacks matching every search string:
// applying the strings sequentially against the progressively filtered
// thread is exactly a logical AND, so string order never changes the result.
func BySearchStrings(thread trace.Thread, searchStrings []string) trace.Thread {
	for _, searchString := range searchStrings {
		thread = BySearchString(thread, searchString)
	}
	return thread
}

// BySearchString nulls out the stack of every sample whose stack does not
// match the search string. A stack matches if it or any of its ancestors
// carries a function whose name, file name or owning resource name contains
// the string, case-insensitively. The stack table itself is unchanged.
func BySearchString(thread trace.Thread, searchString string) trace.Thread {
	if searchString == "" {
		return thread
	}
	needle := strings.ToLower(searchString)

	// Both memoizations are per call: a func is shared by many frames and a
	// stack's verdict feeds every descendant, so repeated ancestor walks
	// collapse into two linear passes.
	funcMatches := make([]int8, thread.Funcs.Length)
	matchesFunc := func(funcIndex int) bool {
		switch funcMatches[funcIndex] {
		case 1:
			return true
		case -1:
			return false
		}
		matched := strings.Contains(strings.ToLower(thread.Funcs.Name[funcIndex]), needle) ||
			strings.Contains(strings.ToLower(thread.Funcs.FileName[funcIndex]), needle)
		if !matched {
			if resource := thread.Funcs.Resource[funcIndex]; resource != trace.None {
				matched = strings.Contains(strings.ToLower(thread.Resources.Name[resource]), needle)
			}
		}
		if matched {
			funcMatches[funcIndex] = 1
		} else {
			funcMatches[funcIndex] = -1
		}
		return matched
	}

	stacks := &thread.Stacks
	stackMatches := make([]bool, stacks.Length)
	for stackIndex := 0; stackIndex < stacks.Length; stackIndex++ {
		if prefix := stacks.Prefix[stackIndex]; prefix != trace.None && stackMatches[prefix] {
			stackMatches[stackIndex] = true
			continue
		}
		stackMatches[stackIndex] = matchesFunc(thread.Frames.Func[stacks.Frame[stackIndex]])
	}

	stackTable := thread.Stacks
	return thread.UpdateStacks(&stackTable, func(oldStack int) int {
		if stackMatches[oldStack] {
			return oldStack
		}
		return trace.None
	})
}
