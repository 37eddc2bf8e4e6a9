package callnode

import (
	"github.com/stacklens/stacklens/internal/trace"
)

type (
	// Table is the deduplicated call-node tree. Each node stands for one
	// unique (ancestor chain, function) combination across every stack that
	// observed it. Parents always precede their children: for every non-root
	// node i, Prefix[i] < i and Depth[Prefix[i]]+1 == Depth[i].
	Table struct {
		Prefix        []int    `json:"prefix"`
		Func          []int    `json:"func"`
		Category      []int    `json:"category"`
		Subcategory   []int    `json:"subcategory"`
		InnerWindowID []uint64 `json:"innerWindowID"`
		Depth         []int    `json:"depth"`
		Length        int      `json:"length"`
	}

	// Info pairs the call-node table with the total mapping from every raw
	// stack index to its call node. It is the one artifact every downstream
	// consumer of the call tree requires.
	Info struct {
		Table       Table `json:"callNodeTable"`
		StackToNode []int `json:"stackIndexToCallNodeIndex"`
	}

	// nodeKey identifies a call node by its parent node and function. An
	// explicit pair with value equality, so two unbounded indices never
	// collide the way a packed arithmetic key could.
	nodeKey struct {
		prefix int
		fn     int
	}
)

// Build collapses the raw stack tree into a call-node tree. Stacks are
// walked in index order, so a stack's parent is always resolved before the
// stack itself. Stacks that share a parent call node and a function collapse
// into one node; when their categories disagree the node falls back to
// defaultCategory, and when only their subcategories disagree the node falls
// back to the "Other" subcategory.
func Build(stacks *trace.StackTable, frames *trace.FrameTable, defaultCategory int) Info {
	table := Table{
		Prefix:        make([]int, 0, stacks.Length),
		Func:          make([]int, 0, stacks.Length),
		Category:      make([]int, 0, stacks.Length),
		Subcategory:   make([]int, 0, stacks.Length),
		InnerWindowID: make([]uint64, 0, stacks.Length),
		Depth:         make([]int, 0, stacks.Length),
	}
	stackToNode := make([]int, stacks.Length)
	keyToNode := make(map[nodeKey]int, stacks.Length)

	for stackIndex := 0; stackIndex < stacks.Length; stackIndex++ {
		prefixNode := trace.None
		if prefixStack := stacks.Prefix[stackIndex]; prefixStack != trace.None {
			prefixNode = stackToNode[prefixStack]
		}
		frameIndex := stacks.Frame[stackIndex]
		key := nodeKey{prefix: prefixNode, fn: frames.Func[frameIndex]}

		nodeIndex, exists := keyToNode[key]
		if !exists {
			depth := 0
			if prefixNode != trace.None {
				depth = table.Depth[prefixNode] + 1
			}
			nodeIndex = table.Length
			table.Prefix = append(table.Prefix, prefixNode)
			table.Func = append(table.Func, key.fn)
			table.Category = append(table.Category, stacks.Category[stackIndex])
			table.Subcategory = append(table.Subcategory, stacks.Subcategory[stackIndex])
			table.InnerWindowID = append(table.InnerWindowID, frames.InnerWindowID[frameIndex])
			table.Depth = append(table.Depth, depth)
			table.Length++
			keyToNode[key] = nodeIndex
		} else if table.Category[nodeIndex] != stacks.Category[stackIndex] {
			// Conflicting origins cannot keep a specific category.
			table.Category[nodeIndex] = defaultCategory
			table.Subcategory[nodeIndex] = trace.OtherSubcategory
		} else if table.Subcategory[nodeIndex] != stacks.Subcategory[stackIndex] {
			table.Subcategory[nodeIndex] = trace.OtherSubcategory
		}
		stackToNode[stackIndex] = nodeIndex
	}

	return Info{Table: table, StackToNode: stackToNode}
}

// Ancestors returns an iterator over the call nodes from node toward the
// root, starting at node itself.
func (t *Table) Ancestors(node int) AncestorWalk {
	return AncestorWalk{prefix: t.Prefix, node: node}
}

// AncestorWalk walks a call node's ancestor chain. The zero value is an
// exhausted walk.
type AncestorWalk struct {
	prefix []int
	node   int
}

// Next returns the next node on the chain, or false once the walk has moved
// past the root.
func (w *AncestorWalk) Next() (int, bool) {
	if w.node == trace.None {
		return trace.None, false
	}
	node := w.node
	w.node = w.prefix[node]
	return node, true
}
