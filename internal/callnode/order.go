package callnode

import (
	"github.com/stacklens/stacklens/internal/trace"
)

// CompareTreeOrder defines a strict total order over call nodes matching a
// depth-first traversal of the tree: ancestors order before descendants, and
// siblings order by index, which is their order of first observation. A
// trace.None node sorts after every real node; two None nodes are equal.
// Returns a negative value when a orders before b, positive when after.
func (t *Table) CompareTreeOrder(a, b int) int {
	switch {
	case a == b:
		return 0
	case a == trace.None:
		return 1
	case b == trace.None:
		return -1
	}

	// Align both nodes to the same depth by walking the deeper one toward
	// the root.
	curA, curB := a, b
	for t.Depth[curA] > t.Depth[curB] {
		curA = t.Prefix[curA]
	}
	for t.Depth[curB] > t.Depth[curA] {
		curB = t.Prefix[curB]
	}
	if curA == curB {
		// One node is an ancestor of the other: the ancestor comes first.
		return t.Depth[a] - t.Depth[b]
	}

	// Walk both toward the root in lock step until they share a parent, then
	// order by the two children visited last.
	for t.Prefix[curA] != t.Prefix[curB] {
		curA = t.Prefix[curA]
		curB = t.Prefix[curB]
	}
	return curA - curB
}
