// Package allocation post-processes native allocation tables into the views
// the memory panels are built on: allocations only, deallocation sites,
// deallocations attributed to their allocation stack, and retained memory.
package allocation

import (
	"fmt"

	"github.com/stacklens/stacklens/internal/errorutil"
	"github.com/stacklens/stacklens/internal/trace"
)

// ToAllocations keeps only allocation events (positive weight).
func ToAllocations(t *trace.NativeAllocationsTable) trace.NativeAllocationsTable {
	var out trace.NativeAllocationsTable
	for i := 0; i < t.Length; i++ {
		if t.Weight[i] > 0 {
			out.Append(t.Time[i], t.Stack[i], t.Weight[i])
		}
	}
	return out
}

// ToDeallocationSites keeps only deallocation events (negative weight),
// attributed at the site the memory was freed.
func ToDeallocationSites(t *trace.NativeAllocationsTable) trace.NativeAllocationsTable {
	var out trace.NativeAllocationsTable
	for i := 0; i < t.Length; i++ {
		if t.Weight[i] < 0 {
			out.Append(t.Time[i], t.Stack[i], t.Weight[i])
		}
	}
	return out
}

// ToDeallocationsMemory pairs each deallocation with the most recent
// allocation at the same address and rewrites its stack to the allocation's
// stack, so freed memory is attributed to where it was allocated. Unmatched
// deallocations are dropped. Requires balanced allocation tracking.
func ToDeallocationsMemory(t *trace.NativeAllocationsTable) (trace.NativeAllocationsTable, error) {
	if !t.HasMemoryAddresses() {
		return trace.NativeAllocationsTable{}, fmt.Errorf("allocation: %w: no memory addresses recorded", errorutil.ErrNoResults)
	}
	var out trace.NativeAllocationsTable
	allocationStacks := make(map[uint64]int)
	for i := 0; i < t.Length; i++ {
		address := t.MemoryAddress[i]
		if t.Weight[i] >= 0 {
			allocationStacks[address] = t.Stack[i]
			continue
		}
		stack, exists := allocationStacks[address]
		if !exists {
			// Freed memory whose allocation predates the trace.
			continue
		}
		out.Append(t.Time[i], stack, t.Weight[i])
		delete(allocationStacks, address)
	}
	return out, nil
}

// ToRetainedAllocations keeps only the allocations that were never
// deallocated during the trace. Requires balanced allocation tracking.
func ToRetainedAllocations(t *trace.NativeAllocationsTable) (trace.NativeAllocationsTable, error) {
	if !t.HasMemoryAddresses() {
		return trace.NativeAllocationsTable{}, fmt.Errorf("allocation: %w: no memory addresses recorded", errorutil.ErrNoResults)
	}
	retained := make([]bool, t.Length)
	allocationIndexes := make(map[uint64]int)
	for i := 0; i < t.Length; i++ {
		address := t.MemoryAddress[i]
		if t.Weight[i] >= 0 {
			allocationIndexes[address] = i
			retained[i] = true
			continue
		}
		if index, exists := allocationIndexes[address]; exists {
			retained[index] = false
			delete(allocationIndexes, address)
		}
	}
	var out trace.NativeAllocationsTable
	for i := 0; i < t.Length; i++ {
		if retained[i] {
			out.Append(t.Time[i], t.Stack[i], t.Weight[i])
		}
	}
	return out, nil
}
