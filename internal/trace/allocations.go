package trace

type (
	// NativeAllocationsTable holds one entry per allocation or deallocation
	// event. A positive weight is bytes allocated, a negative weight bytes
	// freed. MemoryAddress and ThreadID are nil on traces recorded without
	// balanced allocation tracking; they are always both present or both
	// absent.
	NativeAllocationsTable struct {
		Time          []float64 `json:"time"`
		Stack         []int     `json:"stack"`
		Weight        []float64 `json:"weight"`
		MemoryAddress []uint64  `json:"memoryAddress,omitempty"`
		ThreadID      []uint64  `json:"threadId,omitempty"`
		Length        int       `json:"length"`
	}

	// JsAllocationsTable holds one entry per sampled JS allocation.
	JsAllocationsTable struct {
		Time   []float64 `json:"time"`
		Stack  []int     `json:"stack"`
		Weight []float64 `json:"weight"`
		Length int       `json:"length"`
	}
)

// HasMemoryAddresses reports whether allocations and deallocations can be
// paired by address.
func (t *NativeAllocationsTable) HasMemoryAddresses() bool {
	return t.MemoryAddress != nil
}

// Append adds one event. Post-processed tables drop the address columns:
// once events are paired, addresses carry no further information.
func (t *NativeAllocationsTable) Append(time float64, stack int, weight float64) {
	t.Time = append(t.Time, time)
	t.Stack = append(t.Stack, stack)
	t.Weight = append(t.Weight, weight)
	t.Length++
}

// Slice returns a copy of the events in [start, end).
func (t *NativeAllocationsTable) Slice(start, end int) NativeAllocationsTable {
	out := NativeAllocationsTable{
		Time:   append([]float64(nil), t.Time[start:end]...),
		Stack:  append([]int(nil), t.Stack[start:end]...),
		Weight: append([]float64(nil), t.Weight[start:end]...),
		Length: end - start,
	}
	if t.MemoryAddress != nil {
		out.MemoryAddress = append([]uint64(nil), t.MemoryAddress[start:end]...)
		out.ThreadID = append([]uint64(nil), t.ThreadID[start:end]...)
	}
	return out
}

// Slice returns a copy of the events in [start, end).
func (t *JsAllocationsTable) Slice(start, end int) JsAllocationsTable {
	return JsAllocationsTable{
		Time:   append([]float64(nil), t.Time[start:end]...),
		Stack:  append([]int(nil), t.Stack[start:end]...),
		Weight: append([]float64(nil), t.Weight[start:end]...),
		Length: end - start,
	}
}
