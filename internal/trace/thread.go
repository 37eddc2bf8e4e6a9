package trace

import (
	"fmt"

	"github.com/stacklens/stacklens/internal/errorutil"
)

// Thread groups the tables describing one sampled thread. Producers build a
// thread once and never mutate it; every derived view (filtered, inverted)
// is a fresh Thread value sharing nothing mutable with its source.
type Thread struct {
	Name              string                  `json:"name"`
	Samples           SamplesTable            `json:"samples"`
	Stacks            StackTable              `json:"stackTable"`
	Frames            FrameTable              `json:"frameTable"`
	Funcs             FuncTable               `json:"funcTable"`
	Resources         ResourceTable           `json:"resourceTable"`
	NativeAllocations *NativeAllocationsTable `json:"nativeAllocations,omitempty"`
	JsAllocations     *JsAllocationsTable     `json:"jsAllocations,omitempty"`
}

// UpdateStacks returns a copy of the thread with newStacks installed and
// every stack reference rewritten through convert: samples, js allocations
// and native allocations alike. Every transform that rewrites the stack tree
// must go through here so that no reference column is ever left behind.
// convert may keep growing newStacks lazily; the table is only read once all
// references have been rewritten.
func (t Thread) UpdateStacks(newStacks *StackTable, convert func(int) int) Thread {
	samples := t.Samples
	samples.Stack = convertStackColumn(samples.Stack, convert)
	t.Samples = samples

	if t.JsAllocations != nil {
		js := *t.JsAllocations
		js.Stack = convertStackColumn(js.Stack, convert)
		t.JsAllocations = &js
	}
	if t.NativeAllocations != nil {
		native := *t.NativeAllocations
		native.Stack = convertStackColumn(native.Stack, convert)
		t.NativeAllocations = &native
	}

	t.Stacks = *newStacks
	return t
}

func convertStackColumn(stacks []int, convert func(int) int) []int {
	out := make([]int, len(stacks))
	for i, stack := range stacks {
		if stack == None {
			out[i] = None
			continue
		}
		out[i] = convert(stack)
	}
	return out
}

// Validate checks the table invariants a thread must satisfy at the boundary
// before any derivation runs on it. A violation means the producer is broken
// and is reported as a data integrity error.
func (t *Thread) Validate() error {
	st := &t.Stacks
	if len(st.Prefix) != st.Length || len(st.Frame) != st.Length ||
		len(st.Category) != st.Length || len(st.Subcategory) != st.Length {
		return fmt.Errorf("trace: %w: stack table columns disagree on length", errorutil.ErrDataIntegrity)
	}
	for i := 0; i < st.Length; i++ {
		if p := st.Prefix[i]; p != None && p >= i {
			return fmt.Errorf("trace: %w: stack %d has prefix %d, parents must precede children", errorutil.ErrDataIntegrity, i, p)
		}
		if f := st.Frame[i]; f < 0 || f >= t.Frames.Length {
			return fmt.Errorf("trace: %w: stack %d references frame %d out of %d", errorutil.ErrDataIntegrity, i, f, t.Frames.Length)
		}
	}
	ft := &t.Frames
	if len(ft.Func) != ft.Length || len(ft.InnerWindowID) != ft.Length || len(ft.Implementation) != ft.Length {
		return fmt.Errorf("trace: %w: frame table columns disagree on length", errorutil.ErrDataIntegrity)
	}
	for i := 0; i < ft.Length; i++ {
		if f := ft.Func[i]; f < 0 || f >= t.Funcs.Length {
			return fmt.Errorf("trace: %w: frame %d references func %d out of %d", errorutil.ErrDataIntegrity, i, f, t.Funcs.Length)
		}
	}
	fu := &t.Funcs
	if len(fu.Name) != fu.Length || len(fu.FileName) != fu.Length ||
		len(fu.LineNumber) != fu.Length || len(fu.ColumnNumber) != fu.Length ||
		len(fu.Resource) != fu.Length || len(fu.IsJS) != fu.Length ||
		len(fu.RelevantForJS) != fu.Length {
		return fmt.Errorf("trace: %w: func table columns disagree on length", errorutil.ErrDataIntegrity)
	}
	rt := &t.Resources
	if len(rt.Name) != rt.Length || len(rt.Host) != rt.Length || len(rt.Type) != rt.Length {
		return fmt.Errorf("trace: %w: resource table columns disagree on length", errorutil.ErrDataIntegrity)
	}
	for i := 0; i < fu.Length; i++ {
		if r := fu.Resource[i]; r != None && (r < 0 || r >= rt.Length) {
			return fmt.Errorf("trace: %w: func %d references resource %d out of %d", errorutil.ErrDataIntegrity, i, r, rt.Length)
		}
	}
	sa := &t.Samples
	if len(sa.Time) != sa.Length || len(sa.Stack) != sa.Length {
		return fmt.Errorf("trace: %w: samples table columns disagree on length", errorutil.ErrDataIntegrity)
	}
	if sa.Weight != nil && len(sa.Weight) != sa.Length {
		return fmt.Errorf("trace: %w: samples weight column disagrees on length", errorutil.ErrDataIntegrity)
	}
	if sa.EventDelay != nil && len(sa.EventDelay) != sa.Length {
		return fmt.Errorf("trace: %w: samples eventDelay column disagrees on length", errorutil.ErrDataIntegrity)
	}
	if sa.ThreadCPUDelta != nil && len(sa.ThreadCPUDelta) != sa.Length {
		return fmt.Errorf("trace: %w: samples threadCPUDelta column disagrees on length", errorutil.ErrDataIntegrity)
	}
	for i := 0; i < sa.Length; i++ {
		if s := sa.Stack[i]; s != None && (s < 0 || s >= st.Length) {
			return fmt.Errorf("trace: %w: sample %d references stack %d out of %d", errorutil.ErrDataIntegrity, i, s, st.Length)
		}
		if i > 0 && sa.Time[i] < sa.Time[i-1] {
			return fmt.Errorf("trace: %w: sample %d is out of time order", errorutil.ErrDataIntegrity, i)
		}
	}
	if na := t.NativeAllocations; na != nil {
		if len(na.Time) != na.Length || len(na.Stack) != na.Length || len(na.Weight) != na.Length {
			return fmt.Errorf("trace: %w: native allocations columns disagree on length", errorutil.ErrDataIntegrity)
		}
		// The address columns are always both present or both absent.
		if (na.MemoryAddress != nil) != (na.ThreadID != nil) {
			return fmt.Errorf("trace: %w: native allocations carry one address column without the other", errorutil.ErrDataIntegrity)
		}
		if na.MemoryAddress != nil && (len(na.MemoryAddress) != na.Length || len(na.ThreadID) != na.Length) {
			return fmt.Errorf("trace: %w: native allocations address columns disagree on length", errorutil.ErrDataIntegrity)
		}
		if err := validateEventColumns(na.Time, na.Stack, st.Length, "native allocation"); err != nil {
			return err
		}
	}
	if js := t.JsAllocations; js != nil {
		if len(js.Time) != js.Length || len(js.Stack) != js.Length || len(js.Weight) != js.Length {
			return fmt.Errorf("trace: %w: js allocations columns disagree on length", errorutil.ErrDataIntegrity)
		}
		if err := validateEventColumns(js.Time, js.Stack, st.Length, "js allocation"); err != nil {
			return err
		}
	}
	return nil
}

// validateEventColumns checks the per-event invariants shared by both
// allocation tables: stack references in bounds and ascending times, which
// the range filter's binary searches rely on.
func validateEventColumns(times []float64, stacks []int, stackCount int, kind string) error {
	for i := range stacks {
		if s := stacks[i]; s != None && (s < 0 || s >= stackCount) {
			return fmt.Errorf("trace: %w: %s %d references stack %d out of %d", errorutil.ErrDataIntegrity, kind, i, s, stackCount)
		}
		if i > 0 && times[i] < times[i-1] {
			return fmt.Errorf("trace: %w: %s %d is out of time order", errorutil.ErrDataIntegrity, kind, i)
		}
	}
	return nil
}
