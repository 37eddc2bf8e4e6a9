package trace

// None marks a "null" entry in any index column. Tables are columnar:
// parallel, equal-length slices addressed by a common integer index, so a
// missing reference is always an explicit sentinel, never an absent key.
const None = -1

// OtherSubcategory is the canonical "Other" subcategory every category
// carries at index 0.
const OtherSubcategory = 0

type (
	// StackTable holds the raw, uncollapsed stack tree recorded by the
	// sampler. Many stacks may describe the same logical call observed at
	// different sampling moments. A stack's prefix always has a smaller
	// index than the stack itself.
	StackTable struct {
		Prefix      []int `json:"prefix"`
		Frame       []int `json:"frame"`
		Category    []int `json:"category"`
		Subcategory []int `json:"subcategory"`
		Length      int   `json:"length"`
	}

	// FrameTable describes each recorded invocation context. Implementation
	// names the JS execution tier and is empty for native frames or JS
	// frames running in the interpreter. InnerWindowID is 0 when the frame
	// does not belong to a browser tab.
	FrameTable struct {
		Func           []int    `json:"func"`
		InnerWindowID  []uint64 `json:"innerWindowID"`
		Implementation []string `json:"implementation"`
		Length         int      `json:"length"`
	}

	// FuncTable describes each function. Resource is None for synthetic
	// frame-label functions. FileName is empty and LineNumber/ColumnNumber
	// are None when source information is unavailable.
	FuncTable struct {
		Name          []string `json:"name"`
		FileName      []string `json:"fileName"`
		LineNumber    []int    `json:"lineNumber"`
		ColumnNumber  []int    `json:"columnNumber"`
		Resource      []int    `json:"resource"`
		IsJS          []bool   `json:"isJS"`
		RelevantForJS []bool   `json:"relevantForJS"`
		Length        int      `json:"length"`
	}

	// SamplesTable holds one entry per sample, ordered by ascending time.
	// Weight is nil when every sample weighs 1; the absolute value of a
	// weight is the sample's duration. EventDelay and ThreadCPUDelta are nil
	// on traces recorded without the corresponding instrumentation.
	SamplesTable struct {
		Time           []float64 `json:"time"`
		Stack          []int     `json:"stack"`
		Weight         []float64 `json:"weight,omitempty"`
		EventDelay     []float64 `json:"eventDelay,omitempty"`
		ThreadCPUDelta []float64 `json:"threadCPUDelta,omitempty"`
		Length         int       `json:"length"`
	}
)

// WeightAt returns the signed weight of a sample, defaulting to 1 when the
// table carries no weight column.
func (s *SamplesTable) WeightAt(i int) float64 {
	if s.Weight == nil {
		return 1
	}
	return s.Weight[i]
}

// Slice returns a copy of the samples in [start, end), keeping only the
// columns present in the source table.
func (s *SamplesTable) Slice(start, end int) SamplesTable {
	out := SamplesTable{
		Time:   append([]float64(nil), s.Time[start:end]...),
		Stack:  append([]int(nil), s.Stack[start:end]...),
		Length: end - start,
	}
	if s.Weight != nil {
		out.Weight = append([]float64(nil), s.Weight[start:end]...)
	}
	if s.EventDelay != nil {
		out.EventDelay = append([]float64(nil), s.EventDelay[start:end]...)
	}
	if s.ThreadCPUDelta != nil {
		out.ThreadCPUDelta = append([]float64(nil), s.ThreadCPUDelta[start:end]...)
	}
	return out
}
