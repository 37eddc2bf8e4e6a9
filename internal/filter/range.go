package filter

import (
	"sort"

	"github.com/stacklens/stacklens/internal/trace"
)

// ByRange restricts a thread to the samples and allocation events whose time
// falls in [rangeStart, rangeEnd). Times are ascending, so each table is cut
// by two leftmost binary searches and sliced as a whole.
func ByRange(thread trace.Thread, rangeStart, rangeEnd float64) trace.Thread {
	start, end := searchRange(thread.Samples.Time, rangeStart, rangeEnd)
	thread.Samples = thread.Samples.Slice(start, end)

	if thread.JsAllocations != nil {
		start, end := searchRange(thread.JsAllocations.Time, rangeStart, rangeEnd)
		js := thread.JsAllocations.Slice(start, end)
		thread.JsAllocations = &js
	}
	if thread.NativeAllocations != nil {
		start, end := searchRange(thread.NativeAllocations.Time, rangeStart, rangeEnd)
		native := thread.NativeAllocations.Slice(start, end)
		thread.NativeAllocations = &native
	}
	return thread
}

// CounterByRange restricts a counter to [rangeStart, rangeEnd), keeping one
// reading immediately outside each bound so charts do not clip at the window
// edges. When the retained window reaches back to the very first reading,
// the first count and number are zeroed: the platform's first counter
// reading is defined to be unreliable.
func CounterByRange(counter trace.Counter, rangeStart, rangeEnd float64) trace.Counter {
	start, end := searchRange(counter.Samples.Time, rangeStart, rangeEnd)
	if start > 0 {
		start--
	}
	if end < counter.Samples.Length {
		end++
	}
	samples := counter.Samples.Slice(start, end)
	if start == 0 && samples.Length > 0 {
		samples.Count[0] = 0
		samples.Number[0] = 0
	}
	counter.Samples = samples
	return counter
}

func searchRange(times []float64, rangeStart, rangeEnd float64) (int, int) {
	start := sort.SearchFloat64s(times, rangeStart)
	end := sort.SearchFloat64s(times, rangeEnd)
	return start, end
}
