// Package eventdelay reconstructs a per-sample input-responsiveness signal
// from the raw "time since an input-blocking event was enqueued" column.
package eventdelay

import (
	"fmt"

	"github.com/stacklens/stacklens/internal/errorutil"
	"github.com/stacklens/stacklens/internal/trace"
)

// Info is the reconstructed delay track plus its statistics over nonzero
// delays.
type Info struct {
	EventDelays []float64 `json:"eventDelays"`
	MinDelay    float64   `json:"minDelay"`
	MaxDelay    float64   `json:"maxDelay"`
	DelayRange  float64   `json:"delayRange"`
}

// Reconstruct decodes the raw event-delay column into per-sample delay
// contributions. The raw value ramps up while an event is pending and drops
// once it is processed; each drop marks a submission whose elapsed time is
// distributed backward over the samples between the previous submission
// point and the drop, decreasing as time elapses (a sawtooth). Submissions
// that would start before the first sample are skipped as unreliable.
func Reconstruct(samples *trace.SamplesTable) (Info, error) {
	if samples.EventDelay == nil {
		return Info{}, fmt.Errorf("eventdelay: %w: trace has no event delay instrumentation", errorutil.ErrNoResults)
	}
	delays := make([]float64, samples.Length)
	if samples.Length == 0 {
		return Info{EventDelays: delays}, nil
	}

	lastSubmissionIndex := 0
	// The first sample is skipped: there is no way to know what happened
	// before it.
	for i := 1; i < samples.Length; i++ {
		currentDelay := samples.EventDelay[i]
		nextDelay := 0.0
		if i+1 < samples.Length {
			nextDelay = samples.EventDelay[i+1]
		}
		if nextDelay >= currentDelay || currentDelay == 0 {
			continue
		}

		// The raw delay starts decreasing after this sample: the pending
		// event has been processed here. It was enqueued currentDelay ago.
		submissionTime := samples.Time[i] - currentDelay
		if submissionTime < samples.Time[0] {
			continue
		}
		startIndex := lastSubmissionIndex
		for startIndex < i && samples.Time[startIndex] < submissionTime {
			startIndex++
		}
		for j := startIndex; j <= i; j++ {
			delays[j] = currentDelay - (samples.Time[j] - submissionTime)
		}
		lastSubmissionIndex = i
	}

	info := Info{EventDelays: delays}
	for _, delay := range delays {
		if delay == 0 {
			continue
		}
		if info.MinDelay == 0 || delay < info.MinDelay {
			info.MinDelay = delay
		}
		if delay > info.MaxDelay {
			info.MaxDelay = delay
		}
	}
	info.DelayRange = info.MaxDelay - info.MinDelay
	return info, nil
}
