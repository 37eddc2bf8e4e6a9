package trace

type (
	// CounterSamplesTable holds one entry per counter reading. Count is the
	// signed delta since the previous reading, Number the absolute value at
	// that time.
	CounterSamplesTable struct {
		Time   []float64 `json:"time"`
		Count  []float64 `json:"count"`
		Number []uint64  `json:"number"`
		Length int       `json:"length"`
	}

	// Counter is a named counter track, e.g. memory or bandwidth.
	Counter struct {
		Name     string              `json:"name"`
		Category string              `json:"category"`
		Samples  CounterSamplesTable `json:"samples"`
	}
)

// Slice returns a copy of the readings in [start, end).
func (t *CounterSamplesTable) Slice(start, end int) CounterSamplesTable {
	return CounterSamplesTable{
		Time:   append([]float64(nil), t.Time[start:end]...),
		Count:  append([]float64(nil), t.Count[start:end]...),
		Number: append([]uint64(nil), t.Number[start:end]...),
		Length: end - start,
	}
}
