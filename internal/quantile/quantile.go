// Package quantile estimates percentiles over possibly weighted samples.
package quantile

import (
	"math"
	"sort"
)

// Quantile is a collection of possibly weighted data points.
type Quantile struct {
	// Xs is the slice of sample values.
	Xs []float64

	// Weights[i] is the weight of sample Xs[i].  If Weights is
	// nil, all Xs have weight 1.  Weights must have the same
	// length of Xs and all values must be non-negative.
	Weights []float64

	// Sorted indicates that Xs is sorted in ascending order.
	Sorted bool
}

// Bounds returns the minimum and maximum values of xs.
func Bounds(xs []float64) (min float64, max float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	min, max = xs[0], xs[0]
	for _, x := range xs {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return
}

// Bounds returns the minimum and maximum values of the Quantile.
//
// If the Quantile is weighted, this ignores samples with zero weight.
func (q Quantile) Bounds() (min float64, max float64) {
	if len(q.Xs) == 0 || (!q.Sorted && q.Weights == nil) {
		return Bounds(q.Xs)
	}

	if q.Sorted {
		if q.Weights == nil {
			return q.Xs[0], q.Xs[len(q.Xs)-1]
		}
		min, max = 0, 0
		for i, w := range q.Weights {
			if w != 0 {
				min = q.Xs[i]
				break
			}
		}
		for i := range q.Weights {
			if q.Weights[len(q.Weights)-i-1] != 0 {
				max = q.Xs[len(q.Weights)-i-1]
				break
			}
		}
	} else {
		min, max = math.Inf(1), math.Inf(-1)
		for i, x := range q.Xs {
			w := q.Weights[i]
			if x < min && w != 0 {
				min = x
			}
			if x > max && w != 0 {
				max = x
			}
		}
		if math.IsInf(min, 0) {
			min, max = 0, 0
		}
	}
	return
}

// Weight returns the total weight of the Quantile.
func (q Quantile) Weight() float64 {
	if q.Weights == nil {
		return float64(len(q.Xs))
	}
	sum := 0.0
	for _, w := range q.Weights {
		sum += w
	}
	return sum
}

// Percentile returns the pctileth value from the Quantile. This uses
// interpolation method R8 from Hyndman and Fan (1996).
//
// pctile will be capped to the range [0, 1]. If len(xs) == 0, returns 0.
//
// Percentile(0.5) is the median. Percentile(0.25) and
// Percentile(0.75) are the first and third quartiles, respectively.
//
// This is constant time if s.Sorted and s.Weights == nil.
func (q Quantile) Percentile(pctile float64) float64 {
	if len(q.Xs) == 0 {
		return 0
	} else if pctile <= 0 {
		min, _ := q.Bounds()
		return min
	} else if pctile >= 1 {
		_, max := q.Bounds()
		return max
	}

	if !q.Sorted {
		q = *q.Copy().Sort()
	}

	if q.Weights == nil {
		N := float64(len(q.Xs))
		n := 1/3.0 + pctile*(N+1/3.0) // R8
		kf, frac := math.Modf(n)
		k := int(kf)
		if k <= 0 {
			return q.Xs[0]
		} else if k >= len(q.Xs) {
			return q.Xs[len(q.Xs)-1]
		}
		return q.Xs[k-1] + frac*(q.Xs[k]-q.Xs[k-1])
	}

	target := q.Weight() * pctile
	for i, weight := range q.Weights {
		target -= weight
		if target < 0 {
			return q.Xs[i]
		}
	}
	return q.Xs[len(q.Xs)-1]
}

type sampleSorter struct {
	xs      []float64
	weights []float64
}

func (p *sampleSorter) Len() int {
	return len(p.xs)
}

func (p *sampleSorter) Less(i, j int) bool {
	return p.xs[i] < p.xs[j]
}

func (p *sampleSorter) Swap(i, j int) {
	p.xs[i], p.xs[j] = p.xs[j], p.xs[i]
	p.weights[i], p.weights[j] = p.weights[j], p.weights[i]
}

// Sort sorts the samples in place in s and returns s.
//
// A sorted sample improves the performance of some algorithms.
func (q *Quantile) Sort() *Quantile {
	if q.Sorted || sort.Float64sAreSorted(q.Xs) {
		// All set
	} else if q.Weights == nil {
		sort.Float64s(q.Xs)
	} else {
		sort.Sort(&sampleSorter{q.Xs, q.Weights})
	}
	q.Sorted = true
	return q
}

// Copy returns a copy of the Quantile.
//
// The returned Quantile shares no data with the original, so they can
// be modified (for example, sorted) independently.
func (q Quantile) Copy() *Quantile {
	xs := make([]float64, len(q.Xs))
	copy(xs, q.Xs)

	weights := []float64(nil)
	if q.Weights != nil {
		weights = make([]float64, len(q.Weights))
		copy(weights, q.Weights)
	}

	return &Quantile{xs, weights, q.Sorted}
}
