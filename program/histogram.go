package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Bin is one bar of an interval histogram. Count is always integer-valued.
type Bin struct {
	Center float64
	Count  float64
	Width  float64
}

// BuildHistogram bins values into n equal-width bins spanning [min, max].
// A value equal to max goes to the last bin. Empty input, n < 1 and input
// where every value is equal (zero bin width) are rejected with ErrInvalidInput.
func BuildHistogram(values []float64, n int) ([]Bin, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no intervals to bin", ErrInvalidInput)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: bin count must be >= 1 (got %d)", ErrInvalidInput, n)
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if floats.HasNaN(values) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, fmt.Errorf("%w: intervals must be finite", ErrInvalidInput)
	}
	if lo == hi {
		return nil, fmt.Errorf("%w: all %d intervals equal %g, bin width would be zero", ErrInvalidInput, len(values), lo)
	}

	width := (hi - lo) / float64(n)
	counts := make([]int, n)
	for _, v := range values {
		counts[binIndex(v, lo, hi, width, n)]++
	}

	bins := make([]Bin, n)
	for i, c := range counts {
		bins[i] = Bin{
			Center: lo + (float64(i)+0.5)*width,
			Count:  float64(c),
			Width:  width,
		}
	}
	return bins, nil
}

func binIndex(v, lo, hi, width float64, n int) int {
	if v == hi {
		return n - 1
	}
	i := int(math.Floor((v - lo) / width))
	// (v-lo)/width can round up to n just below hi.
	return max(0, min(i, n-1))
}

// histogramTotal returns the sum of bin counts.
func histogramTotal(bins []Bin) int {
	total := 0
	for _, b := range bins {
		total += int(b.Count)
	}
	return total
}
