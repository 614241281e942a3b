package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FeaturePoint is the 2D projection of one waveform.
type FeaturePoint struct {
	X, Y float64
}

// Projector maps waveforms to feature points, one per waveform, same order.
type Projector interface {
	Project(waveforms []Waveform) ([]FeaturePoint, error)
}

// PCAProjector projects waveforms onto their first two principal components.
type PCAProjector struct{}

func (PCAProjector) Project(waveforms []Waveform) ([]FeaturePoint, error) {
	n := len(waveforms)
	if n == 0 {
		return nil, fmt.Errorf("%w: no waveforms to project", ErrExtractionFailure)
	}
	d := len(waveforms[0])
	if d == 0 {
		return nil, fmt.Errorf("%w: empty waveform", ErrExtractionFailure)
	}
	out := make([]FeaturePoint, n)
	if n < 2 {
		return out, nil
	}

	data := mat.NewDense(n, d, nil)
	for i, w := range waveforms {
		if len(w) != d {
			return nil, fmt.Errorf("%w: waveform %d has %d samples, want %d", ErrExtractionFailure, i, len(w), d)
		}
		data.SetRow(i, w)
	}
	// Center columns so scores are relative to the mean waveform.
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, data)
		floats.AddConst(-stat.Mean(col, nil), col)
		data.SetCol(j, col)
	}

	var pc stat.PC
	if !pc.PrincipalComponents(data, nil) {
		return nil, fmt.Errorf("%w: principal components analysis did not converge", ErrExtractionFailure)
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, k := vecs.Dims()
	k = min(k, 2)

	var scores mat.Dense
	scores.Mul(data, vecs.Slice(0, d, 0, k))
	for i := range out {
		out[i].X = scores.At(i, 0)
		if k > 1 {
			out[i].Y = scores.At(i, 1)
		}
		if math.IsNaN(out[i].X) || math.IsNaN(out[i].Y) {
			return nil, fmt.Errorf("%w: projection of waveform %d is NaN", ErrExtractionFailure, i)
		}
	}
	return out, nil
}

// CircleProjector places waveform i at (cos(i/10), sin(i/10)). It pairs with
// SyntheticExtractor for demos.
type CircleProjector struct{}

func (CircleProjector) Project(waveforms []Waveform) ([]FeaturePoint, error) {
	out := make([]FeaturePoint, len(waveforms))
	for i := range out {
		t := float64(i) / 10
		out[i] = FeaturePoint{X: math.Cos(t), Y: math.Sin(t)}
	}
	return out, nil
}
