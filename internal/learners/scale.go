package learners

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Standardizer centers each column on its mean and scales it to unit
// population variance. Constant columns keep a scale of 1.
type Standardizer struct {
	Mean  []float64
	Scale []float64
}

// FitStandardizer learns column statistics from X.
func FitStandardizer(X mat.Matrix) *Standardizer {
	_, c := X.Dims()
	s := &Standardizer{Mean: make([]float64, c), Scale: make([]float64, c)}
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, X)
		m, v := stat.PopMeanVariance(col, nil)
		s.Mean[j] = m
		s.Scale[j] = 1
		if sd := math.Sqrt(v); sd > 0 {
			s.Scale[j] = sd
		}
	}
	return s
}

// Transform returns a standardized copy of X.
func (s *Standardizer) Transform(X mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(X)
	r, c := out.Dims()
	for i := 0; i < r; i++ {
		row := out.RawRowView(i)
		for j := 0; j < c; j++ {
			row[j] = (row[j] - s.Mean[j]) / s.Scale[j]
		}
	}
	return out
}
