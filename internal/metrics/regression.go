package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MeanSquaredError averages the squared residuals.
func MeanSquaredError(expected, predicted []float64) float64 {
	var sum float64
	for i, want := range expected {
		d := want - predicted[i]
		sum += d * d
	}
	return safeDivide(sum, float64(len(expected)))
}

// MeanAbsoluteError averages the absolute residuals.
func MeanAbsoluteError(expected, predicted []float64) float64 {
	return Mean(absResiduals(expected, predicted))
}

// MedianAbsoluteError is the median of the absolute residuals.
func MedianAbsoluteError(expected, predicted []float64) float64 {
	return Median(absResiduals(expected, predicted))
}

// R2 is the coefficient of determination. A constant target scores 1 when
// predicted exactly and 0 otherwise.
func R2(expected, predicted []float64) float64 {
	m := Mean(expected)
	var ssRes, ssTot float64
	for i, want := range expected {
		r := want - predicted[i]
		ssRes += r * r
		d := want - m
		ssTot += d * d
	}
	return degenerateScore(ssRes, ssTot)
}

// ExplainedVariance is 1 - Var(residuals) / Var(expected), with the same
// constant-target convention as R2.
func ExplainedVariance(expected, predicted []float64) float64 {
	residuals := make([]float64, len(expected))
	floats.SubTo(residuals, expected, predicted)
	return degenerateScore(Variance(residuals), Variance(expected))
}

func degenerateScore(num, den float64) float64 {
	if den == 0 {
		if num == 0 {
			return 1
		}
		return 0
	}
	return 1 - num/den
}

func absResiduals(expected, predicted []float64) []float64 {
	out := make([]float64, len(expected))
	for i, want := range expected {
		out[i] = math.Abs(want - predicted[i])
	}
	return out
}
