package models

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// MetricName identifies one metric of the evaluation battery.
type MetricName string

const (
	MetricAccuracy        MetricName = "accuracy"
	MetricPrecision       MetricName = "precision"
	MetricRecall          MetricName = "recall"
	MetricF1              MetricName = "f1"
	MetricConfusionMatrix MetricName = "confusion_matrix"
	MetricROCAUC          MetricName = "roc_auc"

	MetricMSE               MetricName = "mse"
	MetricMAE               MetricName = "mae"
	MetricR2                MetricName = "r2"
	MetricExplainedVariance MetricName = "explained_variance"
	MetricMedianAbsError    MetricName = "median_abs_error"
)

// ClassificationMetrics is the classification battery in report order.
var ClassificationMetrics = []MetricName{
	MetricAccuracy,
	MetricPrecision,
	MetricRecall,
	MetricF1,
	MetricConfusionMatrix,
	MetricROCAUC,
}

// RegressionMetrics is the regression battery in report order.
var RegressionMetrics = []MetricName{
	MetricMSE,
	MetricMAE,
	MetricR2,
	MetricExplainedVariance,
	MetricMedianAbsError,
}

// LowerIsBetter reports whether the metric is an error measure.
func (n MetricName) LowerIsBetter() bool {
	switch n {
	case MetricMSE, MetricMAE, MetricMedianAbsError:
		return true
	}
	return false
}

// Battery returns the metrics computed for a task kind.
func Battery(task TaskKind) []MetricName {
	if task == Regression {
		return RegressionMetrics
	}
	return ClassificationMetrics
}

func metricRank(name MetricName) int {
	for i, m := range ClassificationMetrics {
		if m == name {
			return i
		}
	}
	for i, m := range RegressionMetrics {
		if m == name {
			return len(ClassificationMetrics) + i
		}
	}
	return len(ClassificationMetrics) + len(RegressionMetrics)
}

// MetricKey addresses one metric of one algorithm on one partition.
type MetricKey struct {
	Algorithm string
	Partition Partition
	Metric    MetricName
}

// MetricValue holds either a scalar or a matrix (the confusion matrix).
type MetricValue struct {
	scalar float64
	matrix *mat.Dense
}

// Scalar wraps a scalar metric value.
func Scalar(v float64) MetricValue {
	return MetricValue{scalar: v}
}

// Matrix wraps a matrix metric value.
func Matrix(m *mat.Dense) MetricValue {
	return MetricValue{matrix: m}
}

// IsMatrix reports whether the value holds a matrix.
func (v MetricValue) IsMatrix() bool {
	return v.matrix != nil
}

// Float returns the scalar value; it is zero for matrix values.
func (v MetricValue) Float() float64 {
	return v.scalar
}

// Dense returns the matrix value, or nil for scalars.
func (v MetricValue) Dense() *mat.Dense {
	return v.matrix
}

// String renders scalars with full precision and matrices on one line,
// e.g. "[[3 1] [0 4]]".
func (v MetricValue) String() string {
	if v.matrix == nil {
		return strconv.FormatFloat(v.scalar, 'g', -1, 64)
	}
	r, c := v.matrix.Dims()
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < r; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('[')
		for j := 0; j < c; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%g", v.matrix.At(i, j))
		}
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String()
}
