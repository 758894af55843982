package metrics

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrSingleClass is returned by ROCAUC when the ground truth holds one class.
var ErrSingleClass = errors.New("only one class present in labels; ROC AUC is undefined")

// BinaryCounts holds the outcome counts of a binary classifier against the
// positive label.
type BinaryCounts struct {
	TP int
	FP int
	TN int
	FN int
}

// Total returns the number of scored samples.
func (c BinaryCounts) Total() int {
	return c.TP + c.FP + c.TN + c.FN
}

// Precision is TP / (TP + FP), 0 when nothing was predicted positive.
func (c BinaryCounts) Precision() float64 {
	return safeDivide(float64(c.TP), float64(c.TP+c.FP))
}

// Recall is TP / (TP + FN), 0 when there are no positives.
func (c BinaryCounts) Recall() float64 {
	return safeDivide(float64(c.TP), float64(c.TP+c.FN))
}

// F1 is the harmonic mean of precision and recall.
func (c BinaryCounts) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Accuracy is the fraction of correct predictions.
func (c BinaryCounts) Accuracy() float64 {
	return safeDivide(float64(c.TP+c.TN), float64(c.Total()))
}

// ClassLabels returns the sorted union of the labels seen in expected and
// predicted.
func ClassLabels(expected, predicted []float64) []float64 {
	seen := make(map[float64]bool)
	var labels []float64
	for _, s := range [][]float64{expected, predicted} {
		for _, v := range s {
			if !seen[v] {
				seen[v] = true
				labels = append(labels, v)
			}
		}
	}
	sort.Float64s(labels)
	return labels
}

// PositiveLabel picks the positive class for binary metrics: the larger of
// two labels, or 1 when only a single label is present.
func PositiveLabel(labels []float64) (float64, error) {
	switch len(labels) {
	case 0, 1:
		return 1, nil
	case 2:
		return labels[1], nil
	default:
		return 0, fmt.Errorf("binary classification metrics need at most 2 classes, got %d", len(labels))
	}
}

// CountBinary tallies predictions against the positive label.
func CountBinary(expected, predicted []float64, positive float64) BinaryCounts {
	var c BinaryCounts
	for i, want := range expected {
		got := predicted[i]
		switch {
		case want == positive && got == positive:
			c.TP++
		case want != positive && got == positive:
			c.FP++
		case want != positive && got != positive:
			c.TN++
		default:
			c.FN++
		}
	}
	return c
}

// ConfusionMatrix returns the matrix whose cell (i, j) counts samples with
// true label labels[i] predicted as labels[j]. Cells sum to len(expected).
func ConfusionMatrix(expected, predicted []float64) (*mat.Dense, []float64) {
	labels := ClassLabels(expected, predicted)
	index := make(map[float64]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	n := len(labels)
	if n == 0 {
		return mat.NewDense(1, 1, []float64{0}), labels
	}
	cm := mat.NewDense(n, n, nil)
	for i, want := range expected {
		r, c := index[want], index[predicted[i]]
		cm.Set(r, c, cm.At(r, c)+1)
	}
	return cm, labels
}

// ROCAUC computes the area under the ROC curve of scores against the
// positive label using the rank statistic, giving tied scores their average
// rank. scores may be discrete predictions or probabilities.
func ROCAUC(expected, scores []float64, positive float64) (float64, error) {
	n := len(expected)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && scores[idx[j+1]] == scores[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	var nPos, nNeg int
	var rankSum float64
	for i, want := range expected {
		if want == positive {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, ErrSingleClass
	}
	u := rankSum - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg)), nil
}
