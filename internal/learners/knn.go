package learners

import (
	"sort"

	"github.com/spboyer/stacker/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultNeighbors is the k used by the built-in KNN algorithm.
const DefaultNeighbors = 5

// KNeighbors predicts from the k nearest training rows by Euclidean distance:
// the majority label for classification, the mean target for regression.
type KNeighbors struct {
	K    int
	Task models.TaskKind

	x       *mat.Dense
	y       []float64
	classes [2]float64
}

// NewKNeighbors returns an unfitted k-nearest-neighbours estimator.
func NewKNeighbors(k int, task models.TaskKind) *KNeighbors {
	return &KNeighbors{K: k, Task: task}
}

// Fit memorizes the training rows.
func (m *KNeighbors) Fit(X mat.Matrix, y []float64) error {
	if _, _, err := checkFit(X, y); err != nil {
		return err
	}
	if m.Task == models.Classification {
		classes, err := binaryClasses(y)
		if err != nil {
			return err
		}
		m.classes = classes
	}
	m.x = mat.DenseCopyOf(X)
	m.y = append([]float64(nil), y...)
	return nil
}

// neighbors returns the targets of the k nearest training rows for each row
// of X. Equidistant rows keep training order.
func (m *KNeighbors) neighbors(X mat.Matrix) ([][]float64, error) {
	if m.x == nil {
		return nil, ErrNotFitted
	}
	_, c := m.x.Dims()
	r, err := checkPredict(X, c)
	if err != nil {
		return nil, err
	}
	n := len(m.y)
	k := m.K
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	out := make([][]float64, r)
	query := make([]float64, c)
	dist := make([]float64, n)
	idx := make([]int, n)
	for i := 0; i < r; i++ {
		mat.Row(query, i, X)
		for j := 0; j < n; j++ {
			dist[j] = floats.Distance(query, m.x.RawRowView(j), 2)
			idx[j] = j
		}
		sort.SliceStable(idx, func(a, b int) bool { return dist[idx[a]] < dist[idx[b]] })
		out[i] = Pick(m.y, idx[:k])
	}
	return out, nil
}

// Predict returns the majority label (ties go to the smaller label) or the
// neighbour mean.
func (m *KNeighbors) Predict(X mat.Matrix) ([]float64, error) {
	nb, err := m.neighbors(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(nb))
	for i, targets := range nb {
		if m.Task == models.Regression {
			out[i] = floats.Sum(targets) / float64(len(targets))
			continue
		}
		if positiveShare(targets, m.classes[1]) > 0.5 {
			out[i] = m.classes[1]
		} else {
			out[i] = m.classes[0]
		}
	}
	return out, nil
}

// PredictProbability returns the share of neighbours in the positive class.
func (m *KNeighbors) PredictProbability(X mat.Matrix) ([]float64, error) {
	nb, err := m.neighbors(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(nb))
	for i, targets := range nb {
		out[i] = positiveShare(targets, m.classes[1])
	}
	return out, nil
}

func positiveShare(targets []float64, positive float64) float64 {
	var pos int
	for _, v := range targets {
		if v == positive {
			pos++
		}
	}
	return float64(pos) / float64(len(targets))
}
