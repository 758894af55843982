package learners

import (
	"sort"

	"github.com/spboyer/stacker/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultTreeDepth is the depth used by the built-in DT algorithm.
const DefaultTreeDepth = 3

// DecisionTree is a CART tree split on Gini impurity (classification) or
// squared error (regression). Leaves hold the positive-class share or the
// mean target.
type DecisionTree struct {
	MaxDepth       int
	MinSamplesLeaf int
	Task           models.TaskKind

	root       *treeNode
	features   int
	classes    [2]float64
	importance []float64
}

type treeNode struct {
	feature     int
	threshold   float64
	left, right *treeNode
	value       float64
}

func (n *treeNode) leaf() bool {
	return n.left == nil
}

// NewDecisionTree returns an unfitted tree limited to maxDepth splits.
func NewDecisionTree(maxDepth int, task models.TaskKind) *DecisionTree {
	return &DecisionTree{MaxDepth: maxDepth, MinSamplesLeaf: 1, Task: task}
}

// Fit grows the tree greedily.
func (m *DecisionTree) Fit(X mat.Matrix, y []float64) error {
	n, p, err := checkFit(X, y)
	if err != nil {
		return err
	}
	target := y
	if m.Task == models.Classification {
		classes, err := binaryClasses(y)
		if err != nil {
			return err
		}
		m.classes = classes
		target = make([]float64, n)
		for i, v := range y {
			if v == classes[1] {
				target[i] = 1
			}
		}
	}

	x := mat.DenseCopyOf(X)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	m.features = p
	m.importance = make([]float64, p)
	m.root = m.grow(x, target, idx, 0)

	if total := floats.Sum(m.importance); total > 0 {
		floats.Scale(1/total, m.importance)
	}
	return nil
}

func (m *DecisionTree) impurity(target []float64, idx []int) float64 {
	n := float64(len(idx))
	var sum, sq float64
	for _, i := range idx {
		sum += target[i]
		sq += target[i] * target[i]
	}
	mean := sum / n
	if m.Task == models.Classification {
		return 2 * mean * (1 - mean)
	}
	return sq/n - mean*mean
}

func (m *DecisionTree) grow(x *mat.Dense, target []float64, idx []int, depth int) *treeNode {
	node := &treeNode{value: meanOf(target, idx)}
	minLeaf := max(m.MinSamplesLeaf, 1)
	if depth >= m.MaxDepth || len(idx) < 2*minLeaf {
		return node
	}
	parent := m.impurity(target, idx)
	if parent == 0 {
		return node
	}

	bestGain := 0.0
	bestFeature := -1
	var bestThreshold float64
	var bestLeft, bestRight []int

	sorted := make([]int, len(idx))
	for f := 0; f < m.features; f++ {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return x.At(sorted[a], f) < x.At(sorted[b], f) })

		for cut := minLeaf; cut <= len(sorted)-minLeaf; cut++ {
			lo, hi := x.At(sorted[cut-1], f), x.At(sorted[cut], f)
			if lo == hi {
				continue
			}
			left, right := sorted[:cut], sorted[cut:]
			wl := float64(len(left)) / float64(len(idx))
			child := wl*m.impurity(target, left) + (1-wl)*m.impurity(target, right)
			if gain := parent - child; gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (lo + hi) / 2
				bestLeft = append(bestLeft[:0], left...)
				bestRight = append(bestRight[:0], right...)
			}
		}
	}
	if bestFeature < 0 {
		return node
	}

	m.importance[bestFeature] += bestGain * float64(len(idx))
	node.feature = bestFeature
	node.threshold = bestThreshold
	node.left = m.grow(x, target, append([]int(nil), bestLeft...), depth+1)
	node.right = m.grow(x, target, append([]int(nil), bestRight...), depth+1)
	return node
}

func (m *DecisionTree) leafValues(X mat.Matrix) ([]float64, error) {
	if m.root == nil {
		return nil, ErrNotFitted
	}
	r, err := checkPredict(X, m.features)
	if err != nil {
		return nil, err
	}
	out := make([]float64, r)
	for i := range out {
		node := m.root
		for !node.leaf() {
			if X.At(i, node.feature) <= node.threshold {
				node = node.left
			} else {
				node = node.right
			}
		}
		out[i] = node.value
	}
	return out, nil
}

// Predict returns the leaf label or mean.
func (m *DecisionTree) Predict(X mat.Matrix) ([]float64, error) {
	vals, err := m.leafValues(X)
	if err != nil || m.Task == models.Regression {
		return vals, err
	}
	for i, v := range vals {
		if v > 0.5 {
			vals[i] = m.classes[1]
		} else {
			vals[i] = m.classes[0]
		}
	}
	return vals, nil
}

// PredictProbability returns the positive-class share of each row's leaf.
func (m *DecisionTree) PredictProbability(X mat.Matrix) ([]float64, error) {
	return m.leafValues(X)
}

// FeatureImportances returns the normalized impurity decrease per feature.
func (m *DecisionTree) FeatureImportances() ([]float64, bool) {
	if m.root == nil {
		return nil, false
	}
	return append([]float64(nil), m.importance...), true
}

func meanOf(target []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += target[i]
	}
	return sum / float64(len(idx))
}
