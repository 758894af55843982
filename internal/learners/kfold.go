package learners

import (
	"fmt"
	"sort"
)

// Fold is one train/held-out split of sample indices.
type Fold struct {
	Train []int
	Test  []int
}

// KFold splits n samples into k contiguous folds without shuffling. The
// first n%k folds hold one extra sample.
func KFold(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("k-fold needs at least 2 folds, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("cannot split %d samples into %d folds", n, k)
	}

	folds := make([]Fold, 0, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		end := start + size

		test := make([]int, 0, size)
		train := make([]int, 0, n-size)
		for i := 0; i < n; i++ {
			if i >= start && i < end {
				test = append(test, i)
			} else {
				train = append(train, i)
			}
		}
		folds = append(folds, Fold{Train: train, Test: test})
		start = end
	}
	return folds, nil
}

// StratifiedKFold splits the samples labelled by y into k folds that keep
// the class proportions of y. Samples are grouped by class in sorted label
// order, then dealt round-robin to the folds, so row order in y does not
// matter. Each fold's indices are ascending.
func StratifiedKFold(y []float64, k int) ([]Fold, error) {
	n := len(y)
	if k < 2 {
		return nil, fmt.Errorf("k-fold needs at least 2 folds, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("cannot split %d samples into %d folds", n, k)
	}

	byClass := make(map[float64][]int)
	for i, v := range y {
		byClass[v] = append(byClass[v], i)
	}
	classes := make([]float64, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Float64s(classes)

	assign := make([]int, n)
	pos := 0
	for _, c := range classes {
		for _, i := range byClass[c] {
			assign[i] = pos % k
			pos++
		}
	}

	folds := make([]Fold, k)
	for i, f := range assign {
		for j := range folds {
			if j == f {
				folds[j].Test = append(folds[j].Test, i)
			} else {
				folds[j].Train = append(folds[j].Train, i)
			}
		}
	}
	return folds, nil
}
