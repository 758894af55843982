// Package learners provides the estimators used by stacker: the logistic and
// ridge meta-learners the blend trains, and a handful of base algorithms the
// CLI can fit when no external training routine is supplied.
package learners

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spboyer/stacker/internal/models"
	"gonum.org/v1/gonum/mat"
)

// ErrNotFitted is returned when an estimator is used before Fit.
var ErrNotFitted = errors.New("estimator is not fitted")

// Learner is an estimator that can be trained.
type Learner interface {
	models.Estimator

	// Fit trains the learner on the rows of X against targets y.
	Fit(X mat.Matrix, y []float64) error
}

// Algorithm ids understood by New.
const (
	AlgorithmLogistic = "LOGR"
	AlgorithmLinear   = "LR"
	AlgorithmRidge    = "RIDGE"
	AlgorithmKNN      = "KNN"
	AlgorithmTree     = "DT"
)

type constructor struct {
	tasks []models.TaskKind
	build func(task models.TaskKind) Learner
}

var constructors = map[string]constructor{
	AlgorithmLogistic: {
		tasks: []models.TaskKind{models.Classification},
		build: func(models.TaskKind) Learner { return NewLogisticRegression() },
	},
	AlgorithmLinear: {
		tasks: []models.TaskKind{models.Regression},
		build: func(models.TaskKind) Learner { return NewLinearRegression() },
	},
	AlgorithmRidge: {
		tasks: []models.TaskKind{models.Regression},
		build: func(models.TaskKind) Learner { return NewRidge(1.0) },
	},
	AlgorithmKNN: {
		tasks: []models.TaskKind{models.Classification, models.Regression},
		build: func(task models.TaskKind) Learner { return NewKNeighbors(DefaultNeighbors, task) },
	},
	AlgorithmTree: {
		tasks: []models.TaskKind{models.Classification, models.Regression},
		build: func(task models.TaskKind) Learner { return NewDecisionTree(DefaultTreeDepth, task) },
	},
}

// Factory builds an untrained learner for an algorithm id.
type Factory func(id string, task models.TaskKind) (Learner, error)

// New is the built-in Factory.
func New(id string, task models.TaskKind) (Learner, error) {
	c, ok := constructors[strings.ToUpper(id)]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q: must be one of %s", id, strings.Join(Algorithms(), ", "))
	}
	for _, t := range c.tasks {
		if t == task {
			return c.build(task), nil
		}
	}
	return nil, fmt.Errorf("algorithm %s does not support %s", strings.ToUpper(id), task)
}

// Algorithms lists the ids understood by New, sorted.
func Algorithms() []string {
	ids := make([]string, 0, len(constructors))
	for id := range constructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// binaryClasses returns the two sorted class labels of y.
func binaryClasses(y []float64) ([2]float64, error) {
	seen := make(map[float64]bool)
	var labels []float64
	for _, v := range y {
		if !seen[v] {
			seen[v] = true
			labels = append(labels, v)
		}
	}
	if len(labels) != 2 {
		return [2]float64{}, fmt.Errorf("binary classifier needs exactly 2 classes, got %d", len(labels))
	}
	sort.Float64s(labels)
	return [2]float64{labels[0], labels[1]}, nil
}

func checkFit(X mat.Matrix, y []float64) (int, int, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return 0, 0, errors.New("cannot fit on an empty matrix")
	}
	if len(y) != r {
		return 0, 0, fmt.Errorf("X has %d rows but y has %d values", r, len(y))
	}
	return r, c, nil
}

func checkPredict(X mat.Matrix, features int) (int, error) {
	r, c := X.Dims()
	if c != features {
		return 0, fmt.Errorf("X has %d features, estimator was fitted with %d", c, features)
	}
	return r, nil
}

// Rows copies the rows idx of X into a new matrix.
func Rows(X mat.Matrix, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		out.SetRow(i, mat.Row(nil, r, X))
	}
	return out
}

// Pick returns y[idx] as a new slice.
func Pick(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}
