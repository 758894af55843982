package learners

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is an L2-regularized binary logistic classifier with an
// unpenalized intercept, fitted by Newton's method.
type LogisticRegression struct {
	// C is the inverse regularization strength.
	C       float64
	MaxIter int
	Tol     float64

	classes   [2]float64
	coef      []float64
	intercept float64
	iters     int
}

// NewLogisticRegression returns a classifier with C=1.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{C: 1.0, MaxIter: 100, Tol: 1e-8}
}

// Fit minimizes Σ log-loss + ‖w‖²/(2C).
func (m *LogisticRegression) Fit(X mat.Matrix, y []float64) error {
	n, p, err := checkFit(X, y)
	if err != nil {
		return err
	}
	if m.C <= 0 {
		return fmt.Errorf("logistic regression C must be positive, got %g", m.C)
	}
	classes, err := binaryClasses(y)
	if err != nil {
		return err
	}

	// design matrix with a trailing intercept column
	d := p + 1
	xa := mat.NewDense(n, d, nil)
	target := make([]float64, n)
	for i := 0; i < n; i++ {
		row := xa.RawRowView(i)
		mat.Row(row[:p], i, X)
		row[p] = 1
		if y[i] == classes[1] {
			target[i] = 1
		}
	}

	lambda := 1 / m.C
	w := make([]float64, d)
	prob := make([]float64, n)
	weighted := mat.NewDense(n, d, nil)

	m.iters = 0
	for m.iters < m.MaxIter {
		m.iters++

		grad := make([]float64, d)
		for i := 0; i < n; i++ {
			row := xa.RawRowView(i)
			prob[i] = sigmoid(floats.Dot(row, w))
			floats.AddScaled(grad, prob[i]-target[i], row)

			s := math.Sqrt(prob[i] * (1 - prob[i]))
			wrow := weighted.RawRowView(i)
			floats.ScaleTo(wrow, s, row)
		}
		for j := 0; j < p; j++ {
			grad[j] += lambda * w[j]
		}

		var hess mat.SymDense
		hess.SymOuterK(1, weighted.T())
		for j := 0; j < p; j++ {
			hess.SetSym(j, j, hess.At(j, j)+lambda)
		}
		hess.SetSym(p, p, hess.At(p, p)+minRidge)

		var chol mat.Cholesky
		if ok := chol.Factorize(&hess); !ok {
			return errors.New("logistic regression: hessian is not positive definite")
		}
		var step mat.VecDense
		if err := chol.SolveVecTo(&step, mat.NewVecDense(d, grad)); err != nil {
			return fmt.Errorf("logistic regression: newton step: %w", err)
		}

		delta := step.RawVector().Data
		current := m.objective(xa, target, w, lambda)
		next := make([]float64, d)
		for shrink := 0; shrink < 30; shrink++ {
			floats.SubTo(next, w, delta)
			if m.objective(xa, target, next, lambda) <= current {
				break
			}
			floats.Scale(0.5, delta)
		}
		copy(w, next)
		if floats.Norm(delta, math.Inf(1)) < m.Tol {
			break
		}
	}

	m.classes = classes
	m.coef = w[:p]
	m.intercept = w[p]
	return nil
}

// objective is the penalized negative log-likelihood at w.
func (m *LogisticRegression) objective(xa *mat.Dense, target, w []float64, lambda float64) float64 {
	n, d := xa.Dims()
	var loss float64
	for i := 0; i < n; i++ {
		z := floats.Dot(xa.RawRowView(i), w)
		// log(1 + e^z) - t*z, computed without overflow
		loss += math.Max(z, 0) + math.Log1p(math.Exp(-math.Abs(z))) - target[i]*z
	}
	var penalty float64
	for j := 0; j < d-1; j++ {
		penalty += w[j] * w[j]
	}
	return loss + lambda*penalty/2
}

// PredictProbability returns P(y = larger class) for each row.
func (m *LogisticRegression) PredictProbability(X mat.Matrix) ([]float64, error) {
	if m.coef == nil {
		return nil, ErrNotFitted
	}
	r, err := checkPredict(X, len(m.coef))
	if err != nil {
		return nil, err
	}
	out := make([]float64, r)
	row := make([]float64, len(m.coef))
	for i := range out {
		mat.Row(row, i, X)
		out[i] = sigmoid(floats.Dot(row, m.coef) + m.intercept)
	}
	return out, nil
}

// Predict returns the larger class where its probability exceeds one half.
func (m *LogisticRegression) Predict(X mat.Matrix) ([]float64, error) {
	probs, err := m.PredictProbability(X)
	if err != nil {
		return nil, err
	}
	for i, pr := range probs {
		if pr > 0.5 {
			probs[i] = m.classes[1]
		} else {
			probs[i] = m.classes[0]
		}
	}
	return probs, nil
}

// Coefficients returns the feature weights, excluding the intercept.
func (m *LogisticRegression) Coefficients() ([]float64, bool) {
	if m.coef == nil {
		return nil, false
	}
	return append([]float64(nil), m.coef...), true
}

// Intercept returns the fitted bias term.
func (m *LogisticRegression) Intercept() float64 {
	return m.intercept
}

// Classes returns the negative and positive class labels.
func (m *LogisticRegression) Classes() [2]float64 {
	return m.classes
}

// Iterations returns the number of Newton steps taken by the last Fit.
func (m *LogisticRegression) Iterations() int {
	return m.iters
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
