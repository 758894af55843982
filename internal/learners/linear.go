package learners

import (
	"errors"
	"fmt"
	"math"

	"github.com/spboyer/stacker/internal/metrics"
	"gonum.org/v1/gonum/mat"
)

// minRidge keeps the normal equations positive definite for plain least
// squares on collinear features.
const minRidge = 1e-10

// Ridge is linear least squares with an L2 penalty on the coefficients and an
// unpenalized intercept.
type Ridge struct {
	Alpha float64
	// Normalize standardizes features before fitting; the reported
	// coefficients are always on the original feature scale.
	Normalize bool

	coef      []float64
	intercept float64
}

// NewRidge returns a ridge regressor with penalty alpha.
func NewRidge(alpha float64) *Ridge {
	return &Ridge{Alpha: alpha}
}

// NewLinearRegression returns an ordinary least squares regressor.
func NewLinearRegression() *Ridge {
	return &Ridge{}
}

// Fit solves (XᵀX + αI)w = Xᵀy on centered data.
func (m *Ridge) Fit(X mat.Matrix, y []float64) error {
	n, p, err := checkFit(X, y)
	if err != nil {
		return err
	}
	if m.Alpha < 0 {
		return fmt.Errorf("ridge alpha must not be negative, got %g", m.Alpha)
	}

	scaler := FitStandardizer(X)
	if !m.Normalize {
		for j := range scaler.Scale {
			scaler.Scale[j] = 1
		}
	}
	xc := scaler.Transform(X)

	yMean := metrics.Mean(y)
	yc := make([]float64, n)
	for i, v := range y {
		yc[i] = v - yMean
	}

	var gram mat.SymDense
	gram.SymOuterK(1, xc.T())
	alpha := math.Max(m.Alpha, minRidge)
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+alpha)
	}

	var rhs mat.VecDense
	rhs.MulVec(xc.T(), mat.NewVecDense(n, yc))

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return errors.New("ridge: normal equations are not positive definite")
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &rhs); err != nil {
		return fmt.Errorf("ridge: solving normal equations: %w", err)
	}

	m.coef = make([]float64, p)
	m.intercept = yMean
	for j := 0; j < p; j++ {
		m.coef[j] = w.AtVec(j) / scaler.Scale[j]
		m.intercept -= m.coef[j] * scaler.Mean[j]
	}
	return nil
}

// Predict returns Xw + b.
func (m *Ridge) Predict(X mat.Matrix) ([]float64, error) {
	if m.coef == nil {
		return nil, ErrNotFitted
	}
	r, err := checkPredict(X, len(m.coef))
	if err != nil {
		return nil, err
	}
	var out mat.VecDense
	out.MulVec(X, mat.NewVecDense(len(m.coef), m.coef))
	preds := make([]float64, r)
	for i := range preds {
		preds[i] = out.AtVec(i) + m.intercept
	}
	return preds, nil
}

// Coefficients returns the fitted weights on the original feature scale.
func (m *Ridge) Coefficients() ([]float64, bool) {
	if m.coef == nil {
		return nil, false
	}
	return append([]float64(nil), m.coef...), true
}

// Intercept returns the fitted bias term.
func (m *Ridge) Intercept() float64 {
	return m.intercept
}

// BlendAlphas is the penalty grid searched by the regression blend. 0.005
// appears twice; the repeat never changes which alpha wins.
var BlendAlphas = []float64{
	0.0001, 0.005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5,
	1.0, 5.0, 10.0, 50.0, 100.0, 500.0, 1000.0,
}

// RidgeCV picks the ridge penalty with the lowest k-fold held-out mean
// squared error and refits on all rows. Features are standardized.
type RidgeCV struct {
	Alphas []float64
	Folds  int

	best   *Ridge
	alpha  float64
	scores []float64
}

// NewRidgeCV returns a cross-validated ridge regressor.
func NewRidgeCV(alphas []float64, folds int) *RidgeCV {
	return &RidgeCV{Alphas: alphas, Folds: folds}
}

// Fit evaluates every alpha on contiguous folds. Ties keep the earliest alpha.
func (m *RidgeCV) Fit(X mat.Matrix, y []float64) error {
	n, _, err := checkFit(X, y)
	if err != nil {
		return err
	}
	if len(m.Alphas) == 0 {
		return errors.New("ridge cv: no alphas to search")
	}
	folds, err := KFold(n, m.Folds)
	if err != nil {
		return fmt.Errorf("ridge cv: %w", err)
	}

	m.scores = make([]float64, len(m.Alphas))
	bestIdx := -1
	for a, alpha := range m.Alphas {
		var sse float64
		for _, f := range folds {
			r := &Ridge{Alpha: alpha, Normalize: true}
			if err := r.Fit(Rows(X, f.Train), Pick(y, f.Train)); err != nil {
				return fmt.Errorf("ridge cv: alpha %g: %w", alpha, err)
			}
			held, err := r.Predict(Rows(X, f.Test))
			if err != nil {
				return err
			}
			for i, idx := range f.Test {
				d := y[idx] - held[i]
				sse += d * d
			}
		}
		m.scores[a] = sse / float64(n)
		if bestIdx < 0 || m.scores[a] < m.scores[bestIdx] {
			bestIdx = a
		}
	}

	m.alpha = m.Alphas[bestIdx]
	m.best = &Ridge{Alpha: m.alpha, Normalize: true}
	return m.best.Fit(X, y)
}

// Predict uses the model refitted with the selected alpha.
func (m *RidgeCV) Predict(X mat.Matrix) ([]float64, error) {
	if m.best == nil {
		return nil, ErrNotFitted
	}
	return m.best.Predict(X)
}

// Coefficients returns the refitted model's weights.
func (m *RidgeCV) Coefficients() ([]float64, bool) {
	if m.best == nil {
		return nil, false
	}
	return m.best.Coefficients()
}

// Alpha returns the selected penalty.
func (m *RidgeCV) Alpha() float64 {
	return m.alpha
}

// CVScores returns the held-out mean squared error of each alpha, in grid order.
func (m *RidgeCV) CVScores() []float64 {
	return append([]float64(nil), m.scores...)
}
