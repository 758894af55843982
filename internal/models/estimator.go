package models

import "gonum.org/v1/gonum/mat"

//go:generate go tool mockgen -destination=mocks/mock_estimator.go -package=mocks . Estimator,ProbabilityEstimator,CoefficientProvider,ImportanceProvider

// Estimator is a fitted model handle. Training happens elsewhere; the record
// only ever asks an estimator for predictions.
type Estimator interface {
	// Predict returns one predicted label or value per row of X.
	Predict(X mat.Matrix) ([]float64, error)
}

// ProbabilityEstimator is implemented by classifiers that can report the
// probability of the positive class.
type ProbabilityEstimator interface {
	Estimator

	// PredictProbability returns P(positive) for each row of X.
	PredictProbability(X mat.Matrix) ([]float64, error)
}

// CoefficientProvider is implemented by linear estimators. The boolean is
// false when the estimator has no coefficients to report (e.g. not fitted).
type CoefficientProvider interface {
	Coefficients() ([]float64, bool)
}

// ImportanceProvider is implemented by estimators that rank features.
type ImportanceProvider interface {
	FeatureImportances() ([]float64, bool)
}

// CoefficientsOf returns the coefficients of e when it exposes them.
func CoefficientsOf(e Estimator) ([]float64, bool) {
	if cp, ok := e.(CoefficientProvider); ok {
		return cp.Coefficients()
	}
	return nil, false
}

// ImportancesOf returns the feature importances of e when it exposes them.
func ImportancesOf(e Estimator) ([]float64, bool) {
	if ip, ok := e.(ImportanceProvider); ok {
		return ip.FeatureImportances()
	}
	return nil, false
}
