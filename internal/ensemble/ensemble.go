// Package ensemble synthesizes the two virtual algorithms of a record: BEST,
// the promoted top-scoring base algorithm, and BLEND, a meta-learner stacked
// on the base algorithms' outputs.
package ensemble

import (
	"fmt"
	"log/slog"

	"github.com/spboyer/stacker/internal/learners"
	"github.com/spboyer/stacker/internal/models"
	"gonum.org/v1/gonum/mat"
)

type options struct {
	logger *slog.Logger
	alphas []float64
}

// Option configures SelectBest and Blend.
type Option func(*options)

// WithLogger sets the logger for progress lines.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithAlphas replaces the ridge penalty grid searched by a regression blend.
func WithAlphas(alphas ...float64) Option {
	return func(o *options) {
		o.alphas = append([]float64(nil), alphas...)
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: slog.Default(),
		alphas: learners.BlendAlphas,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// MetaFeatures builds the meta-feature matrix of partition p: one row per
// sample and one column per base algorithm in rec.Algorithms order. Columns
// hold positive-class probabilities for classification and predicted values
// for regression.
func MetaFeatures(rec *models.Record, p models.Partition) (*mat.Dense, error) {
	if len(rec.Algorithms) == 0 {
		return nil, &models.ConfigError{Key: "algorithms", Reason: "no algorithms to blend"}
	}

	columns := make([][]float64, len(rec.Algorithms))
	for j, algo := range rec.Algorithms {
		var (
			col []float64
			ok  bool
		)
		if rec.IsClassification() {
			col, ok = rec.Probability(algo, p)
			if !ok {
				return nil, &models.MissingArtifactError{Algorithm: algo, Partition: p, Artifact: "probabilities"}
			}
		} else {
			col, ok = rec.Prediction(algo, p)
			if !ok {
				return nil, &models.MissingArtifactError{Algorithm: algo, Partition: p, Artifact: "predictions"}
			}
		}
		if j > 0 && len(col) != len(columns[0]) {
			return nil, fmt.Errorf("algorithm %s has %d %s outputs, %s has %d",
				algo, len(col), p, rec.Algorithms[0], len(columns[0]))
		}
		columns[j] = col
	}

	rows := len(columns[0])
	if rows == 0 {
		return nil, fmt.Errorf("no %s samples to blend", p)
	}
	m := mat.NewDense(rows, len(columns), nil)
	for j, col := range columns {
		m.SetCol(j, col)
	}
	return m, nil
}
