// Package training fits the base algorithms of a record and fills in the
// artifacts the ensemble stage consumes.
package training

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spboyer/stacker/internal/learners"
	"github.com/spboyer/stacker/internal/metrics"
	"github.com/spboyer/stacker/internal/models"
	"github.com/spboyer/stacker/internal/statistics"
	"gonum.org/v1/gonum/mat"
)

// DefaultFolds is the cross-validation fold count used when a record does
// not set one.
const DefaultFolds = 3

// Result summarizes the cross-validated score of one algorithm.
type Result struct {
	Algorithm  string
	FoldScores []float64
	// Score is the mean fold score; it is what best-model selection ranks.
	Score   float64
	CI      statistics.ConfidenceInterval
	Elapsed time.Duration
}

// Trainer fits each base algorithm of a record in list order.
type Trainer struct {
	factory  learners.Factory
	logger   *slog.Logger
	seed     uint64
	progress func(algorithm string, n, total int)
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithFactory replaces the built-in learner constructors.
func WithFactory(f learners.Factory) Option {
	return func(t *Trainer) {
		if f != nil {
			t.factory = f
		}
	}
}

// WithLogger sets the logger for progress lines.
func WithLogger(l *slog.Logger) Option {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithSeed seeds the bootstrap intervals around fold scores.
func WithSeed(seed uint64) Option {
	return func(t *Trainer) {
		t.seed = seed
	}
}

// WithProgress registers a callback invoked before each algorithm is fitted
// with its 1-based position in the list.
func WithProgress(fn func(algorithm string, n, total int)) Option {
	return func(t *Trainer) {
		t.progress = fn
	}
}

// New returns a Trainer backed by learners.New.
func New(opts ...Option) *Trainer {
	t := &Trainer{
		factory: learners.New,
		logger:  slog.Default(),
		seed:    1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

type fitted struct {
	result      Result
	estimator   models.Estimator
	predictions [2][]float64
	probas      [2][]float64
}

// Fit cross-validates and trains every algorithm of rec on its train
// partition, then stores the estimators, train/test predictions,
// classification probabilities and mean fold scores. Fold scores are accuracy
// for classification and R² for regression. rec is only written once every
// algorithm has trained.
func (t *Trainer) Fit(ctx context.Context, rec *models.Record) ([]Result, error) {
	if rec.XTrain == nil || rec.XTest == nil {
		return nil, &models.MissingArtifactError{Artifact: "feature matrices"}
	}
	if rec.YTrain == nil {
		return nil, &models.MissingArtifactError{Artifact: "train labels"}
	}
	folds := rec.NumFolds
	if folds < 2 {
		folds = DefaultFolds
	}

	out := make([]fitted, 0, len(rec.Algorithms))
	for i, algo := range rec.Algorithms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.progress != nil {
			t.progress(algo, i+1, len(rec.Algorithms))
		}
		f, err := t.fitOne(rec, algo, folds)
		if err != nil {
			return nil, fmt.Errorf("training %s: %w", algo, err)
		}
		t.logger.Info("Trained algorithm", "model", rec.Name, "algorithm", algo,
			"score", f.result.Score, "ci_lower", f.result.CI.Lower, "ci_upper", f.result.CI.Upper,
			"elapsed", f.result.Elapsed)
		out = append(out, f)
	}

	results := make([]Result, len(out))
	for i, f := range out {
		algo := f.result.Algorithm
		rec.Estimators[algo] = f.estimator
		rec.Scores[algo] = f.result.Score
		for pi, p := range models.Partitions {
			rec.SetPrediction(algo, p, f.predictions[pi])
			if f.probas[pi] != nil {
				rec.SetProbability(algo, p, f.probas[pi])
			}
		}
		results[i] = f.result
	}
	return results, nil
}

func (t *Trainer) fitOne(rec *models.Record, algo string, k int) (fitted, error) {
	start := time.Now()
	var splits []learners.Fold
	var err error
	if rec.IsClassification() {
		splits, err = learners.StratifiedKFold(rec.YTrain, k)
	} else {
		n, _ := rec.XTrain.Dims()
		splits, err = learners.KFold(n, k)
	}
	if err != nil {
		return fitted{}, err
	}

	scores := make([]float64, 0, len(splits))
	for _, s := range splits {
		l, err := t.factory(algo, rec.Task)
		if err != nil {
			return fitted{}, err
		}
		if err := l.Fit(learners.Rows(rec.XTrain, s.Train), learners.Pick(rec.YTrain, s.Train)); err != nil {
			return fitted{}, fmt.Errorf("fold fit: %w", err)
		}
		held, err := l.Predict(learners.Rows(rec.XTrain, s.Test))
		if err != nil {
			return fitted{}, fmt.Errorf("fold predict: %w", err)
		}
		scores = append(scores, foldScore(rec.Task, learners.Pick(rec.YTrain, s.Test), held))
	}

	l, err := t.factory(algo, rec.Task)
	if err != nil {
		return fitted{}, err
	}
	if err := l.Fit(rec.XTrain, rec.YTrain); err != nil {
		return fitted{}, err
	}

	f := fitted{estimator: l}
	for pi, x := range []*mat.Dense{rec.XTrain, rec.XTest} {
		if f.predictions[pi], err = l.Predict(x); err != nil {
			return fitted{}, err
		}
		if !rec.IsClassification() {
			continue
		}
		pe, ok := l.(models.ProbabilityEstimator)
		if !ok {
			return fitted{}, fmt.Errorf("algorithm %s cannot report class probabilities", algo)
		}
		if f.probas[pi], err = pe.PredictProbability(x); err != nil {
			return fitted{}, err
		}
	}

	ci := statistics.BootstrapCI(scores, 0.95, t.seed)
	f.result = Result{
		Algorithm:  algo,
		FoldScores: scores,
		Score:      ci.Mean,
		CI:         ci,
		Elapsed:    time.Since(start),
	}
	return f, nil
}

func foldScore(task models.TaskKind, expected, predicted []float64) float64 {
	if task == models.Regression {
		return metrics.R2(expected, predicted)
	}
	var correct int
	for i := range expected {
		if expected[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(expected))
}
