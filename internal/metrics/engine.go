package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spboyer/stacker/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds the number of algorithms scored concurrently.
const DefaultWorkers = 4

// Engine computes the evaluation battery for every algorithm of a record.
type Engine struct {
	logger         *slog.Logger
	workers        int
	probabilityAUC bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for metric summaries.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorkers bounds how many algorithms are scored at once. Values below 1
// score algorithms sequentially.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithProbabilityAUC computes ROC AUC from stored positive-class
// probabilities instead of the discrete predictions.
func WithProbabilityAUC() Option {
	return func(e *Engine) {
		e.probabilityAUC = true
	}
}

// NewEngine returns an Engine with the given options applied.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:  slog.Default(),
		workers: DefaultWorkers,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

type target struct {
	algorithm string
	predicted []float64
	scores    []float64
}

// Compute scores every base algorithm and every populated alias of rec on
// partition p. It returns false without touching rec when the partition has
// no ground-truth labels. Metrics are written only after every algorithm has
// been scored successfully. For classification the positive label is the
// larger of the labels seen in the train and partition ground truth.
func (e *Engine) Compute(ctx context.Context, rec *models.Record, p models.Partition) (bool, error) {
	expected := rec.Labels(p)
	if expected == nil {
		e.logger.Info("No labels are present to generate metrics", "model", rec.Name, "partition", p)
		return false, nil
	}

	targets, err := e.collect(rec, p, len(expected))
	if err != nil {
		return false, err
	}

	// The positive class comes from every known label, so it does not
	// change with what a partition or an algorithm happens to contain.
	var classes []float64
	if rec.IsClassification() {
		classes = ClassLabels(rec.YTrain, expected)
	}

	results := make([]map[models.MetricName]models.MetricValue, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, t := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var err error
			if rec.IsClassification() {
				results[i], err = e.classification(t, expected, classes)
			} else {
				results[i] = regression(expected, t.predicted)
			}
			if err != nil {
				return fmt.Errorf("scoring %s on %s: %w", t.algorithm, p, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	for i, t := range targets {
		for k := range rec.Metrics {
			if k.Algorithm == t.algorithm && k.Partition == p {
				delete(rec.Metrics, k)
			}
		}
		for name, v := range results[i] {
			rec.Metrics[models.MetricKey{Algorithm: t.algorithm, Partition: p, Metric: name}] = v
		}
	}

	e.logger.Info("Metrics for partition", "model", rec.Name, "partition", p, "algorithms", len(targets))
	for _, t := range targets {
		attrs := []any{"algorithm", t.algorithm, "partition", p}
		for _, m := range rec.MetricsFor(t.algorithm, p) {
			attrs = append(attrs, string(m.Name), m.Value.String())
		}
		e.logger.Info("Algorithm metrics", attrs...)
	}
	return true, nil
}

func (e *Engine) collect(rec *models.Record, p models.Partition, n int) ([]target, error) {
	ids := append(append([]string(nil), rec.Algorithms...), rec.Aliases()...)
	targets := make([]target, 0, len(ids))
	for _, algo := range ids {
		predicted, ok := rec.Prediction(algo, p)
		if !ok {
			return nil, &models.MissingArtifactError{Algorithm: algo, Partition: p, Artifact: "predictions"}
		}
		if len(predicted) != n {
			return nil, fmt.Errorf("algorithm %s has %d %s predictions, expected %d", algo, len(predicted), p, n)
		}
		t := target{algorithm: algo, predicted: predicted, scores: predicted}
		if e.probabilityAUC && rec.IsClassification() {
			probas, ok := rec.Probability(algo, p)
			if !ok {
				return nil, &models.MissingArtifactError{Algorithm: algo, Partition: p, Artifact: "probabilities"}
			}
			if len(probas) != n {
				return nil, fmt.Errorf("algorithm %s has %d %s probabilities, expected %d", algo, len(probas), p, n)
			}
			t.scores = probas
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func (e *Engine) classification(t target, expected, classes []float64) (map[models.MetricName]models.MetricValue, error) {
	positive, err := PositiveLabel(ClassLabels(classes, t.predicted))
	if err != nil {
		return nil, err
	}
	counts := CountBinary(expected, t.predicted, positive)
	cm, _ := ConfusionMatrix(expected, t.predicted)

	out := map[models.MetricName]models.MetricValue{
		models.MetricAccuracy:        models.Scalar(counts.Accuracy()),
		models.MetricPrecision:       models.Scalar(counts.Precision()),
		models.MetricRecall:          models.Scalar(counts.Recall()),
		models.MetricF1:              models.Scalar(counts.F1()),
		models.MetricConfusionMatrix: models.Matrix(cm),
	}

	auc, err := ROCAUC(expected, t.scores, positive)
	switch {
	case errors.Is(err, ErrSingleClass):
		e.logger.Warn("Skipping ROC AUC", "algorithm", t.algorithm, "reason", err.Error())
	case err != nil:
		return nil, err
	default:
		out[models.MetricROCAUC] = models.Scalar(auc)
	}
	return out, nil
}

func regression(expected, predicted []float64) map[models.MetricName]models.MetricValue {
	return map[models.MetricName]models.MetricValue{
		models.MetricMSE:               models.Scalar(MeanSquaredError(expected, predicted)),
		models.MetricMAE:               models.Scalar(MeanAbsoluteError(expected, predicted)),
		models.MetricR2:                models.Scalar(R2(expected, predicted)),
		models.MetricExplainedVariance: models.Scalar(ExplainedVariance(expected, predicted)),
		models.MetricMedianAbsError:    models.Scalar(MedianAbsoluteError(expected, predicted)),
	}
}
