package ensemble

import (
	"fmt"
	"time"

	"github.com/spboyer/stacker/internal/learners"
	"github.com/spboyer/stacker/internal/models"
	"gonum.org/v1/gonum/mat"
)

type blendResult struct {
	meta        learners.Learner
	predictions map[models.Partition][]float64
	probas      map[models.Partition][]float64
}

// Blend trains a meta-learner on the base algorithms' outputs and stores it,
// with its predictions and (classification) probabilities, under the BLEND
// alias. Classification blends with logistic regression; regression blends
// with ridge regression whose penalty is picked by rec.NumFolds-fold
// cross-validation.
//
// Exposed coefficients and feature importances of the base estimators are
// copied into the record along the way. rec is not modified if Blend fails.
func Blend(rec *models.Record, opts ...Option) error {
	o := newOptions(opts)
	start := time.Now()
	o.logger.Info("Blending models", "model", rec.Name, "task", rec.Task, "algorithms", len(rec.Algorithms))

	if rec.YTrain == nil {
		return &models.MissingArtifactError{Artifact: "train labels"}
	}
	if err := rec.RequireArtifacts(); err != nil {
		return err
	}

	res, err := fitBlend(rec, o)
	if err != nil {
		return err
	}

	for _, algo := range rec.Algorithms {
		est := rec.Estimators[algo]
		if coef, ok := models.CoefficientsOf(est); ok {
			rec.Coefficients[algo] = coef
		}
		if imp, ok := models.ImportancesOf(est); ok {
			rec.Importances[algo] = imp
		}
	}

	rec.ClearAlias(models.AliasBlend)
	rec.Estimators[models.AliasBlend] = res.meta
	if coef, ok := models.CoefficientsOf(res.meta); ok {
		rec.Coefficients[models.AliasBlend] = coef
	}
	for _, p := range models.Partitions {
		rec.SetPrediction(models.AliasBlend, p, res.predictions[p])
		if probas, ok := res.probas[p]; ok {
			rec.SetProbability(models.AliasBlend, p, probas)
		}
	}

	o.logger.Info("Blend complete", "model", rec.Name, "elapsed", time.Since(start))
	return nil
}

func fitBlend(rec *models.Record, o *options) (*blendResult, error) {
	xTrain, err := MetaFeatures(rec, models.PartitionTrain)
	if err != nil {
		return nil, err
	}
	xTest, err := MetaFeatures(rec, models.PartitionTest)
	if err != nil {
		return nil, err
	}
	if r, _ := xTrain.Dims(); r != len(rec.YTrain) {
		return nil, fmt.Errorf("blend: %d train meta rows but %d train labels", r, len(rec.YTrain))
	}

	res := &blendResult{
		predictions: make(map[models.Partition][]float64),
		probas:      make(map[models.Partition][]float64),
	}

	if rec.IsClassification() {
		lr := learners.NewLogisticRegression()
		if err := lr.Fit(xTrain, rec.YTrain); err != nil {
			return nil, fmt.Errorf("blend: fitting logistic meta-learner: %w", err)
		}
		res.meta = lr
		for p, x := range map[models.Partition]*mat.Dense{models.PartitionTrain: xTrain, models.PartitionTest: xTest} {
			if res.predictions[p], err = lr.Predict(x); err != nil {
				return nil, err
			}
			if res.probas[p], err = lr.PredictProbability(x); err != nil {
				return nil, err
			}
		}
		return res, nil
	}

	if rec.NumFolds < 2 {
		return nil, &models.ConfigError{Key: "n_folds", Reason: fmt.Sprintf("regression blending needs at least 2 folds, got %d", rec.NumFolds)}
	}
	cv := learners.NewRidgeCV(o.alphas, rec.NumFolds)
	if err := cv.Fit(xTrain, rec.YTrain); err != nil {
		return nil, fmt.Errorf("blend: fitting ridge meta-learner: %w", err)
	}
	o.logger.Debug("Blend penalty selected", "model", rec.Name, "alpha", cv.Alpha())
	res.meta = cv
	for p, x := range map[models.Partition]*mat.Dense{models.PartitionTrain: xTrain, models.PartitionTest: xTest} {
		if res.predictions[p], err = cv.Predict(x); err != nil {
			return nil, err
		}
	}
	return res, nil
}
