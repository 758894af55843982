package ensemble

import (
	"fmt"
	"time"

	"github.com/spboyer/stacker/internal/models"
)

// SelectBest promotes the highest-scoring base algorithm of rec to the BEST
// alias and returns its id. Scores are scanned in rec.Algorithms order from a
// floor of zero with a strict comparison: ties keep the earliest algorithm,
// and an algorithm scoring 0 or less is never selected.
//
// No fitting happens here. The winner's estimator, predictions and, for
// classification, probabilities are shared with the alias.
func SelectBest(rec *models.Record, opts ...Option) (string, error) {
	o := newOptions(opts)
	start := time.Now()
	o.logger.Info("Selecting best model", "model", rec.Name, "algorithms", len(rec.Algorithms))

	if err := rec.RequireArtifacts(); err != nil {
		return "", err
	}

	best := ""
	bestScore := 0.0
	for _, algo := range rec.Algorithms {
		score, ok := rec.Scores[algo]
		if !ok {
			return "", &models.MissingArtifactError{Algorithm: algo, Artifact: "score"}
		}
		if score > bestScore {
			best, bestScore = algo, score
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s", models.ErrNoBestModel, rec.Name)
	}

	rec.ClearAlias(models.AliasBest)
	rec.Estimators[models.AliasBest] = rec.Estimators[best]
	rec.Scores[models.AliasBest] = bestScore
	for _, p := range models.Partitions {
		preds, _ := rec.Prediction(best, p)
		rec.SetPrediction(models.AliasBest, p, preds)
		if rec.IsClassification() {
			probas, _ := rec.Probability(best, p)
			rec.SetProbability(models.AliasBest, p, probas)
		}
	}

	o.logger.Info("Best model selected", "model", rec.Name, "algorithm", best,
		"score", bestScore, "elapsed", time.Since(start))
	return best, nil
}
