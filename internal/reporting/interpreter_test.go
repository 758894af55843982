package reporting

import (
	"testing"

	"github.com/spboyer/stacker/internal/models"
	"github.com/spboyer/stacker/internal/statistics"
	"github.com/spboyer/stacker/internal/training"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEstimator struct{ models.Estimator }

// scoredRecord has metrics for A, B, BEST and BLEND on the test partition.
func scoredRecord(t *testing.T) *models.Record {
	t.Helper()
	rec, err := models.NewRecord(models.Specs{Project: "titanic", Separator: ",", Algorithms: "A,B"})
	require.NoError(t, err)

	set := func(algo string, acc float64) {
		rec.Metrics[models.MetricKey{Algorithm: algo, Partition: models.PartitionTest, Metric: models.MetricAccuracy}] = models.Scalar(acc)
		rec.Metrics[models.MetricKey{Algorithm: algo, Partition: models.PartitionTest, Metric: models.MetricF1}] = models.Scalar(acc / 2)
	}
	set("A", 0.7)
	set("B", 0.8)
	rec.Estimators[models.AliasBest] = stubEstimator{}
	set(models.AliasBest, 0.8)
	rec.Estimators[models.AliasBlend] = stubEstimator{}
	set(models.AliasBlend, 0.9)
	return rec
}

func TestInterpretScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"excellent high", 0.95, "Excellent (>90%)"},
		{"excellent boundary", 0.91, "Excellent (>90%)"},
		{"good high", 0.90, "Good (70-90%)"},
		{"good low", 0.70, "Good (70-90%)"},
		{"needs work high", 0.69, "Needs Work (50-70%)"},
		{"needs work low", 0.50, "Needs Work (50-70%)"},
		{"poor high", 0.49, "Poor (<50%)"},
		{"poor negative r2", -0.3, "Poor (<50%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretScore(tt.score))
		})
	}
}

func TestInterpretGain(t *testing.T) {
	assert.Contains(t, InterpretGain(0.5), "recovering 50%")
	assert.Contains(t, InterpretGain(-0.25), "worse than the best model (25%")
	assert.Equal(t, "Blend matches the best model.", InterpretGain(0))
}

func TestFormatSummaryReport(t *testing.T) {
	rec := scoredRecord(t)
	report := FormatSummaryReport(Summary{
		Record: rec,
		Best:   "B",
		Training: []training.Result{
			{Algorithm: "A", Score: 0.7, CI: statistics.ConfidenceInterval{Lower: 0.6, Upper: 0.8}},
			{Algorithm: "B", Score: 0.8, CI: statistics.ConfidenceInterval{Lower: 0.7, Upper: 0.9}},
		},
		Files: []string{"output/titanic/probas_030726.csv"},
	})

	assert.Contains(t, report, "=== Interpretation ===")
	assert.Contains(t, report, "titanic (classification, 2 algorithms)")
	assert.Contains(t, report, "* B        0.8000 [0.7000, 0.9000]")
	assert.Contains(t, report, "  A        0.7000")
	assert.Contains(t, report, "Best model:  B")
	assert.Contains(t, report, "Blend accuracy (test): 0.9000 — Good (70-90%)")
	assert.Contains(t, report, "recovering 50%")
	assert.Contains(t, report, "output/titanic/probas_030726.csv")
}

func TestFormatSummaryReport_NoBest(t *testing.T) {
	rec, err := models.NewRecord(models.Specs{Project: "p", Separator: ",", Algorithms: "A", Regression: true})
	require.NoError(t, err)

	report := FormatSummaryReport(Summary{Record: rec})
	assert.Contains(t, report, "Best model:  none selected")
	assert.NotContains(t, report, "Blend")
}
