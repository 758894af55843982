package reporting

import (
	"fmt"
	"strings"

	"github.com/spboyer/stacker/internal/models"
	"github.com/spboyer/stacker/internal/statistics"
	"github.com/spboyer/stacker/internal/training"
)

// InterpretScore returns a plain-language label for a score on a 0–1 scale
// (accuracy, R²).
func InterpretScore(score float64) string {
	pct := score * 100
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretGain explains the normalized gain of the blend over the best base
// algorithm.
func InterpretGain(gain float64) string {
	pct := gain * 100
	switch {
	case gain > 0:
		return fmt.Sprintf("Blend improves on the best model, recovering %.0f%% of the remaining headroom.", pct)
	case gain < 0:
		return fmt.Sprintf("Blend is worse than the best model (%.0f%% of its score lost).", -pct)
	default:
		return "Blend matches the best model."
	}
}

// headlineMetric is the metric the summary compares BEST and BLEND on.
func headlineMetric(task models.TaskKind) models.MetricName {
	if task == models.Regression {
		return models.MetricR2
	}
	return models.MetricAccuracy
}

// Summary is the input of FormatSummaryReport.
type Summary struct {
	Record *models.Record
	// Best is the algorithm promoted to BEST; empty if selection failed.
	Best     string
	Training []training.Result
	// Files lists the paths written by the results writer.
	Files []string
}

// FormatSummaryReport produces a plain-language report of one run.
func FormatSummaryReport(s Summary) string {
	var b strings.Builder
	rec := s.Record
	metric := headlineMetric(rec.Task)

	b.WriteString("=== Interpretation ===\n\n")
	fmt.Fprintf(&b, "Model:       %s (%s, %d algorithms)\n", rec.Name, rec.Task, len(rec.Algorithms))

	if len(s.Training) > 0 {
		b.WriteString("\nCross-validated scores:\n")
		for _, r := range s.Training {
			marker := " "
			if r.Algorithm == s.Best {
				marker = "*"
			}
			fmt.Fprintf(&b, "  %s %-8s %.4f [%.4f, %.4f] — %s\n",
				marker, r.Algorithm, r.Score, r.CI.Lower, r.CI.Upper, InterpretScore(r.Score))
		}
	}

	if s.Best != "" {
		fmt.Fprintf(&b, "\nBest model:  %s\n", s.Best)
	} else {
		b.WriteString("\nBest model:  none selected\n")
	}

	p, ok := scoredPartition(rec, metric)
	if ok {
		best, hasBest := rec.Metric(models.AliasBest, p, metric)
		blend, hasBlend := rec.Metric(models.AliasBlend, p, metric)
		if hasBlend {
			fmt.Fprintf(&b, "Blend %s (%s): %.4f — %s\n", metric, p, blend.Float(), InterpretScore(blend.Float()))
		}
		if hasBest && hasBlend {
			gain := statistics.NormalizedGain(best.Float(), blend.Float())
			fmt.Fprintf(&b, "%s\n", InterpretGain(gain))
		}
	}

	if len(s.Files) > 0 {
		b.WriteString("\nWritten:\n")
		for _, f := range s.Files {
			fmt.Fprintf(&b, "  %s\n", f)
		}
	}
	return b.String()
}

// scoredPartition prefers test metrics and falls back to train when the test
// labels are unknown.
func scoredPartition(rec *models.Record, metric models.MetricName) (models.Partition, bool) {
	for _, p := range []models.Partition{models.PartitionTest, models.PartitionTrain} {
		if _, ok := rec.Metric(models.AliasBlend, p, metric); ok {
			return p, true
		}
		if _, ok := rec.Metric(models.AliasBest, p, metric); ok {
			return p, true
		}
	}
	return "", false
}
