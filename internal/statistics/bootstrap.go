// Package statistics summarizes cross-validation fold scores.
package statistics

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ConfidenceInterval is a percentile bootstrap interval around a mean score.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// Contains reports whether v lies inside the interval.
func (ci ConfidenceInterval) Contains(v float64) bool {
	return v >= ci.Lower && v <= ci.Upper
}

// DefaultBootstrapIterations is the number of resamples drawn per interval.
const DefaultBootstrapIterations = 2000

// BootstrapCI resamples scores with replacement and returns the percentile
// interval of the resampled means at confidenceLevel (e.g. 0.95). Fewer than
// two scores yield a degenerate interval at their mean. The same seed always
// yields the same interval.
func BootstrapCI(scores []float64, confidenceLevel float64, seed uint64) ConfidenceInterval {
	m := mean(scores)
	ci := ConfidenceInterval{Lower: m, Upper: m, Mean: m, ConfidenceLevel: confidenceLevel}
	n := len(scores)
	if n < 2 {
		return ci
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	means := make([]float64, DefaultBootstrapIterations)
	sample := make([]float64, n)
	for i := range means {
		for j := range sample {
			sample[j] = scores[rng.IntN(n)]
		}
		means[i] = stat.Mean(sample, nil)
	}
	sort.Float64s(means)

	alpha := 1 - confidenceLevel
	ci.Lower = stat.Quantile(alpha/2, stat.Empirical, means, nil)
	ci.Upper = stat.Quantile(1-alpha/2, stat.Empirical, means, nil)
	ci.NumBootstraps = len(means)
	return ci
}

// NormalizedGain is the share of the remaining headroom a score recovers over
// a baseline on a [0, 1] scale: (score - base) / (1 - base). It is 0 when the
// baseline is already perfect and 1 when the score is.
func NormalizedGain(base, score float64) float64 {
	switch {
	case base >= 1:
		return 0
	case score >= 1:
		return 1
	case score == base:
		return 0
	}
	return (score - base) / (1 - base)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
