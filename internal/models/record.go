package models

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// TaskKind selects the metric battery and meta-learner used for a record.
type TaskKind int

const (
	Classification TaskKind = iota
	Regression
)

func (k TaskKind) String() string {
	switch k {
	case Classification:
		return "classification"
	case Regression:
		return "regression"
	default:
		return fmt.Sprintf("TaskKind(%d)", int(k))
	}
}

// Partition names one of the two dataset splits.
type Partition string

const (
	PartitionTrain Partition = "train"
	PartitionTest  Partition = "test"
)

// Partitions lists the partitions in evaluation order.
var Partitions = []Partition{PartitionTrain, PartitionTest}

// ParsePartition converts a flag or config value to a Partition.
func ParsePartition(s string) (Partition, error) {
	switch Partition(strings.ToLower(strings.TrimSpace(s))) {
	case PartitionTrain:
		return PartitionTrain, nil
	case PartitionTest:
		return PartitionTest, nil
	default:
		return "", fmt.Errorf("invalid partition %q: must be train or test", s)
	}
}

// Reserved algorithm ids written by the ensemble package.
const (
	AliasBest  = "BEST"
	AliasBlend = "BLEND"
)

var aliases = []string{AliasBest, AliasBlend}

// IsAlias reports whether id is one of the reserved synthetic algorithm ids.
func IsAlias(id string) bool {
	return id == AliasBest || id == AliasBlend
}

// ArtifactKey addresses a per-partition artifact of one algorithm.
type ArtifactKey struct {
	Algorithm string
	Partition Partition
}

// Key is shorthand for building an ArtifactKey.
func Key(algorithm string, p Partition) ArtifactKey {
	return ArtifactKey{Algorithm: algorithm, Partition: p}
}

// Record accumulates every artifact of one modeling run: fitted estimators,
// per-partition predictions and probabilities, ranking scores and metrics.
//
// A Record is owned by a single session and is not safe for concurrent
// mutation.
type Record struct {
	Name       string
	Task       TaskKind
	Algorithms []string
	NumFolds   int
	Specs      Specs

	XTrain *mat.Dense
	XTest  *mat.Dense
	// YTrain and YTest are nil when the labels of a partition are unknown.
	YTrain []float64
	YTest  []float64

	Estimators    map[string]Estimator
	Predictions   map[ArtifactKey][]float64
	Probabilities map[ArtifactKey][]float64
	Scores        map[string]float64
	Metrics       map[MetricKey]MetricValue
	Coefficients  map[string][]float64
	Importances   map[string][]float64
}

// NewRecord validates specs and returns an empty record for them.
// Most callers should go through Registry.Create, which also guards against
// duplicate project names.
func NewRecord(specs Specs) (*Record, error) {
	if err := specs.Validate(); err != nil {
		return nil, err
	}
	algorithms, err := specs.AlgorithmList()
	if err != nil {
		return nil, err
	}

	task := Classification
	if specs.Regression {
		task = Regression
	}

	return &Record{
		Name:          specs.Project,
		Task:          task,
		Algorithms:    algorithms,
		NumFolds:      specs.NumFolds,
		Specs:         specs,
		Estimators:    make(map[string]Estimator),
		Predictions:   make(map[ArtifactKey][]float64),
		Probabilities: make(map[ArtifactKey][]float64),
		Scores:        make(map[string]float64),
		Metrics:       make(map[MetricKey]MetricValue),
		Coefficients:  make(map[string][]float64),
		Importances:   make(map[string][]float64),
	}, nil
}

func (r *Record) String() string {
	return r.Name
}

// IsClassification reports whether the record holds a classification task.
func (r *Record) IsClassification() bool {
	return r.Task == Classification
}

// Features returns the feature matrix of a partition.
func (r *Record) Features(p Partition) *mat.Dense {
	if p == PartitionTrain {
		return r.XTrain
	}
	return r.XTest
}

// Labels returns the ground-truth labels of a partition, or nil when unknown.
func (r *Record) Labels(p Partition) []float64 {
	if p == PartitionTrain {
		return r.YTrain
	}
	return r.YTest
}

// SetData installs the dataset matrices. Either label slice may be nil.
func (r *Record) SetData(xTrain, xTest *mat.Dense, yTrain, yTest []float64) {
	r.XTrain = xTrain
	r.XTest = xTest
	r.YTrain = yTrain
	r.YTest = yTest
}

// Prediction returns the stored predictions of algorithm on partition p.
func (r *Record) Prediction(algorithm string, p Partition) ([]float64, bool) {
	v, ok := r.Predictions[Key(algorithm, p)]
	return v, ok
}

// SetPrediction stores predictions of algorithm on partition p.
func (r *Record) SetPrediction(algorithm string, p Partition, values []float64) {
	r.Predictions[Key(algorithm, p)] = values
}

// Probability returns the stored positive-class probabilities.
func (r *Record) Probability(algorithm string, p Partition) ([]float64, bool) {
	v, ok := r.Probabilities[Key(algorithm, p)]
	return v, ok
}

// SetProbability stores positive-class probabilities. It is a no-op for
// regression records, which never carry probabilities.
func (r *Record) SetProbability(algorithm string, p Partition, values []float64) {
	if !r.IsClassification() {
		return
	}
	r.Probabilities[Key(algorithm, p)] = values
}

// Metric looks up a single computed metric.
func (r *Record) Metric(algorithm string, p Partition, name MetricName) (MetricValue, bool) {
	v, ok := r.Metrics[MetricKey{Algorithm: algorithm, Partition: p, Metric: name}]
	return v, ok
}

// MetricEntry is one named metric value.
type MetricEntry struct {
	Name  MetricName
	Value MetricValue
}

// MetricsFor returns the metrics stored for algorithm on partition p in the
// canonical battery order.
func (r *Record) MetricsFor(algorithm string, p Partition) []MetricEntry {
	var entries []MetricEntry
	for k, v := range r.Metrics {
		if k.Algorithm == algorithm && k.Partition == p {
			entries = append(entries, MetricEntry{Name: k.Metric, Value: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return metricRank(entries[i].Name) < metricRank(entries[j].Name)
	})
	return entries
}

// Aliases returns the synthetic algorithm ids that currently hold an estimator.
func (r *Record) Aliases() []string {
	var out []string
	for _, a := range aliases {
		if _, ok := r.Estimators[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// ClearAlias removes every artifact stored under a synthetic alias.
func (r *Record) ClearAlias(alias string) {
	delete(r.Estimators, alias)
	delete(r.Scores, alias)
	delete(r.Coefficients, alias)
	delete(r.Importances, alias)
	for _, p := range Partitions {
		delete(r.Predictions, Key(alias, p))
		delete(r.Probabilities, Key(alias, p))
	}
	for k := range r.Metrics {
		if k.Algorithm == alias {
			delete(r.Metrics, k)
		}
	}
}

// RequireArtifacts checks that every base algorithm has an estimator and
// predictions for both partitions, plus probabilities for classification.
func (r *Record) RequireArtifacts() error {
	for _, algo := range r.Algorithms {
		if _, ok := r.Estimators[algo]; !ok {
			return &MissingArtifactError{Algorithm: algo, Artifact: "estimator"}
		}
		for _, p := range Partitions {
			if _, ok := r.Prediction(algo, p); !ok {
				return &MissingArtifactError{Algorithm: algo, Partition: p, Artifact: "predictions"}
			}
			if r.IsClassification() {
				if _, ok := r.Probability(algo, p); !ok {
					return &MissingArtifactError{Algorithm: algo, Partition: p, Artifact: "probabilities"}
				}
			}
		}
	}
	return nil
}
