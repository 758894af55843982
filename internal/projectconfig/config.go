// Package projectconfig provides the ProjectConfig struct and loader for
// .stacker.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/stacker/internal/models"
	"github.com/spboyer/stacker/internal/validation"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by Load.
const FileName = ".stacker.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultSeparator  = ","
	DefaultAlgorithms = "LOGR,KNN,DT"
	DefaultNumFolds   = 3

	DefaultTrainPath = "data/train.csv"
	DefaultTestPath  = "data/test.csv"
	DefaultDelimiter = ","

	DefaultBaseDir        = "output"
	DefaultExtension      = "csv"
	DefaultFieldSeparator = ","

	DefaultWorkers = 4
)

// ModelConfig holds the keys a model record is built from.
type ModelConfig struct {
	Project    string `yaml:"project,omitempty"`
	Separator  string `yaml:"separator,omitempty"`
	Algorithms string `yaml:"algorithms,omitempty"`
	Regression *bool  `yaml:"regression,omitempty"`
	NumFolds   int    `yaml:"n_folds,omitempty"`
}

// DataConfig locates the train and test files.
type DataConfig struct {
	Train     string `yaml:"train,omitempty"`
	Test      string `yaml:"test,omitempty"`
	Target    string `yaml:"target,omitempty"`
	Delimiter string `yaml:"delimiter,omitempty"`
}

// OutputConfig controls the results writer.
type OutputConfig struct {
	BaseDir        string `yaml:"base_dir,omitempty"`
	Extension      string `yaml:"extension,omitempty"`
	FieldSeparator string `yaml:"field_separator,omitempty"`
	Compress       *bool  `yaml:"compress,omitempty"`
	// Predictions also writes the discrete predictions next to probabilities.
	Predictions *bool `yaml:"predictions,omitempty"`
}

// MetricsConfig tunes the metrics engine.
type MetricsConfig struct {
	Workers        int   `yaml:"workers,omitempty"`
	ProbabilityAUC *bool `yaml:"probability_auc,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .stacker.yaml.
type ProjectConfig struct {
	Model   ModelConfig   `yaml:"model,omitempty"`
	Data    DataConfig    `yaml:"data,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	// Path is the file the config was read from; empty for pure defaults.
	Path string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated. The
// project name and target column have no default.
func New() *ProjectConfig {
	return &ProjectConfig{
		Model: ModelConfig{
			Separator:  DefaultSeparator,
			Algorithms: DefaultAlgorithms,
			Regression: boolPtr(false),
			NumFolds:   DefaultNumFolds,
		},
		Data: DataConfig{
			Train:     DefaultTrainPath,
			Test:      DefaultTestPath,
			Delimiter: DefaultDelimiter,
		},
		Output: OutputConfig{
			BaseDir:        DefaultBaseDir,
			Extension:      DefaultExtension,
			FieldSeparator: DefaultFieldSeparator,
			Compress:       boolPtr(false),
			Predictions:    boolPtr(false),
		},
		Metrics: MetricsConfig{
			Workers:        DefaultWorkers,
			ProbabilityAUC: boolPtr(false),
		},
	}
}

// SchemaError lists the schema violations of a config file.
type SchemaError struct {
	Path     string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s does not match the config schema:\n  %s", e.Path, strings.Join(e.Problems, "\n  "))
}

// Load finds .stacker.yaml by walking up from startDir (max 10 levels),
// validates it against the config schema, unmarshals it, and fills in
// missing fields with defaults. If no config file is found, returns defaults
// with a nil error. Real I/O errors (e.g. permission denied) are returned to
// the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	if problems := validation.ValidateConfigBytes(data); len(problems) > 0 {
		return nil, &SchemaError{Path: path, Problems: problems}
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Path = path
	return cfg, nil
}

// findConfigFile walks up from dir looking for .stacker.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) (string, []byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Model
	if src.Model.Project != "" {
		dst.Model.Project = src.Model.Project
	}
	if src.Model.Separator != "" {
		dst.Model.Separator = src.Model.Separator
	}
	if src.Model.Algorithms != "" {
		dst.Model.Algorithms = src.Model.Algorithms
	}
	if src.Model.Regression != nil {
		dst.Model.Regression = src.Model.Regression
	}
	if src.Model.NumFolds != 0 {
		dst.Model.NumFolds = src.Model.NumFolds
	}

	// Data
	if src.Data.Train != "" {
		dst.Data.Train = src.Data.Train
	}
	if src.Data.Test != "" {
		dst.Data.Test = src.Data.Test
	}
	if src.Data.Target != "" {
		dst.Data.Target = src.Data.Target
	}
	if src.Data.Delimiter != "" {
		dst.Data.Delimiter = src.Data.Delimiter
	}

	// Output
	if src.Output.BaseDir != "" {
		dst.Output.BaseDir = src.Output.BaseDir
	}
	if src.Output.Extension != "" {
		dst.Output.Extension = src.Output.Extension
	}
	if src.Output.FieldSeparator != "" {
		dst.Output.FieldSeparator = src.Output.FieldSeparator
	}
	if src.Output.Compress != nil {
		dst.Output.Compress = src.Output.Compress
	}
	if src.Output.Predictions != nil {
		dst.Output.Predictions = src.Output.Predictions
	}

	// Metrics
	if src.Metrics.Workers != 0 {
		dst.Metrics.Workers = src.Metrics.Workers
	}
	if src.Metrics.ProbabilityAUC != nil {
		dst.Metrics.ProbabilityAUC = src.Metrics.ProbabilityAUC
	}
}

// Specs converts the model and output sections to record construction keys.
// Relative output directories resolve against the config file's directory.
func (c *ProjectConfig) Specs() models.Specs {
	return models.Specs{
		Project:        c.Model.Project,
		Separator:      c.Model.Separator,
		Algorithms:     c.Model.Algorithms,
		Regression:     boolValue(c.Model.Regression),
		NumFolds:       c.Model.NumFolds,
		BaseDir:        c.Resolve(c.Output.BaseDir),
		Extension:      c.Output.Extension,
		FieldSeparator: c.Output.FieldSeparator,
	}
}

// Resolve interprets a relative path against the directory holding the
// config file. Absolute paths and configs without a file are returned as-is.
func (c *ProjectConfig) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.Path), p)
}

// Compress reports whether output files are gzipped.
func (c *ProjectConfig) Compress() bool { return boolValue(c.Output.Compress) }

// WritePredictions reports whether prediction files are written.
func (c *ProjectConfig) WritePredictions() bool { return boolValue(c.Output.Predictions) }

// ProbabilityAUC reports whether ROC AUC uses probabilities.
func (c *ProjectConfig) ProbabilityAUC() bool { return boolValue(c.Metrics.ProbabilityAUC) }

func boolPtr(b bool) *bool {
	return &b
}

func boolValue(b *bool) bool {
	return b != nil && *b
}
