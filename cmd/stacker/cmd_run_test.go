package main

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spboyer/stacker/internal/models"
	"github.com/spboyer/stacker/internal/projectconfig"
	"github.com/spboyer/stacker/internal/reporting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classificationCSV alternates labels so every contiguous fold sees both
// classes.
func classificationCSV(rows int) string {
	var b strings.Builder
	b.WriteString("signal,noise,survived\n")
	for i := 0; i < rows; i++ {
		label := i % 2
		fmt.Fprintf(&b, "%.1f,%d,%d\n", float64(label)*2+float64(i%3)*0.1, i, label)
	}
	return b.String()
}

func regressionCSV(rows int) string {
	var b strings.Builder
	b.WriteString("x,y\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, 2*i+1)
	}
	return b.String()
}

// writeProject lays out a .stacker.yaml with its train and test files and
// returns the directory.
func writeProject(t *testing.T, config, train, test string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, projectconfig.FileName), []byte(config), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.csv"), []byte(train), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.csv"), []byte(test), 0o644))
	return dir
}

const classificationConfig = `model:
  project: titanic
  algorithms: LOGR,KNN,DT
data:
  train: train.csv
  test: test.csv
  target: survived
output:
  base_dir: out
`

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand_TooManyArgs(t *testing.T) {
	_, err := runRoot(t, "run", "a", "b")
	require.Error(t, err)
}

func TestRunCommand_Classification(t *testing.T) {
	dir := writeProject(t, classificationConfig, classificationCSV(12), classificationCSV(6))

	out, err := runRoot(t, "run", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Metrics (titanic, train)")
	assert.Contains(t, out, "Metrics (titanic, test)")
	assert.Contains(t, out, "=== Interpretation ===")
	assert.Contains(t, out, "titanic (classification, 3 algorithms)")
	assert.Contains(t, out, models.AliasBlend)

	files, err := filepath.Glob(filepath.Join(dir, "out", "titanic", "probas_*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSuffix(string(data), "\n"), ","), 6)
}

func TestRunCommand_SavePartition(t *testing.T) {
	dir := writeProject(t, classificationConfig, classificationCSV(12), classificationCSV(6))

	_, err := runRoot(t, "run", dir, "--save-partition", "train")
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "out", "titanic", "probas_*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSuffix(string(data), "\n"), ","), 12)
}

func TestRunCommand_InvalidSavePartition(t *testing.T) {
	dir := writeProject(t, classificationConfig, classificationCSV(12), classificationCSV(6))

	_, err := runRoot(t, "run", dir, "--save-partition", "holdout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be train or test")

	_, statErr := os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunCommand_CompressedPredictions(t *testing.T) {
	dir := writeProject(t, classificationConfig+"  compress: true\n  predictions: true\n",
		classificationCSV(12), classificationCSV(6))

	_, err := runRoot(t, "run", dir)
	require.NoError(t, err)

	for _, kind := range []string{"probas", "preds"} {
		files, err := filepath.Glob(filepath.Join(dir, "out", "titanic", kind+"_*.csv.gz"))
		require.NoError(t, err)
		assert.Len(t, files, 1, kind)
	}
}

func TestRunCommand_RegressionFromFlags(t *testing.T) {
	dir := t.TempDir()
	train := filepath.Join(dir, "train.csv")
	test := filepath.Join(dir, "test.csv")
	require.NoError(t, os.WriteFile(train, []byte(regressionCSV(12)), 0o644))
	require.NoError(t, os.WriteFile(test, []byte(regressionCSV(6)), 0o644))
	outDir := filepath.Join(dir, "results")

	out, err := runRoot(t, "run", dir,
		"--project", "prices",
		"--algorithms", "LR,RIDGE",
		"--regression",
		"--folds", "3",
		"--train", train,
		"--test", test,
		"--target", "y",
		"--output-dir", outDir,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "prices (regression, 2 algorithms)")
	assert.Contains(t, out, "mse")

	// regression carries no probabilities, so nothing is written by default
	_, err = os.Stat(filepath.Join(outDir, "prices"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCommand_SetOverridesModelKeys(t *testing.T) {
	dir := writeProject(t, classificationConfig, classificationCSV(12), classificationCSV(6))

	out, err := runRoot(t, "run", dir, "--set", "algorithms=KNN|DT", "--set", "separator=|")
	require.NoError(t, err)
	assert.Contains(t, out, "titanic (classification, 2 algorithms)")
}

func TestRunCommand_InvalidSet(t *testing.T) {
	dir := writeProject(t, classificationConfig, classificationCSV(12), classificationCSV(6))

	_, err := runRoot(t, "run", dir, "--set", "algorithms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")

	_, err = runRoot(t, "run", dir, "--set", "colour=blue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestRunCommand_MissingProject(t *testing.T) {
	dir := writeProject(t, strings.Replace(classificationConfig, "  project: titanic\n", "", 1),
		classificationCSV(12), classificationCSV(6))

	_, err := runRoot(t, "run", dir)
	require.Error(t, err)

	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "project", cfgErr.Key)
}

func TestRunCommand_SchemaViolation(t *testing.T) {
	dir := writeProject(t, classificationConfig+"  colour: blue\n", classificationCSV(12), classificationCSV(6))

	_, err := runRoot(t, "run", dir)
	require.Error(t, err)

	var schemaErr *projectconfig.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestRunCommand_InvalidWorkers(t *testing.T) {
	dir := writeProject(t, classificationConfig, classificationCSV(12), classificationCSV(6))

	_, err := runRoot(t, "run", dir, "--workers", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--workers")
}

func TestRunCommand_InvalidSaveAlias(t *testing.T) {
	dir := writeProject(t, classificationConfig, classificationCSV(12), classificationCSV(6))

	_, err := runRoot(t, "run", dir, "--save", "LOGR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be BEST or BLEND")
}

func TestRunCommand_GateFailure(t *testing.T) {
	dir := writeProject(t, classificationConfig, classificationCSV(12), classificationCSV(6))
	junit := filepath.Join(dir, "junit.xml")

	_, err := runRoot(t, "run", dir, "--min-score", "1.01", "--junit", junit)
	require.Error(t, err)

	var gateErr *GateFailureError
	require.True(t, errors.As(err, &gateErr))
	assert.Contains(t, gateErr.Message, "scored below accuracy=1.0100")

	data, err := os.ReadFile(junit)
	require.NoError(t, err)
	var suites reporting.JUnitTestSuites
	require.NoError(t, xml.Unmarshal(data, &suites))
	assert.Equal(t, suites.Tests, suites.Failures)
}

func TestRunCommand_GatePasses(t *testing.T) {
	dir := writeProject(t, classificationConfig, classificationCSV(12), classificationCSV(6))

	out, err := runRoot(t, "run", dir, "--min-score", "0", "--junit", filepath.Join(dir, "junit.xml"))
	require.NoError(t, err)
	assert.Contains(t, out, "JUnit report written to:")
}

func TestRunCommand_UnknownGateMetric(t *testing.T) {
	dir := writeProject(t, classificationConfig, classificationCSV(12), classificationCSV(6))

	_, err := runRoot(t, "run", dir, "--min-score", "0.5", "--gate-metric", "mse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not computed for classification")
}

func TestParseSets(t *testing.T) {
	raw, err := parseSets([]string{"n_folds=5", " project = p"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n_folds": "5", "project": " p"}, raw)

	_, err = parseSets([]string{"=5"})
	assert.Error(t, err)
}

func TestDelimiter(t *testing.T) {
	r, err := delimiter("")
	require.NoError(t, err)
	assert.Equal(t, ',', r)

	r, err = delimiter(";")
	require.NoError(t, err)
	assert.Equal(t, ';', r)

	_, err = delimiter(";;")
	assert.Error(t, err)
}
