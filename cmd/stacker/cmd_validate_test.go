package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_Valid(t *testing.T) {
	dir := writeProject(t, classificationConfig, classificationCSV(4), classificationCSV(2))

	out, err := runRoot(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Schema:")
	assert.Contains(t, out, "✅ Model: titanic (LOGR,KNN,DT)")
}

func TestValidateCommand_SchemaProblems(t *testing.T) {
	dir := writeProject(t, classificationConfig+"  extension: \"c.s.v\"\n", classificationCSV(4), classificationCSV(2))

	out, err := runRoot(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, out, "❌ Schema:")
	assert.Contains(t, out, "/output/extension")
}

func TestValidateCommand_ModelProblems(t *testing.T) {
	config := strings.Replace(classificationConfig, "LOGR,KNN,DT", "LOGR,RIDGE", 1)
	dir := writeProject(t, config, classificationCSV(4), classificationCSV(2))

	out, err := runRoot(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem(s)")
	assert.Contains(t, out, "algorithm RIDGE does not support classification")
}

func TestValidateCommand_RegressionNeedsFolds(t *testing.T) {
	config := strings.Replace(classificationConfig, "  algorithms: LOGR,KNN,DT\n", "  algorithms: LR\n  regression: true\n  n_folds: 1\n", 1)
	dir := writeProject(t, config, classificationCSV(4), classificationCSV(2))

	out, err := runRoot(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, out, "requires model.n_folds of at least 2")
}

func TestValidateCommand_MissingDataFile(t *testing.T) {
	config := strings.Replace(classificationConfig, "test: test.csv", "test: missing.csv", 1)
	dir := writeProject(t, config, classificationCSV(4), classificationCSV(2))

	out, err := runRoot(t, "validate", dir)
	require.Error(t, err)
	assert.Contains(t, out, "data file missing.csv")
}

func TestValidateCommand_NoConfig(t *testing.T) {
	_, err := runRoot(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .stacker.yaml found")
}
