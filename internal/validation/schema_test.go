package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `model:
  project: titanic
  separator: ","
  algorithms: "LOGR,KNN,DT"
  regression: false
  n_folds: 3
data:
  train: data/train.csv
  test: data/test.csv
  target: survived
output:
  base_dir: output
  extension: csv
  field_separator: ","
  compress: true
metrics:
  workers: 2
  probability_auc: true
`

func TestValidateConfigBytes_Valid(t *testing.T) {
	require.Empty(t, ValidateConfigBytes([]byte(validConfigYAML)))
}

func TestValidateConfigBytes_EmptyDocument(t *testing.T) {
	assert.Empty(t, ValidateConfigBytes(nil))
}

func TestValidateConfigBytes_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantLoc string
	}{
		{name: "unknown section", yaml: "server:\n  port: 1\n", wantLoc: "/"},
		{name: "unknown key", yaml: "model:\n  folds: 3\n", wantLoc: "/model"},
		{name: "negative folds", yaml: "model:\n  n_folds: -1\n", wantLoc: "/model/n_folds"},
		{name: "fractional folds", yaml: "model:\n  n_folds: 2.5\n", wantLoc: "/model/n_folds"},
		{name: "empty project", yaml: "model:\n  project: \"\"\n", wantLoc: "/model/project"},
		{name: "regression not bool", yaml: "model:\n  regression: maybe\n", wantLoc: "/model/regression"},
		{name: "zero workers", yaml: "metrics:\n  workers: 0\n", wantLoc: "/metrics/workers"},
		{name: "dotted extension", yaml: "output:\n  extension: .csv\n", wantLoc: "/output/extension"},
		{name: "long delimiter", yaml: "data:\n  delimiter: \";;\"\n", wantLoc: "/data/delimiter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateConfigBytes([]byte(tt.yaml))
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0], tt.wantLoc+": ")
		})
	}
}

func TestValidateConfigBytes_BadYAML(t *testing.T) {
	errs := ValidateConfigBytes([]byte("model: [unclosed"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "YAML parse error")
}
