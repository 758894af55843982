package learners

import (
	"testing"

	"github.com/spboyer/stacker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const tol = 1e-6

func column(vals ...float64) *mat.Dense {
	return mat.NewDense(len(vals), 1, vals)
}

func TestNew(t *testing.T) {
	tests := []struct {
		id      string
		task    models.TaskKind
		want    any
		wantErr string
	}{
		{id: "LOGR", task: models.Classification, want: &LogisticRegression{}},
		{id: "logr", task: models.Classification, want: &LogisticRegression{}},
		{id: "LR", task: models.Regression, want: &Ridge{}},
		{id: "RIDGE", task: models.Regression, want: &Ridge{}},
		{id: "KNN", task: models.Classification, want: &KNeighbors{}},
		{id: "DT", task: models.Regression, want: &DecisionTree{}},
		{id: "LOGR", task: models.Regression, wantErr: "does not support"},
		{id: "SVM", task: models.Classification, wantErr: "unknown algorithm"},
	}
	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.task.String(), func(t *testing.T) {
			l, err := New(tt.id, tt.task)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, l)
		})
	}
}

func TestAlgorithms(t *testing.T) {
	assert.Equal(t, []string{"DT", "KNN", "LOGR", "LR", "RIDGE"}, Algorithms())
}

func TestRowsAndPick(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	got := Rows(X, []int{2, 0})
	assert.Equal(t, []float64{5, 6, 1, 2}, got.RawMatrix().Data)
	assert.Equal(t, []float64{30, 10}, Pick([]float64{10, 20, 30}, []int{2, 0}))
}

func TestBinaryClasses(t *testing.T) {
	classes, err := binaryClasses([]float64{3, 1, 3, 1})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{1, 3}, classes)

	_, err = binaryClasses([]float64{1, 1})
	assert.Error(t, err)
	_, err = binaryClasses([]float64{0, 1, 2})
	assert.Error(t, err)
}

func TestKFold(t *testing.T) {
	folds, err := KFold(5, 2)
	require.NoError(t, err)
	require.Len(t, folds, 2)
	assert.Equal(t, []int{0, 1, 2}, folds[0].Test)
	assert.Equal(t, []int{3, 4}, folds[0].Train)
	assert.Equal(t, []int{3, 4}, folds[1].Test)
	assert.Equal(t, []int{0, 1, 2}, folds[1].Train)

	_, err = KFold(5, 1)
	assert.Error(t, err)
	_, err = KFold(2, 3)
	assert.Error(t, err)
}

func TestStratifiedKFold(t *testing.T) {
	folds, err := StratifiedKFold([]float64{0, 0, 0, 0, 1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, folds, 2)
	assert.Equal(t, []int{0, 2, 4}, folds[0].Test)
	assert.Equal(t, []int{1, 3, 5}, folds[0].Train)
	assert.Equal(t, []int{1, 3, 5}, folds[1].Test)
	assert.Equal(t, []int{0, 2, 4}, folds[1].Train)

	_, err = StratifiedKFold([]float64{0, 1}, 1)
	assert.Error(t, err)
	_, err = StratifiedKFold([]float64{0, 1}, 3)
	assert.Error(t, err)
}

func TestStratifiedKFold_SortedLabelsKeepBothClasses(t *testing.T) {
	y := []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1}
	folds, err := StratifiedKFold(y, 3)
	require.NoError(t, err)
	require.Len(t, folds, 3)

	for i, f := range folds {
		assert.Len(t, f.Test, 4, "fold %d", i)
		_, err := binaryClasses(Pick(y, f.Train))
		assert.NoError(t, err, "fold %d", i)
		assert.Contains(t, Pick(y, f.Test), 1.0, "fold %d", i)
	}
}

func TestStandardizer(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 7,
		2, 7,
		3, 7,
	})
	s := FitStandardizer(X)
	assert.InDelta(t, 2, s.Mean[0], tol)
	assert.Equal(t, 1.0, s.Scale[1])

	out := s.Transform(X)
	assert.InDelta(t, 0, out.At(1, 0), tol)
	assert.InDelta(t, 0, out.At(0, 1), tol)
	assert.Less(t, out.At(0, 0), 0.0)
}

func TestLinearRegression_RecoversLine(t *testing.T) {
	X := column(0, 1, 2, 3)
	y := []float64{1, 3, 5, 7}

	m := NewLinearRegression()
	require.NoError(t, m.Fit(X, y))

	coef, ok := m.Coefficients()
	require.True(t, ok)
	assert.InDelta(t, 2, coef[0], tol)
	assert.InDelta(t, 1, m.Intercept(), tol)

	preds, err := m.Predict(column(10))
	require.NoError(t, err)
	assert.InDelta(t, 21, preds[0], 1e-5)
}

func TestRidge_ShrinksCoefficients(t *testing.T) {
	// centered x has Σx² = 5 and Σxy = 10, so w = 10 / (5 + α)
	m := NewRidge(5)
	require.NoError(t, m.Fit(column(0, 1, 2, 3), []float64{1, 3, 5, 7}))

	coef, _ := m.Coefficients()
	assert.InDelta(t, 1, coef[0], tol)
	assert.InDelta(t, 4-1.5, m.Intercept(), tol)
}

func TestRidge_Errors(t *testing.T) {
	_, err := NewRidge(1).Predict(column(1))
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.Error(t, NewRidge(-1).Fit(column(1, 2), []float64{1, 2}))
	assert.Error(t, NewRidge(1).Fit(column(1, 2), []float64{1}))

	m := NewRidge(1)
	require.NoError(t, m.Fit(column(1, 2), []float64{1, 2}))
	_, err = m.Predict(mat.NewDense(1, 2, nil))
	assert.Error(t, err)
}

func TestRidgeCV_PicksSmallestPenaltyOnCleanLine(t *testing.T) {
	X := column(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	y := make([]float64, 10)
	for i := range y {
		y[i] = 2*float64(i) + 1
	}

	m := NewRidgeCV(BlendAlphas, 5)
	require.NoError(t, m.Fit(X, y))
	assert.Equal(t, 0.0001, m.Alpha())
	assert.Len(t, m.CVScores(), len(BlendAlphas))

	preds, err := m.Predict(column(4))
	require.NoError(t, err)
	assert.InDelta(t, 9, preds[0], 1e-2)
}

func TestRidgeCV_TiesKeepFirstAlpha(t *testing.T) {
	// a constant target scores every alpha identically
	m := NewRidgeCV([]float64{10, 1, 0.1}, 2)
	require.NoError(t, m.Fit(column(1, 2, 3, 4), []float64{5, 5, 5, 5}))
	assert.Equal(t, 10.0, m.Alpha())
}

func TestRidgeCV_Errors(t *testing.T) {
	assert.Error(t, NewRidgeCV(nil, 2).Fit(column(1, 2), []float64{1, 2}))
	assert.Error(t, NewRidgeCV(BlendAlphas, 3).Fit(column(1, 2), []float64{1, 2}))

	_, err := NewRidgeCV(BlendAlphas, 2).Predict(column(1))
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestLogisticRegression_SeparatesClasses(t *testing.T) {
	X := column(0, 1, 2, 3)
	y := []float64{0, 0, 1, 1}

	m := NewLogisticRegression()
	require.NoError(t, m.Fit(X, y))

	preds, err := m.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, preds)

	probs, err := m.PredictProbability(X)
	require.NoError(t, err)
	for i := 1; i < len(probs); i++ {
		assert.Greater(t, probs[i], probs[i-1])
	}
	// the problem is symmetric about x = 1.5
	assert.InDelta(t, 1, probs[0]+probs[3], 1e-6)

	coef, ok := m.Coefficients()
	require.True(t, ok)
	assert.Greater(t, coef[0], 0.0)
	assert.InDelta(t, -1.5*coef[0], m.Intercept(), 1e-6)
	assert.Equal(t, [2]float64{0, 1}, m.Classes())
	assert.Greater(t, m.Iterations(), 0)
}

func TestLogisticRegression_KeepsOriginalLabels(t *testing.T) {
	m := NewLogisticRegression()
	require.NoError(t, m.Fit(column(0, 1, 2, 3), []float64{-1, -1, 4, 4}))

	preds, err := m.Predict(column(-5, 8))
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 4}, preds)
}

func TestLogisticRegression_Errors(t *testing.T) {
	assert.Error(t, NewLogisticRegression().Fit(column(1, 2), []float64{1, 1}))

	m := &LogisticRegression{C: 0, MaxIter: 10}
	assert.Error(t, m.Fit(column(1, 2), []float64{0, 1}))

	_, err := NewLogisticRegression().PredictProbability(column(1))
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestKNeighbors_Classification(t *testing.T) {
	X := column(0, 1, 2, 10, 11, 12)
	y := []float64{0, 0, 0, 1, 1, 1}

	m := NewKNeighbors(3, models.Classification)
	require.NoError(t, m.Fit(X, y))

	preds, err := m.Predict(column(1, 11))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, preds)

	probs, err := m.PredictProbability(column(1, 11, 6.5))
	require.NoError(t, err)
	assert.InDelta(t, 0, probs[0], tol)
	assert.InDelta(t, 1, probs[1], tol)
}

func TestKNeighbors_Regression(t *testing.T) {
	m := NewKNeighbors(2, models.Regression)
	require.NoError(t, m.Fit(column(0, 1, 10), []float64{2, 4, 100}))

	preds, err := m.Predict(column(0.4))
	require.NoError(t, err)
	assert.InDelta(t, 3, preds[0], tol)
}

func TestKNeighbors_KLargerThanTrainingSet(t *testing.T) {
	m := NewKNeighbors(50, models.Regression)
	require.NoError(t, m.Fit(column(0, 1), []float64{2, 4}))

	preds, err := m.Predict(column(0))
	require.NoError(t, err)
	assert.InDelta(t, 3, preds[0], tol)
}

func TestKNeighbors_NotFitted(t *testing.T) {
	_, err := NewKNeighbors(1, models.Regression).Predict(column(1))
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestDecisionTree_Classification(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 9,
		2, 9,
		3, 9,
		4, 9,
	})
	y := []float64{0, 0, 1, 1}

	m := NewDecisionTree(DefaultTreeDepth, models.Classification)
	require.NoError(t, m.Fit(X, y))

	preds, err := m.Predict(mat.NewDense(2, 2, []float64{2.4, 0, 2.6, 0}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, preds)

	probs, err := m.PredictProbability(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1}, probs)

	imp, ok := m.FeatureImportances()
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{1, 0}, imp, tol)
}

func TestDecisionTree_Regression(t *testing.T) {
	m := NewDecisionTree(1, models.Regression)
	require.NoError(t, m.Fit(column(1, 2, 3, 4), []float64{1, 1, 5, 5}))

	preds, err := m.Predict(column(0, 10))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 5}, preds)
}

func TestDecisionTree_ZeroDepthPredictsMean(t *testing.T) {
	m := NewDecisionTree(0, models.Regression)
	require.NoError(t, m.Fit(column(1, 2, 3), []float64{1, 2, 6}))

	preds, err := m.Predict(column(100))
	require.NoError(t, err)
	assert.InDelta(t, 3, preds[0], tol)

	imp, ok := m.FeatureImportances()
	require.True(t, ok)
	assert.Equal(t, []float64{0}, imp)
}

func TestDecisionTree_NotFitted(t *testing.T) {
	m := NewDecisionTree(2, models.Classification)
	_, err := m.Predict(column(1))
	assert.ErrorIs(t, err, ErrNotFitted)
	_, ok := m.FeatureImportances()
	assert.False(t, ok)
}

func TestCapabilities(t *testing.T) {
	var (
		_ models.ProbabilityEstimator = (*LogisticRegression)(nil)
		_ models.ProbabilityEstimator = (*KNeighbors)(nil)
		_ models.ProbabilityEstimator = (*DecisionTree)(nil)
		_ models.CoefficientProvider  = (*LogisticRegression)(nil)
		_ models.CoefficientProvider  = (*Ridge)(nil)
		_ models.CoefficientProvider  = (*RidgeCV)(nil)
		_ models.ImportanceProvider   = (*DecisionTree)(nil)
	)
}
