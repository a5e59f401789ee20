package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
)

func TestClassificationError(t *testing.T) {
	labels := mat.NewVecDense(3, []float64{1, 1, 1})
	pred := mat.NewVecDense(3, []float64{1, 1, -1})
	got, err := ClassificationError(labels, pred)
	require.NoError(t, err)
	assert.Equal(t, 1.0/3.0, got)

	// 全对
	got, err = ClassificationError(labels, labels)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestClassificationErrorSignZero(t *testing.T) {
	// sign(0)=0, 与正负号都不相等
	labels := mat.NewVecDense(2, []float64{0, 1})
	pred := mat.NewVecDense(2, []float64{1, 1})
	got, err := ClassificationError(labels, pred)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got)

	pred2 := mat.NewVecDense(2, []float64{0, 1})
	got, err = ClassificationError(labels, pred2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestBalancedClassificationError(t *testing.T) {
	// mean=1/3, 权重 [4/3, 2/3, 2/3], 全部错分 -> 8/9
	labels := mat.NewVecDense(3, []float64{-1, 1, 1})
	pred := mat.NewVecDense(3, []float64{1, -1, -1})
	got, err := BalancedClassificationError(labels, pred, nil)
	require.NoError(t, err)
	assert.InDelta(t, 8.0/9.0, got, 1e-12)

	// 全对时为0
	got, err = BalancedClassificationError(labels, labels, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestBalancedClassificationErrorExplicitWeights(t *testing.T) {
	labels := mat.NewVecDense(2, []float64{1, -1})
	pred := mat.NewVecDense(2, []float64{-1, -1})
	weights := mat.NewVecDense(2, []float64{2, 6})
	got, err := BalancedClassificationError(labels, pred, weights)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got) // 只有第0个错分: 2/2

	bad := mat.NewVecDense(3, []float64{1, 1, 1})
	_, err = BalancedClassificationError(labels, pred, bad)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.INVALID_VALUE))
}

func TestRegressionError(t *testing.T) {
	labels := mat.NewVecDense(2, []float64{1, 2})
	pred := mat.NewVecDense(2, []float64{0, 4})
	got, err := RegressionError(labels, pred)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)

	got, err = RegressionError(labels, labels)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestPredictionErrorDispatch(t *testing.T) {
	labels := mat.NewVecDense(2, []float64{1, -1})
	pred := mat.NewVecDense(2, []float64{1, 1})

	got, err := PredictionError(labels, pred, CLASSIFICATION)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got)

	got, err = PredictionError(labels, pred, REGRESSION)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	_, err = PredictionError(labels, pred, TASK_MODE_ERROR)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.INVALID_VALUE))
}

func TestMetricLengthMismatch(t *testing.T) {
	labels := mat.NewVecDense(2, []float64{1, -1})
	pred := mat.NewVecDense(3, []float64{1, 1, 1})
	_, err := ClassificationError(labels, pred)
	require.Error(t, err)
	_, err = RegressionError(labels, pred)
	require.Error(t, err)
}

func TestTaskModeEnum(t *testing.T) {
	assert.Equal(t, CLASSIFICATION, GetMyTaskMode("classification"))
	assert.Equal(t, REGRESSION, GetMyTaskMode(" Regression "))
	assert.Equal(t, TASK_MODE_ERROR, GetMyTaskMode("ranking"))
	assert.Equal(t, "classification", CLASSIFICATION.String())
	assert.Equal(t, "regression", REGRESSION.String())
}

func TestNormModeEnum(t *testing.T) {
	assert.Equal(t, NORM_NONE, GetMyNormMode(""))
	assert.Equal(t, NORM_CENTER, GetMyNormMode("center"))
	assert.Equal(t, NORM_STANDARDIZE, GetMyNormMode("Standardize"))
	assert.Equal(t, NORM_MODE_ERROR, GetMyNormMode("whiten"))
	assert.Equal(t, "standardize", NORM_STANDARDIZE.String())
}
