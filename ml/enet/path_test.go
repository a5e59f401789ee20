package enet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
)

func TestRegPathRequiresDescending(t *testing.T) {
	X, Y, _ := regrFixture()
	_, err := RegPath(X, Y, 0.1, []float64{0.1, 0.5}, nil, 0)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.INVALID_VALUE))

	_, err = RegPath(X, Y, 0.1, nil, nil, 0)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.EMPTY_VALUE))
}

func TestRegPathPruneKeepsIndexAlignment(t *testing.T) {
	// tau=100把所有系数压成0: 该点被剪掉, 但热启动链不断,
	// 后续点仍按输入序列下标对齐
	X, Y, _ := regrFixture()
	taus := []float64{100, 0.01, 0.001}
	path, err := RegPath(X, Y, 0.01, taus, nil, 0)
	require.NoError(t, err)

	require.Len(t, path, 2)
	assert.Equal(t, 1, path[0].Index)
	assert.Equal(t, 0.01, path[0].Tau)
	assert.Equal(t, 2, path[1].Index)
	assert.Equal(t, 0.001, path[1].Tau)
	for _, pt := range path {
		assert.Greater(t, pt.Support.Count(), uint(0))
		assert.Greater(t, pt.Iters, 0)
	}
}

func TestRegPathAllZero(t *testing.T) {
	X, Y, _ := regrFixture()
	path, err := RegPath(X, Y, 0.01, []float64{1000}, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestRegPathMonotonicSupport(t *testing.T) {
	// tau下降, 模型只会越来越稠密
	X, Y, _ := regrFixture()
	taus := []float64{1, 0.3, 0.1, 0.03, 0.01, 0.001}
	path, err := RegPath(X, Y, 0.01, taus, nil, 0)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	prev := uint(0)
	prevIdx := -1
	for _, pt := range path {
		assert.GreaterOrEqual(t, pt.Support.Count(), prev)
		assert.Greater(t, pt.Index, prevIdx)
		prev = pt.Support.Count()
		prevIdx = pt.Index
	}
}

func TestRegPathLassoSaturation(t *testing.T) {
	// n=2 < d=3, mu=0: 第一个tau≈0的解已有3个非零(≥n),
	// 之后的点直接代入无正则最小二乘解, 不再迭代
	X := mat.NewDense(2, 3, []float64{
		1, 0.5, 0.2,
		0.3, 2, 0.8,
	})
	Y := mat.NewVecDense(2, []float64{1, 2})
	betaLS, err := RidgeSolve(X, Y, 0)
	require.NoError(t, err)

	taus := []float64{1e-12, 1e-13, 1e-14}
	path, err := RegPath(X, Y, 0, taus, nil, 0)
	require.NoError(t, err)
	require.Len(t, path, 3)

	// 首点由求解器算出, 贴着最小二乘解
	assert.Equal(t, KMin, path[0].Iters)
	assert.Equal(t, uint(3), path[0].Support.Count())
	assert.True(t, mat.EqualApprox(path[0].Beta, betaLS, 1e-6))

	// 后两点是饱和代入: 迭代数为0, 与最小二乘解完全一致
	for _, pt := range path[1:] {
		assert.Equal(t, 0, pt.Iters)
		assert.True(t, mat.Equal(pt.Beta, betaLS))
	}
}

func TestRegPathWarmStartMatchesColdStart(t *testing.T) {
	// 路径上的warm-start解与单独冷启动求解收敛到同一不动点
	X, Y, _ := regrFixture()
	taus := []float64{0.1, 0.01}
	path, err := RegPath(X, Y, 0.05, taus, nil, 0)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	last := path[len(path)-1]
	cold, _, err := Solve(X, Y, 0.05, last.Tau, nil, 0, 0)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(last.Beta, cold, 0.01))
}
