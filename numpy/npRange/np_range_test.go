package npRange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
)

func TestLinspace(t *testing.T) {
	got, err := Linspace(0, 1, 5)
	require.NoError(t, err)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	require.Len(t, got, 5)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
	// 端点精确
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 1.0, got[4])
}

func TestLinspaceSinglePoint(t *testing.T) {
	got, err := Linspace(3, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, got)
}

func TestLinspaceDescending(t *testing.T) {
	got, err := Linspace(1, 0, 3)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got[0], 1e-12)
	assert.InDelta(t, 0.5, got[1], 1e-12)
	assert.Equal(t, 0.0, got[2])
}

func TestLinspaceInvalidNum(t *testing.T) {
	_, err := Linspace(0, 1, 0)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.INVALID_VALUE))
}

func TestGeomspace(t *testing.T) {
	// numpy.geomspace(1, 1000, 4) -> [1, 10, 100, 1000]
	got, err := Geomspace(1, 1000, 4)
	require.NoError(t, err)
	want := []float64{1, 10, 100, 1000}
	require.Len(t, got, 4)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9)
	}
	assert.Equal(t, 1000.0, got[3])
}

func TestGeomspaceNegative(t *testing.T) {
	got, err := Geomspace(-1, -100, 3)
	require.NoError(t, err)
	assert.InDelta(t, -1, got[0], 1e-12)
	assert.InDelta(t, -10, got[1], 1e-9)
	assert.InDelta(t, -100, got[2], 1e-12)
}

func TestGeomspaceInvalid(t *testing.T) {
	_, err := Geomspace(0, 10, 3)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.INVALID_VALUE))

	_, err = Geomspace(-1, 10, 3)
	require.Error(t, err)
	assert.True(t, errorx.IsCode(err, errCode.INVALID_VALUE))

	_, err = Geomspace(1, 10, -1)
	require.Error(t, err)
}
