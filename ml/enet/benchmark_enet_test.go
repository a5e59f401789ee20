package enet

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

var (
	benchX    = benchDesign(60, 40)
	benchY    = benchTarget(benchX)
	benchStep = mustStep(benchX)
	benchTaus = []float64{0.5, 0.2, 0.1, 0.05, 0.02, 0.01}
)

// 确定性设计矩阵, 不依赖随机源
func benchDesign(n, d int) *mat.Dense {
	X := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			X.Set(i, j, math.Sin(float64(i*d+j))+0.1*float64(j%5))
		}
	}
	return X
}

// 真实权重只有5个非零, 其余列是干扰项
func benchTarget(X *mat.Dense) *mat.VecDense {
	n, d := X.Dims()
	w := mat.NewVecDense(d, nil)
	for j := 0; j < 5; j++ {
		w.SetVec(j, 1.0/float64(j+1))
	}
	Y := mat.NewVecDense(n, nil)
	Y.MulVec(X, w)
	return Y
}

func mustStep(X *mat.Dense) float64 {
	s, err := StepSize(X)
	if err != nil {
		panic(err)
	}
	return s
}

// ------------------- 步长(最大特征值) -------------------

func BenchmarkStepSize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = StepSize(benchX)
	}
}

// ------------------- 单点求解: 冷启动 vs 热启动 -------------------

func BenchmarkSolveColdStart(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _, _ = Solve(benchX, benchY, 0.1, 0.1, nil, 0, benchStep)
	}
}

func BenchmarkSolveWarmStart(b *testing.B) {
	warm, _, err := Solve(benchX, benchY, 0.1, 0.12, nil, 0, benchStep)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = Solve(benchX, benchY, 0.1, 0.1, warm, 0, benchStep)
	}
}

// ------------------- 整条正则化路径 -------------------

func BenchmarkRegPath(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = RegPath(benchX, benchY, 0.1, benchTaus, nil, 0)
	}
}

// ------------------- 验证内部步长与显式步长结果一致 -------------------

func TestStepOverrideConsistency(t *testing.T) {
	b1, k1, err := Solve(benchX, benchY, 0.1, 0.1, nil, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	b2, k2, err := Solve(benchX, benchY, 0.1, 0.1, nil, 0, benchStep)
	if err != nil {
		t.Fatal(err)
	}

	t.Log("internal step iters:", k1)
	t.Log("explicit step iters:", k2)

	if k1 != k2 {
		t.Fatal("iteration counts mismatch")
	}
	if !mat.Equal(b1, b2) {
		t.Fatal("betas mismatch")
	}
}
