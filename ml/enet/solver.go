package enet

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
)

const (
	// 自适应容差生效前的最小迭代数; 容差从无穷开始收紧,
	// 没有这个下限, 循环可能在第1轮就假性退出
	KMin = 100
	// 缺省迭代上限
	DefaultKMax = 100000
	// 收敛容差
	tol = 0.01
)

// Solve 固定罚对(mu, tau)的弹性网迭代求解
//
// 不动点更新:
//
//	value = β + step·Xᵀ(Y - Xβ)
//	β⁺    = soft_threshold(value, n·tau·step) / (1 + n·mu·step)
//
// betaInit为nil时从ridge_solve(X, Y, 0)出发; step<=0时内部计算一次
// 收敛判据: 第k轮允许每个分量漂移 |β_i|·tol/k, 全部分量达标才算收敛,
// 且至少迭代KMin轮; 到达kmax直接返回当前估计, 不视为错误,
// 调用方用iters==kmax识别未收敛
func Solve(X *mat.Dense, Y *mat.VecDense, mu, tau float64, betaInit *mat.VecDense, kmax int, step float64) (beta *mat.VecDense, iters int, err error) {
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return nil, 0, errorx.New(errCode.EMPTY_VALUE, "design matrix is empty")
	}
	if Y.Len() != n {
		return nil, 0, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("Y长度%d与X行数%d不匹配", Y.Len(), n))
	}
	if mu < 0 || tau < 0 {
		return nil, 0, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("罚系数必须非负, got mu=%v tau=%v", mu, tau))
	}
	if kmax <= 0 {
		kmax = DefaultKMax
	}

	if step <= 0 {
		step, err = StepSize(X)
		if err != nil {
			return nil, 0, err
		}
	}
	if betaInit == nil {
		betaInit, err = RidgeSolve(X, Y, 0)
		if err != nil {
			return nil, 0, err
		}
	}
	if betaInit.Len() != d {
		return nil, 0, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("betaInit长度%d与X列数%d不匹配", betaInit.Len(), d))
	}

	// 与迭代无关的量只算一次
	muS := float64(n) * mu * step
	tauS := float64(n) * tau * step
	shrink := 1.0 / (1.0 + muS)

	var XtS mat.Dense // step·Xᵀ
	XtS.Scale(step, X.T())
	XtY := mat.NewVecDense(d, nil)
	XtY.MulVec(&XtS, Y)

	beta = mat.NewVecDense(d, nil)
	beta.CopyVec(betaInit)

	value := mat.NewVecDense(d, nil)
	Xb := mat.NewVecDense(n, nil)
	converged := false

	k := 0
	for ; (k < KMin || !converged) && k < kmax; k++ {
		// value = β + XtY - step·Xᵀ·(Xβ)
		Xb.MulVec(X, beta)
		value.MulVec(&XtS, Xb)
		value.SubVec(XtY, value)
		value.AddVec(beta, value)

		// 每轮产出新β, 旧β只用于收敛判断
		next := SoftThreshold(value, tauS)
		if shrink != 1 {
			next.ScaleVec(shrink, next)
		}

		converged = true
		for i := 0; i < d; i++ {
			th := math.Abs(beta.AtVec(i)) * tol / float64(k+1)
			if math.Abs(next.AtVec(i)-beta.AtVec(i)) > th {
				converged = false
				break
			}
		}
		beta = next
	}

	return beta, k, nil
}
