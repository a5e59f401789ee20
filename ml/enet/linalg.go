package enet

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
)

// Package: enet
// 说明: ℓ1ℓ2(弹性网)稀疏回归核心
//       - 目标: (1/n)||Y - Xβ||² + mu·||β||² + tau·||β||_1
//       - linalg.go: 岭回归闭式解/步长/软阈值等基础件
//       - solver.go: 固定(mu, tau)的迭代求解器
//       - path.go:   降序tau序列的warm-start正则化路径
//
// 数值约定:
// 1) 病态矩阵一律走SVD广义逆, 不直接求逆也不报错; 只有SVD分解本身失败才返回错误。
// 2) penalty==0时完全不加正则项, 欠定系统得到最小范数解。
// 3) 所有输出向量都是新分配的, 不与输入共享底层存储。

// RidgeSolve 岭回归闭式解
// n < d 用对偶式(n×n): β = Xᵀ(XXᵀ + penalty·n·I)⁺ Y
// 否则用原始式(d×d): β = (XᵀX + penalty·n·I)⁺ XᵀY
// 两式只在求逆规模上不同, 解相同
func RidgeSolve(X *mat.Dense, Y *mat.VecDense, penalty float64) (*mat.VecDense, error) {
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return nil, errorx.New(errCode.EMPTY_VALUE, "design matrix is empty")
	}
	if Y.Len() != n {
		return nil, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("Y长度%d与X行数%d不匹配", Y.Len(), n))
	}
	if penalty < 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "penalty must be >= 0")
	}

	var XT mat.Dense
	XT.CloneFrom(X.T())

	if n < d {
		// 对偶式
		var G mat.Dense
		G.Mul(X, &XT)
		if penalty > 0 {
			addDiag(&G, penalty*float64(n))
		}
		pinv, err := pseudoInverse(&G)
		if err != nil {
			return nil, err
		}
		var tmp mat.VecDense
		tmp.MulVec(pinv, Y)
		beta := mat.NewVecDense(d, nil)
		beta.MulVec(&XT, &tmp)
		return beta, nil
	}

	// 原始式
	var G mat.Dense
	G.Mul(&XT, X)
	if penalty > 0 {
		addDiag(&G, penalty*float64(n))
	}
	pinv, err := pseudoInverse(&G)
	if err != nil {
		return nil, err
	}
	var XTY mat.VecDense
	XTY.MulVec(&XT, Y)
	beta := mat.NewVecDense(d, nil)
	beta.MulVec(pinv, &XTY)
	return beta, nil
}

// StepSize 迭代求解器的固定步长 2/(λmax + 1e-5)
// λmax取XXᵀ与XᵀX中较小者的最大特征值(两者非零特征值相同)
// 1e-5把步长压进收缩区间, 保证不动点迭代收敛
func StepSize(X *mat.Dense) (float64, error) {
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return 0, errorx.New(errCode.EMPTY_VALUE, "design matrix is empty")
	}

	var G mat.Dense
	if n <= d {
		G.Mul(X, X.T())
	} else {
		G.Mul(X.T(), X)
	}

	size, _ := G.Dims()
	sym := mat.NewSymDense(size, nil)
	for i := 0; i < size; i++ {
		for j := i; j < size; j++ {
			sym.SetSym(i, j, G.At(i, j))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, false); !ok {
		return 0, errorx.New(errCode.NUMERICAL_DEGENERACY, "特征值分解失败")
	}
	values := eig.Values(nil)
	lmax := values[len(values)-1] // 升序排列, 末位最大
	return 2.0 / (lmax + 1e-5), nil
}

// SoftThreshold ℓ1范数的近端算子, 逐元素:
// |x| < th/2 → 0; 否则 x - sign(x)·th/2
// 返回新向量, 不改写输入
func SoftThreshold(v *mat.VecDense, th float64) *mat.VecDense {
	n := v.Len()
	out := mat.NewVecDense(n, nil)
	half := th / 2
	for i := 0; i < n; i++ {
		x := v.AtVec(i)
		switch {
		case x > half:
			out.SetVec(i, x-half)
		case x < -half:
			out.SetVec(i, x+half)
		}
	}
	return out
}

// 用SVD求广义逆, 小奇异值按相对阈值截断(对齐numpy.linalg.pinv)
func pseudoInverse(A *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	ok := svd.Factorize(A, mat.SVDThin)
	if !ok {
		return nil, errorx.New(errCode.NUMERICAL_DEGENERACY, "SVD分解失败")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	sigma := svd.Values(nil)
	m, n := A.Dims()
	sInv := mat.NewDense(n, m, nil)

	// 截断阈值: rcond·σmax
	tol := 0.0
	if len(sigma) > 0 {
		tol = 1e-15 * sigma[0]
	}
	for i, val := range sigma {
		if val > tol {
			sInv.Set(i, i, 1.0/val)
		}
	}

	// A⁺ = V · Σ⁺ · Uᵀ
	var temp mat.Dense
	temp.Mul(&v, sInv)
	var uT mat.Dense
	uT.CloneFrom(u.T())

	var pinv mat.Dense
	pinv.Mul(&temp, &uT)

	return &pinv, nil
}

// 对角线整体加常数: G + c·I
func addDiag(G *mat.Dense, c float64) {
	r, _ := G.Dims()
	for i := 0; i < r; i++ {
		G.Set(i, i, G.At(i, i)+c)
	}
}
