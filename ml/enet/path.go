package enet

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"gonum.org/v1/gonum/mat"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
)

// PathPoint 正则化路径上的一个模型
type PathPoint struct {
	Index   int            // 在tau序列中的下标
	Tau     float64        // ℓ1罚
	Beta    *mat.VecDense  // 系数
	Support *bitset.BitSet // 非零系数掩码
	Iters   int            // 求解迭代数, 饱和代入时为0
}

// RegPath 固定mu, 沿降序tau序列构建warm-start正则化路径
//
// tau从大到小处理, 每次求解用上一个(更稀疏)的解做热启动;
// 相邻tau的解彼此接近, 热启动大幅减少迭代数, 冷启动收敛到同一不动点。
// 全零模型不进入返回序列, 但仍然充当下一次的热启动;
// 保留的点用Index对齐输入tau序列。
//
// mu==0(纯lasso)且上一解的非零数达到样本数n时模型饱和:
// 后续解已知等于无正则最小二乘解, 直接代入, 不再迭代
func RegPath(X *mat.Dense, Y *mat.VecDense, mu float64, taus []float64, betaInit *mat.VecDense, kmax int) ([]PathPoint, error) {
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return nil, errorx.New(errCode.EMPTY_VALUE, "design matrix is empty")
	}
	if len(taus) == 0 {
		return nil, errorx.New(errCode.EMPTY_VALUE, "taus is empty")
	}
	if mu < 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "mu must be >= 0")
	}
	for i := 1; i < len(taus); i++ {
		if taus[i] > taus[i-1] {
			return nil, errorx.New(errCode.INVALID_VALUE,
				fmt.Sprintf("taus必须降序: taus[%d]=%v > taus[%d]=%v", i, taus[i], i-1, taus[i-1]))
		}
	}

	// 无正则最小二乘解: 缺省热启动, 也是lasso饱和时的代入值
	var betaLS *mat.VecDense
	if betaInit == nil || mu == 0 {
		var err error
		betaLS, err = RidgeSolve(X, Y, 0)
		if err != nil {
			return nil, err
		}
	}
	if betaInit == nil {
		betaInit = betaLS
	}

	// 整条路径同一个X, 步长只算一次
	step, err := StepSize(X)
	if err != nil {
		return nil, err
	}

	out := make([]PathPoint, 0, len(taus))
	beta := betaInit
	nonzero := uint(0)
	for i, tau := range taus {
		var (
			next  *mat.VecDense
			iters int
		)
		if mu == 0 && nonzero >= uint(n) {
			next = mat.VecDenseCopyOf(betaLS)
		} else {
			next, iters, err = Solve(X, Y, mu, tau, beta, kmax, step)
			if err != nil {
				return nil, err
			}
		}

		support := Support(next)
		nonzero = support.Count()
		if nonzero > 0 {
			out = append(out, PathPoint{Index: i, Tau: tau, Beta: next, Support: support, Iters: iters})
		}
		beta = next
	}
	return out, nil
}

// Support 非零系数的位置掩码
func Support(beta *mat.VecDense) *bitset.BitSet {
	d := beta.Len()
	s := bitset.New(uint(d))
	for i := 0; i < d; i++ {
		if beta.AtVec(i) != 0 {
			s.Set(uint(i))
		}
	}
	return s
}
