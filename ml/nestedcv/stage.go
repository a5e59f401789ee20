package nestedcv

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
	"l1l2/infra/observe/log/staticLog"
	"l1l2/ml/enet"
	"l1l2/ml/kcv"
	"l1l2/ml/tools"
)

// StageOne 内层K折联合选择(tau, lambda)
//
// 每折: 切行 -> 用训练块的因子归一化 -> 建正则化路径 ->
// 对路径上每个特征子集, 逐lambda做ridge重拟合并在原始量纲下打分,
// 得到折内(tau × lambda)误差网格。
// 折间按fold序逐元素求和再除, 平均值与fold完成顺序无关;
// 最小均值held-out误差的下标对即选择结果, 平票取行主序首次出现。
//
// 各折独立, 在errgroup上并发执行, 并发度p.Workers
func StageOne(X *mat.Dense, Y *mat.VecDense, splits []kcv.Split, p Params) (tauOpt, lambdaOpt int, errTs, errTr *mat.Dense, err error) {
	if len(splits) == 0 {
		return 0, 0, nil, nil, errorx.New(errCode.EMPTY_VALUE, "splits is empty")
	}
	if len(p.Taus) == 0 || len(p.Lambdas) == 0 {
		return 0, 0, nil, nil, errorx.New(errCode.EMPTY_VALUE, "tau/lambda序列不能为空")
	}

	type foldGrid struct {
		ts, tr *mat.Dense
		iters  int
	}
	grids := make([]foldGrid, len(splits))

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, sp := range splits {
		i, sp := i, sp // go.mod目前是go 1.21: 显式按迭代复制, 语义与go>=1.22一致
		g.Go(func() error {
			t0 := time.Now()
			ts, tr, iters, foldErr := stageOneFold(X, Y, sp, p)
			if foldErr != nil {
				return foldErr
			}
			grids[i] = foldGrid{ts: ts, tr: tr, iters: iters}
			staticLog.Log.Debugf("内层fold %d 完成, 用时%s", i, time.Since(t0))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, nil, nil, err
	}

	T, L := len(p.Taus), len(p.Lambdas)
	errTs = mat.NewDense(T, L, nil)
	errTr = mat.NewDense(T, L, nil)
	maxIters := 0
	for i := range grids {
		errTs.Add(errTs, grids[i].ts)
		errTr.Add(errTr, grids[i].tr)
		if grids[i].iters > maxIters {
			maxIters = grids[i].iters
		}
	}
	s := 1.0 / float64(len(splits))
	errTs.Scale(s, errTs)
	errTr.Scale(s, errTr)

	if kmax := effectiveKMax(p.KMax); maxIters >= kmax {
		staticLog.Log.Warnf("内层路径存在未收敛的解: iters=%d 达到kmax=%d", maxIters, kmax)
	}

	tauOpt, lambdaOpt = argminRowMajor(errTs)
	return tauOpt, lambdaOpt, errTs, errTr, nil
}

// 单折: 返回(tau × lambda)的test/train误差网格和路径上的最大迭代数
func stageOneFold(X *mat.Dense, Y *mat.VecDense, sp kcv.Split, p Params) (*mat.Dense, *mat.Dense, int, error) {
	Xtr, Xts := takeRows(X, sp.Train), takeRows(X, sp.Test)
	Ytr, Yts := takeVec(Y, sp.Train), takeVec(Y, sp.Test)

	Xtr, Xts, Ytr, Yts, meanY, err := normalizeSplit(Xtr, Xts, Ytr, Yts, p.XNorm, p.YCenter)
	if err != nil {
		return nil, nil, 0, err
	}

	path, err := enet.RegPath(Xtr, Ytr, p.PathMu, p.Taus, nil, p.KMax)
	if err != nil {
		return nil, nil, 0, err
	}

	// 按输入tau下标对齐; 被剪掉的全零模型对应nil
	points := make([]*enet.PathPoint, len(p.Taus))
	maxIters := 0
	for i := range path {
		points[path[i].Index] = &path[i]
		if path[i].Iters > maxIters {
			maxIters = path[i].Iters
		}
	}

	T, L := len(p.Taus), len(p.Lambdas)
	errTs := mat.NewDense(T, L, nil)
	errTr := mat.NewDense(T, L, nil)

	for j := 0; j < T; j++ {
		if points[j] == nil {
			// 全零模型: 中心化空间里预测恒为0, 还原后即训练均值
			eTs, e := denormScore(Yts, mat.NewVecDense(Yts.Len(), nil), meanY, p)
			if e != nil {
				return nil, nil, 0, e
			}
			eTr, e := denormScore(Ytr, mat.NewVecDense(Ytr.Len(), nil), meanY, p)
			if e != nil {
				return nil, nil, 0, e
			}
			for k := 0; k < L; k++ {
				errTs.Set(j, k, eTs)
				errTr.Set(j, k, eTr)
			}
			continue
		}

		sel := supportIndices(points[j].Support)
		XtrSel, XtsSel := takeCols(Xtr, sel), takeCols(Xts, sel)
		predTs := mat.NewVecDense(Yts.Len(), nil)
		predTr := mat.NewVecDense(Ytr.Len(), nil)
		for k := 0; k < L; k++ {
			beta2, e := enet.RidgeSolve(XtrSel, Ytr, p.Lambdas[k])
			if e != nil {
				return nil, nil, 0, e
			}
			predTs.MulVec(XtsSel, beta2)
			eTs, e := denormScore(Yts, predTs, meanY, p)
			if e != nil {
				return nil, nil, 0, e
			}
			predTr.MulVec(XtrSel, beta2)
			eTr, e := denormScore(Ytr, predTr, meanY, p)
			if e != nil {
				return nil, nil, 0, e
			}
			errTs.Set(j, k, eTs)
			errTr.Set(j, k, eTr)
		}
	}
	return errTs, errTr, maxIters, nil
}

// StageTwoResult 外层最终拟合的输出
type StageTwoResult struct {
	MuOpt    int            // 最优外层mu在muRange里的下标
	Beta     *mat.VecDense  // 嵌回全特征维度的最终系数
	Selected *bitset.BitSet // 入选特征掩码
	ErrTs    float64        // 外层held-out误差
	ErrTr    float64        // 外层训练误差
	MuErrTs  []float64      // 每个候选mu的held-out误差曲线
	Iters    int            // 最优mu那次弹性网求解的迭代数
}

// StageTwo 用选定的(tau, lambda)在外层train/test划分上做最终拟合
//
// 对muRange里的每个mu: 从beta0=ridge_solve(Xtr, Ytr, 0)出发解弹性网,
// 取其支撑集, 在支撑列上按lambdaOpt做ridge重拟合, 在原始量纲下算held-out误差;
// 留下误差最小的mu, 平票取首个。每个mu的误差都保留在MuErrTs里
func StageTwo(Xtr *mat.Dense, Ytr *mat.VecDense, Xts *mat.Dense, Yts *mat.VecDense, tauOpt, lambdaOpt float64, muRange []float64, p Params) (*StageTwoResult, error) {
	if len(muRange) == 0 {
		return nil, errorx.New(errCode.EMPTY_VALUE, "muRange is empty")
	}

	Xtr, Xts, Ytr, Yts, meanY, err := normalizeSplit(Xtr, Xts, Ytr, Yts, p.XNorm, p.YCenter)
	if err != nil {
		return nil, err
	}
	_, d := Xtr.Dims()

	beta0, err := enet.RidgeSolve(Xtr, Ytr, 0)
	if err != nil {
		return nil, err
	}
	// 外层mu循环里X不变, 步长只算一次
	step, err := enet.StepSize(Xtr)
	if err != nil {
		return nil, err
	}

	res := &StageTwoResult{MuOpt: -1, MuErrTs: make([]float64, len(muRange))}
	for mi, mu := range muRange {
		beta, iters, err := enet.Solve(Xtr, Ytr, mu, tauOpt, beta0, p.KMax, step)
		if err != nil {
			return nil, err
		}
		selected := enet.Support(beta)
		sel := supportIndices(selected)

		var final, predTs, predTr *mat.VecDense
		if len(sel) == 0 {
			final = mat.NewVecDense(d, nil)
			predTs = mat.NewVecDense(Yts.Len(), nil)
			predTr = mat.NewVecDense(Ytr.Len(), nil)
		} else {
			XtrSel, XtsSel := takeCols(Xtr, sel), takeCols(Xts, sel)
			beta2, e := enet.RidgeSolve(XtrSel, Ytr, lambdaOpt)
			if e != nil {
				return nil, e
			}
			final = embed(d, sel, beta2)
			predTs = mat.NewVecDense(Yts.Len(), nil)
			predTs.MulVec(XtsSel, beta2)
			predTr = mat.NewVecDense(Ytr.Len(), nil)
			predTr.MulVec(XtrSel, beta2)
		}

		eTs, err := denormScore(Yts, predTs, meanY, p)
		if err != nil {
			return nil, err
		}
		eTr, err := denormScore(Ytr, predTr, meanY, p)
		if err != nil {
			return nil, err
		}

		res.MuErrTs[mi] = eTs
		if res.MuOpt == -1 || eTs < res.ErrTs {
			res.MuOpt = mi
			res.Beta = final
			res.Selected = selected
			res.ErrTs = eTs
			res.ErrTr = eTr
			res.Iters = iters
		}
	}
	return res, nil
}

// 归一化因子一律来自训练块, held-out块只被动套用
func normalizeSplit(Xtr, Xts *mat.Dense, Ytr, Yts *mat.VecDense, xnorm tools.NORM_MODE, ycenter bool) (*mat.Dense, *mat.Dense, *mat.VecDense, *mat.VecDense, float64, error) {
	var err error
	switch xnorm {
	case tools.NORM_STANDARDIZE:
		Xtr, Xts, _, _, err = tools.Standardize(Xtr, Xts)
	case tools.NORM_CENTER:
		Xtr, Xts, _, err = tools.Center(Xtr, Xts)
	case tools.NORM_NONE:
	default:
		err = errorx.New(errCode.INVALID_CONFIG, fmt.Sprintf("未知的归一化方式 %v", xnorm))
	}
	if err != nil {
		return nil, nil, nil, nil, 0, err
	}

	meanY := 0.0
	if ycenter {
		Ytr, Yts, meanY, err = tools.CenterVec(Ytr, Yts)
		if err != nil {
			return nil, nil, nil, nil, 0, err
		}
	}
	return Xtr, Xts, Ytr, Yts, meanY, nil
}

// 加回训练均值还原到原始量纲后打分
func denormScore(Y, pred *mat.VecDense, meanY float64, p Params) (float64, error) {
	n := Y.Len()
	labels := mat.NewVecDense(n, nil)
	predicted := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		labels.SetVec(i, Y.AtVec(i)+meanY)
		predicted.SetVec(i, pred.AtVec(i)+meanY)
	}
	if p.Task == tools.CLASSIFICATION && p.Balanced {
		return tools.BalancedClassificationError(labels, predicted, nil)
	}
	return tools.PredictionError(labels, predicted, p.Task)
}

// 行主序扫描, 平票取首次出现
func argminRowMajor(m *mat.Dense) (int, int) {
	r, c := m.Dims()
	bi, bj, best := 0, 0, math.Inf(1)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); v < best {
				bi, bj, best = i, j, v
			}
		}
	}
	return bi, bj
}

// ----- 矩阵切片工具 -----

func takeRows(X *mat.Dense, idx []int) *mat.Dense {
	_, d := X.Dims()
	out := mat.NewDense(len(idx), d, nil)
	for i, r := range idx {
		out.SetRow(i, X.RawRowView(r))
	}
	return out
}

func takeCols(X *mat.Dense, idx []int) *mat.Dense {
	n, _ := X.Dims()
	out := mat.NewDense(n, len(idx), nil)
	col := make([]float64, n)
	for j, c := range idx {
		mat.Col(col, c, X)
		out.SetCol(j, col)
	}
	return out
}

func takeVec(Y *mat.VecDense, idx []int) *mat.VecDense {
	out := mat.NewVecDense(len(idx), nil)
	for i, r := range idx {
		out.SetVec(i, Y.AtVec(r))
	}
	return out
}

// 把支撑集上的系数嵌回全特征维度, 未入选位置保持0
func embed(d int, sel []int, beta *mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(d, nil)
	for i, j := range sel {
		out.SetVec(j, beta.AtVec(i))
	}
	return out
}

func supportIndices(s *bitset.BitSet) []int {
	out := make([]int, 0, s.Count())
	for i, ok := s.NextSet(0); ok; i, ok = s.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

func effectiveKMax(kmax int) int {
	if kmax <= 0 {
		return enet.DefaultKMax
	}
	return kmax
}
