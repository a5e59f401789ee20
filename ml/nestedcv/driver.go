package nestedcv

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
	"l1l2/infra/observe/log/staticLog"
	"l1l2/ml/kcv"
	"l1l2/ml/tools"
)

// Package: nestedcv
// 说明: 两阶段嵌套交叉验证选择弹性网超参并产出最终模型
//       - 外层: 调用方给定(或RunKCV自行派生)一个train/test划分
//       - 阶段一: 外层训练块上做内层K折, 联合选(tau, lambda)
//       - 阶段二: 外层训练块上扫外层mu序列做最终拟合, 在外层test块上估计误差
//       - 折划分的随机源显式注入, 同一种子结果可复现

// Params 一次模型选择run的全部输入参数
type Params struct {
	Task     tools.TASK_MODE // 分类 or 回归
	XNorm    tools.NORM_MODE // 设计矩阵归一化方式
	YCenter  bool            // 是否中心化标签
	Balanced bool            // 分类时改用类均衡误差
	InnerK   int             // 内层折数
	OuterK   int             // 外层折数, 仅RunKCV使用
	PathMu   float64         // 路径构建用的ℓ2罚
	Taus     []float64       // ℓ1罚序列, 降序
	Lambdas  []float64       // 二段ridge罚候选
	MuRange  []float64       // 外层ℓ2罚候选
	KMax     int             // 求解器迭代上限, <=0用缺省
	Workers  int             // 内层fold并发数, <=0取CPU数
	Rnd      *rand.Rand      // 折划分随机源, nil则保持自然顺序
}

// Result 一次模型选择run的输出
type Result struct {
	RunID     string         // 本次run的uuid
	TauOpt    int            // 最优tau下标
	LambdaOpt int            // 最优lambda下标
	MuOpt     int            // 最优外层mu下标
	Beta      *mat.VecDense  // 全特征维度的最终系数
	Selected  *bitset.BitSet // 入选特征掩码
	ErrTs     float64        // 外层held-out误差
	ErrTr     float64        // 外层训练误差
	MuErrTs   []float64      // 外层mu误差曲线
	KCVErrTs  *mat.Dense     // 阶段一(tau × lambda)平均held-out误差
	KCVErrTr  *mat.Dense     // 阶段一(tau × lambda)平均训练误差
	Iters     int            // 最终弹性网求解迭代数, 等于kmax说明未收敛
}

// Run 在调用方给定的外层train/test划分上跑两阶段模型选择
func Run(X *mat.Dense, Y *mat.VecDense, trainIdx, testIdx []int, p Params) (*Result, error) {
	if err := checkParams(X, Y, p); err != nil {
		return nil, err
	}
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, errorx.New(errCode.EMPTY_VALUE, "外层train/test下标不能为空")
	}

	runID := uuid.NewString()
	n, d := X.Dims()
	t0 := time.Now()
	staticLog.Log.Infof("run %s 开始: task=%s n=%d d=%d 内层%d折 tau点%d lambda点%d mu点%d",
		runID, p.Task, n, d, p.InnerK, len(p.Taus), len(p.Lambdas), len(p.MuRange))

	// 阶段一在原始数据的外层训练块上做, 每个内层fold自行归一化
	Xtr, Ytr := takeRows(X, trainIdx), takeVec(Y, trainIdx)
	splits, err := innerSplits(Ytr, p)
	if err != nil {
		return nil, err
	}
	tauOpt, lambdaOpt, kcvTs, kcvTr, err := StageOne(Xtr, Ytr, splits, p)
	if err != nil {
		return nil, err
	}

	Xts, Yts := takeRows(X, testIdx), takeVec(Y, testIdx)
	st2, err := StageTwo(Xtr, Ytr, Xts, Yts, p.Taus[tauOpt], p.Lambdas[lambdaOpt], p.MuRange, p)
	if err != nil {
		return nil, err
	}

	if kmax := effectiveKMax(p.KMax); st2.Iters >= kmax {
		staticLog.Log.Warnf("run %s 最终解未收敛: iters达到kmax=%d", runID, kmax)
	}

	res := &Result{
		RunID:     runID,
		TauOpt:    tauOpt,
		LambdaOpt: lambdaOpt,
		MuOpt:     st2.MuOpt,
		Beta:      st2.Beta,
		Selected:  st2.Selected,
		ErrTs:     st2.ErrTs,
		ErrTr:     st2.ErrTr,
		MuErrTs:   st2.MuErrTs,
		KCVErrTs:  kcvTs,
		KCVErrTr:  kcvTr,
		Iters:     st2.Iters,
	}
	staticLog.Log.Infof("run %s 完成: tau[%d]=%v lambda[%d]=%v mu[%d]=%v 选中%d个特征 errTs=%v 用时%s",
		runID, tauOpt, p.Taus[tauOpt], lambdaOpt, p.Lambdas[lambdaOpt],
		st2.MuOpt, p.MuRange[st2.MuOpt], st2.Selected.Count(), st2.ErrTs, time.Since(t0))
	return res, nil
}

// RunKCV 不带外层划分的便捷入口: 内部做一次外层K折, 取第一折当train/test
func RunKCV(X *mat.Dense, Y *mat.VecDense, p Params) (*Result, error) {
	if err := checkParams(X, Y, p); err != nil {
		return nil, err
	}
	k := p.OuterK
	if k <= 0 {
		k = defaultOuterK
	}
	splits, err := outerSplits(Y, k, p)
	if err != nil {
		return nil, err
	}
	return Run(X, Y, splits[0].Train, splits[0].Test, p)
}

// 分类任务用分层划分保持类占比, 回归用普通划分
func innerSplits(Ytr *mat.VecDense, p Params) ([]kcv.Split, error) {
	if p.Task == tools.CLASSIFICATION {
		return kcv.StratifiedKFoldSplits(vecToSlice(Ytr), p.InnerK, p.Rnd)
	}
	return kcv.KFoldSplits(Ytr.Len(), p.InnerK, p.Rnd)
}

func outerSplits(Y *mat.VecDense, k int, p Params) ([]kcv.Split, error) {
	if p.Task == tools.CLASSIFICATION {
		return kcv.StratifiedKFoldSplits(vecToSlice(Y), k, p.Rnd)
	}
	return kcv.KFoldSplits(Y.Len(), k, p.Rnd)
}

func checkParams(X *mat.Dense, Y *mat.VecDense, p Params) error {
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return errorx.New(errCode.EMPTY_VALUE, "design matrix is empty")
	}
	if Y.Len() != n {
		return errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("Y长度%d与X行数%d不匹配", Y.Len(), n))
	}
	if p.Task != tools.CLASSIFICATION && p.Task != tools.REGRESSION {
		return errorx.New(errCode.INVALID_CONFIG, fmt.Sprintf("无效的任务类型 %v", p.Task))
	}
	switch p.XNorm {
	case tools.NORM_NONE, tools.NORM_CENTER, tools.NORM_STANDARDIZE:
	default:
		return errorx.New(errCode.INVALID_CONFIG, fmt.Sprintf("无效的归一化方式 %v", p.XNorm))
	}
	if len(p.Taus) == 0 || len(p.Lambdas) == 0 || len(p.MuRange) == 0 {
		return errorx.New(errCode.EMPTY_VALUE, "tau/lambda/mu序列都不能为空")
	}
	if p.PathMu < 0 {
		return errorx.New(errCode.INVALID_VALUE, "pathMu must be >= 0")
	}
	return nil
}

func vecToSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
