package tools

import (
	"fmt"

	"github.com/gonum/stat"
	"gonum.org/v1/gonum/mat"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
)

// Package: tools
// 说明: 归一化与误差度量, 供嵌套交叉验证各阶段调用
//       - 归一化因子一律由训练块导出, 再套用到测试块, 测试数据不参与统计
//       - 所有函数都返回新矩阵/新向量, 不改写输入
//       - 打分一律在还原均值后的原始量纲上进行(见metrics.go)

// Center 按列去均值, 均值只由train计算
// test可为nil(只处理train); 返回各列均值供调用方还原
func Center(train, test *mat.Dense) (*mat.Dense, *mat.Dense, []float64, error) {
	n, d := train.Dims()
	if n == 0 || d == 0 {
		return nil, nil, nil, errorx.New(errCode.EMPTY_VALUE, "train matrix is empty")
	}

	means := make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, train)
		means[j] = stat.Mean(col, nil)
	}

	trainOut := shiftCols(train, means, nil)
	var testOut *mat.Dense
	if test != nil {
		if _, td := test.Dims(); td != d {
			return nil, nil, nil, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("test列数%d与train列数%d不一致", td, d))
		}
		testOut = shiftCols(test, means, nil)
	}
	return trainOut, testOut, means, nil
}

// Standardize 按列标准化(ddof=1), 均值与标准差只由train计算
// train不足两行时标准差无定义, 返回INVALID_VALUE
// 零方差列只去均值(列变为全零), 不做除法
func Standardize(train, test *mat.Dense) (*mat.Dense, *mat.Dense, []float64, []float64, error) {
	n, d := train.Dims()
	if n == 0 || d == 0 {
		return nil, nil, nil, nil, errorx.New(errCode.EMPTY_VALUE, "train matrix is empty")
	}
	if n < 2 {
		return nil, nil, nil, nil, errorx.New(errCode.INVALID_VALUE, "matrix must have more than one row")
	}

	means := make([]float64, d)
	sds := make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, train)
		means[j] = stat.Mean(col, nil)
		sds[j] = stat.StdDev(col, nil)
		if sds[j] == 0 {
			sds[j] = 1
		}
	}

	trainOut := shiftCols(train, means, sds)
	var testOut *mat.Dense
	if test != nil {
		if _, td := test.Dims(); td != d {
			return nil, nil, nil, nil, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("test列数%d与train列数%d不一致", td, d))
		}
		testOut = shiftCols(test, means, sds)
	}
	return trainOut, testOut, means, sds, nil
}

// CenterVec 标签去均值, 均值只由train计算; test可为nil
func CenterVec(train, test *mat.VecDense) (*mat.VecDense, *mat.VecDense, float64, error) {
	n := train.Len()
	if n == 0 {
		return nil, nil, 0, errorx.New(errCode.EMPTY_VALUE, "train vector is empty")
	}

	buf := make([]float64, n)
	for i := 0; i < n; i++ {
		buf[i] = train.AtVec(i)
	}
	mean := stat.Mean(buf, nil)

	trainOut := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		trainOut.SetVec(i, train.AtVec(i)-mean)
	}
	var testOut *mat.VecDense
	if test != nil {
		testOut = mat.NewVecDense(test.Len(), nil)
		for i := 0; i < test.Len(); i++ {
			testOut.SetVec(i, test.AtVec(i)-mean)
		}
	}
	return trainOut, testOut, mean, nil
}

// 逐列平移(减均值), sds非nil时再除以标准差
func shiftCols(m *mat.Dense, means, sds []float64) *mat.Dense {
	n, d := m.Dims()
	out := mat.NewDense(n, d, nil)
	for j := 0; j < d; j++ {
		scale := 1.0
		if sds != nil {
			scale = sds[j]
		}
		for i := 0; i < n; i++ {
			out.Set(i, j, (m.At(i, j)-means[j])/scale)
		}
	}
	return out
}
