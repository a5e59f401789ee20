package tools

import (
	"fmt"
	"math"

	"github.com/gonum/stat"
	"gonum.org/v1/gonum/mat"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
)

// sign 对齐numpy.sign: 正→1, 负→-1, 零→0
func sign(x float64) float64 {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

// ClassificationError 符号不一致的样本占比
func ClassificationError(labels, predicted *mat.VecDense) (float64, error) {
	n := labels.Len()
	if n == 0 {
		return 0, errorx.New(errCode.EMPTY_VALUE, "labels is empty")
	}
	if predicted.Len() != n {
		return 0, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("预测长度%d与标签长度%d不一致", predicted.Len(), n))
	}

	wrong := 0.0
	for i := 0; i < n; i++ {
		if sign(labels.AtVec(i)) != sign(predicted.AtVec(i)) {
			wrong++
		}
	}
	return wrong / float64(n), nil
}

// BalancedClassificationError 按样本权重的符号错误率, 少数类权重更大
// weights为nil时取缺省权重 |label - mean(labels)|, 按样本数归一
func BalancedClassificationError(labels, predicted, weights *mat.VecDense) (float64, error) {
	n := labels.Len()
	if n == 0 {
		return 0, errorx.New(errCode.EMPTY_VALUE, "labels is empty")
	}
	if predicted.Len() != n {
		return 0, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("预测长度%d与标签长度%d不一致", predicted.Len(), n))
	}
	if weights != nil && weights.Len() != n {
		return 0, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("权重长度%d与标签长度%d不一致", weights.Len(), n))
	}

	w := make([]float64, n)
	if weights != nil {
		for i := 0; i < n; i++ {
			w[i] = weights.AtVec(i)
		}
	} else {
		buf := make([]float64, n)
		for i := 0; i < n; i++ {
			buf[i] = labels.AtVec(i)
		}
		mean := stat.Mean(buf, nil)
		for i := 0; i < n; i++ {
			w[i] = math.Abs(labels.AtVec(i) - mean)
		}
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		if sign(labels.AtVec(i)) != sign(predicted.AtVec(i)) {
			sum += w[i]
		}
	}
	return sum / float64(n), nil
}

// RegressionError 均方残差 ||labels - predicted||² / n
func RegressionError(labels, predicted *mat.VecDense) (float64, error) {
	n := labels.Len()
	if n == 0 {
		return 0, errorx.New(errCode.EMPTY_VALUE, "labels is empty")
	}
	if predicted.Len() != n {
		return 0, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("预测长度%d与标签长度%d不一致", predicted.Len(), n))
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		r := labels.AtVec(i) - predicted.AtVec(i)
		sum += r * r
	}
	return sum / float64(n), nil
}

// PredictionError 按任务类型分派误差度量
func PredictionError(labels, predicted *mat.VecDense, task TASK_MODE) (float64, error) {
	switch task {
	case CLASSIFICATION:
		return ClassificationError(labels, predicted)
	case REGRESSION:
		return RegressionError(labels, predicted)
	default:
		return 0, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("未知任务类型 %d", task))
	}
}
