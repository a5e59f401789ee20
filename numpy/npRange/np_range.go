package npRange

import (
	"fmt"
	"math"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
)

// Linspace 等差网格, 对齐numpy.linspace(start, stop, num), 含两端点
func Linspace(start, stop float64, num int) ([]float64, error) {
	if num <= 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "num must be > 0")
	}
	if num == 1 {
		return []float64{start}, nil
	}

	step := (stop - start) / float64(num-1)
	out := make([]float64, num)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[num-1] = stop // 端点取精确值, 不留累计误差
	return out, nil
}

// Geomspace 等比网格, 对齐numpy.geomspace(start, stop, num)
// 公比 ratio = (stop/start)^(1/(num-1)); 两端点须同号且非零
func Geomspace(start, stop float64, num int) ([]float64, error) {
	if num <= 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "num must be > 0")
	}
	if start == 0 || stop == 0 {
		return nil, errorx.New(errCode.INVALID_VALUE, "geometric range cannot touch zero")
	}
	if (start < 0) != (stop < 0) {
		return nil, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("端点必须同号, got [%v, %v]", start, stop))
	}
	if num == 1 {
		return []float64{start}, nil
	}

	sign := 1.0
	if start < 0 {
		sign = -1
		start, stop = -start, -stop
	}

	ratio := math.Pow(stop/start, 1/float64(num-1))
	out := make([]float64, num)
	value := start
	for i := range out {
		out[i] = sign * value
		value *= ratio
	}
	out[num-1] = sign * stop
	return out, nil
}
