package kcv

import (
	"fmt"
	"math"
	"math/rand"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
)

// Package: kcv
// 说明: k折划分工具, 产出(train, test)索引对
//       - k个test集两两不交, 并集恰为全索引集, train为各自补集
//       - 洗牌用显式传入的*rand.Rand, 不触碰全局RNG; rnd为nil则保持原序
//       - 同一个seed构造的rnd给出完全相同的划分

// 一个fold的训练/测试索引
type Split struct {
	Train []int // 训练索引
	Test  []int // 测试索引
}

// KFoldSplits n个样本的k折划分
func KFoldSplits(n, k int, rnd *rand.Rand) ([]Split, error) {
	if n <= 0 {
		return nil, errorx.New(errCode.EMPTY_VALUE, "n must be > 0")
	}
	if k < 2 || k > n {
		return nil, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("k=%d 越界, 需满足 2 <= k <= %d", k, n))
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if rnd != nil {
		rnd.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	}
	return chunkSplits(idx, k), nil
}

// StratifiedKFoldSplits 二分类标签的分层k折划分, 各fold内保持类占比
// labels必须恰好含两个不同取值; k不超过较小类的样本数
func StratifiedKFoldSplits(labels []float64, k int, rnd *rand.Rand) ([]Split, error) {
	if len(labels) == 0 {
		return nil, errorx.New(errCode.EMPTY_VALUE, "labels is empty")
	}

	classA, classB, err := twoClasses(labels)
	if err != nil {
		return nil, err
	}

	aIdx := make([]int, 0, len(labels))
	bIdx := make([]int, 0, len(labels))
	for i, v := range labels {
		if v == classA {
			aIdx = append(aIdx, i)
		} else if v == classB {
			bIdx = append(bIdx, i)
		}
	}

	minSize := len(aIdx)
	if len(bIdx) < minSize {
		minSize = len(bIdx)
	}
	if k < 2 || k > minSize {
		return nil, errorx.New(errCode.INVALID_VALUE, fmt.Sprintf("k=%d 越界, 需满足 2 <= k <= %d(较小类样本数)", k, minSize))
	}

	// 两类各自洗牌、各自切块, 再按fold合并
	if rnd != nil {
		rnd.Shuffle(len(aIdx), func(i, j int) { aIdx[i], aIdx[j] = aIdx[j], aIdx[i] })
		rnd.Shuffle(len(bIdx), func(i, j int) { bIdx[i], bIdx[j] = bIdx[j], bIdx[i] })
	}
	aSplits := chunkSplits(aIdx, k)
	bSplits := chunkSplits(bIdx, k)

	splits := make([]Split, k)
	for f := 0; f < k; f++ {
		train := make([]int, 0, len(aSplits[f].Train)+len(bSplits[f].Train))
		train = append(train, aSplits[f].Train...)
		train = append(train, bSplits[f].Train...)
		test := make([]int, 0, len(aSplits[f].Test)+len(bSplits[f].Test))
		test = append(test, aSplits[f].Test...)
		test = append(test, bSplits[f].Test...)
		splits[f] = Split{Train: train, Test: test}
	}
	return splits, nil
}

// 按连续块切k份, 每份依次做test, 其余做train
// 第i块大小 = round(剩余样本数 / 剩余块数)
func chunkSplits(idx []int, k int) []Split {
	n := len(idx)
	splits := make([]Split, 0, k)
	start := 0
	remaining := n
	for f := 0; f < k; f++ {
		size := int(math.Round(float64(remaining) / float64(k-f)))
		end := start + size

		test := append([]int(nil), idx[start:end]...)
		train := make([]int, 0, n-size)
		train = append(train, idx[:start]...)
		train = append(train, idx[end:]...)
		splits = append(splits, Split{Train: train, Test: test})

		start = end
		remaining -= size
	}
	return splits
}

// 扫出恰好两个不同取值, 返回值按升序
func twoClasses(labels []float64) (float64, float64, error) {
	var (
		a, b  float64
		haveA bool
		haveB bool
	)
	for _, v := range labels {
		switch {
		case !haveA:
			a, haveA = v, true
		case v == a:
		case !haveB:
			b, haveB = v, true
		case v == b:
		default:
			return 0, 0, errorx.New(errCode.INVALID_VALUE, "labels must contain exactly 2 classes")
		}
	}
	if !haveB {
		return 0, 0, errorx.New(errCode.INVALID_VALUE, "labels must contain exactly 2 classes")
	}
	if b < a {
		a, b = b, a
	}
	return a, b, nil
}
