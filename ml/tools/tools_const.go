package tools

import "strings"

// 任务类型: 分类 or 回归
type TASK_MODE int

const (
	CLASSIFICATION  TASK_MODE = iota // "classification"
	REGRESSION                       // "regression"
	TASK_MODE_ERROR                  // "ERROR"
)

func (t TASK_MODE) String() string {
	switch t {
	case CLASSIFICATION:
		return "classification"
	case REGRESSION:
		return "regression"
	default:
		return "ERROR"
	}
}

func GetMyTaskMode(s string) TASK_MODE {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classification":
		return CLASSIFICATION
	case "regression":
		return REGRESSION
	default:
		return TASK_MODE_ERROR
	}
}

// 设计矩阵归一化方式
type NORM_MODE int

const (
	NORM_NONE        NORM_MODE = iota // "none"
	NORM_CENTER                       // "center"
	NORM_STANDARDIZE                  // "standardize"
	NORM_MODE_ERROR                   // "ERROR"
)

func (n NORM_MODE) String() string {
	switch n {
	case NORM_NONE:
		return "none"
	case NORM_CENTER:
		return "center"
	case NORM_STANDARDIZE:
		return "standardize"
	default:
		return "ERROR"
	}
}

func GetMyNormMode(s string) NORM_MODE {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NORM_NONE
	case "center":
		return NORM_CENTER
	case "standardize":
		return NORM_STANDARDIZE
	default:
		return NORM_MODE_ERROR
	}
}
