package nestedcv

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
	"l1l2/infra/observe/log/staticLog"
	"l1l2/ml/enet"
	"l1l2/ml/tools"
	"l1l2/numpy/npRange"
)

const (
	defaultInnerK = 5
	defaultOuterK = 4
)

// RangeConfig 超参区间定义, 由Params()物化成数值序列
type RangeConfig struct {
	Min   float64 `yaml:"min"`   // 区间下端
	Max   float64 `yaml:"max"`   // 区间上端
	Count int     `yaml:"count"` // 取点数
	Scale string  `yaml:"scale"` // linear or geometric, 缺省linear
}

func (r RangeConfig) materialize() ([]float64, error) {
	switch strings.ToLower(strings.TrimSpace(r.Scale)) {
	case "", "linear":
		return npRange.Linspace(r.Min, r.Max, r.Count)
	case "geometric":
		return npRange.Geomspace(r.Min, r.Max, r.Count)
	default:
		return nil, errorx.New(errCode.INVALID_CONFIG, fmt.Sprintf("未知的scale %q", r.Scale))
	}
}

// Config 实验配置文件
//
// 归一化开关不设缺省: 字段缺省即不做归一化/不中心化
type Config struct {
	Task        string           `yaml:"task"`         // classification or regression
	XNorm       string           `yaml:"x_norm"`       // none / center / standardize
	YCenter     bool             `yaml:"y_center"`     // 是否中心化标签
	Balanced    bool             `yaml:"balanced"`     // 分类时改用类均衡误差
	InnerK      int              `yaml:"inner_k"`      // 内层折数, 缺省5
	OuterK      int              `yaml:"outer_k"`      // 外层折数, 缺省4
	PathMu      float64          `yaml:"path_mu"`      // 路径构建用的ℓ2罚
	TauRange    RangeConfig      `yaml:"tau_range"`    // ℓ1罚区间
	LambdaRange RangeConfig      `yaml:"lambda_range"` // 二段ridge罚区间
	MuRange     RangeConfig      `yaml:"mu_range"`     // 外层ℓ2罚区间
	KMax        int              `yaml:"kmax"`         // 迭代上限, 缺省100000
	Workers     int              `yaml:"workers"`      // 内层fold并发数, 缺省取CPU数
	Seed        int64            `yaml:"seed"`         // 折划分种子, 0表示不乱序
	Log         staticLog.Config `yaml:"log"`          // 日志设置
}

// LoadConfig 读取 + 解析 + 补缺省 + 校验
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errorx.Wrap(err, errCode.INVALID_CONFIG, "读取配置文件失败")
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, errorx.Wrap(err, errCode.INVALID_CONFIG, "解析配置文件失败")
	}

	if c.InnerK == 0 {
		c.InnerK = defaultInnerK
	}
	if c.OuterK == 0 {
		c.OuterK = defaultOuterK
	}
	if c.KMax == 0 {
		c.KMax = enet.DefaultKMax
	}

	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) check() error {
	if tools.GetMyTaskMode(c.Task) == tools.TASK_MODE_ERROR {
		return errorx.New(errCode.INVALID_CONFIG, fmt.Sprintf("无效的任务类型 %q", c.Task))
	}
	if tools.GetMyNormMode(c.XNorm) == tools.NORM_MODE_ERROR {
		return errorx.New(errCode.INVALID_CONFIG, fmt.Sprintf("无效的归一化方式 %q", c.XNorm))
	}
	if c.InnerK < 2 {
		return errorx.New(errCode.INVALID_CONFIG, fmt.Sprintf("inner_k=%d 必须>=2", c.InnerK))
	}
	if c.OuterK < 2 {
		return errorx.New(errCode.INVALID_CONFIG, fmt.Sprintf("outer_k=%d 必须>=2", c.OuterK))
	}
	if c.PathMu < 0 {
		return errorx.New(errCode.INVALID_CONFIG, "path_mu必须非负")
	}
	for _, rc := range []struct {
		name string
		r    RangeConfig
	}{
		{"tau_range", c.TauRange},
		{"lambda_range", c.LambdaRange},
		{"mu_range", c.MuRange},
	} {
		if rc.r.Count < 1 {
			return errorx.New(errCode.INVALID_CONFIG, fmt.Sprintf("%s.count=%d 必须>=1", rc.name, rc.r.Count))
		}
	}
	return nil
}

// Params 物化区间定义, 产出可直接传给Run/RunKCV的参数
func (c *Config) Params() (Params, error) {
	taus, err := c.TauRange.materialize()
	if err != nil {
		return Params{}, err
	}
	// 路径要求tau降序
	sort.Sort(sort.Reverse(sort.Float64Slice(taus)))

	lambdas, err := c.LambdaRange.materialize()
	if err != nil {
		return Params{}, err
	}
	mus, err := c.MuRange.materialize()
	if err != nil {
		return Params{}, err
	}

	var rnd *rand.Rand
	if c.Seed != 0 {
		rnd = rand.New(rand.NewSource(c.Seed))
	}

	return Params{
		Task:     tools.GetMyTaskMode(c.Task),
		XNorm:    tools.GetMyNormMode(c.XNorm),
		YCenter:  c.YCenter,
		Balanced: c.Balanced,
		InnerK:   c.InnerK,
		OuterK:   c.OuterK,
		PathMu:   c.PathMu,
		Taus:     taus,
		Lambdas:  lambdas,
		MuRange:  mus,
		KMax:     c.KMax,
		Workers:  c.Workers,
		Rnd:      rnd,
	}, nil
}
