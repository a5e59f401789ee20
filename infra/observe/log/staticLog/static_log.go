package staticLog

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"l1l2/infra/errorx"
	"l1l2/infra/errorx/errCode"
)

// 进程级静态日志句柄, Init之前缺省输出到stderr
var Log = logrus.New()

type Config struct {
	Filename   string `yaml:"filename"`   // 为空则只输出到stderr
	MaxSize    int    `yaml:"maxsize"`    // 单文件上限, MB
	MaxBackups int    `yaml:"maxbackups"` // 轮转保留文件数
	MaxAge     int    `yaml:"maxage"`     // 轮转保留天数
	Compress   bool   `yaml:"compress"`   // 历史文件gzip压缩
	Level      string `yaml:"level"`      // trace/debug/info/warn/error
	Console    bool   `yaml:"console"`    // 写文件的同时输出到stderr
}

// Init 配置全局日志: 等级、格式、lumberjack文件轮转
func Init(cfg Config) error {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = logrus.ParseLevel(cfg.Level)
		if err != nil {
			return errorx.New(errCode.INVALID_CONFIG, fmt.Sprintf("未知日志等级 %q", cfg.Level))
		}
	}
	Log.SetLevel(level)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if cfg.Filename == "" {
		Log.SetOutput(os.Stderr)
		return nil
	}

	rotate := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	if cfg.Console {
		Log.SetOutput(io.MultiWriter(os.Stderr, rotate))
	} else {
		Log.SetOutput(rotate)
	}
	return nil
}
