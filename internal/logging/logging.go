package logging

import (
	"io"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LogConfig 日志配置, 默认值见 config.Default
type LogConfig struct {
	LogPath      string        `yaml:"path"`          // 日志文件, 为空时输出到 stderr
	RotationTime time.Duration `yaml:"rotation_time"` // 切割周期
	ReserveDays  int           `yaml:"reserve_days"`  // 保留天数
	Level        string        `yaml:"level"`
	Format       string        `yaml:"format"` // text 或 json
	ReportCaller bool          `yaml:"report_caller"`
	UseStderr    bool          `yaml:"use_stderr"`
}

// ToFile 是否输出到切割文件
func (lc *LogConfig) ToFile() bool {
	return !lc.UseStderr && lc.LogPath != ""
}

func (lc *LogConfig) NewLogger() (*logrus.Logger, error) {
	out, err := lc.output()
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(out)

	switch strings.ToLower(lc.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		fallthrough
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	}

	// 无法识别的级别按 error 处理
	if level, err := logrus.ParseLevel(lc.Level); err != nil {
		logger.SetLevel(logrus.ErrorLevel)
	} else {
		logger.SetLevel(level)
	}

	if lc.ReportCaller {
		logger.SetReportCaller(true)
	}

	return logger, nil
}

func (lc *LogConfig) output() (io.Writer, error) {
	if !lc.ToFile() {
		return os.Stderr, nil
	}
	if lc.RotationTime <= 0 {
		return nil, errors.Errorf("log rotation time must be positive, got %s", lc.RotationTime)
	}

	// 按天命名, LogPath 为指向当前文件的软链接
	w, err := rotatelogs.New(
		lc.LogPath+"_%Y%m%d",
		rotatelogs.WithLinkName(lc.LogPath),
		rotatelogs.WithRotationTime(lc.RotationTime),
		rotatelogs.WithMaxAge(time.Duration(lc.ReserveDays)*24*time.Hour),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "open log file %s", lc.LogPath)
	}

	return w, nil
}
