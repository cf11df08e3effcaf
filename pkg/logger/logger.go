package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// SetupSlog 初始化全局 slog。
// 日志同时输出到控制台与按天轮转的文件，保留 7 天
func SetupSlog(dir string, debug bool) (*slog.Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	rl, err := rotatelogs.New(
		filepath.Join(dir, "app.%Y%m%d.log"),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	l := slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stdout, rl), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(l)
	return l, nil
}
