package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gowvp/presence/internal/app"
	"github.com/gowvp/presence/internal/conf"
	"github.com/gowvp/presence/pkg/logger"
	"github.com/ixugo/goddd/pkg/system"
)

// buildVersion 编译时通过 -ldflags 注入
var buildVersion = "dev"

func main() {
	var configPath string
	flag.StringVar(&configPath, "c", filepath.Join(system.Getwd(), "configs", "config.toml"), "配置文件路径")
	flag.Parse()

	var bc conf.Bootstrap
	if err := conf.SetupConfig(&bc, configPath); err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	bc.BuildVersion = buildVersion

	if _, err := logger.SetupSlog(filepath.Join(system.Getwd(), "logs"), bc.Server.Debug); err != nil {
		slog.Error("setup logger", "err", err)
		os.Exit(1)
	}

	svr, cleanup, err := app.Run(&bc)
	if err != nil {
		slog.Error("start app", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	app.Shutdown(svr, 5*time.Second)
}
