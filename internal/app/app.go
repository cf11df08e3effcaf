package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gowvp/presence/internal/conf"
)

// Run 组装依赖并启动 HTTP 服务，返回服务实例与清理函数
func Run(bc *conf.Bootstrap) (*http.Server, func(), error) {
	handler, cleanup, err := wireApp(bc)
	if err != nil {
		return nil, nil, err
	}

	addr := fmt.Sprintf(":%d", bc.Server.HTTP.Port)
	svr := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("http server started", "addr", addr, "version", bc.BuildVersion)
		if err := svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server exit", "err", err)
		}
	}()

	return svr, cleanup, nil
}

// Shutdown 优雅退出 HTTP 服务
func Shutdown(svr *http.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := svr.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown", "err", err)
	}
}
