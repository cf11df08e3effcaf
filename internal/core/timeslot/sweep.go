package timeslot

import (
	"context"
	"log/slog"
	"time"

	"github.com/ixugo/goddd/pkg/conc"
)

// StartSweepWorker 启动定时关闭协程，周期性关闭静默超时的打开区间。
// 部署方若使用外部 cron 调用关闭接口，可在配置中停用该协程
func (c Core) StartSweepWorker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	slog.Info("timeslot sweep worker started",
		"interval", interval.String(),
		"idle_timeout", c.idleTimeout.String(),
	)

	conc.Timer(ctx, interval, interval, func() {
		closed, err := c.CloseExpired(ctx, time.Now().UnixMilli())
		if err != nil {
			slog.Error("close expired timeslots", "err", err)
			return
		}
		if closed > 0 {
			slog.Info("expired timeslots closed", "count", closed)
		}
	})
}
