package request

import (
	"context"
	"log/slog"
	"time"

	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
)

// StartCleanupWorker 启动定时清理协程，每天执行一次清理。
// days 参数指定留痕记录的保留天数，超过该天数的记录将被删除
func (c Core) StartCleanupWorker(days int) {
	if days <= 0 {
		slog.Info("request cleanup disabled", "days", days)
		return
	}

	slog.Info("request cleanup worker started", "retain_days", days)

	// 启动时先执行一次清理
	c.cleanupExpiredRequests(days)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanupExpiredRequests(days)
	}
}

// cleanupExpiredRequests 删除超过保留天数的留痕记录
func (c Core) cleanupExpiredRequests(days int) {
	ctx := context.Background()
	cutoff := time.Now().AddDate(0, 0, -days)

	var deleted int64
	err := c.store.Request().Session(ctx, func(tx *gorm.DB) error {
		res := tx.Where("received_at < ?", orm.Time{Time: cutoff}).Delete(new(Request))
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		slog.Warn("failed to delete expired requests", "err", err)
		return
	}

	if deleted > 0 {
		slog.Info("request cleanup completed",
			"cutoff_time", cutoff.Format(time.DateTime),
			"requests_deleted", deleted,
		)
	}
}
