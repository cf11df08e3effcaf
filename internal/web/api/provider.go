package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/gowvp/presence/internal/conf"
	"github.com/gowvp/presence/internal/core/request"
	"github.com/gowvp/presence/internal/core/request/store/requestdb"
	"github.com/gowvp/presence/internal/core/timeslot"
	"github.com/gowvp/presence/internal/core/timeslot/store/timeslotdb"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/web"
	"gorm.io/gorm"
)

var ProviderSet = wire.NewSet(
	wire.Struct(new(Usecase), "*"),
	NewHTTPHandler,
	NewTimeslotStore, NewTimeslotCore, NewTimeslotAPI,
	NewRequestStore, NewRequestCore, NewRequestAPI,
	NewWebhookAPI,
)

type Usecase struct {
	Conf *conf.Bootstrap
	DB   *gorm.DB

	WebhookAPI  WebhookAPI
	TimeslotAPI TimeslotAPI
	RequestAPI  RequestAPI
}

// NewHTTPHandler 生成Gin框架路由内容
func NewHTTPHandler(uc *Usecase) http.Handler {
	cfg := uc.Conf.Server
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	g := gin.New()
	// 如果启用了 Pprof，设置 Pprof 监控
	if cfg.HTTP.PProf.Enabled {
		web.SetupPProf(g, &cfg.HTTP.PProf.AccessIps)
	}

	setupRouter(g, uc)
	return g
}

// NewTimeslotStore 创建时段存储层
func NewTimeslotStore(db *gorm.DB) timeslot.Storer {
	return timeslotdb.NewDB(db).AutoMigrate(orm.GetEnabledAutoMigrate())
}

// NewTimeslotCore 创建时段跟踪核心服务
func NewTimeslotCore(store timeslot.Storer, cfg *conf.Bootstrap) timeslot.Core {
	core := timeslot.NewCore(store,
		timeslot.WithIdleTimeout(cfg.Server.Timeslot.IdleTimeoutOrDefault()),
	)

	// 启动定时关闭协程，部署方使用外部 cron 时可停用
	if !cfg.Server.Timeslot.SweepDisabled {
		interval := cfg.Server.Timeslot.SweepIntervalOrDefault()
		slog.Info("时段空闲关闭已启用", "idle_timeout", core.IdleTimeout(), "sweep_interval", interval)
		go core.StartSweepWorker(context.Background(), interval)
	}

	return core
}

// NewRequestStore 创建请求留痕存储层
func NewRequestStore(db *gorm.DB) request.Storer {
	return requestdb.NewDB(db).AutoMigrate(orm.GetEnabledAutoMigrate())
}

// NewRequestCore 创建请求留痕核心服务
func NewRequestCore(store request.Storer, cfg *conf.Bootstrap) request.Core {
	core := request.NewCore(store)

	// 启动留痕清理协程
	go core.StartCleanupWorker(cfg.Server.Request.RetainDays)

	return core
}
