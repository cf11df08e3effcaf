package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/presence/internal/core/timeslot"
	"github.com/ixugo/goddd/pkg/web"
)

// TimeslotAPI 为 http 提供业务方法
type TimeslotAPI struct {
	timeslotCore timeslot.Core
}

func NewTimeslotAPI(core timeslot.Core) TimeslotAPI {
	return TimeslotAPI{timeslotCore: core}
}

func RegisterTimeslot(g gin.IRouter, api TimeslotAPI, handler ...gin.HandlerFunc) {
	{
		group := g.Group("/timeslots", handler...)
		group.GET("", web.WrapH(api.findTimeslots))
		group.GET("/report", web.WrapH(api.queryRange))
		group.GET("/export", api.exportTimeslots)
		group.POST("/keepalive", web.WrapH(api.keepalive))
		group.POST("/close_expired", web.WrapH(api.closeExpired))
	}

	// 兼容外部 cron 的触发入口
	g.GET("/cron/close_timeslots", web.WrapH(api.closeExpired))
}

// findTimeslots 分页查询时段原始记录
func (a TimeslotAPI) findTimeslots(c *gin.Context, in *timeslot.FindTimeslotInput) (any, error) {
	items, total, err := a.timeslotCore.FindTimeslots(c.Request.Context(), in)
	return gin.H{"items": items, "total": total}, err
}

type queryRangeInput struct {
	web.DateFilter
}

// queryRange 聚合查询窗口内各人员的在场时长与逐日分段
func (a TimeslotAPI) queryRange(c *gin.Context, in *queryRangeInput) (*timeslot.RangeReport, error) {
	return a.timeslotCore.QueryRange(c.Request.Context(), in.StartMs, in.EndMs)
}

type keepaliveOutput struct {
	Touched int64 `json:"touched"` // 被推进的打开区间数量
}

// keepalive 外部保活信号，推进所有打开区间的 last_seen_at
func (a TimeslotAPI) keepalive(c *gin.Context, _ *struct{}) (keepaliveOutput, error) {
	touched, err := a.timeslotCore.TouchAllOpen(c.Request.Context(), time.Now().UnixMilli())
	return keepaliveOutput{Touched: touched}, err
}

type closeExpiredOutput struct {
	Modified int64 `json:"modified"` // 本次关闭的区间数量
}

// closeExpired 关闭静默超时的打开区间，幂等
func (a TimeslotAPI) closeExpired(c *gin.Context, _ *struct{}) (closeExpiredOutput, error) {
	modified, err := a.timeslotCore.CloseExpired(c.Request.Context(), time.Now().UnixMilli())
	return closeExpiredOutput{Modified: modified}, err
}
