package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gowvp/presence/internal/core/request"
	"github.com/ixugo/goddd/pkg/web"
)

// RequestAPI 浏览请求留痕记录
type RequestAPI struct {
	requestCore request.Core
}

func NewRequestAPI(core request.Core) RequestAPI {
	return RequestAPI{requestCore: core}
}

func RegisterRequest(g gin.IRouter, api RequestAPI, handler ...gin.HandlerFunc) {
	group := g.Group("/requests", handler...)
	group.GET("", web.WrapH(api.findRequests))
	group.GET("/:id", web.WrapH(api.getRequest))
}

// findRequests 分页查询留痕记录
func (a RequestAPI) findRequests(c *gin.Context, in *request.FindRequestInput) (any, error) {
	items, total, err := a.requestCore.FindRequests(c.Request.Context(), in)
	return gin.H{"items": items, "total": total}, err
}

func (a RequestAPI) getRequest(c *gin.Context, _ *struct{}) (*request.Request, error) {
	return a.requestCore.GetRequest(c.Request.Context(), c.Param("id"))
}
