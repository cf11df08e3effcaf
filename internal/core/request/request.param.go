package request

import (
	"github.com/ixugo/goddd/pkg/web"
)

type FindRequestInput struct {
	web.PagerFilter
	Method string `form:"method"` // 按请求方法筛选
	Path   string `form:"path"`   // 按路径模糊筛选
}

type AddRequestInput struct {
	IP          string
	Method      string
	Path        string
	QueryJSON   string
	ContentType string
	HeadersJSON string
	RawBodyText string
	BodyText    string
	BodyJSON    string
}
