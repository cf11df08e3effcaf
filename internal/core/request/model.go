package request

import (
	"github.com/ixugo/goddd/pkg/orm"
)

// Request 一次上报请求的完整留痕，按原样存储便于排查摄像头侧问题
type Request struct {
	ID          string   `gorm:"primaryKey" json:"id"`
	ReceivedAt  orm.Time `gorm:"column:received_at;index" json:"received_at"`
	IP          string   `gorm:"column:ip" json:"ip"`
	Method      string   `gorm:"column:method" json:"method"`
	Path        string   `gorm:"column:path" json:"path"`
	QueryJSON   string   `gorm:"column:query_json" json:"query_json"`
	ContentType string   `gorm:"column:content_type" json:"content_type"`
	HeadersJSON string   `gorm:"column:headers_json" json:"headers_json"`
	// RawBodyText 原始请求体，BodyText 为其展示副本，两列并存兼容历史数据
	RawBodyText string `gorm:"column:raw_body_text" json:"raw_body_text"`
	BodyText    string `gorm:"column:body_text" json:"body_text"`
	// BodyJSON 当 content-type 为 json 且内容可解析时存放规范化后的 JSON
	BodyJSON  string   `gorm:"column:body_json" json:"body_json"`
	CreatedAt orm.Time `json:"created_at"`
}

func (*Request) TableName() string {
	return "requests"
}
