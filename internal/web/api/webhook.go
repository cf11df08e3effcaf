package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/presence/internal/core/request"
	"github.com/gowvp/presence/internal/core/timeslot"
)

// maxWebhookBody 上报请求体大小上限
const maxWebhookBody = 5 << 20

// WebhookAPI 处理摄像头/AI 分析服务的上报请求
type WebhookAPI struct {
	log          *slog.Logger
	timeslotCore timeslot.Core
	requestCore  request.Core
}

// NewWebhookAPI 创建 Webhook API 实例
func NewWebhookAPI(timeslotCore timeslot.Core, requestCore request.Core) WebhookAPI {
	return WebhookAPI{
		log:          slog.With("hook", "camera"),
		timeslotCore: timeslotCore,
		requestCore:  requestCore,
	}
}

// registerWebhookAPI 注册上报路由。
// 不限定方法与子路径，任意上报先整体留痕，再尝试按触发事件处理
func registerWebhookAPI(r gin.IRouter, api WebhookAPI, handler ...gin.HandlerFunc) {
	group := r.Group("/webhook", handler...)
	group.Any("", api.onEvent)
	group.Any("/*path", api.onEvent)
}

// webhookInput 触发事件上报请求体
type webhookInput struct {
	Triggers []timeslot.RawTrigger `json:"triggers"` // 触发事件列表
}

// onEvent 接收上报：留痕原始请求，归一化触发事件并逐条写入时段跟踪。
// 单条触发处理失败只记录日志，不影响同批其他触发
func (w WebhookAPI) onEvent(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"msg": "body too large"})
			return
		}
		w.log.ErrorContext(ctx, "read webhook body", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"msg": "read body failed"})
		return
	}

	rec, err := w.requestCore.AddRequest(ctx, w.buildAuditInput(c, body))
	if err != nil {
		// 留痕失败不拦截触发处理
		w.log.ErrorContext(ctx, "save request failed", "err", err)
	}

	var in webhookInput
	if len(body) > 0 {
		if err := json.Unmarshal(body, &in); err != nil {
			w.log.DebugContext(ctx, "webhook body is not a trigger payload", "err", err)
		}
	}

	triggers := timeslot.NormalizeTriggers(in.Triggers)
	var processed int
	for _, t := range triggers {
		if _, err := w.timeslotCore.Upsert(ctx, t.BucketKey, t.PersonID, t.AtMs); err != nil {
			w.log.ErrorContext(ctx, "upsert timeslot failed",
				"bucket", t.BucketKey,
				"person", t.PersonID,
				"err", err,
			)
			continue
		}
		processed++
	}

	if len(in.Triggers) > 0 {
		w.log.InfoContext(ctx, "webhook triggers",
			"received", len(in.Triggers),
			"normalized", len(triggers),
			"processed", processed,
		)
	}

	out := gin.H{"processed": processed}
	if rec != nil {
		out["id"] = rec.ID
	}
	c.JSON(http.StatusAccepted, out)
}

// buildAuditInput 将请求内容整理为留痕记录
func (w WebhookAPI) buildAuditInput(c *gin.Context, body []byte) *request.AddRequestInput {
	queryJSON, _ := json.Marshal(c.Request.URL.Query())
	headersJSON, _ := json.Marshal(c.Request.Header)

	contentType := c.ContentType()
	var bodyJSON string
	if strings.Contains(strings.ToLower(contentType), "json") && json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, body); err == nil {
			bodyJSON = buf.String()
		}
	}

	return &request.AddRequestInput{
		IP:          c.ClientIP(),
		Method:      c.Request.Method,
		Path:        c.Request.URL.RequestURI(),
		QueryJSON:   string(queryJSON),
		ContentType: contentType,
		HeadersJSON: string(headersJSON),
		RawBodyText: string(body),
		BodyText:    string(body),
		BodyJSON:    bodyJSON,
	}
}
