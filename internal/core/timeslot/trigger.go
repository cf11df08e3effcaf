package timeslot

import (
	"encoding/json"
	"strconv"
	"time"
)

// RawFace 触发事件中的人脸识别分组
type RawFace struct {
	PersonID string `json:"personId"` // 识别出的人员标识
	Name     string `json:"name"`     // 展示名称
}

// RawTrigger 摄像头/AI 服务上报的原始触发事件。
// timestamp 单位不确定，可能是秒也可能是毫秒，由归一化统一
type RawTrigger struct {
	Key       string   `json:"key"`       // 事件类别标签
	PersonID  string   `json:"personId"`  // 顶层人员标识
	Value     string   `json:"value"`     // 通用取值字段
	Timestamp any      `json:"timestamp"` // 秒或毫秒时间戳
	Face      *RawFace `json:"face"`      // 人脸分组信息
}

// Trigger 归一化后的触发事件，时间戳统一为毫秒
type Trigger struct {
	BucketKey string
	PersonID  string
	AtMs      int64
}

// NormalizeTriggers 将原始触发列表归一化为规范触发序列。
// 未识别的类别标签直接丢弃，不视为错误；顺序保持不变，重复事件原样保留，
// 幂等处理由跟踪器负责。
//
// face_known 的人员标识按优先级解析：face.personId > personId > face.name > value，
// 均为空时降级为 face_unknown
func NormalizeTriggers(raws []RawTrigger) []Trigger {
	out := make([]Trigger, 0, len(raws))
	for _, r := range raws {
		key := r.Key
		switch key {
		case KeyFaceKnown, KeyFaceUnknown, KeyPersonMovement:
		default:
			continue
		}

		var personID string
		if key == KeyFaceKnown {
			personID = resolvePersonID(r)
			if personID == "" {
				key = KeyFaceUnknown
			}
		}

		out = append(out, Trigger{
			BucketKey: key,
			PersonID:  personID,
			AtMs:      normalizeTriggerTime(r.Timestamp),
		})
	}
	return out
}

func resolvePersonID(r RawTrigger) string {
	if r.Face != nil && r.Face.PersonID != "" {
		return r.Face.PersonID
	}
	if r.PersonID != "" {
		return r.PersonID
	}
	if r.Face != nil && r.Face.Name != "" {
		return r.Face.Name
	}
	return r.Value
}

// normalizeTriggerTime 归一化时间戳。小于 10^12 的数值按秒处理，
// 缺失或无法解析时取当前处理时间
func normalizeTriggerTime(v any) int64 {
	ts, ok := parseTimestamp(v)
	if !ok || ts <= 0 {
		return time.Now().UnixMilli()
	}
	return normalizeMs(ts)
}

func parseTimestamp(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}
