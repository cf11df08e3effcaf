package timeslot

import (
	"github.com/ixugo/goddd/pkg/orm"
)

// 触发事件归类的固定桶
const (
	KeyFaceKnown      = "face_known"      // 识别到已登记人脸
	KeyFaceUnknown    = "face_unknown"    // 检测到未登记人脸
	KeyPersonMovement = "person_movement" // 检测到人体移动但未识别
)

// 汇总报表中无法归属到具体人员时使用的展示标签
const (
	LabelUnknownFace = "Nezināms(unknown_face)"
	LabelMovement    = "Nezināms darbinieka kustība"
)

// UnitThresholdMs 小于该值的时间戳按秒处理，兼容早期以秒写入的数据
const UnitThresholdMs = 1_000_000_000_000

// Timeslot 某个桶（及人员）的一段连续在场区间。
// ended_at 为空表示区间仍然打开，last_seen_at 记录最近一次触发时间。
// 同一 (bucket_key, person_id) 任意时刻至多存在一条打开的记录。
type Timeslot struct {
	ID         int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BucketKey  string   `gorm:"column:bucket_key;notNull;default:'';index:idx_timeslots_open,priority:1" json:"bucket_key"`
	PersonID   string   `gorm:"column:person_id;notNull;default:'';index:idx_timeslots_open,priority:2" json:"person_id"`
	StartedAt  int64    `gorm:"column:started_at;notNull;default:0;index" json:"started_at"`         // 毫秒时间戳，创建后不变
	EndedAt    *int64   `gorm:"column:ended_at;index:idx_timeslots_open,priority:3" json:"ended_at"` // 毫秒时间戳，nil 表示打开
	LastSeenAt int64    `gorm:"column:last_seen_at;notNull;default:0" json:"last_seen_at"`           // 毫秒时间戳
	CreatedAt  orm.Time `json:"created_at"`
	UpdatedAt  orm.Time `json:"updated_at"`
}

func (*Timeslot) TableName() string {
	return "timeslots"
}

// IsOpen 区间是否仍在进行中
func (t *Timeslot) IsOpen() bool {
	return t.EndedAt == nil
}

// normalizeMs 归一化时间戳单位，秒级数值转为毫秒
func normalizeMs(v int64) int64 {
	if v < UnitThresholdMs {
		return v * 1000
	}
	return v
}

// NormStartedAt 读取开始时间（毫秒），兼容秒级旧数据
func (t *Timeslot) NormStartedAt() int64 {
	return normalizeMs(t.StartedAt)
}

// NormLastSeenAt 读取最近触发时间（毫秒），兼容秒级旧数据
func (t *Timeslot) NormLastSeenAt() int64 {
	return normalizeMs(t.LastSeenAt)
}

// NormEndedAt 读取结束时间（毫秒），兼容秒级旧数据，区间未结束返回 nil
func (t *Timeslot) NormEndedAt() *int64 {
	if t.EndedAt == nil {
		return nil
	}
	v := normalizeMs(*t.EndedAt)
	return &v
}

// Label 报表展示标签。face_known 使用识别出的人员标识，
// 识别失败时与 face_unknown 归入同一标签
func (t *Timeslot) Label() string {
	switch t.BucketKey {
	case KeyPersonMovement:
		return LabelMovement
	case KeyFaceKnown:
		if t.PersonID != "" {
			return t.PersonID
		}
	}
	return LabelUnknownFace
}
