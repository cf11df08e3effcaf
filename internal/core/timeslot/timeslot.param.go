package timeslot

import (
	"github.com/ixugo/goddd/pkg/web"
)

type FindTimeslotInput struct {
	web.PagerFilter
	BucketKey string `form:"bucket_key"` // 桶，如 face_known
	PersonID  string `form:"person_id"`  // 人员标识
	OnlyOpen  bool   `form:"only_open"`  // 仅查询打开的区间
}
