package timeslot

import (
	"context"

	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/reason"
	"gorm.io/gorm"
)

// Upsert 记录一次在场触发。
// 同一 (bucketKey, personID) 存在打开区间时推进其 last_seen_at，
// 乱序到达的早于当前值的触发不会使时间回退；不存在时创建新区间。
// 依赖存储层的原子查找否则创建语义，并发调用不会产生多条打开记录
func (c Core) Upsert(ctx context.Context, bucketKey, personID string, atMs int64) (int64, error) {
	id, err := c.store.Timeslot().UpsertOpen(ctx, bucketKey, personID, atMs)
	if err != nil {
		return 0, reason.ErrDB.Withf(`UpsertOpen key[%s] person[%s] err[%s]`, bucketKey, personID, err.Error())
	}
	return id, nil
}

// CloseExpired 关闭静默超时的打开区间，将 ended_at 置为 nowMs。
// 过滤条件与更新在同一条语句内执行，关闭瞬间仍活跃的区间不会被误关。
// 幂等：已关闭的区间带有 ended_at，不会再次命中
func (c Core) CloseExpired(ctx context.Context, nowMs int64) (int64, error) {
	cutoff := nowMs - c.idleTimeout.Milliseconds()

	var closed int64
	err := c.store.Timeslot().Session(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&Timeslot{}).
			Where("ended_at IS NULL").
			Where("last_seen_at <= ?", cutoff).
			Update("ended_at", nowMs)
		closed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, reason.ErrDB.Withf(`CloseExpired cutoff[%d] err[%s]`, cutoff, err.Error())
	}
	return closed, nil
}

// TouchAllOpen 外部保活信号，无条件推进所有打开区间的 last_seen_at
func (c Core) TouchAllOpen(ctx context.Context, nowMs int64) (int64, error) {
	var touched int64
	err := c.store.Timeslot().Session(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&Timeslot{}).
			Where("ended_at IS NULL").
			Update("last_seen_at", nowMs)
		touched = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, reason.ErrDB.Withf(`TouchAllOpen now[%d] err[%s]`, nowMs, err.Error())
	}
	return touched, nil
}

// FindTimeslots 分页查询时段列表，支持按桶和人员筛选
func (c Core) FindTimeslots(ctx context.Context, in *FindTimeslotInput) ([]*Timeslot, int64, error) {
	query := orm.NewQuery(3).OrderBy("started_at DESC")
	if in.BucketKey != "" {
		query.Where("bucket_key = ?", in.BucketKey)
	}
	if in.PersonID != "" {
		query.Where("person_id = ?", in.PersonID)
	}
	if in.OnlyOpen {
		query.Where("ended_at IS NULL")
	}

	items := make([]*Timeslot, 0, in.Limit())
	total, err := c.store.Timeslot().Find(ctx, &items, in, query.Encode()...)
	if err != nil {
		return nil, 0, reason.ErrDB.Withf(`Find in[%+v] err[%s]`, in, err.Error())
	}
	return items, total, nil
}

// GetTimeslot Query a single object
func (c Core) GetTimeslot(ctx context.Context, id int64) (*Timeslot, error) {
	out := Timeslot{ID: id}
	if err := c.store.Timeslot().Get(ctx, &out, orm.Where("id=?", id)); err != nil {
		if orm.IsErrRecordNotFound(err) {
			return nil, reason.ErrNotFound.Withf(`Get id[%v] err[%s]`, id, err.Error())
		}
		return nil, reason.ErrDB.Withf(`Get id[%v] err[%s]`, id, err.Error())
	}
	return &out, nil
}
