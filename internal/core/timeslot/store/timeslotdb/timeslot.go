package timeslotdb

import (
	"context"
	"errors"

	"github.com/gowvp/presence/internal/core/timeslot"
	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Timeslot struct {
	db *gorm.DB
}

func NewTimeslot(db *gorm.DB) Timeslot {
	return Timeslot{db: db}
}

func (t Timeslot) Find(ctx context.Context, out *[]*timeslot.Timeslot, pager orm.Pager, opts ...orm.QueryOption) (int64, error) {
	db := t.db.WithContext(ctx).Model(new(timeslot.Timeslot))
	for _, opt := range opts {
		db = opt(db)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return 0, err
	}
	if pager != nil {
		db = db.Offset(pager.Offset()).Limit(pager.Limit())
	}
	return total, db.Find(out).Error
}

func (t Timeslot) Get(ctx context.Context, out *timeslot.Timeslot, opts ...orm.QueryOption) error {
	db := t.db.WithContext(ctx).Model(new(timeslot.Timeslot))
	for _, opt := range opts {
		db = opt(db)
	}
	return db.First(out).Error
}

func (t Timeslot) Count(ctx context.Context, opts ...orm.QueryOption) (int64, error) {
	db := t.db.WithContext(ctx).Model(new(timeslot.Timeslot))
	for _, opt := range opts {
		db = opt(db)
	}
	var total int64
	return total, db.Count(&total).Error
}

// UpsertOpen 原子的查找打开区间否则创建。
// 同一事务内完成查找与写入，非 sqlite 方言对命中行加行锁。
// 行锁锁不住"不存在的行"：两个并发事务可能都查不到打开区间而各自走创建分支，
// 由部分唯一索引（见 AutoMigrate）兜底，冲突一方 DO NOTHING 后改读胜者的行；
// sqlite 由单连接池串行化（见 data.SetupDB）
func (t Timeslot) UpsertOpen(ctx context.Context, bucketKey, personID string, atMs int64) (int64, error) {
	var id int64
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		takeOpen := func(out *timeslot.Timeslot) error {
			query := tx.Model(new(timeslot.Timeslot))
			if tx.Dialector.Name() != "sqlite" {
				query = query.Clauses(clause.Locking{Strength: "UPDATE"})
			}
			return query.
				Where("bucket_key = ? AND person_id = ? AND ended_at IS NULL", bucketKey, personID).
				Take(out).Error
		}
		touch := func(cur *timeslot.Timeslot) error {
			id = cur.ID
			// 乱序触发不回退时间，last_seen_at 只向前推进
			if atMs > cur.LastSeenAt {
				return tx.Model(cur).Update("last_seen_at", atMs).Error
			}
			return nil
		}

		var cur timeslot.Timeslot
		err := takeOpen(&cur)
		if err == nil {
			return touch(&cur)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		slot := timeslot.Timeslot{
			BucketKey:  bucketKey,
			PersonID:   personID,
			StartedAt:  atMs,
			LastSeenAt: atMs,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&slot)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			id = slot.ID
			return nil
		}

		// 输掉并发创建，改为推进胜者的打开区间
		if err := takeOpen(&cur); err != nil {
			return err
		}
		return touch(&cur)
	})
	return id, err
}

// FindOverlapping 查询与窗口可能重叠的区间。
// 为兼容秒级旧数据，ended_at 小于单位阈值的记录一律取出，
// 由调用方在归一化后做最终的重叠与裁剪判断
func (t Timeslot) FindOverlapping(ctx context.Context, fromMs, toMs int64) ([]*timeslot.Timeslot, error) {
	var out []*timeslot.Timeslot
	err := t.db.WithContext(ctx).
		Where("started_at <= ?", toMs).
		Where("ended_at IS NULL OR ended_at >= ? OR ended_at < ?", fromMs, timeslot.UnitThresholdMs).
		Order("started_at ASC").
		Find(&out).Error
	return out, err
}

func (t Timeslot) Session(ctx context.Context, fns ...func(*gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, fn := range fns {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	})
}
