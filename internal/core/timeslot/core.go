package timeslot

import (
	"context"
	"time"

	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
)

// Storer data persistence
type Storer interface {
	Timeslot() TimeslotStorer
}

// TimeslotStorer Instantiation interface
type TimeslotStorer interface {
	Find(context.Context, *[]*Timeslot, orm.Pager, ...orm.QueryOption) (int64, error)
	Get(context.Context, *Timeslot, ...orm.QueryOption) error
	Count(context.Context, ...orm.QueryOption) (int64, error)

	// UpsertOpen 原子的"查找打开区间否则创建"。
	// 命中时将 last_seen_at 推进到 max(last_seen_at, atMs)，
	// 未命中时以 atMs 创建新区间，返回受影响记录的 ID
	UpsertOpen(ctx context.Context, bucketKey, personID string, atMs int64) (int64, error)
	// FindOverlapping 查询与 [fromMs, toMs] 可能重叠的区间。
	// 为兼容秒级旧数据放宽数据库过滤条件，调用方需在归一化后做最终重叠判断
	FindOverlapping(ctx context.Context, fromMs, toMs int64) ([]*Timeslot, error)

	Session(context.Context, ...func(*gorm.DB) error) error
}

// Core business domain
type Core struct {
	store       Storer
	idleTimeout time.Duration
}

type Option func(*Core)

// WithIdleTimeout 设置静默关闭阈值
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Core) {
		if d > 0 {
			c.idleTimeout = d
		}
	}
}

// NewCore create business domain
func NewCore(store Storer, opts ...Option) Core {
	c := Core{
		store:       store,
		idleTimeout: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// IdleTimeout 当前生效的静默关闭阈值
func (c Core) IdleTimeout() time.Duration {
	return c.idleTimeout
}
