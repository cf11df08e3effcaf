package requestdb

import (
	"context"

	"github.com/gowvp/presence/internal/core/request"
	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
)

type Request struct {
	db *gorm.DB
}

func NewRequest(db *gorm.DB) Request {
	return Request{db: db}
}

func (r Request) Find(ctx context.Context, out *[]*request.Request, pager orm.Pager, opts ...orm.QueryOption) (int64, error) {
	db := r.db.WithContext(ctx).Model(new(request.Request))
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

func (r Request) Get(ctx context.Context, out *request.Request, opts ...orm.QueryOption) error {
	db := r.db.WithContext(ctx).Model(new(request.Request))
	for _, opt := range opts {
		db = opt(db)
	}
	return db.First(out).Error
}

func (r Request) Add(ctx context.Context, in *request.Request) error {
	return r.db.WithContext(ctx).Create(in).Error
}

func (r Request) Count(ctx context.Context, opts ...orm.QueryOption) (int64, error) {
	db := r.db.WithContext(ctx).Model(new(request.Request))
	for _, opt := range opts {
		db = opt(db)
	}
	var total int64
	return total, db.Count(&total).Error
}

func (r Request) Session(ctx context.Context, fns ...func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, fn := range fns {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	})
}
