package request

import (
	"context"

	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
)

// Storer data persistence
type Storer interface {
	Request() RequestStorer
}

// RequestStorer Instantiation interface
type RequestStorer interface {
	Find(context.Context, *[]*Request, orm.Pager, ...orm.QueryOption) (int64, error)
	Get(context.Context, *Request, ...orm.QueryOption) error
	Add(context.Context, *Request) error
	Count(context.Context, ...orm.QueryOption) (int64, error)

	Session(context.Context, ...func(*gorm.DB) error) error
}

// Core business domain
type Core struct {
	store Storer
}

// NewCore create business domain
func NewCore(store Storer) Core {
	return Core{store: store}
}
