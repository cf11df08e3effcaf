package requestdb

import (
	"github.com/gowvp/presence/internal/core/request"
	"gorm.io/gorm"
)

var _ request.Storer = DB{}

type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) DB {
	return DB{db: db}
}

// AutoMigrate 按需建表
func (d DB) AutoMigrate(ok bool) DB {
	if ok {
		if err := d.db.AutoMigrate(new(request.Request)); err != nil {
			panic(err)
		}
	}
	return d
}

func (d DB) Request() request.RequestStorer {
	return NewRequest(d.db)
}
