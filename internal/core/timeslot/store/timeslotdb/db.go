package timeslotdb

import (
	"github.com/gowvp/presence/internal/core/timeslot"
	"gorm.io/gorm"
)

var _ timeslot.Storer = DB{}

type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) DB {
	return DB{db: db}
}

// AutoMigrate 按需建表。
// 部分唯一索引保证同一 (bucket_key, person_id) 至多一条打开记录；
// mysql 不支持部分索引，并发创建依赖间隙锁串行化
func (d DB) AutoMigrate(ok bool) DB {
	if ok {
		if err := d.db.AutoMigrate(new(timeslot.Timeslot)); err != nil {
			panic(err)
		}
		if d.db.Dialector.Name() != "mysql" {
			err := d.db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uk_timeslots_open ON timeslots (bucket_key, person_id) WHERE ended_at IS NULL`).Error
			if err != nil {
				panic(err)
			}
		}
	}
	return d
}

func (d DB) Timeslot() timeslot.TimeslotStorer {
	return NewTimeslot(d.db)
}
