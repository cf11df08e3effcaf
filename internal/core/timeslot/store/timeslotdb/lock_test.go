package timeslotdb

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gowvp/presence/internal/core/timeslot"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	return db, mock
}

func setupMockPgDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	return db, mock
}

// 并发创建竞争：行锁锁不住不存在的行，两个事务都查不到打开区间，
// 输掉插入的一方在 ON CONFLICT DO NOTHING 后必须改读胜者的行，
// 最终只存在一条打开记录且 last_seen_at 取两者较大值
func TestUpsertOpenCreateRaceLoserAdoptsWinner(t *testing.T) {
	db, mock := setupMockPgDB(t)

	mock.ExpectBegin()
	// 查不到打开区间
	mock.ExpectQuery(`SELECT \* FROM "timeslots" WHERE (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// 并发对手已插入，部分唯一索引拦下本事务的插入
	mock.ExpectQuery(`INSERT INTO "timeslots" (.+)ON CONFLICT DO NOTHING(.+)RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// 改读胜者的行并推进 last_seen_at
	mock.ExpectQuery(`SELECT \* FROM "timeslots" WHERE (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "bucket_key", "person_id", "started_at", "last_seen_at"}).
			AddRow(9, timeslot.KeyFaceKnown, "anna", int64(1000), int64(5000)))
	mock.ExpectExec(`UPDATE "timeslots" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := NewTimeslot(db).UpsertOpen(context.Background(), timeslot.KeyFaceKnown, "anna", 9000)
	if err != nil {
		t.Fatal(err)
	}
	if id != 9 {
		t.Errorf("id = %d, want winner's 9", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// 胜者时间戳更新时不再发 UPDATE
func TestUpsertOpenCreateRaceStaleTimestamp(t *testing.T) {
	db, mock := setupMockPgDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "timeslots" WHERE (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "timeslots" (.+)ON CONFLICT DO NOTHING(.+)RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "timeslots" WHERE (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "bucket_key", "person_id", "started_at", "last_seen_at"}).
			AddRow(9, timeslot.KeyFaceKnown, "anna", int64(1000), int64(5000)))
	mock.ExpectCommit()

	id, err := NewTimeslot(db).UpsertOpen(context.Background(), timeslot.KeyFaceKnown, "anna", 3000)
	if err != nil {
		t.Fatal(err)
	}
	if id != 9 {
		t.Errorf("id = %d, want winner's 9", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// mysql 方言下命中行走 FOR UPDATE 行锁
func TestUpsertOpenLocksRowOnMySQL(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM .timeslots. WHERE (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "bucket_key", "person_id", "started_at", "last_seen_at"}).
			AddRow(7, timeslot.KeyFaceKnown, "anna", int64(1000), int64(2000)))
	mock.ExpectExec(`UPDATE .timeslots. SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := NewTimeslot(db).UpsertOpen(context.Background(), timeslot.KeyFaceKnown, "anna", 3000)
	if err != nil {
		t.Fatal(err)
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// 乱序到达的更早触发命中行后不发 UPDATE
func TestUpsertOpenStaleTimestampNoUpdate(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM .timeslots. WHERE (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "bucket_key", "person_id", "started_at", "last_seen_at"}).
			AddRow(7, timeslot.KeyFaceKnown, "anna", int64(1000), int64(5000)))
	mock.ExpectCommit()

	id, err := NewTimeslot(db).UpsertOpen(context.Background(), timeslot.KeyFaceKnown, "anna", 3000)
	if err != nil {
		t.Fatal(err)
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
