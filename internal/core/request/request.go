package request

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/jinzhu/copier"
)

// AddRequest Insert into database
func (c Core) AddRequest(ctx context.Context, in *AddRequestInput) (*Request, error) {
	var out Request
	if err := copier.Copy(&out, in); err != nil {
		slog.ErrorContext(ctx, "Copy", "err", err)
	}
	out.ID = uuid.NewString()
	out.ReceivedAt = orm.Now()

	if err := c.store.Request().Add(ctx, &out); err != nil {
		return nil, reason.ErrDB.Withf(`Add err[%s]`, err.Error())
	}
	return &out, nil
}

// FindRequests 分页查询留痕记录，按接收时间倒序
func (c Core) FindRequests(ctx context.Context, in *FindRequestInput) ([]*Request, int64, error) {
	query := orm.NewQuery(3).OrderBy("received_at DESC")
	if in.Method != "" {
		query.Where("method = ?", in.Method)
	}
	if in.Path != "" {
		query.Where("path LIKE ?", "%"+in.Path+"%")
	}

	items := make([]*Request, 0, in.Limit())
	total, err := c.store.Request().Find(ctx, &items, in, query.Encode()...)
	if err != nil {
		return nil, 0, reason.ErrDB.Withf(`Find in[%+v] err[%s]`, in, err.Error())
	}
	return items, total, nil
}

// GetRequest Query a single object
func (c Core) GetRequest(ctx context.Context, id string) (*Request, error) {
	var out Request
	if err := c.store.Request().Get(ctx, &out, orm.Where("id=?", id)); err != nil {
		if orm.IsErrRecordNotFound(err) {
			return nil, reason.ErrNotFound.Withf(`Get id[%v] err[%s]`, id, err.Error())
		}
		return nil, reason.ErrDB.Withf(`Get id[%v] err[%s]`, id, err.Error())
	}
	return &out, nil
}
