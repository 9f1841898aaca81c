package dao

import (
	"context"

	"github.com/ayxworxfr/gsms/pkg/repository"
	"github.com/pkg/errors"
)

// crud 按主键的通用读写，Get 未命中时返回 (nil, nil)
type crud[T any] struct {
	repo repository.Repository[T]
	name string
}

func newCrud[T any](p repository.ORMProcessor, name string) crud[T] {
	return crud[T]{repo: repository.NewRepository[T](p), name: name}
}

func (c crud[T]) Get(ctx context.Context, id uint64) (*T, error) {
	m, err := c.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %s %d", c.name, id)
	}
	return m, nil
}

func (c crud[T]) ListByIDs(ctx context.Context, ids []uint64) ([]T, error) {
	rows, err := c.repo.FindByIDs(ctx, ids)
	return rows, errors.Wrapf(err, "list %s by ids", c.name)
}

func (c crud[T]) Create(ctx context.Context, m *T) error {
	return errors.Wrapf(c.repo.Create(ctx, m), "create %s", c.name)
}

// Update cols 为空时只更新非零字段
func (c crud[T]) Update(ctx context.Context, m *T, cols ...string) error {
	return errors.Wrapf(c.repo.Update(ctx, m, cols...), "update %s", c.name)
}

// Delete 带 deleted 标签的模型为软删除
func (c crud[T]) Delete(ctx context.Context, id uint64) error {
	return errors.Wrapf(c.repo.DeleteByID(ctx, id), "delete %s %d", c.name, id)
}

// first 单条查询，未命中返回 (nil, nil)
func (c crud[T]) first(ctx context.Context, qb *repository.QueryBuilder[T]) (*T, error) {
	m, err := qb.First(ctx)
	if repository.IsNotFound(err) {
		return nil, nil
	}
	return m, errors.Wrapf(err, "find %s", c.name)
}

func (c crud[T]) page(ctx context.Context, qb *repository.QueryBuilder[T], orderBy string, pg pager) ([]T, int64, error) {
	rows, total, err := qb.OrderBy(orderBy).Page(ctx, pg.Limit(), pg.Offset())
	if err != nil {
		return nil, 0, errors.Wrapf(err, "page %s", c.name)
	}
	return rows, total, nil
}

type pager interface {
	Limit() int
	Offset() int
}
