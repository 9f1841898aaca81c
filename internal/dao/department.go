package dao

import (
	"context"

	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/pkg/repository"
	"github.com/pkg/errors"
)

type DepartmentDAO struct {
	crud[models.Department]
}

func NewDepartmentDAO(p repository.ORMProcessor) *DepartmentDAO {
	return &DepartmentDAO{crud: newCrud[models.Department](p, "department")}
}

func (d *DepartmentDAO) Page(ctx context.Context, q *params.DepartmentQuery) ([]models.Department, int64, error) {
	return d.page(ctx, d.repo.QueryBuilder().Match(q), "sort ASC, id ASC", &q.Page)
}

func (d *DepartmentDAO) ListAll(ctx context.Context) ([]models.Department, error) {
	rows, err := d.repo.QueryBuilder().OrderBy("sort ASC, id ASC").Find(ctx)
	return rows, errors.Wrap(err, "list departments")
}

func (d *DepartmentDAO) CountChildren(ctx context.Context, id uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("parent_id", id).Count(ctx)
	return n, errors.Wrap(err, "count child departments")
}

// ExistsName 同一父部门下重名检查，excludeID 为更新时的自身
func (d *DepartmentDAO) ExistsName(ctx context.Context, parentID uint64, name string, excludeID uint64) (bool, error) {
	ok, err := d.repo.QueryBuilder().
		Eq("parent_id", parentID).
		Eq("name", name).
		When(excludeID > 0, func(qb *repository.QueryBuilder[models.Department]) *repository.QueryBuilder[models.Department] {
			return qb.Ne("id", excludeID)
		}).
		Exists(ctx)
	return ok, errors.Wrap(err, "check department name")
}
