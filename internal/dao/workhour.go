package dao

import (
	"context"
	"time"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/pkg/repository"
	"github.com/pkg/errors"
)

// DateRange 闭区间，零值端点表示不限
type DateRange struct {
	Start time.Time
	End   time.Time
}

// dateArg date 列统一按 yyyy-MM-dd 比较
func dateArg(t time.Time) string {
	return t.Format(time.DateOnly)
}

type whBuilder = repository.QueryBuilder[models.WorkHour]

func (r DateRange) apply(qb *whBuilder) *whBuilder {
	return qb.
		When(!r.Start.IsZero(), func(b *whBuilder) *whBuilder { return b.Gte("work_date", dateArg(r.Start)) }).
		When(!r.End.IsZero(), func(b *whBuilder) *whBuilder { return b.Lte("work_date", dateArg(r.End)) })
}

type WorkHourDAO struct {
	crud[models.WorkHour]
}

func NewWorkHourDAO(p repository.ORMProcessor) *WorkHourDAO {
	return &WorkHourDAO{crud: newCrud[models.WorkHour](p, "work hour")}
}

func (d *WorkHourDAO) Page(ctx context.Context, q *params.WorkHourQuery, r DateRange, scope authz.ProjectScope) ([]models.WorkHour, int64, error) {
	qb := scoped(r.apply(d.repo.QueryBuilder().Match(q)), "project_id", scope)
	return d.page(ctx, qb, "work_date DESC, id DESC", &q.Page)
}

func (d *WorkHourDAO) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("user_id", userID).Count(ctx)
	return n, errors.Wrap(err, "count user work hours")
}

// ListOfUserOn 某用户某天的全部工时，用于校验日合计
func (d *WorkHourDAO) ListOfUserOn(ctx context.Context, userID uint64, day time.Time) ([]models.WorkHour, error) {
	rows, err := d.repo.QueryBuilder().Eq("user_id", userID).Eq("work_date", dateArg(day)).Find(ctx)
	return rows, errors.Wrap(err, "list daily work hours")
}

func (d *WorkHourDAO) ListByProject(ctx context.Context, projectID uint64, r DateRange) ([]models.WorkHour, error) {
	rows, err := r.apply(d.repo.QueryBuilder().Eq("project_id", projectID)).Find(ctx)
	return rows, errors.Wrap(err, "list project work hours")
}

func (d *WorkHourDAO) ListByTask(ctx context.Context, taskID uint64) ([]models.WorkHour, error) {
	rows, err := d.repo.QueryBuilder().Eq("task_id", taskID).Find(ctx)
	return rows, errors.Wrap(err, "list task work hours")
}

// ListByUsers 多个用户在范围内的工时，限定在 scope 内
func (d *WorkHourDAO) ListByUsers(ctx context.Context, userIDs []uint64, r DateRange, scope authz.ProjectScope) ([]models.WorkHour, error) {
	qb := scoped(r.apply(d.repo.QueryBuilder().In("user_id", userIDs)), "project_id", scope)
	rows, err := qb.Find(ctx)
	return rows, errors.Wrap(err, "list user work hours")
}

func (d *WorkHourDAO) List(ctx context.Context, r DateRange, scope authz.ProjectScope) ([]models.WorkHour, error) {
	rows, err := scoped(r.apply(d.repo.QueryBuilder()), "project_id", scope).Find(ctx)
	return rows, errors.Wrap(err, "list work hours")
}

func (d *WorkHourDAO) CountByProject(ctx context.Context, projectID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("project_id", projectID).Count(ctx)
	return n, errors.Wrap(err, "count project work hours")
}

func (d *WorkHourDAO) CountByTask(ctx context.Context, taskID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("task_id", taskID).Count(ctx)
	return n, errors.Wrap(err, "count task work hours")
}
