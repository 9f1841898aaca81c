package dao

import (
	"context"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/pkg/repository"
	"github.com/pkg/errors"
)

type TaskDAO struct {
	crud[models.Task]
}

func NewTaskDAO(p repository.ORMProcessor) *TaskDAO {
	return &TaskDAO{crud: newCrud[models.Task](p, "task")}
}

// Page 指派人等过滤条件与项目范围同时生效
func (d *TaskDAO) Page(ctx context.Context, q *params.TaskQuery, scope authz.ProjectScope) ([]models.Task, int64, error) {
	return d.page(ctx, scoped(d.repo.QueryBuilder().Match(q), "project_id", scope), "sort ASC, id DESC", &q.Page)
}

func (d *TaskDAO) ListByProject(ctx context.Context, projectID uint64) ([]models.Task, error) {
	rows, err := d.repo.QueryBuilder().Eq("project_id", projectID).OrderBy("sort ASC, id ASC").Find(ctx)
	return rows, errors.Wrap(err, "list project tasks")
}

func (d *TaskDAO) ListChildren(ctx context.Context, parentID uint64) ([]models.Task, error) {
	rows, err := d.repo.QueryBuilder().Eq("parent_id", parentID).OrderBy("sort ASC, id ASC").Find(ctx)
	return rows, errors.Wrap(err, "list subtasks")
}

func (d *TaskDAO) CountChildren(ctx context.Context, parentID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("parent_id", parentID).Count(ctx)
	return n, errors.Wrap(err, "count subtasks")
}

func (d *TaskDAO) CountByIteration(ctx context.Context, iterationID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("iteration_id", iterationID).Count(ctx)
	return n, errors.Wrap(err, "count iteration tasks")
}

func (d *TaskDAO) CountByProject(ctx context.Context, projectID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("project_id", projectID).Count(ctx)
	return n, errors.Wrap(err, "count project tasks")
}

func (d *TaskDAO) Count(ctx context.Context, scope authz.ProjectScope) (int64, error) {
	n, err := scoped(d.repo.QueryBuilder(), "project_id", scope).Count(ctx)
	return n, errors.Wrap(err, "count tasks")
}

// CountOfAssignee 含已完成任务
func (d *TaskDAO) CountOfAssignee(ctx context.Context, assigneeID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("assignee_id", assigneeID).Count(ctx)
	return n, errors.Wrap(err, "count assigned tasks")
}

// CountOpenOfAssignee 指派给某人且未完成的任务
func (d *TaskDAO) CountOpenOfAssignee(ctx context.Context, assigneeID uint64, scope authz.ProjectScope) (int64, error) {
	qb := d.repo.QueryBuilder().
		Eq("assignee_id", assigneeID).
		Ne("status", enums.TaskStatusDone)
	n, err := scoped(qb, "project_id", scope).Count(ctx)
	return n, errors.Wrap(err, "count open tasks")
}

// ListOpenOfAssignee 最近的未完成任务，按 id 倒序
func (d *TaskDAO) ListOpenOfAssignee(ctx context.Context, assigneeID uint64, scope authz.ProjectScope, limit int) ([]models.Task, error) {
	qb := d.repo.QueryBuilder().
		Eq("assignee_id", assigneeID).
		Ne("status", enums.TaskStatusDone)
	rows, err := scoped(qb, "project_id", scope).OrderBy("id DESC").Limit(limit).Find(ctx)
	return rows, errors.Wrap(err, "list open tasks")
}

// TaskLinkDAO 甘特图依赖
type TaskLinkDAO struct {
	crud[models.TaskLink]
}

func NewTaskLinkDAO(p repository.ORMProcessor) *TaskLinkDAO {
	return &TaskLinkDAO{crud: newCrud[models.TaskLink](p, "task link")}
}

func (d *TaskLinkDAO) ListByProject(ctx context.Context, projectID uint64) ([]models.TaskLink, error) {
	rows, err := d.repo.QueryBuilder().Eq("project_id", projectID).OrderBy("id ASC").Find(ctx)
	return rows, errors.Wrap(err, "list task links")
}

func (d *TaskLinkDAO) Exists(ctx context.Context, source, target uint64) (bool, error) {
	ok, err := d.repo.QueryBuilder().Eq("source_task_id", source).Eq("target_task_id", target).Exists(ctx)
	return ok, errors.Wrap(err, "check task link")
}

// DeleteByTask 删除与任务相关的全部依赖
func (d *TaskLinkDAO) DeleteByTask(ctx context.Context, taskID uint64) error {
	if _, err := d.repo.QueryBuilder().Eq("source_task_id", taskID).Delete(ctx); err != nil {
		return errors.Wrap(err, "delete outgoing links")
	}
	_, err := d.repo.QueryBuilder().Eq("target_task_id", taskID).Delete(ctx)
	return errors.Wrap(err, "delete incoming links")
}
