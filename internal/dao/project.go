package dao

import (
	"context"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/pkg/repository"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// scoped 受限范围时追加 column IN (...)，空范围不匹配任何记录
func scoped[T any](qb *repository.QueryBuilder[T], column string, scope authz.ProjectScope) *repository.QueryBuilder[T] {
	return qb.When(!scope.IsUnrestricted(), func(b *repository.QueryBuilder[T]) *repository.QueryBuilder[T] {
		return b.In(column, scope.IDs())
	})
}

type ProjectDAO struct {
	crud[models.Project]
}

func NewProjectDAO(p repository.ORMProcessor) *ProjectDAO {
	return &ProjectDAO{crud: newCrud[models.Project](p, "project")}
}

func (d *ProjectDAO) GetByCode(ctx context.Context, code string) (*models.Project, error) {
	return d.first(ctx, d.repo.QueryBuilder().Eq("code", code))
}

func (d *ProjectDAO) GetByName(ctx context.Context, name string) (*models.Project, error) {
	return d.first(ctx, d.repo.QueryBuilder().Eq("name", name))
}

func (d *ProjectDAO) Page(ctx context.Context, q *params.ProjectQuery, scope authz.ProjectScope) ([]models.Project, int64, error) {
	return d.page(ctx, scoped(d.repo.QueryBuilder().Match(q), "id", scope), "id DESC", &q.Page)
}

func (d *ProjectDAO) List(ctx context.Context, scope authz.ProjectScope) ([]models.Project, error) {
	rows, err := scoped(d.repo.QueryBuilder(), "id", scope).OrderBy("id ASC").Find(ctx)
	return rows, errors.Wrap(err, "list projects")
}

func (d *ProjectDAO) Count(ctx context.Context, scope authz.ProjectScope) (int64, error) {
	n, err := scoped(d.repo.QueryBuilder(), "id", scope).Count(ctx)
	return n, errors.Wrap(err, "count projects")
}

func (d *ProjectDAO) CountManagedBy(ctx context.Context, userID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("manager_id", userID).Count(ctx)
	return n, errors.Wrap(err, "count managed projects")
}

// MemberDAO 项目成员
type MemberDAO struct {
	repo repository.Repository[models.ProjectMember]
}

func NewMemberDAO(p repository.ORMProcessor) *MemberDAO {
	return &MemberDAO{repo: repository.NewRepository[models.ProjectMember](p)}
}

func (d *MemberDAO) Get(ctx context.Context, projectID, userID uint64) (*models.ProjectMember, error) {
	m, err := d.repo.QueryBuilder().Eq("project_id", projectID).Eq("user_id", userID).First(ctx)
	if repository.IsNotFound(err) {
		return nil, nil
	}
	return m, errors.Wrap(err, "get project member")
}

func (d *MemberDAO) IsMember(ctx context.Context, projectID, userID uint64) (bool, error) {
	ok, err := d.repo.QueryBuilder().Eq("project_id", projectID).Eq("user_id", userID).Exists(ctx)
	return ok, errors.Wrap(err, "check project member")
}

func (d *MemberDAO) ListByProject(ctx context.Context, projectID uint64) ([]models.ProjectMember, error) {
	rows, err := d.repo.QueryBuilder().Eq("project_id", projectID).OrderBy("id ASC").Find(ctx)
	return rows, errors.Wrap(err, "list project members")
}

// ProjectIDsOfMember 用户参与的项目
func (d *MemberDAO) ProjectIDsOfMember(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := d.repo.QueryBuilder().Eq("user_id", userID).Find(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list member projects")
	}
	return lo.Map(rows, func(m models.ProjectMember, _ int) uint64 { return m.ProjectID }), nil
}

func (d *MemberDAO) CountOfUser(ctx context.Context, userID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("user_id", userID).Count(ctx)
	return n, errors.Wrap(err, "count user memberships")
}

func (d *MemberDAO) Add(ctx context.Context, members []*models.ProjectMember) error {
	return errors.Wrap(d.repo.BatchCreate(ctx, members), "add project members")
}

func (d *MemberDAO) UpdateRole(ctx context.Context, m *models.ProjectMember) error {
	return errors.Wrap(d.repo.Update(ctx, m, "role"), "update project member")
}

func (d *MemberDAO) Remove(ctx context.Context, projectID, userID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("project_id", projectID).Eq("user_id", userID).Delete(ctx)
	return n, errors.Wrap(err, "remove project member")
}

func (d *MemberDAO) RemoveProject(ctx context.Context, projectID uint64) error {
	_, err := d.repo.QueryBuilder().Eq("project_id", projectID).Delete(ctx)
	return errors.Wrap(err, "remove project members")
}

type IterationDAO struct {
	crud[models.Iteration]
}

func NewIterationDAO(p repository.ORMProcessor) *IterationDAO {
	return &IterationDAO{crud: newCrud[models.Iteration](p, "iteration")}
}

func (d *IterationDAO) Page(ctx context.Context, q *params.IterationQuery, scope authz.ProjectScope) ([]models.Iteration, int64, error) {
	return d.page(ctx, scoped(d.repo.QueryBuilder().Match(q), "project_id", scope), "id DESC", &q.Page)
}

func (d *IterationDAO) ListByProject(ctx context.Context, projectID uint64) ([]models.Iteration, error) {
	rows, err := d.repo.QueryBuilder().Eq("project_id", projectID).OrderBy("start_date ASC, id ASC").Find(ctx)
	return rows, errors.Wrap(err, "list iterations")
}

func (d *IterationDAO) CountByProject(ctx context.Context, projectID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("project_id", projectID).Count(ctx)
	return n, errors.Wrap(err, "count iterations")
}
