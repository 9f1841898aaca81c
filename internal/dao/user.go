package dao

import (
	"context"

	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/pkg/repository"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// UserDAO 用户及用户角色关联
type UserDAO struct {
	crud[models.User]
	userRoles repository.Repository[models.UserRole]
}

func NewUserDAO(p repository.ORMProcessor) *UserDAO {
	return &UserDAO{
		crud:      newCrud[models.User](p, "user"),
		userRoles: repository.NewRepository[models.UserRole](p),
	}
}

func (d *UserDAO) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return d.first(ctx, d.repo.QueryBuilder().Eq("username", username))
}

func (d *UserDAO) Page(ctx context.Context, q *params.UserQuery) ([]models.User, int64, error) {
	return d.page(ctx, d.repo.QueryBuilder().Match(q), "id DESC", &q.Page)
}

func (d *UserDAO) ListAll(ctx context.Context) ([]models.User, error) {
	rows, err := d.repo.QueryBuilder().OrderBy("id ASC").Find(ctx)
	return rows, errors.Wrap(err, "list users")
}

func (d *UserDAO) ListByDepartment(ctx context.Context, departmentID uint64) ([]models.User, error) {
	rows, err := d.repo.QueryBuilder().Eq("department_id", departmentID).Find(ctx)
	return rows, errors.Wrap(err, "list users of department")
}

func (d *UserDAO) CountByDepartment(ctx context.Context, departmentID uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("department_id", departmentID).Count(ctx)
	return n, errors.Wrap(err, "count users of department")
}

// RoleIDsOfUser 用户持有的角色 id
func (d *UserDAO) RoleIDsOfUser(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := d.userRoles.QueryBuilder().Eq("user_id", userID).Find(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list user roles")
	}
	return lo.Map(rows, func(r models.UserRole, _ int) uint64 { return r.RoleID }), nil
}

// UserIDsOfRole 持有某角色的用户 id
func (d *UserDAO) UserIDsOfRole(ctx context.Context, roleID uint64) ([]uint64, error) {
	rows, err := d.userRoles.QueryBuilder().Eq("role_id", roleID).Find(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list role users")
	}
	return lo.Map(rows, func(r models.UserRole, _ int) uint64 { return r.UserID }), nil
}

func (d *UserDAO) CountUsersOfRole(ctx context.Context, roleID uint64) (int64, error) {
	n, err := d.userRoles.QueryBuilder().Eq("role_id", roleID).Count(ctx)
	return n, errors.Wrap(err, "count role users")
}

// ReplaceRoles 覆盖用户角色，需在事务中调用
func (d *UserDAO) ReplaceRoles(ctx context.Context, userID uint64, roleIDs []uint64) error {
	if _, err := d.userRoles.QueryBuilder().Eq("user_id", userID).Delete(ctx); err != nil {
		return errors.Wrap(err, "clear user roles")
	}
	rows := lo.Map(lo.Uniq(roleIDs), func(id uint64, _ int) *models.UserRole {
		return &models.UserRole{UserID: userID, RoleID: id}
	})
	return errors.Wrap(d.userRoles.BatchCreate(ctx, rows), "insert user roles")
}

// DeleteWithRoles 删除用户及其角色关联，需在事务中调用
func (d *UserDAO) DeleteWithRoles(ctx context.Context, userID uint64) error {
	if _, err := d.userRoles.QueryBuilder().Eq("user_id", userID).Delete(ctx); err != nil {
		return errors.Wrap(err, "clear user roles")
	}
	return d.Delete(ctx, userID)
}
