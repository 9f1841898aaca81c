package dao

import (
	"context"

	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/pkg/repository"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// RoleDAO 角色及角色权限关联
type RoleDAO struct {
	crud[models.Role]
	rolePerms repository.Repository[models.RolePermission]
}

func NewRoleDAO(p repository.ORMProcessor) *RoleDAO {
	return &RoleDAO{
		crud:      newCrud[models.Role](p, "role"),
		rolePerms: repository.NewRepository[models.RolePermission](p),
	}
}

func (d *RoleDAO) GetByCode(ctx context.Context, code string) (*models.Role, error) {
	return d.first(ctx, d.repo.QueryBuilder().Eq("code", code))
}

func (d *RoleDAO) GetByName(ctx context.Context, name string) (*models.Role, error) {
	return d.first(ctx, d.repo.QueryBuilder().Eq("name", name))
}

func (d *RoleDAO) Page(ctx context.Context, q *params.RoleQuery) ([]models.Role, int64, error) {
	return d.page(ctx, d.repo.QueryBuilder().Match(q), "id ASC", &q.Page)
}

func (d *RoleDAO) ListAll(ctx context.Context) ([]models.Role, error) {
	rows, err := d.repo.QueryBuilder().OrderBy("id ASC").Find(ctx)
	return rows, errors.Wrap(err, "list roles")
}

func (d *RoleDAO) PermissionIDsOfRole(ctx context.Context, roleID uint64) ([]uint64, error) {
	rows, err := d.rolePerms.QueryBuilder().Eq("role_id", roleID).Find(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list role permissions")
	}
	return lo.Map(rows, func(r models.RolePermission, _ int) uint64 { return r.PermissionID }), nil
}

// RoleIDsWithPermission 持有某权限的角色
func (d *RoleDAO) RoleIDsWithPermission(ctx context.Context, permissionID uint64) ([]uint64, error) {
	rows, err := d.rolePerms.QueryBuilder().Eq("permission_id", permissionID).Find(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list permission roles")
	}
	return lo.Map(rows, func(r models.RolePermission, _ int) uint64 { return r.RoleID }), nil
}

// ReplacePermissions 覆盖角色权限，需在事务中调用
func (d *RoleDAO) ReplacePermissions(ctx context.Context, roleID uint64, permissionIDs []uint64) error {
	if _, err := d.rolePerms.QueryBuilder().Eq("role_id", roleID).Delete(ctx); err != nil {
		return errors.Wrap(err, "clear role permissions")
	}
	rows := lo.Map(lo.Uniq(permissionIDs), func(id uint64, _ int) *models.RolePermission {
		return &models.RolePermission{RoleID: roleID, PermissionID: id}
	})
	return errors.Wrap(d.rolePerms.BatchCreate(ctx, rows), "insert role permissions")
}

func (d *RoleDAO) RemovePermission(ctx context.Context, roleID, permissionID uint64) (int64, error) {
	n, err := d.rolePerms.QueryBuilder().Eq("role_id", roleID).Eq("permission_id", permissionID).Delete(ctx)
	return n, errors.Wrap(err, "remove role permission")
}

// DeleteWithPermissions 删除角色及其权限关联，需在事务中调用
func (d *RoleDAO) DeleteWithPermissions(ctx context.Context, roleID uint64) error {
	if _, err := d.rolePerms.QueryBuilder().Eq("role_id", roleID).Delete(ctx); err != nil {
		return errors.Wrap(err, "clear role permissions")
	}
	return d.Delete(ctx, roleID)
}

// PermissionDAO 权限
type PermissionDAO struct {
	crud[models.Permission]
}

func NewPermissionDAO(p repository.ORMProcessor) *PermissionDAO {
	return &PermissionDAO{crud: newCrud[models.Permission](p, "permission")}
}

func (d *PermissionDAO) GetByCode(ctx context.Context, code string) (*models.Permission, error) {
	return d.first(ctx, d.repo.QueryBuilder().Eq("code", code))
}

func (d *PermissionDAO) GetByName(ctx context.Context, name string) (*models.Permission, error) {
	return d.first(ctx, d.repo.QueryBuilder().Eq("name", name))
}

func (d *PermissionDAO) Page(ctx context.Context, q *params.PermissionQuery) ([]models.Permission, int64, error) {
	return d.page(ctx, d.repo.QueryBuilder().Match(q), "id ASC", &q.Page)
}

func (d *PermissionDAO) ListAll(ctx context.Context) ([]models.Permission, error) {
	rows, err := d.repo.QueryBuilder().OrderBy("id ASC").Find(ctx)
	return rows, errors.Wrap(err, "list permissions")
}

func (d *PermissionDAO) ListByCodes(ctx context.Context, codes []string) ([]models.Permission, error) {
	rows, err := d.repo.QueryBuilder().In("code", codes).Find(ctx)
	return rows, errors.Wrap(err, "list permissions by code")
}
