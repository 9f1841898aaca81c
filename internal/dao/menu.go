package dao

import (
	"context"

	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/pkg/repository"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// MenuDAO 菜单及菜单权限关联
type MenuDAO struct {
	crud[models.Menu]
	menuPerms repository.Repository[models.MenuPermission]
}

func NewMenuDAO(p repository.ORMProcessor) *MenuDAO {
	return &MenuDAO{
		crud:      newCrud[models.Menu](p, "menu"),
		menuPerms: repository.NewRepository[models.MenuPermission](p),
	}
}

func (d *MenuDAO) Page(ctx context.Context, q *params.MenuQuery) ([]models.Menu, int64, error) {
	return d.page(ctx, d.repo.QueryBuilder().Match(q), "sort ASC, id ASC", &q.Page)
}

func (d *MenuDAO) ListAll(ctx context.Context) ([]models.Menu, error) {
	rows, err := d.repo.QueryBuilder().OrderBy("sort ASC, id ASC").Find(ctx)
	return rows, errors.Wrap(err, "list menus")
}

func (d *MenuDAO) CountChildren(ctx context.Context, id uint64) (int64, error) {
	n, err := d.repo.QueryBuilder().Eq("parent_id", id).Count(ctx)
	return n, errors.Wrap(err, "count child menus")
}

func (d *MenuDAO) PermissionIDsOfMenu(ctx context.Context, menuID uint64) ([]uint64, error) {
	rows, err := d.menuPerms.QueryBuilder().Eq("menu_id", menuID).Find(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list menu permissions")
	}
	return lo.Map(rows, func(r models.MenuPermission, _ int) uint64 { return r.PermissionID }), nil
}

// ListMenuPermissions 全部菜单权限关联，用于组装用户菜单
func (d *MenuDAO) ListMenuPermissions(ctx context.Context) ([]models.MenuPermission, error) {
	rows, err := d.menuPerms.QueryBuilder().Find(ctx)
	return rows, errors.Wrap(err, "list menu permissions")
}

// ReplacePermissions 覆盖菜单权限，需在事务中调用
func (d *MenuDAO) ReplacePermissions(ctx context.Context, menuID uint64, permissionIDs []uint64) error {
	if _, err := d.menuPerms.QueryBuilder().Eq("menu_id", menuID).Delete(ctx); err != nil {
		return errors.Wrap(err, "clear menu permissions")
	}
	rows := lo.Map(lo.Uniq(permissionIDs), func(id uint64, _ int) *models.MenuPermission {
		return &models.MenuPermission{MenuID: menuID, PermissionID: id}
	})
	return errors.Wrap(d.menuPerms.BatchCreate(ctx, rows), "insert menu permissions")
}

// DeleteWithPermissions 删除菜单及其权限关联，需在事务中调用
func (d *MenuDAO) DeleteWithPermissions(ctx context.Context, menuID uint64) error {
	if _, err := d.menuPerms.QueryBuilder().Eq("menu_id", menuID).Delete(ctx); err != nil {
		return errors.Wrap(err, "clear menu permissions")
	}
	return d.Delete(ctx, menuID)
}

// OperationLogDAO 操作日志只增不改
type OperationLogDAO struct {
	crud[models.OperationLog]
}

func NewOperationLogDAO(p repository.ORMProcessor) *OperationLogDAO {
	return &OperationLogDAO{crud: newCrud[models.OperationLog](p, "operation log")}
}

// Page start/end 为空时不限制时间
func (d *OperationLogDAO) Page(ctx context.Context, q *params.OperationLogQuery, start, end string) ([]models.OperationLog, int64, error) {
	type qb = repository.QueryBuilder[models.OperationLog]
	builder := d.repo.QueryBuilder().Match(q).
		When(start != "", func(b *qb) *qb { return b.Gte("create_time", start) }).
		When(end != "", func(b *qb) *qb { return b.Lte("create_time", end) })
	return d.page(ctx, builder, "id DESC", &q.Page)
}
