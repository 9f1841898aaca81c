// Package authz 计算用户的角色级别、权限集合与可见项目范围。
package authz

import (
	"context"
	"slices"

	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Store 解析所需的最小数据访问接口，未命中返回空切片
type Store interface {
	RoleIDsOfUser(ctx context.Context, userID uint64) ([]uint64, error)
	RolesByIDs(ctx context.Context, roleIDs []uint64) ([]models.Role, error)
	PermissionCodesOfRole(ctx context.Context, roleID uint64) ([]string, error)
	ProjectIDsOfMember(ctx context.Context, userID uint64) ([]uint64, error)
}

// Resolver 无状态解析器，角色权限经 PermissionCache 读穿
type Resolver struct {
	store Store
	cache PermissionCache
}

func NewResolver(store Store, cache PermissionCache) *Resolver {
	return &Resolver{store: store, cache: cache}
}

// Roles 用户持有的角色，没有角色时返回空
func (r *Resolver) Roles(ctx context.Context, userID uint64) ([]models.Role, error) {
	roleIDs, err := r.store.RoleIDsOfUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "load roles of user %d", userID)
	}
	if len(roleIDs) == 0 {
		return nil, nil
	}
	roles, err := r.store.RolesByIDs(ctx, roleIDs)
	if err != nil {
		return nil, errors.Wrapf(err, "load roles %v", roleIDs)
	}
	return roles, nil
}

// RoleCodes 用户的角色编码
func (r *Resolver) RoleCodes(ctx context.Context, userID uint64) ([]string, error) {
	roles, err := r.Roles(ctx, userID)
	if err != nil {
		return nil, err
	}
	codes := lo.Map(roles, func(role models.Role, _ int) string { return role.Code })
	slices.Sort(codes)
	return codes, nil
}

// PermissionCodes 所有角色权限编码的并集，升序
func (r *Resolver) PermissionCodes(ctx context.Context, userID uint64) ([]string, error) {
	roleIDs, err := r.store.RoleIDsOfUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrapf(err, "load roles of user %d", userID)
	}
	return r.permissionsOfRoles(ctx, roleIDs)
}

func (r *Resolver) permissionsOfRoles(ctx context.Context, roleIDs []uint64) ([]string, error) {
	set := make(map[string]struct{})
	for _, roleID := range roleIDs {
		codes, err := r.rolePermissions(ctx, roleID)
		if err != nil {
			return nil, err
		}
		for _, c := range codes {
			set[c] = struct{}{}
		}
	}
	out := lo.Keys(set)
	slices.Sort(out)
	return out, nil
}

func (r *Resolver) rolePermissions(ctx context.Context, roleID uint64) ([]string, error) {
	if codes, ok := r.cache.Get(ctx, roleID); ok {
		return codes, nil
	}
	codes, err := r.store.PermissionCodesOfRole(ctx, roleID)
	if err != nil {
		return nil, errors.Wrapf(err, "load permissions of role %d", roleID)
	}
	r.cache.Set(ctx, roleID, codes)
	return codes, nil
}

// HasPermission 数据加载失败时记录日志并拒绝
func (r *Resolver) HasPermission(ctx context.Context, userID uint64, code string) bool {
	ok, err := r.hasPermission(ctx, userID, code)
	if err != nil {
		logger.Error(ctx, "resolve permission failed", zap.Uint64("user_id", userID), zap.String("code", code), zap.Error(err))
		return false
	}
	return ok
}

func (r *Resolver) hasPermission(ctx context.Context, userID uint64, code string) (bool, error) {
	codes, err := r.PermissionCodes(ctx, userID)
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(codes, code)
	return found, nil
}

// IsSystemLevel 是否持有任一系统级角色
func (r *Resolver) IsSystemLevel(ctx context.Context, userID uint64) (bool, error) {
	roles, err := r.Roles(ctx, userID)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(roles, func(role models.Role) bool { return role.IsSystemLevel() }), nil
}

// viewAll 系统级角色或持有 adminCode 即可查看全部
func (r *Resolver) viewAll(ctx context.Context, userID uint64, adminCode string) (bool, error) {
	system, err := r.IsSystemLevel(ctx, userID)
	if err != nil || system {
		return system, err
	}
	return r.hasPermission(ctx, userID, adminCode)
}

func (r *Resolver) canViewAll(ctx context.Context, userID uint64, adminCode string) bool {
	ok, err := r.viewAll(ctx, userID, adminCode)
	if err != nil {
		logger.Error(ctx, "resolve visibility failed", zap.Uint64("user_id", userID), zap.String("code", adminCode), zap.Error(err))
		return false
	}
	return ok
}

func (r *Resolver) CanViewAllProjects(ctx context.Context, userID uint64) bool {
	return r.canViewAll(ctx, userID, models.PermProjectViewAll)
}

func (r *Resolver) CanViewAllTasks(ctx context.Context, userID uint64) bool {
	return r.canViewAll(ctx, userID, models.PermTaskViewAll)
}

func (r *Resolver) CanViewAllWorkHours(ctx context.Context, userID uint64) bool {
	return r.canViewAll(ctx, userID, models.PermWorkHourViewAll)
}

// AccessibleProjects 可查看全部项目时返回 Unrestricted，否则为成员所在项目
func (r *Resolver) AccessibleProjects(ctx context.Context, userID uint64) (ProjectScope, error) {
	return r.scope(ctx, userID, models.PermProjectViewAll)
}

// TaskScope 任务列表的项目范围
func (r *Resolver) TaskScope(ctx context.Context, userID uint64) (ProjectScope, error) {
	return r.scope(ctx, userID, models.PermTaskViewAll)
}

// WorkHourScope 工时列表的项目范围
func (r *Resolver) WorkHourScope(ctx context.Context, userID uint64) (ProjectScope, error) {
	return r.scope(ctx, userID, models.PermWorkHourViewAll)
}

func (r *Resolver) scope(ctx context.Context, userID uint64, adminCode string) (ProjectScope, error) {
	all, err := r.viewAll(ctx, userID, adminCode)
	if err != nil {
		return ProjectScope{}, err
	}
	if all {
		return Unrestricted(), nil
	}
	ids, err := r.store.ProjectIDsOfMember(ctx, userID)
	if err != nil {
		return ProjectScope{}, errors.Wrapf(err, "load projects of user %d", userID)
	}
	return Restricted(ids...), nil
}

// InvalidateRoles 角色权限变更后调用
func (r *Resolver) InvalidateRoles(ctx context.Context, roleIDs ...uint64) {
	r.cache.Invalidate(ctx, roleIDs...)
}

// InvalidateAll 权限本身被修改或删除时调用
func (r *Resolver) InvalidateAll(ctx context.Context) {
	r.cache.Clear(ctx)
}
