package dao

import (
	"context"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// AdminRoleCode 内置管理员角色
const AdminRoleCode = "ADMIN"

var builtinPermissions = []models.Permission{
	{Name: "查看全部项目", Code: models.PermProjectViewAll, PermissionType: enums.PermissionTypeData},
	{Name: "查看全部任务", Code: models.PermTaskViewAll, PermissionType: enums.PermissionTypeData},
	{Name: "查看全部工时", Code: models.PermWorkHourViewAll, PermissionType: enums.PermissionTypeData},
	{Name: "用户管理", Code: models.PermUserManage, PermissionType: enums.PermissionTypeFunctional},
}

var builtinRoles = []models.Role{
	{Name: "管理员", Code: AdminRoleCode, RoleType: enums.RoleTypeSystem, RoleLevel: enums.RoleLevelSystem, Description: "可见全部项目"},
	{Name: "普通用户", Code: models.DefaultRoleCode, RoleType: enums.RoleTypeSystem, RoleLevel: enums.RoleLevelProject, Description: "注册用户默认角色"},
}

// SeedAdmin 初始管理员，PasswordHash 为空时不创建
type SeedAdmin struct {
	Username     string
	PasswordHash string
}

// Seed 写入内置角色、权限与管理员，已存在的记录保持不变
func Seed(ctx context.Context, d *DAO, admin SeedAdmin) error {
	_, err := d.Tx.Transaction(ctx, func(ctx context.Context) (any, error) {
		permIDs := make([]uint64, 0, len(builtinPermissions))
		for _, p := range builtinPermissions {
			existing, err := d.Permissions.GetByCode(ctx, p.Code)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				existing = lo.ToPtr(p)
				if err := d.Permissions.Create(ctx, existing); err != nil {
					return nil, errors.Wrapf(err, "seed permission %s", p.Code)
				}
			}
			permIDs = append(permIDs, existing.ID)
		}

		var adminRoleID uint64
		for _, r := range builtinRoles {
			existing, err := d.Roles.GetByCode(ctx, r.Code)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				if r.Code == AdminRoleCode {
					adminRoleID = existing.ID
				}
				continue
			}
			role := lo.ToPtr(r)
			if err := d.Roles.Create(ctx, role); err != nil {
				return nil, errors.Wrapf(err, "seed role %s", r.Code)
			}
			if r.Code == AdminRoleCode {
				adminRoleID = role.ID
				if err := d.Roles.ReplacePermissions(ctx, role.ID, permIDs); err != nil {
					return nil, err
				}
			}
		}

		if admin.PasswordHash == "" {
			return nil, nil
		}
		existing, err := d.Users.GetByUsername(ctx, admin.Username)
		if err != nil || existing != nil {
			return nil, err
		}
		user := &models.User{
			Username: admin.Username,
			Password: admin.PasswordHash,
			Nickname: admin.Username,
			Status:   enums.UserStatusNormal,
		}
		if err := d.Users.Create(ctx, user); err != nil {
			return nil, errors.Wrap(err, "seed admin user")
		}
		return nil, d.Users.ReplaceRoles(ctx, user.ID, []uint64{adminRoleID})
	})
	return err
}
