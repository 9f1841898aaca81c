package models

import (
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
)

// Role 角色
type Role struct {
	ID          uint64          `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	Name        string          `xorm:"varchar(50) notnull unique 'name'" json:"name"`
	Code        string          `xorm:"varchar(50) notnull unique 'code'" json:"code"`
	Description string          `xorm:"varchar(255) 'description'" json:"description"`
	RoleType    enums.RoleType  `xorm:"varchar(20) notnull default 'CUSTOM' 'role_type'" json:"role_type"`
	RoleLevel   enums.RoleLevel `xorm:"tinyint notnull default 2 'role_level'" json:"role_level"`
	CreateTime  time.Time       `xorm:"created 'create_time'" json:"create_time"`
	UpdateTime  time.Time       `xorm:"updated 'update_time'" json:"update_time"`
}

func (Role) TableName() string { return "sys_role" }

// IsSystemLevel 是否系统级角色（可见全部项目）
func (r *Role) IsSystemLevel() bool {
	return r.RoleLevel == enums.RoleLevelSystem
}

// Builtin 内置角色不可删除
func (r *Role) Builtin() bool {
	return r.RoleType == enums.RoleTypeSystem
}

// Permission 权限
type Permission struct {
	ID             uint64               `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	Name           string               `xorm:"varchar(50) notnull unique 'name'" json:"name"`
	Code           string               `xorm:"varchar(64) notnull unique 'code'" json:"code"`
	Description    string               `xorm:"varchar(255) 'description'" json:"description"`
	PermissionType enums.PermissionType `xorm:"tinyint notnull default 1 'permission_type'" json:"permission_type"`
	CreateTime     time.Time            `xorm:"created 'create_time'" json:"create_time"`
	UpdateTime     time.Time            `xorm:"updated 'update_time'" json:"update_time"`
}

func (Permission) TableName() string { return "sys_permission" }

// RolePermission 角色权限关联
type RolePermission struct {
	ID           uint64 `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	RoleID       uint64 `xorm:"bigint unsigned notnull index unique(uk_role_permission) 'role_id'" json:"role_id"`
	PermissionID uint64 `xorm:"bigint unsigned notnull index unique(uk_role_permission) 'permission_id'" json:"permission_id"`
}

func (RolePermission) TableName() string { return "sys_role_permission" }

// 查看全部数据的权限编码
const (
	PermProjectViewAll  = "PROJECT_VIEW_ALL"
	PermTaskViewAll     = "TASK_VIEW_ALL"
	PermWorkHourViewAll = "WORKHOUR_VIEW_ALL"
	PermUserManage      = "USER_MANAGE"
)

// DefaultRoleCode 注册用户默认角色
const DefaultRoleCode = "USER"
