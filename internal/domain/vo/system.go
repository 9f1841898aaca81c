package vo

import (
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
)

// User 用户视图对象
type User struct {
	ID             uint64           `json:"id"`
	Username       string           `json:"username"`
	Nickname       string           `json:"nickname"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	DepartmentID   uint64           `json:"department_id"`
	DepartmentName string           `json:"department_name,omitempty"`
	Status         enums.UserStatus `json:"status"`
	StatusDesc     string           `json:"status_desc"`
	LastLoginTime  *time.Time       `json:"last_login_time"`
	CreateTime     time.Time        `json:"create_time"`
	UpdateTime     time.Time        `json:"update_time"`
	Roles          []*Role          `json:"roles,omitempty"`
	Permissions    []string         `json:"permissions,omitempty"`
}

// Role 角色视图对象
type Role struct {
	ID            uint64          `json:"id"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	Description   string          `json:"description"`
	RoleType      enums.RoleType  `json:"role_type"`
	RoleLevel     enums.RoleLevel `json:"role_level"`
	RoleLevelDesc string          `json:"role_level_desc"`
	CreateTime    time.Time       `json:"create_time"`
	UpdateTime    time.Time       `json:"update_time"`
	Permissions   []*Permission   `json:"permissions,omitempty"`
}

// Permission 权限视图对象
type Permission struct {
	ID                 uint64               `json:"id"`
	Name               string               `json:"name"`
	Code               string               `json:"code"`
	Description        string               `json:"description"`
	PermissionType     enums.PermissionType `json:"permission_type"`
	PermissionTypeDesc string               `json:"permission_type_desc"`
	CreateTime         time.Time            `json:"create_time"`
	UpdateTime         time.Time            `json:"update_time"`
}

// Department 部门，树形接口填充 Children
type Department struct {
	ID         uint64        `json:"id"`
	Name       string        `json:"name"`
	ParentID   uint64        `json:"parent_id"`
	Level      int           `json:"level"`
	Sort       int           `json:"sort"`
	Remark     string        `json:"remark"`
	UserCount  int64         `json:"user_count"`
	CreateTime time.Time     `json:"create_time"`
	UpdateTime time.Time     `json:"update_time"`
	Children   []*Department `json:"children,omitempty"`
}

// Menu 菜单，树形接口填充 Children
type Menu struct {
	ID            uint64           `json:"id"`
	ParentID      uint64           `json:"parent_id"`
	Name          string           `json:"name"`
	Path          string           `json:"path"`
	Component     string           `json:"component"`
	Icon          string           `json:"icon"`
	MenuType      enums.MenuType   `json:"menu_type"`
	Sort          int              `json:"sort"`
	Visible       bool             `json:"visible"`
	Status        enums.MenuStatus `json:"status"`
	PermissionIDs []uint64         `json:"permission_ids,omitempty"`
	CreateTime    time.Time        `json:"create_time"`
	UpdateTime    time.Time        `json:"update_time"`
	Children      []*Menu          `json:"children,omitempty"`
}

// OperationLog 操作日志
type OperationLog struct {
	ID                uint64                `json:"id"`
	UserID            uint64                `json:"user_id"`
	Username          string                `json:"username"`
	OperationType     enums.OperationType   `json:"operation_type"`
	OperationTypeDesc string                `json:"operation_type_desc"`
	Module            enums.OperationModule `json:"module"`
	ModuleDesc        string                `json:"module_desc"`
	Description       string                `json:"description"`
	Method            string                `json:"method"`
	Path              string                `json:"path"`
	IP                string                `json:"ip"`
	Status            enums.OperationStatus `json:"status"`
	ErrorMsg          string                `json:"error_msg,omitempty"`
	CostMillis        int64                 `json:"cost_ms"`
	CreateTime        time.Time             `json:"create_time"`
}
