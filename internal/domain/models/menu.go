package models

import (
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
)

// Menu 菜单，ParentID 为 0 表示顶级菜单
type Menu struct {
	ID         uint64           `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	ParentID   uint64           `xorm:"bigint unsigned notnull default 0 index 'parent_id'" json:"parent_id"`
	Name       string           `xorm:"varchar(50) notnull 'name'" json:"name"`
	Path       string           `xorm:"varchar(200) 'path'" json:"path"`
	Component  string           `xorm:"varchar(200) 'component'" json:"component"`
	Icon       string           `xorm:"varchar(50) 'icon'" json:"icon"`
	MenuType   enums.MenuType   `xorm:"tinyint notnull default 2 'menu_type'" json:"menu_type"`
	Sort       int              `xorm:"int notnull default 0 'sort'" json:"sort"`
	Visible    bool             `xorm:"bool notnull default true 'visible'" json:"visible"`
	Status     enums.MenuStatus `xorm:"tinyint notnull default 1 'status'" json:"status"`
	CreateTime time.Time        `xorm:"created 'create_time'" json:"create_time"`
	UpdateTime time.Time        `xorm:"updated 'update_time'" json:"update_time"`
}

func (Menu) TableName() string { return "sys_menu" }

// MenuPermission 菜单所需权限
type MenuPermission struct {
	ID           uint64 `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	MenuID       uint64 `xorm:"bigint unsigned notnull index unique(uk_menu_permission) 'menu_id'" json:"menu_id"`
	PermissionID uint64 `xorm:"bigint unsigned notnull index unique(uk_menu_permission) 'permission_id'" json:"permission_id"`
}

func (MenuPermission) TableName() string { return "sys_menu_permission" }

// OperationLog 操作日志
type OperationLog struct {
	ID            uint64                `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	UserID        uint64                `xorm:"bigint unsigned index 'user_id'" json:"user_id"`
	Username      string                `xorm:"varchar(50) 'username'" json:"username"`
	OperationType enums.OperationType   `xorm:"tinyint 'operation_type'" json:"operation_type"`
	Module        enums.OperationModule `xorm:"tinyint 'module'" json:"module"`
	Description   string                `xorm:"varchar(500) 'description'" json:"description"`
	Method        string                `xorm:"varchar(10) 'method'" json:"method"`
	Path          string                `xorm:"varchar(255) 'path'" json:"path"`
	Params        string                `xorm:"text 'params'" json:"params"`
	IP            string                `xorm:"varchar(64) 'ip'" json:"ip"`
	Status        enums.OperationStatus `xorm:"tinyint 'status'" json:"status"`
	ErrorMsg      string                `xorm:"text 'error_msg'" json:"error_msg"`
	CostMillis    int64                 `xorm:"bigint 'cost_ms'" json:"cost_ms"`
	CreateTime    time.Time             `xorm:"created index 'create_time'" json:"create_time"`
}

func (OperationLog) TableName() string { return "sys_operation_log" }

// AllTables 需要同步表结构的全部模型
func AllTables() []any {
	return []any{
		new(User), new(UserRole), new(Role), new(Permission), new(RolePermission),
		new(Department), new(Project), new(ProjectMember), new(Iteration),
		new(Task), new(TaskLink), new(WorkHour), new(Menu), new(MenuPermission), new(OperationLog),
	}
}
