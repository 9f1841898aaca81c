package params

// ---------------------- 用户 ----------------------

// UserFields 创建与更新共用字段
type UserFields struct {
	Nickname     string `json:"nickname" vd:"len($)<=50"`
	Email        string `json:"email" vd:"len($)<=100"`
	Phone        string `json:"phone" vd:"len($)<=20"`
	DepartmentID uint64 `json:"department_id"`
	Status       int    `json:"status"`
}

type CreateUserRequest struct {
	UserFields
	Username string   `json:"username" vd:"len($)>=3&&len($)<=50"`
	Password string   `json:"password" vd:"len($)>=6&&len($)<=64"`
	RoleIDs  []uint64 `json:"role_ids"`
}

type UpdateUserRequest struct {
	UserFields
	ID uint64 `path:"id" json:"-" vd:"$>0"`
}

type GetUserRequest struct {
	ID    uint64 `path:"id" vd:"$>0"`
	Flags int    `query:"flags"`
}

type UserQuery struct {
	Page
	Username     string `query:"username" xorm:"username op=like"`
	Nickname     string `query:"nickname" xorm:"nickname op=like"`
	Phone        string `query:"phone" xorm:"phone op=like"`
	DepartmentID uint64 `query:"department_id" xorm:"department_id op=eq"`
	Status       int    `query:"status" xorm:"status op=eq"`
}

// AssignRolesRequest 覆盖式分配角色
type AssignRolesRequest struct {
	UserID  uint64   `path:"id" json:"-" vd:"$>0"`
	RoleIDs []uint64 `json:"role_ids"`
}

// ---------------------- 角色 ----------------------

type RoleFields struct {
	Name        string `json:"name" vd:"len($)>0&&len($)<=50"`
	Description string `json:"description" vd:"len($)<=255"`
	RoleLevel   int    `json:"role_level"`
}

type CreateRoleRequest struct {
	RoleFields
	Code          string   `json:"code" vd:"len($)>0&&len($)<=50"`
	PermissionIDs []uint64 `json:"permission_ids"`
}

type UpdateRoleRequest struct {
	RoleFields
	ID   uint64 `path:"id" json:"-" vd:"$>0"`
	Code string `json:"code" vd:"len($)<=50"`
}

type RoleQuery struct {
	Page
	Name      string `query:"name" xorm:"name op=like"`
	Code      string `query:"code" xorm:"code op=startswith"`
	RoleType  string `query:"role_type" xorm:"role_type op=eq"`
	RoleLevel int    `query:"role_level" xorm:"role_level op=eq"`
}

type AssignRolePermissionsRequest struct {
	RoleID        uint64   `path:"id" json:"-" vd:"$>0"`
	PermissionIDs []uint64 `json:"permission_ids"`
}

type RemoveRolePermissionRequest struct {
	RoleID       uint64 `path:"roleId" vd:"$>0"`
	PermissionID uint64 `path:"permissionId" vd:"$>0"`
}

// ---------------------- 权限 ----------------------

type PermissionFields struct {
	Name           string `json:"name" vd:"len($)>0&&len($)<=50"`
	Description    string `json:"description" vd:"len($)<=255"`
	PermissionType int    `json:"permission_type"`
}

type CreatePermissionRequest struct {
	PermissionFields
	Code string `json:"code" vd:"len($)>0&&len($)<=64"`
}

type UpdatePermissionRequest struct {
	PermissionFields
	ID   uint64 `path:"id" json:"-" vd:"$>0"`
	Code string `json:"code" vd:"len($)<=64"`
}

type PermissionQuery struct {
	Page
	Name           string `query:"name" xorm:"name op=like"`
	Code           string `query:"code" xorm:"code op=startswith"`
	PermissionType int    `query:"permission_type" xorm:"permission_type op=eq"`
}

// ---------------------- 部门 ----------------------

type DepartmentFields struct {
	Name     string `json:"name" vd:"len($)>0&&len($)<=50"`
	ParentID uint64 `json:"parent_id"`
	Sort     int    `json:"sort"`
	Remark   string `json:"remark" vd:"len($)<=255"`
}

type CreateDepartmentRequest struct {
	DepartmentFields
}

type UpdateDepartmentRequest struct {
	DepartmentFields
	ID uint64 `path:"id" json:"-" vd:"$>0"`
}

type DepartmentQuery struct {
	Page
	Name     string `query:"name" xorm:"name op=like"`
	ParentID uint64 `query:"parent_id" xorm:"parent_id op=eq"`
}

// ---------------------- 菜单 ----------------------

type MenuFields struct {
	ParentID  uint64 `json:"parent_id"`
	Name      string `json:"name" vd:"len($)>0&&len($)<=50"`
	Path      string `json:"path" vd:"len($)<=200"`
	Component string `json:"component" vd:"len($)<=200"`
	Icon      string `json:"icon" vd:"len($)<=50"`
	MenuType  int    `json:"menu_type"`
	Sort      int    `json:"sort"`
	Visible   *bool  `json:"visible"`
	Status    int    `json:"status"`
}

type CreateMenuRequest struct {
	MenuFields
	PermissionIDs []uint64 `json:"permission_ids"`
}

type UpdateMenuRequest struct {
	MenuFields
	ID uint64 `path:"id" json:"-" vd:"$>0"`
}

type MenuQuery struct {
	Page
	Name     string `query:"name" xorm:"name op=like"`
	MenuType int    `query:"menu_type" xorm:"menu_type op=eq"`
	Status   int    `query:"status" xorm:"status op=eq"`
}

type AssignMenuPermissionsRequest struct {
	MenuID        uint64   `path:"id" json:"-" vd:"$>0"`
	PermissionIDs []uint64 `json:"permission_ids"`
}

// ---------------------- 操作日志 ----------------------

type OperationLogQuery struct {
	Page
	Username      string `query:"username" xorm:"username op=like"`
	Module        int    `query:"module" xorm:"module op=eq"`
	OperationType int    `query:"operation_type" xorm:"operation_type op=eq"`
	Status        int    `query:"status" xorm:"status op=eq"`
	StartTime     string `query:"start_time"`
	EndTime       string `query:"end_time"`
}
