package enums

type UserStatus int

const (
	UserStatusNormal   UserStatus = 1
	UserStatusDisabled UserStatus = 2
)

var userStatusTable = newTable("user status", map[UserStatus]string{
	UserStatusNormal:   "正常",
	UserStatusDisabled: "禁用",
})

func ParseUserStatus(code int) (UserStatus, error) { return userStatusTable.parse(code) }
func (s UserStatus) Valid() bool                    { return userStatusTable.valid(s) }
func (s UserStatus) String() string                 { return userStatusTable.desc(s) }

// RoleLevel 角色级别：SYSTEM 可见全部项目，PROJECT 仅可见所属项目
type RoleLevel int

const (
	RoleLevelSystem  RoleLevel = 1
	RoleLevelProject RoleLevel = 2
)

var roleLevelTable = newTable("role level", map[RoleLevel]string{
	RoleLevelSystem:  "SYSTEM",
	RoleLevelProject: "PROJECT",
})

func ParseRoleLevel(code int) (RoleLevel, error) { return roleLevelTable.parse(code) }
func (l RoleLevel) Valid() bool                   { return roleLevelTable.valid(l) }
func (l RoleLevel) String() string                { return roleLevelTable.desc(l) }

// RoleType 角色类型，SYSTEM 为内置不可删除
type RoleType string

const (
	RoleTypeSystem RoleType = "SYSTEM"
	RoleTypeCustom RoleType = "CUSTOM"
)

var roleTypes = map[RoleType]struct{}{
	RoleTypeSystem: {},
	RoleTypeCustom: {},
}

func ParseRoleType(code string) (RoleType, error) {
	t := RoleType(code)
	if _, ok := roleTypes[t]; !ok {
		return "", &UnknownCodeError{Enum: "role type", Code: code}
	}
	return t, nil
}

// PermissionType 权限类型
type PermissionType int

const (
	PermissionTypeFunctional PermissionType = 1
	PermissionTypeMenu       PermissionType = 2
	PermissionTypeData       PermissionType = 3
)

var permissionTypeTable = newTable("permission type", map[PermissionType]string{
	PermissionTypeFunctional: "功能权限",
	PermissionTypeMenu:       "菜单权限",
	PermissionTypeData:       "数据权限",
})

func ParsePermissionType(code int) (PermissionType, error) { return permissionTypeTable.parse(code) }
func (t PermissionType) Valid() bool                        { return permissionTypeTable.valid(t) }
func (t PermissionType) String() string                     { return permissionTypeTable.desc(t) }

type MenuType int

const (
	MenuTypeDirectory MenuType = 1
	MenuTypeMenu      MenuType = 2
	MenuTypeButton    MenuType = 3
)

var menuTypeTable = newTable("menu type", map[MenuType]string{
	MenuTypeDirectory: "目录",
	MenuTypeMenu:      "菜单",
	MenuTypeButton:    "按钮",
})

func ParseMenuType(code int) (MenuType, error) { return menuTypeTable.parse(code) }
func (t MenuType) Valid() bool                  { return menuTypeTable.valid(t) }
func (t MenuType) String() string               { return menuTypeTable.desc(t) }

type MenuStatus int

const (
	MenuStatusEnabled  MenuStatus = 1
	MenuStatusDisabled MenuStatus = 2
)

var menuStatusTable = newTable("menu status", map[MenuStatus]string{
	MenuStatusEnabled:  "启用",
	MenuStatusDisabled: "停用",
})

func ParseMenuStatus(code int) (MenuStatus, error) { return menuStatusTable.parse(code) }
func (s MenuStatus) Valid() bool                    { return menuStatusTable.valid(s) }
func (s MenuStatus) String() string                 { return menuStatusTable.desc(s) }

type OperationType int

const (
	OperationCreate OperationType = 1
	OperationUpdate OperationType = 2
	OperationDelete OperationType = 3
	OperationAssign OperationType = 4
	OperationRemove OperationType = 5
	OperationLogin  OperationType = 6
	OperationLogout OperationType = 7
	OperationQuery  OperationType = 8
)

var operationTypeTable = newTable("operation type", map[OperationType]string{
	OperationCreate: "新增",
	OperationUpdate: "修改",
	OperationDelete: "删除",
	OperationAssign: "分配",
	OperationRemove: "移除",
	OperationLogin:  "登录",
	OperationLogout: "登出",
	OperationQuery:  "查询",
})

func ParseOperationType(code int) (OperationType, error) { return operationTypeTable.parse(code) }
func (t OperationType) Valid() bool                       { return operationTypeTable.valid(t) }
func (t OperationType) String() string                    { return operationTypeTable.desc(t) }

type OperationModule int

const (
	ModuleUser       OperationModule = 1
	ModuleRole       OperationModule = 2
	ModulePermission OperationModule = 3
	ModuleProject    OperationModule = 4
	ModuleTask       OperationModule = 5
	ModuleWorkHour   OperationModule = 6
	ModuleDepartment OperationModule = 7
	ModuleIteration  OperationModule = 8
	ModuleSystem     OperationModule = 9
)

var operationModuleTable = newTable("operation module", map[OperationModule]string{
	ModuleUser:       "用户管理",
	ModuleRole:       "角色管理",
	ModulePermission: "权限管理",
	ModuleProject:    "项目管理",
	ModuleTask:       "任务管理",
	ModuleWorkHour:   "工时管理",
	ModuleDepartment: "部门管理",
	ModuleIteration:  "迭代管理",
	ModuleSystem:     "系统管理",
})

func ParseOperationModule(code int) (OperationModule, error) { return operationModuleTable.parse(code) }
func (m OperationModule) Valid() bool                         { return operationModuleTable.valid(m) }
func (m OperationModule) String() string                      { return operationModuleTable.desc(m) }

type OperationStatus int

const (
	OperationSuccess OperationStatus = 1
	OperationFailed  OperationStatus = 2
)

var operationStatusTable = newTable("operation status", map[OperationStatus]string{
	OperationSuccess: "成功",
	OperationFailed:  "失败",
})

func ParseOperationStatus(code int) (OperationStatus, error) { return operationStatusTable.parse(code) }
func (s OperationStatus) Valid() bool                         { return operationStatusTable.valid(s) }
func (s OperationStatus) String() string                      { return operationStatusTable.desc(s) }
