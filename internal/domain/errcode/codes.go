package errcode

import "net/http"

// 业务码分段：
// 1xxx 通用
// 2xxx 用户
// 3xxx 组织类（角色 30xx、权限 31xx、项目 32xx、部门 33xx、迭代 34xx、菜单 35xx、日志 36xx）
// 4xxx 任务与甘特图
// 5xxx 工时
// x9xx 为对应模块的持久化失败

// 通用
var (
	ParamError         = badRequest(1001, "参数错误")
	ParamMissing       = badRequest(1002, "缺少必要参数")
	ParamTypeError     = badRequest(1003, "参数类型错误")
	ParamInvalid       = badRequest(1004, "参数值无效")
	EnumCodeUnknown    = badRequest(1005, "未知的枚举编码")
	Unauthorized       = unauthorized(1401, "未登录或登录已失效")
	TokenExpired       = unauthorized(1402, "登录已过期")
	Forbidden          = forbidden(1403, "无权访问")
	NotFound           = notFound(1404, "资源不存在")
	TooManyRequests    = define(1429, http.StatusTooManyRequests, "请求过于频繁")
	InternalError      = internal(1500, "Internal server error")
	DatabaseError      = internal(1501, "数据库操作失败")
	ServiceUnavailable = internal(1503, "服务不可用")
	BusinessError      = badRequest(1999, "业务处理失败")
)

// 用户
var (
	UsernameExists      = badRequest(2001, "用户名已存在")
	UserNotFound        = notFound(2002, "用户不存在")
	PasswordError       = badRequest(2003, "用户名或密码错误")
	EmailFormatError    = badRequest(2004, "邮箱格式错误")
	PhoneFormatError    = badRequest(2005, "手机号格式错误")
	UserDisabled        = forbidden(2006, "用户已被禁用")
	DefaultRoleNotFound = internal(2007, "默认角色不存在")
	OldPasswordError    = badRequest(2008, "原密码错误")
	UserInUse           = badRequest(2009, "用户仍被引用，无法删除")
	UserCreateFailed    = internal(2901, "创建用户失败")
	UserUpdateFailed    = internal(2902, "更新用户失败")
	UserDeleteFailed    = internal(2903, "删除用户失败")
)

// 角色
var (
	RoleNotFound     = notFound(3001, "角色不存在")
	RoleCodeExists   = badRequest(3002, "角色编码已存在")
	RoleNameExists   = badRequest(3003, "角色名称已存在")
	RoleCodeInvalid  = badRequest(3004, "角色编码只能包含大写字母和下划线")
	RoleInUse        = badRequest(3005, "角色已分配给用户，无法删除")
	RoleLevelInvalid = badRequest(3006, "角色级别无效")
	RoleImmutable    = forbidden(3007, "系统内置角色不可修改或删除")
	RoleCreateFailed = internal(3901, "创建角色失败")
	RoleUpdateFailed = internal(3902, "更新角色失败")
	RoleDeleteFailed = internal(3903, "删除角色失败")
)

// 权限
var (
	PermissionNotFound        = notFound(3101, "权限不存在")
	PermissionCodeExists      = badRequest(3102, "权限编码已存在")
	PermissionNameExists      = badRequest(3103, "权限名称已存在")
	PermissionCodeInvalid     = badRequest(3104, "权限编码只能包含大写字母和下划线")
	PermissionInUse           = badRequest(3105, "权限已分配给角色，无法删除")
	PermissionAlreadyAssigned = badRequest(3106, "权限已分配")
	PermissionCreateFailed    = internal(3911, "创建权限失败")
	PermissionUpdateFailed    = internal(3912, "更新权限失败")
	PermissionDeleteFailed    = internal(3913, "删除权限失败")
)

// 项目
var (
	ProjectNotFound        = notFound(3201, "项目不存在")
	ProjectNameExists      = badRequest(3202, "项目名称已存在")
	ProjectCodeExists      = badRequest(3203, "项目编码已存在")
	ProjectStatusInvalid   = badRequest(3204, "项目状态无效")
	ProjectManagerInvalid  = badRequest(3205, "项目经理无效")
	ProjectDateInvalid     = badRequest(3206, "结束日期不能早于开始日期")
	ProjectHasIterations   = badRequest(3207, "项目下存在迭代，无法删除")
	ProjectHasTasks        = badRequest(3208, "项目下存在任务，无法删除")
	ProjectAccessDenied    = forbidden(3209, "无权访问该项目")
	ProjectMemberNotFound  = notFound(3210, "项目成员不存在")
	ProjectMemberRoleError = badRequest(3211, "项目成员角色无效")
	ProjectHasWorkHours    = badRequest(3212, "项目下存在工时记录，无法删除")
	ProjectCreateFailed    = internal(3921, "创建项目失败")
	ProjectUpdateFailed    = internal(3922, "更新项目失败")
	ProjectDeleteFailed    = internal(3923, "删除项目失败")
)

// 部门
var (
	DepartmentNotFound      = notFound(3301, "部门不存在")
	DepartmentNameExists    = badRequest(3302, "同级部门名称已存在")
	DepartmentHasChildren   = badRequest(3305, "部门下存在子部门，无法删除")
	DepartmentHasUsers      = badRequest(3306, "部门下存在用户，无法删除")
	DepartmentParentInvalid = badRequest(3307, "上级部门无效")
	DepartmentCreateFailed  = internal(3931, "创建部门失败")
	DepartmentUpdateFailed  = internal(3932, "更新部门失败")
	DepartmentDeleteFailed  = internal(3933, "删除部门失败")
)

// 迭代
var (
	IterationNotFound      = notFound(3401, "迭代不存在")
	IterationNameExists    = badRequest(3402, "迭代名称已存在")
	IterationStatusInvalid = badRequest(3403, "迭代状态无效")
	IterationDateInvalid   = badRequest(3404, "迭代结束日期不能早于开始日期")
	IterationHasTasks      = badRequest(3405, "迭代下存在任务，无法删除")
	IterationCreateFailed  = internal(3941, "创建迭代失败")
	IterationUpdateFailed  = internal(3942, "更新迭代失败")
	IterationDeleteFailed  = internal(3943, "删除迭代失败")
)

// 菜单
var (
	MenuNotFound              = notFound(3501, "菜单不存在")
	ParentMenuNotFound        = badRequest(3502, "上级菜单不存在")
	ParentMenuCannotBeSelf    = badRequest(3503, "上级菜单不能是自身或其子菜单")
	MenuHasChildren           = badRequest(3504, "菜单下存在子菜单，无法删除")
	MenuCreateFailed          = internal(3951, "创建菜单失败")
	MenuUpdateFailed          = internal(3952, "更新菜单失败")
	MenuDeleteFailed          = internal(3953, "删除菜单失败")
	OperationLogNotFound      = notFound(3601, "操作日志不存在")
	OperationLogCreateFailure = internal(3961, "记录操作日志失败")
)

// 任务与甘特图
var (
	TaskNotFound         = notFound(4001, "任务不存在")
	TaskTitleEmpty       = badRequest(4002, "任务标题不能为空")
	TaskAssigneeInvalid  = badRequest(4003, "任务负责人不是项目成员")
	TaskStatusInvalid    = badRequest(4004, "任务状态无效")
	TaskPriorityInvalid  = badRequest(4005, "任务优先级无效")
	TaskProjectInvalid   = badRequest(4006, "任务所属项目无效")
	TaskParentInvalid    = badRequest(4007, "父任务必须属于同一项目")
	TaskParentCycle      = badRequest(4008, "父任务不能是自身或其子任务")
	TaskDateInvalid      = badRequest(4009, "结束日期不能早于开始日期")
	TaskDateOutOfParent  = badRequest(4010, "任务日期超出父级范围")
	TaskLinkInvalid      = badRequest(4011, "任务依赖无效")
	TaskLinkNotFound     = notFound(4012, "任务依赖不存在")
	TaskLinkCycle        = badRequest(4013, "任务依赖存在循环")
	TaskHasChildren      = badRequest(4014, "任务下存在子任务，无法删除")
	TaskIterationInvalid = badRequest(4015, "迭代不属于该项目")
	TaskCreateFailed     = internal(4901, "创建任务失败")
	TaskUpdateFailed     = internal(4902, "更新任务失败")
	TaskDeleteFailed     = internal(4903, "删除任务失败")
)

// 工时
var (
	WorkHourNotFound       = notFound(5001, "工时记录不存在")
	WorkHourDateInvalid    = badRequest(5002, "工作日期无效")
	WorkHourHoursExceed    = badRequest(5003, "单条工时必须大于0且不超过24小时")
	WorkHourDuplicate      = badRequest(5004, "同一任务同一天已存在工时记录")
	WorkHourStatusInvalid  = badRequest(5005, "工时状态只能向前流转")
	WorkHourProjectInvalid = badRequest(5006, "无权在该项目填报工时")
	WorkHourDailyExceed    = badRequest(5007, "当日工时合计不能超过24小时")
	WorkHourTaskInvalid    = badRequest(5008, "任务不属于该项目")
	WorkHourLocked         = badRequest(5009, "已确认的工时不可修改")
	WorkHourCreateFailed   = internal(5901, "创建工时失败")
	WorkHourUpdateFailed   = internal(5902, "更新工时失败")
	WorkHourDeleteFailed   = internal(5903, "删除工时失败")
)
