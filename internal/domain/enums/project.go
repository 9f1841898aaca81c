package enums

type ProjectStatus int

const (
	ProjectStatusNotStarted ProjectStatus = 1
	ProjectStatusInProgress ProjectStatus = 2
	ProjectStatusSuspended  ProjectStatus = 3
	ProjectStatusArchived   ProjectStatus = 4
)

var projectStatusTable = newTable("project status", map[ProjectStatus]string{
	ProjectStatusNotStarted: "未开始",
	ProjectStatusInProgress: "进行中",
	ProjectStatusSuspended:  "已暂停",
	ProjectStatusArchived:   "已归档",
})

func ParseProjectStatus(code int) (ProjectStatus, error) { return projectStatusTable.parse(code) }
func (s ProjectStatus) Valid() bool                       { return projectStatusTable.valid(s) }
func (s ProjectStatus) String() string                    { return projectStatusTable.desc(s) }

type ProjectType int

const (
	ProjectTypeSchedule   ProjectType = 1
	ProjectTypeLargeScale ProjectType = 2
)

var projectTypeTable = newTable("project type", map[ProjectType]string{
	ProjectTypeSchedule:   "常规型",
	ProjectTypeLargeScale: "大型",
})

func ParseProjectType(code int) (ProjectType, error) { return projectTypeTable.parse(code) }
func (t ProjectType) Valid() bool                     { return projectTypeTable.valid(t) }
func (t ProjectType) String() string                  { return projectTypeTable.desc(t) }

// ProjectMemberRole 项目成员角色
type ProjectMemberRole int

const (
	ProjectMemberManager ProjectMemberRole = 1
	ProjectMemberMember  ProjectMemberRole = 2
)

var projectMemberRoleTable = newTable("project member role", map[ProjectMemberRole]string{
	ProjectMemberManager: "项目经理",
	ProjectMemberMember:  "成员",
})

func ParseProjectMemberRole(code int) (ProjectMemberRole, error) {
	return projectMemberRoleTable.parse(code)
}
func (r ProjectMemberRole) Valid() bool    { return projectMemberRoleTable.valid(r) }
func (r ProjectMemberRole) String() string { return projectMemberRoleTable.desc(r) }

type IterationStatus int

const (
	IterationStatusNotStarted IterationStatus = 1
	IterationStatusInProgress IterationStatus = 2
	IterationStatusCompleted  IterationStatus = 3
)

var iterationStatusTable = newTable("iteration status", map[IterationStatus]string{
	IterationStatusNotStarted: "未开始",
	IterationStatusInProgress: "进行中",
	IterationStatusCompleted:  "已完成",
})

func ParseIterationStatus(code int) (IterationStatus, error) { return iterationStatusTable.parse(code) }
func (s IterationStatus) Valid() bool                         { return iterationStatusTable.valid(s) }
func (s IterationStatus) String() string                      { return iterationStatusTable.desc(s) }

// WorkHourStatus 工时状态，只能 SAVED -> SUBMITTED -> CONFIRMED 单向流转
type WorkHourStatus int

const (
	WorkHourSaved     WorkHourStatus = 1
	WorkHourSubmitted WorkHourStatus = 2
	WorkHourConfirmed WorkHourStatus = 3
)

var workHourStatusTable = newTable("work hour status", map[WorkHourStatus]string{
	WorkHourSaved:     "已保存",
	WorkHourSubmitted: "已提交",
	WorkHourConfirmed: "已确认",
})

func ParseWorkHourStatus(code int) (WorkHourStatus, error) { return workHourStatusTable.parse(code) }
func (s WorkHourStatus) Valid() bool                        { return workHourStatusTable.valid(s) }
func (s WorkHourStatus) String() string                     { return workHourStatusTable.desc(s) }

// CanTransitionTo 只允许向后流转，不允许原地或回退
func (s WorkHourStatus) CanTransitionTo(next WorkHourStatus) bool {
	return s.Valid() && next.Valid() && next > s
}
