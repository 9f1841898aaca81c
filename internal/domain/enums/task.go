package enums

type TaskStatus int

const (
	TaskStatusTodo       TaskStatus = 1
	TaskStatusInProgress TaskStatus = 2
	TaskStatusDone       TaskStatus = 3
)

var taskStatusTable = newTable("task status", map[TaskStatus]string{
	TaskStatusTodo:       "待办",
	TaskStatusInProgress: "进行中",
	TaskStatusDone:       "已完成",
})

func ParseTaskStatus(code int) (TaskStatus, error) { return taskStatusTable.parse(code) }
func (s TaskStatus) Valid() bool                    { return taskStatusTable.valid(s) }
func (s TaskStatus) String() string                 { return taskStatusTable.desc(s) }
func TaskStatusOptions() []Option                   { return taskStatusTable.options() }

type TaskPriority int

const (
	TaskPriorityHigh   TaskPriority = 1
	TaskPriorityMedium TaskPriority = 2
	TaskPriorityLow    TaskPriority = 3
)

var taskPriorityTable = newTable("task priority", map[TaskPriority]string{
	TaskPriorityHigh:   "高",
	TaskPriorityMedium: "中",
	TaskPriorityLow:    "低",
})

func ParseTaskPriority(code int) (TaskPriority, error) { return taskPriorityTable.parse(code) }
func (p TaskPriority) Valid() bool                      { return taskPriorityTable.valid(p) }
func (p TaskPriority) String() string                   { return taskPriorityTable.desc(p) }

type TaskType int

const (
	TaskTypeTask        TaskType = 1
	TaskTypeRequirement TaskType = 2
	TaskTypeBug         TaskType = 3
)

var taskTypeTable = newTable("task type", map[TaskType]string{
	TaskTypeTask:        "任务",
	TaskTypeRequirement: "需求",
	TaskTypeBug:         "缺陷",
})

func ParseTaskType(code int) (TaskType, error) { return taskTypeTable.parse(code) }
func (t TaskType) Valid() bool                  { return taskTypeTable.valid(t) }
func (t TaskType) String() string               { return taskTypeTable.desc(t) }

// LinkType 甘特图依赖类型
type LinkType int

const (
	LinkEndToStart   LinkType = 0
	LinkStartToStart LinkType = 1
	LinkEndToEnd     LinkType = 2
	LinkStartToEnd   LinkType = 3
)

var linkTypeTable = newTable("task link type", map[LinkType]string{
	LinkEndToStart:   "end_to_start",
	LinkStartToStart: "start_to_start",
	LinkEndToEnd:     "end_to_end",
	LinkStartToEnd:   "start_to_end",
})

func ParseLinkType(code int) (LinkType, error) { return linkTypeTable.parse(code) }
func (t LinkType) Valid() bool                  { return linkTypeTable.valid(t) }
func (t LinkType) String() string               { return linkTypeTable.desc(t) }
