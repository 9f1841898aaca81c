package vo

import (
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/types"
	"github.com/shopspring/decimal"
)

// Task 任务视图对象
type Task struct {
	ID            uint64             `json:"id"`
	ProjectID     uint64             `json:"project_id"`
	IterationID   uint64             `json:"iteration_id"`
	ParentID      uint64             `json:"parent_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	TaskType      enums.TaskType     `json:"type"`
	TypeDesc      string             `json:"type_desc"`
	Status        enums.TaskStatus   `json:"status"`
	StatusDesc    string             `json:"status_desc"`
	Priority      enums.TaskPriority `json:"priority"`
	PriorityDesc  string             `json:"priority_desc"`
	AssigneeID    uint64             `json:"assignee_id"`
	AssigneeName  string             `json:"assignee_name,omitempty"`
	CreatorID     uint64             `json:"creator_id"`
	EstimateHours decimal.Decimal    `json:"estimate_hours"`
	Progress      int                `json:"progress"`
	Sort          int                `json:"sort"`
	StartDate     types.Date         `json:"start_date"`
	DueDate       types.Date         `json:"due_date"`
	ActualStart   *time.Time         `json:"actual_start_date"`
	ActualEnd     *time.Time         `json:"actual_end_date"`
	CreateTime    time.Time          `json:"create_time"`
	UpdateTime    time.Time          `json:"update_time"`
	Children      []*Task            `json:"children,omitempty"`
}

// TaskLink 依赖连线
type TaskLink struct {
	ID         uint64         `json:"id"`
	ProjectID  uint64         `json:"project_id"`
	SourceID   uint64         `json:"source_task_id"`
	TargetID   uint64         `json:"target_task_id"`
	LinkType   enums.LinkType `json:"type"`
	Lag        int64          `json:"lag"`
	CreateTime time.Time      `json:"create_time"`
}

// GanttItem 甘特图节点，项目、迭代、任务共用一个 id 空间
type GanttItem struct {
	ID        int64      `json:"id"`
	Text      string     `json:"text"`
	Type      string     `json:"type"`
	StartDate types.Date `json:"start_date"`
	EndDate   types.Date `json:"end_date"`
	Duration  int64      `json:"duration"`
	Progress  float64    `json:"progress"`
	Parent    int64      `json:"parent"`
	Open      bool       `json:"open"`
	Assignee  string     `json:"assignee,omitempty"`
	Slack     *int64     `json:"slack,omitempty"`
	Critical  bool       `json:"critical"`
}

// GanttLink 甘特图连线，两端为节点 id
type GanttLink struct {
	ID     uint64         `json:"id"`
	Source int64          `json:"source"`
	Target int64          `json:"target"`
	Type   enums.LinkType `json:"type"`
	Lag    int64          `json:"lag"`
}

// Gantt 项目甘特图
type Gantt struct {
	Data         []*GanttItem `json:"data"`
	Links        []*GanttLink `json:"links"`
	CriticalPath []int64      `json:"critical_path"`
	Duration     int64        `json:"duration"`
	CycleError   string       `json:"cycle_error,omitempty"`
}
