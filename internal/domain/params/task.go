package params

import (
	"github.com/ayxworxfr/gsms/internal/domain/types"
	"github.com/shopspring/decimal"
)

// TaskFields 创建与更新共用字段
type TaskFields struct {
	IterationID   uint64          `json:"iteration_id"`
	Title         string          `json:"title" vd:"len($)<=200"`
	Description   string          `json:"description"`
	TaskType      int             `json:"type"`
	Priority      int             `json:"priority"`
	AssigneeID    uint64          `json:"assignee_id"`
	EstimateHours decimal.Decimal `json:"estimate_hours" decimal:"$>=0&&$<=9999"`
	Progress      int             `json:"progress" vd:"$>=0&&$<=100"`
	Sort          int             `json:"sort"`
	StartDate     types.Date      `json:"start_date"`
	DueDate       types.Date      `json:"due_date"`
}

type CreateTaskRequest struct {
	TaskFields
	ProjectID uint64 `json:"project_id" vd:"$>0"`
	ParentID  uint64 `json:"parent_id"`
	Status    int    `json:"status"`
}

type UpdateTaskRequest struct {
	TaskFields
	ID uint64 `path:"id" json:"-" vd:"$>0"`
}

type UpdateTaskStatusRequest struct {
	ID     uint64 `path:"id" json:"-" vd:"$>0"`
	Status int    `json:"status"`
}

type TaskQuery struct {
	Page
	ProjectID   uint64 `query:"project_id" xorm:"project_id op=eq"`
	IterationID uint64 `query:"iteration_id" xorm:"iteration_id op=eq"`
	AssigneeID  uint64 `query:"assignee_id" xorm:"assignee_id op=eq"`
	Title       string `query:"title" xorm:"title op=like"`
	Status      int    `query:"status" xorm:"status op=eq"`
	Priority    int    `query:"priority" xorm:"priority op=eq"`
	TaskType    int    `query:"type" xorm:"type op=eq"`
}

// ---------------------- 甘特图 ----------------------

// 甘特图接口的 id 既可以是任务 id，也可以是甘特图节点 id（任务节点为 -2000000-id）

type UpdateTaskDatesRequest struct {
	ID        int64      `path:"id" json:"-" vd:"$!=0"`
	StartDate types.Date `json:"start_date"`
	DueDate   types.Date `json:"due_date"`
}

// UpdateTaskParentRequest ParentID 为 0 或项目、迭代节点时提升为顶层任务
type UpdateTaskParentRequest struct {
	ID       int64 `path:"id" json:"-" vd:"$!=0"`
	ParentID int64 `json:"parent_id"`
}

type CreateTaskLinkRequest struct {
	Source int64 `json:"source" vd:"$!=0"`
	Target int64 `json:"target" vd:"$!=0"`
	Type   int   `json:"type"`
	Lag    int64 `json:"lag"`
}

type GanttRequest struct {
	ProjectID uint64 `path:"id" vd:"$>0"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

// TaskTreeRequest 项目下的任务树
type TaskTreeRequest struct {
	ProjectID uint64 `query:"project_id" vd:"$>0"`
}
