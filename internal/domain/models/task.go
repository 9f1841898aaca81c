package models

import (
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/shopspring/decimal"
)

// Task 任务，ParentID 为 0 表示顶层任务
type Task struct {
	ID            uint64             `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	ProjectID     uint64             `xorm:"bigint unsigned notnull index 'project_id'" json:"project_id"`
	IterationID   uint64             `xorm:"bigint unsigned index 'iteration_id'" json:"iteration_id"`
	ParentID      uint64             `xorm:"bigint unsigned notnull default 0 index 'parent_id'" json:"parent_id"`
	Title         string             `xorm:"varchar(200) notnull 'title'" json:"title"`
	Description   string             `xorm:"text 'description'" json:"description"`
	TaskType      enums.TaskType     `xorm:"tinyint notnull default 1 'type'" json:"type"`
	Status        enums.TaskStatus   `xorm:"tinyint notnull default 1 'status'" json:"status"`
	Priority      enums.TaskPriority `xorm:"tinyint notnull default 2 'priority'" json:"priority"`
	AssigneeID    uint64             `xorm:"bigint unsigned index 'assignee_id'" json:"assignee_id"`
	CreatorID     uint64             `xorm:"bigint unsigned 'creator_id'" json:"creator_id"`
	EstimateHours decimal.Decimal    `xorm:"decimal(6,2) 'estimate_hours'" json:"estimate_hours"`
	Progress      int                `xorm:"int notnull default 0 'progress'" json:"progress"`
	Sort          int                `xorm:"int notnull default 0 'sort'" json:"sort"`
	StartDate     time.Time          `xorm:"date 'start_date'" json:"start_date"`
	DueDate       time.Time          `xorm:"date 'due_date'" json:"due_date"`
	ActualStart   time.Time          `xorm:"datetime 'actual_start_date'" json:"actual_start_date"`
	ActualEnd     time.Time          `xorm:"datetime 'actual_end_date'" json:"actual_end_date"`
	CreateTime    time.Time          `xorm:"created 'create_time'" json:"create_time"`
	UpdateTime    time.Time          `xorm:"updated 'update_time'" json:"update_time"`
	DeleteTime    time.Time          `xorm:"deleted 'delete_time'" json:"-"`
}

func (Task) TableName() string { return "gsms_task" }

// TaskLink 甘特图依赖，Lag 单位为天
type TaskLink struct {
	ID         uint64         `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	ProjectID  uint64         `xorm:"bigint unsigned notnull index 'project_id'" json:"project_id"`
	SourceID   uint64         `xorm:"bigint unsigned notnull index 'source_task_id'" json:"source"`
	TargetID   uint64         `xorm:"bigint unsigned notnull index 'target_task_id'" json:"target"`
	LinkType   enums.LinkType `xorm:"tinyint notnull default 0 'type'" json:"type"`
	Lag        int64          `xorm:"bigint notnull default 0 'lag'" json:"lag"`
	CreateTime time.Time      `xorm:"created 'create_time'" json:"create_time"`
}

func (TaskLink) TableName() string { return "gsms_task_link" }
