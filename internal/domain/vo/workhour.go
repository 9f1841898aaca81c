package vo

import (
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/types"
	"github.com/shopspring/decimal"
)

// WorkHour 工时视图对象
type WorkHour struct {
	ID          uint64               `json:"id"`
	UserID      uint64               `json:"user_id"`
	Username    string               `json:"username,omitempty"`
	ProjectID   uint64               `json:"project_id"`
	ProjectName string               `json:"project_name,omitempty"`
	TaskID      uint64               `json:"task_id"`
	TaskTitle   string               `json:"task_title,omitempty"`
	WorkDate    types.Date           `json:"work_date"`
	Hours       decimal.Decimal      `json:"hours"`
	Content     string               `json:"content"`
	Status      enums.WorkHourStatus `json:"status"`
	StatusDesc  string               `json:"status_desc"`
	ConfirmerID uint64               `json:"confirmer_id"`
	ConfirmTime *time.Time           `json:"confirm_time"`
	CreateTime  time.Time            `json:"create_time"`
	UpdateTime  time.Time            `json:"update_time"`
}

// UserHours 按用户汇总
type UserHours struct {
	UserID   uint64          `json:"user_id"`
	Username string          `json:"username"`
	Hours    decimal.Decimal `json:"hours"`
}

// ProjectHours 按项目汇总
type ProjectHours struct {
	ProjectID   uint64          `json:"project_id"`
	ProjectName string          `json:"project_name"`
	Hours       decimal.Decimal `json:"hours"`
}

// WorkHourSummary 工时汇总，Users 与 Projects 按工时倒序
type WorkHourSummary struct {
	TotalHours decimal.Decimal `json:"total_hours"`
	Records    int64           `json:"records"`
	StartDate  string          `json:"start_date,omitempty"`
	EndDate    string          `json:"end_date,omitempty"`
	Users      []*UserHours    `json:"users,omitempty"`
	Projects   []*ProjectHours `json:"projects,omitempty"`
}

// TaskHours 任务实际工时与预估对比
type TaskHours struct {
	TaskID        uint64          `json:"task_id"`
	TotalHours    decimal.Decimal `json:"total_hours"`
	EstimateHours decimal.Decimal `json:"estimate_hours"`
	Variance      decimal.Decimal `json:"variance"`
	Records       int64           `json:"records"`
	Users         []*UserHours    `json:"users,omitempty"`
}

// ProjectCompletion 项目完成度
type ProjectCompletion struct {
	ProjectID      uint64  `json:"project_id"`
	Total          int64   `json:"total"`
	Todo           int64   `json:"todo"`
	InProgress     int64   `json:"in_progress"`
	Done           int64   `json:"done"`
	CompletionRate float64 `json:"completion_rate"`
}

// TrendPoint 每日工时
type TrendPoint struct {
	Date  string          `json:"date"`
	Hours decimal.Decimal `json:"hours"`
}

// Trend 连续日期的工时走势，无记录的日期为 0
type Trend struct {
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	TotalHours decimal.Decimal `json:"total_hours"`
	Points     []*TrendPoint   `json:"points"`
}

// Dashboard 首页概览
type Dashboard struct {
	ProjectCount   int64           `json:"project_count"`
	TaskCount      int64           `json:"task_count"`
	MyOpenTasks    int64           `json:"my_open_tasks"`
	MyTodayHours   decimal.Decimal `json:"my_today_hours"`
	MyWeeklyHours  decimal.Decimal `json:"my_weekly_hours"`
	MyMonthlyHours decimal.Decimal `json:"my_monthly_hours"`
	Projects       []*Project      `json:"projects"`
	PendingTasks   []*Task         `json:"pending_tasks"`
}
