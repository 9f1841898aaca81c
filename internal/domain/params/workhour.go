package params

import (
	"github.com/ayxworxfr/gsms/internal/domain/types"
	"github.com/shopspring/decimal"
)

type WorkHourFields struct {
	TaskID   uint64          `json:"task_id"`
	WorkDate types.Date      `json:"work_date"`
	Hours    decimal.Decimal `json:"hours"`
	Content  string          `json:"content" vd:"len($)<=500"`
}

type CreateWorkHourRequest struct {
	WorkHourFields
	ProjectID uint64 `json:"project_id" vd:"$>0"`
}

type UpdateWorkHourRequest struct {
	WorkHourFields
	ID uint64 `path:"id" json:"-" vd:"$>0"`
}

type UpdateWorkHourStatusRequest struct {
	ID     uint64 `path:"id" json:"-" vd:"$>0"`
	Status int    `json:"status"`
}

type WorkHourQuery struct {
	Page
	UserID    uint64 `query:"user_id" xorm:"user_id op=eq"`
	ProjectID uint64 `query:"project_id" xorm:"project_id op=eq"`
	TaskID    uint64 `query:"task_id" xorm:"task_id op=eq"`
	Status    int    `query:"status" xorm:"status op=eq"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

// ---------------------- 统计 ----------------------

type DateRangeRequest struct {
	ID        uint64 `path:"id" vd:"$>0"`
	StartDate string `query:"start"`
	EndDate   string `query:"end"`
}

// TrendRequest 未给出起止日期时取最近 Days 天
type TrendRequest struct {
	Days      int    `query:"days"`
	ProjectID uint64 `query:"project_id"`
	UserID    uint64 `query:"user_id"`
	StartDate string `query:"start"`
	EndDate   string `query:"end"`
}
