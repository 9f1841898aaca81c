package models

import (
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/shopspring/decimal"
)

// WorkHour 工时记录
type WorkHour struct {
	ID          uint64               `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	UserID      uint64               `xorm:"bigint unsigned notnull index 'user_id'" json:"user_id"`
	ProjectID   uint64               `xorm:"bigint unsigned notnull index 'project_id'" json:"project_id"`
	TaskID      uint64               `xorm:"bigint unsigned index 'task_id'" json:"task_id"`
	WorkDate    time.Time            `xorm:"date notnull index 'work_date'" json:"work_date"`
	Hours       decimal.Decimal      `xorm:"decimal(5,2) notnull 'hours'" json:"hours"`
	Content     string               `xorm:"varchar(500) 'content'" json:"content"`
	Status      enums.WorkHourStatus `xorm:"tinyint notnull default 1 'status'" json:"status"`
	ConfirmerID uint64               `xorm:"bigint unsigned 'confirmer_id'" json:"confirmer_id"`
	ConfirmTime time.Time            `xorm:"datetime 'confirm_time'" json:"confirm_time"`
	CreateTime  time.Time            `xorm:"created 'create_time'" json:"create_time"`
	UpdateTime  time.Time            `xorm:"updated 'update_time'" json:"update_time"`
	DeleteTime  time.Time            `xorm:"deleted 'delete_time'" json:"-"`
}

func (WorkHour) TableName() string { return "gsms_work_hour" }
