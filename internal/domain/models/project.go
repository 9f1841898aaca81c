package models

import (
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
)

// Project 项目
type Project struct {
	ID          uint64              `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	Name        string              `xorm:"varchar(100) notnull 'name'" json:"name"`
	Code        string              `xorm:"varchar(50) notnull unique 'code'" json:"code"`
	Description string              `xorm:"text 'description'" json:"description"`
	ManagerID   uint64              `xorm:"bigint unsigned index 'manager_id'" json:"manager_id"`
	ProjectType enums.ProjectType   `xorm:"tinyint notnull default 1 'project_type'" json:"project_type"`
	Status      enums.ProjectStatus `xorm:"tinyint notnull default 1 'status'" json:"status"`
	StartDate   time.Time           `xorm:"date 'start_date'" json:"start_date"`
	EndDate     time.Time           `xorm:"date 'end_date'" json:"end_date"`
	CreatorID   uint64              `xorm:"bigint unsigned 'create_user_id'" json:"create_user_id"`
	CreateTime  time.Time           `xorm:"created 'create_time'" json:"create_time"`
	UpdateTime  time.Time           `xorm:"updated 'update_time'" json:"update_time"`
	DeleteTime  time.Time           `xorm:"deleted 'delete_time'" json:"-"`
}

func (Project) TableName() string { return "gsms_project" }

// ProjectMember 项目成员
type ProjectMember struct {
	ID        uint64                  `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	ProjectID uint64                  `xorm:"bigint unsigned notnull index unique(uk_project_user) 'project_id'" json:"project_id"`
	UserID    uint64                  `xorm:"bigint unsigned notnull index unique(uk_project_user) 'user_id'" json:"user_id"`
	Role      enums.ProjectMemberRole `xorm:"tinyint notnull default 2 'role'" json:"role"`
	JoinTime  time.Time               `xorm:"created 'join_time'" json:"join_time"`
}

func (ProjectMember) TableName() string { return "gsms_project_member" }

// Iteration 迭代
type Iteration struct {
	ID          uint64                `xorm:"pk autoincr bigint unsigned 'id'" json:"id"`
	ProjectID   uint64                `xorm:"bigint unsigned notnull index 'project_id'" json:"project_id"`
	Name        string                `xorm:"varchar(100) notnull 'name'" json:"name"`
	Description string                `xorm:"text 'description'" json:"description"`
	Status      enums.IterationStatus `xorm:"tinyint notnull default 1 'status'" json:"status"`
	StartDate   time.Time             `xorm:"date 'start_date'" json:"start_date"`
	EndDate     time.Time             `xorm:"date 'end_date'" json:"end_date"`
	CreateTime  time.Time             `xorm:"created 'create_time'" json:"create_time"`
	UpdateTime  time.Time             `xorm:"updated 'update_time'" json:"update_time"`
	DeleteTime  time.Time             `xorm:"deleted 'delete_time'" json:"-"`
}

func (Iteration) TableName() string { return "gsms_iteration" }
