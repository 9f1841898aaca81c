package vo

import (
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/types"
)

// Project 项目视图对象
type Project struct {
	ID              uint64              `json:"id"`
	Name            string              `json:"name"`
	Code            string              `json:"code"`
	Description     string              `json:"description"`
	ManagerID       uint64              `json:"manager_id"`
	ManagerName     string              `json:"manager_name,omitempty"`
	ProjectType     enums.ProjectType   `json:"project_type"`
	ProjectTypeDesc string              `json:"project_type_desc"`
	Status          enums.ProjectStatus `json:"status"`
	StatusDesc      string              `json:"status_desc"`
	StartDate       types.Date          `json:"start_date"`
	EndDate         types.Date          `json:"end_date"`
	CreatorID       uint64              `json:"create_user_id"`
	CreateTime      time.Time           `json:"create_time"`
	UpdateTime      time.Time           `json:"update_time"`
	Members         []*ProjectMember    `json:"members,omitempty"`
}

// ProjectMember 项目成员
type ProjectMember struct {
	ProjectID uint64                  `json:"project_id"`
	UserID    uint64                  `json:"user_id"`
	Username  string                  `json:"username"`
	Nickname  string                  `json:"nickname"`
	Role      enums.ProjectMemberRole `json:"role"`
	RoleDesc  string                  `json:"role_desc"`
	JoinTime  time.Time               `json:"join_time"`
}

// Iteration 迭代
type Iteration struct {
	ID          uint64                `json:"id"`
	ProjectID   uint64                `json:"project_id"`
	ProjectName string                `json:"project_name,omitempty"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Status      enums.IterationStatus `json:"status"`
	StatusDesc  string                `json:"status_desc"`
	StartDate   types.Date            `json:"start_date"`
	EndDate     types.Date            `json:"end_date"`
	CreateTime  time.Time             `json:"create_time"`
	UpdateTime  time.Time             `json:"update_time"`
}
