package params

import "github.com/ayxworxfr/gsms/internal/domain/types"

// ---------------------- 项目 ----------------------

type ProjectFields struct {
	Name        string     `json:"name" vd:"len($)>0&&len($)<=100"`
	Description string     `json:"description"`
	ManagerID   uint64     `json:"manager_id"`
	ProjectType int        `json:"project_type"`
	Status      int        `json:"status"`
	StartDate   types.Date `json:"start_date"`
	EndDate     types.Date `json:"end_date"`
}

type CreateProjectRequest struct {
	ProjectFields
	Code string `json:"code" vd:"len($)>0&&len($)<=50"`
}

type UpdateProjectRequest struct {
	ProjectFields
	ID uint64 `path:"id" json:"-" vd:"$>0"`
}

type GetProjectRequest struct {
	ID    uint64 `path:"id" vd:"$>0"`
	Flags int    `query:"flags"`
}

type ProjectQuery struct {
	Page
	Name        string `query:"name" xorm:"name op=like"`
	Code        string `query:"code" xorm:"code op=startswith"`
	ManagerID   uint64 `query:"manager_id" xorm:"op=eq"`
	ProjectType int    `query:"project_type" xorm:"op=eq"`
	Status      int    `query:"status" xorm:"op=eq"`
}

// ---------------------- 项目成员 ----------------------

type AddMembersRequest struct {
	ProjectID uint64   `path:"id" json:"-" vd:"$>0"`
	UserIDs   []uint64 `json:"user_ids" vd:"len($)>0"`
	Role      int      `json:"role"`
}

type UpdateMemberRequest struct {
	ProjectID uint64 `path:"id" json:"-" vd:"$>0"`
	UserID    uint64 `path:"userId" json:"-" vd:"$>0"`
	Role      int    `json:"role"`
}

type MemberPathRequest struct {
	ProjectID uint64 `path:"id" vd:"$>0"`
	UserID    uint64 `path:"userId" vd:"$>0"`
}

// ---------------------- 迭代 ----------------------

type IterationFields struct {
	Name        string     `json:"name" vd:"len($)>0&&len($)<=100"`
	Description string     `json:"description"`
	Status      int        `json:"status"`
	StartDate   types.Date `json:"start_date"`
	EndDate     types.Date `json:"end_date"`
}

type CreateIterationRequest struct {
	IterationFields
	ProjectID uint64 `json:"project_id" vd:"$>0"`
}

type UpdateIterationRequest struct {
	IterationFields
	ID uint64 `path:"id" json:"-" vd:"$>0"`
}

type IterationQuery struct {
	Page
	ProjectID uint64 `query:"project_id" xorm:"project_id op=eq"`
	Name      string `query:"name" xorm:"name op=like"`
	Status    int    `query:"status" xorm:"status op=eq"`
}
