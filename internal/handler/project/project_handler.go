package project

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

// ProjectHandler /projects 及成员维护
type ProjectHandler struct {
	projects *service.ProjectService
}

func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (h *ProjectHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/projects", h.Page),
		router.GET("/projects/:id", h.Get),
		router.POST("/projects", h.Create),
		router.PUT("/projects/:id", h.Update),
		router.DELETE("/projects/:id", h.Delete),
		router.GET("/projects/:id/members", h.Members),
		router.POST("/projects/:id/members", h.AddMembers),
		router.PUT("/projects/:id/members/:userId", h.UpdateMember),
		router.DELETE("/projects/:id/members/:userId", h.RemoveMember),
	}
}

// Page 只返回当前用户可见的项目
func (h *ProjectHandler) Page(c *context.Context, req *params.ProjectQuery) *context.Response {
	req.Normalize()
	records, total, err := h.projects.Page(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.PageSuccess(records, total, req.PageNum, req.PageSize)
}

func (h *ProjectHandler) Get(c *context.Context, req *params.GetProjectRequest) *context.Response {
	p, err := h.projects.Get(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(p)
}

func (h *ProjectHandler) Create(c *context.Context, req *params.CreateProjectRequest) *context.Response {
	p, err := h.projects.Create(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(p)
}

func (h *ProjectHandler) Update(c *context.Context, req *params.UpdateProjectRequest) *context.Response {
	p, err := h.projects.Update(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(p)
}

func (h *ProjectHandler) Delete(c *context.Context, req *params.IDRequest) *context.Response {
	if err := h.projects.Delete(c.Context(), req.ID); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}

func (h *ProjectHandler) Members(c *context.Context, req *params.IDRequest) *context.Response {
	members, err := h.projects.Members(c.Context(), req.ID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(members)
}

// AddMembers 批量添加，已是成员的跳过
func (h *ProjectHandler) AddMembers(c *context.Context, req *params.AddMembersRequest) *context.Response {
	members, err := h.projects.AddMembers(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(members)
}

func (h *ProjectHandler) UpdateMember(c *context.Context, req *params.UpdateMemberRequest) *context.Response {
	member, err := h.projects.UpdateMember(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(member)
}

func (h *ProjectHandler) RemoveMember(c *context.Context, req *params.MemberPathRequest) *context.Response {
	if err := h.projects.RemoveMember(c.Context(), req); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}
