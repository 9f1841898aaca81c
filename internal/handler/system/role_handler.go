package system

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

type RoleHandler struct {
	roles *service.RoleService
}

func NewRoleHandler(roles *service.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

func (h *RoleHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/roles", h.Page),
		router.GET("/roles/:id", h.Get),
		router.POST("/roles", h.Create),
		router.PUT("/roles/:id", h.Update),
		router.DELETE("/roles/:id", h.Delete),
		router.PUT("/roles/:id/permissions", h.AssignPermissions),
		router.DELETE("/roles/:roleId/permissions/:permissionId", h.RemovePermission),
		router.GET("/roles/:id/users", h.Users),
	}
}

func (h *RoleHandler) Page(c *context.Context, req *params.RoleQuery) *context.Response {
	req.Normalize()
	records, total, err := h.roles.Page(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.PageSuccess(records, total, req.PageNum, req.PageSize)
}

func (h *RoleHandler) Get(c *context.Context, req *params.IDRequest) *context.Response {
	role, err := h.roles.Get(c.Context(), req.ID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(role)
}

func (h *RoleHandler) Create(c *context.Context, req *params.CreateRoleRequest) *context.Response {
	role, err := h.roles.Create(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(role)
}

func (h *RoleHandler) Update(c *context.Context, req *params.UpdateRoleRequest) *context.Response {
	role, err := h.roles.Update(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(role)
}

func (h *RoleHandler) Delete(c *context.Context, req *params.IDRequest) *context.Response {
	if err := h.roles.Delete(c.Context(), req.ID); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}

// AssignPermissions 全量替换角色权限
func (h *RoleHandler) AssignPermissions(c *context.Context, req *params.AssignRolePermissionsRequest) *context.Response {
	role, err := h.roles.AssignPermissions(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(role)
}

func (h *RoleHandler) RemovePermission(c *context.Context, req *params.RemoveRolePermissionRequest) *context.Response {
	if err := h.roles.RemovePermission(c.Context(), req); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}

func (h *RoleHandler) Users(c *context.Context, req *params.IDRequest) *context.Response {
	users, err := h.roles.Users(c.Context(), req.ID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(users)
}
