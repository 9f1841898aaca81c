package system

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

type PermissionHandler struct {
	permissions *service.PermissionService
}

func NewPermissionHandler(permissions *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

func (h *PermissionHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/permissions", h.Page),
		router.GET("/permissions/all", h.All),
		router.GET("/permissions/:id", h.Get),
		router.POST("/permissions", h.Create),
		router.PUT("/permissions/:id", h.Update),
		router.DELETE("/permissions/:id", h.Delete),
		router.DELETE("/permissions", h.DeleteBatch),
	}
}

func (h *PermissionHandler) Page(c *context.Context, req *params.PermissionQuery) *context.Response {
	req.Normalize()
	records, total, err := h.permissions.Page(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.PageSuccess(records, total, req.PageNum, req.PageSize)
}

func (h *PermissionHandler) All(c *context.Context) *context.Response {
	list, err := h.permissions.All(c.Context())
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(list)
}

func (h *PermissionHandler) Get(c *context.Context, req *params.IDRequest) *context.Response {
	p, err := h.permissions.Get(c.Context(), req.ID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(p)
}

func (h *PermissionHandler) Create(c *context.Context, req *params.CreatePermissionRequest) *context.Response {
	p, err := h.permissions.Create(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(p)
}

func (h *PermissionHandler) Update(c *context.Context, req *params.UpdatePermissionRequest) *context.Response {
	p, err := h.permissions.Update(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(p)
}

func (h *PermissionHandler) Delete(c *context.Context, req *params.IDRequest) *context.Response {
	if err := h.permissions.Delete(c.Context(), req.ID); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}

func (h *PermissionHandler) DeleteBatch(c *context.Context, req *params.IDsRequest) *context.Response {
	if err := h.permissions.DeleteBatch(c.Context(), req.IDs); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}
