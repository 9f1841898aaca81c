package system

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

type DepartmentHandler struct {
	departments *service.DepartmentService
}

func NewDepartmentHandler(departments *service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departments: departments}
}

func (h *DepartmentHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/departments", h.Page),
		router.GET("/departments/tree", h.Tree),
		router.GET("/departments/:id", h.Get),
		router.POST("/departments", h.Create),
		router.PUT("/departments/:id", h.Update),
		router.DELETE("/departments/:id", h.Delete),
	}
}

func (h *DepartmentHandler) Tree(c *context.Context) *context.Response {
	tree, err := h.departments.Tree(c.Context())
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(tree)
}

func (h *DepartmentHandler) Page(c *context.Context, req *params.DepartmentQuery) *context.Response {
	req.Normalize()
	records, total, err := h.departments.Page(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.PageSuccess(records, total, req.PageNum, req.PageSize)
}

func (h *DepartmentHandler) Get(c *context.Context, req *params.IDRequest) *context.Response {
	dept, err := h.departments.Get(c.Context(), req.ID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(dept)
}

func (h *DepartmentHandler) Create(c *context.Context, req *params.CreateDepartmentRequest) *context.Response {
	dept, err := h.departments.Create(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(dept)
}

func (h *DepartmentHandler) Update(c *context.Context, req *params.UpdateDepartmentRequest) *context.Response {
	dept, err := h.departments.Update(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(dept)
}

// Delete 存在子部门或用户时拒绝
func (h *DepartmentHandler) Delete(c *context.Context, req *params.IDRequest) *context.Response {
	if err := h.departments.Delete(c.Context(), req.ID); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}
