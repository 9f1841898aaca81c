package system

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

type MenuHandler struct {
	menus *service.MenuService
}

func NewMenuHandler(menus *service.MenuService) *MenuHandler {
	return &MenuHandler{menus: menus}
}

func (h *MenuHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/menus", h.Page),
		router.GET("/menus/tree", h.Tree),
		router.GET("/menus/user/tree", h.UserTree),
		router.GET("/menus/:id", h.Get),
		router.POST("/menus", h.Create),
		router.PUT("/menus/:id", h.Update),
		router.DELETE("/menus/:id", h.Delete),
		router.PUT("/menus/:id/permissions", h.AssignPermissions),
	}
}

func (h *MenuHandler) Tree(c *context.Context) *context.Response {
	tree, err := h.menus.Tree(c.Context())
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(tree)
}

// UserTree 当前用户可见的菜单
func (h *MenuHandler) UserTree(c *context.Context) *context.Response {
	tree, err := h.menus.UserTree(c.Context())
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(tree)
}

func (h *MenuHandler) Page(c *context.Context, req *params.MenuQuery) *context.Response {
	req.Normalize()
	records, total, err := h.menus.Page(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.PageSuccess(records, total, req.PageNum, req.PageSize)
}

func (h *MenuHandler) Get(c *context.Context, req *params.IDRequest) *context.Response {
	menu, err := h.menus.Get(c.Context(), req.ID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(menu)
}

func (h *MenuHandler) Create(c *context.Context, req *params.CreateMenuRequest) *context.Response {
	menu, err := h.menus.Create(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(menu)
}

func (h *MenuHandler) Update(c *context.Context, req *params.UpdateMenuRequest) *context.Response {
	menu, err := h.menus.Update(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(menu)
}

func (h *MenuHandler) Delete(c *context.Context, req *params.IDRequest) *context.Response {
	if err := h.menus.Delete(c.Context(), req.ID); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}

func (h *MenuHandler) AssignPermissions(c *context.Context, req *params.AssignMenuPermissionsRequest) *context.Response {
	menu, err := h.menus.AssignPermissions(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(menu)
}
