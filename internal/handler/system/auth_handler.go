package system

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

// AuthHandler 当前用户的权限与角色编码，供前端控制按钮
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/auth/permissions", h.Permissions),
		router.GET("/auth/roles", h.Roles),
	}
}

func (h *AuthHandler) Permissions(c *context.Context) *context.Response {
	codes, err := h.auth.PermissionCodes(c.Context())
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(codes)
}

func (h *AuthHandler) Roles(c *context.Context) *context.Response {
	codes, err := h.auth.RoleCodes(c.Context())
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(codes)
}
