package system

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

// UserHandler /users
type UserHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

func NewUserHandler(users *service.UserService, auth *service.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

// PublicRoutes 无需登录的路由
func (h *UserHandler) PublicRoutes() []*router.Router {
	return []*router.Router{
		router.POST("/users/login", h.Login),
		router.POST("/users/register", h.Register),
		router.POST("/users/refresh", h.Refresh),
	}
}

func (h *UserHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/users", h.Page),
		router.GET("/users/info", h.Info),
		router.PUT("/users/password", h.ChangePassword),
		router.PUT("/users/password/reset", h.ResetPassword),
		router.GET("/users/:id", h.Get),
		router.POST("/users", h.Create),
		router.PUT("/users/:id", h.Update),
		router.DELETE("/users/:id", h.Delete),
		router.PUT("/users/:id/roles", h.AssignRoles),
	}
}

func (h *UserHandler) Login(c *context.Context, req *params.LoginRequest) *context.Response {
	result, err := h.auth.Login(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(result)
}

func (h *UserHandler) Register(c *context.Context, req *params.RegisterRequest) *context.Response {
	user, err := h.auth.Register(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(user)
}

func (h *UserHandler) Refresh(c *context.Context, req *params.RefreshTokenRequest) *context.Response {
	result, err := h.auth.RefreshToken(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(result)
}

// Info 当前登录用户，含角色与权限编码
func (h *UserHandler) Info(c *context.Context) *context.Response {
	info, err := h.auth.Info(c.Context())
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(info)
}

func (h *UserHandler) ChangePassword(c *context.Context, req *params.ChangePasswordRequest) *context.Response {
	if err := h.auth.ChangePassword(c.Context(), req); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}

func (h *UserHandler) ResetPassword(c *context.Context, req *params.ResetPasswordRequest) *context.Response {
	if err := h.auth.ResetPassword(c.Context(), req); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}

func (h *UserHandler) Page(c *context.Context, req *params.UserQuery) *context.Response {
	req.Normalize()
	records, total, err := h.users.Page(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.PageSuccess(records, total, req.PageNum, req.PageSize)
}

func (h *UserHandler) Get(c *context.Context, req *params.GetUserRequest) *context.Response {
	user, err := h.users.Get(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(user)
}

func (h *UserHandler) Create(c *context.Context, req *params.CreateUserRequest) *context.Response {
	user, err := h.users.Create(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(user)
}

func (h *UserHandler) Update(c *context.Context, req *params.UpdateUserRequest) *context.Response {
	user, err := h.users.Update(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(user)
}

func (h *UserHandler) Delete(c *context.Context, req *params.IDRequest) *context.Response {
	if err := h.users.Delete(c.Context(), req.ID); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}

func (h *UserHandler) AssignRoles(c *context.Context, req *params.AssignRolesRequest) *context.Response {
	roles, err := h.users.AssignRoles(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(roles)
}
