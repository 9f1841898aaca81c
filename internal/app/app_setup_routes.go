package app

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/container"
	"github.com/ayxworxfr/gsms/internal/handler"
	"github.com/ayxworxfr/gsms/internal/handler/project"
	"github.com/ayxworxfr/gsms/internal/handler/system"
	"github.com/ayxworxfr/gsms/internal/middleware"
	"github.com/ayxworxfr/gsms/internal/middleware/sentinel"
	"github.com/cloudwego/hertz/pkg/app"
)

// SetupMiddlewares guard 为 nil 时不启用 sentinel
func (a *App) SetupMiddlewares(c *container.Container, guard *sentinel.Guard) {
	chain := []app.HandlerFunc{
		middleware.GlobalErrorHandlerMiddleware(),
		middleware.TraceContextMiddleware(),
		middleware.LogMiddleware(),
		middleware.CorsMiddleware(a.config.Server.AllowOrigins...),
	}
	if c.Limiter != nil {
		chain = append(chain, middleware.RateLimitMiddleware(c.Limiter))
	}
	if guard != nil {
		chain = append(chain, guard.Middleware())
	}
	a.Use(chain...)
}

// SetupRoutes /health 在根路径，其余接口在 /api 下，登录注册以外都需要令牌
func (a *App) SetupRoutes(c *container.Container) {
	router.Register(a.Group(""), handler.NewHealthHandler(c.Engine))

	users := system.NewUserHandler(c.Users, c.Auth)
	api := a.Group("/api")
	router.Register(api, publicRoutes(users.PublicRoutes))

	protected := api.Group("", middleware.JWTMiddleware(c.Tokens, c.Names))
	router.Register(protected,
		users,
		system.NewAuthHandler(c.Auth),
		system.NewRoleHandler(c.Roles),
		system.NewPermissionHandler(c.Permissions),
		system.NewDepartmentHandler(c.Departments),
		system.NewMenuHandler(c.Menus),
		system.NewOperationLogHandler(c.Audit),
		project.NewProjectHandler(c.Projects),
		project.NewIterationHandler(c.Iterations),
		project.NewTaskHandler(c.Tasks),
		project.NewGanttHandler(c.Gantt, c.Tasks),
		project.NewWorkHourHandler(c.WorkHours),
		project.NewStatisticsHandler(c.Statistics),
	)
}

// publicRoutes 把返回路由表的方法适配为 RouteTable
type publicRoutes func() []*router.Router

func (f publicRoutes) Routes() []*router.Router { return f() }
