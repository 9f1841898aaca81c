package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/config"
	validator "github.com/ayxworxfr/gsms/internal/domain/validate"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/route"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"go.uber.org/zap"
)

// App HTTP 服务及其启动、退出钩子
type App struct {
	server    *server.Hertz
	config    *config.Config
	initFuncs []func() error
	exitFuncs []func() error
}

func NewApp(cfg *config.Config, opts ...hertzconfig.Option) *App {
	tracer, tcfg := hertztracing.NewServerTracer()
	opts = append([]hertzconfig.Option{
		tracer,
		server.WithHostPorts(fmt.Sprintf(":%d", cfg.Server.Port)),
		server.WithCustomBinder(validator.NewDecimalBinder()),
	}, opts...)
	h := server.New(opts...)
	h.Use(hertztracing.ServerMiddleware(tcfg))
	return &App{server: h, config: cfg}
}

// Run 依次执行初始化钩子后阻塞监听
func (a *App) Run() error {
	ctx := context.Background()
	if err := a.execute(a.initFuncs...); err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	logger.Info(ctx, "Starting server", zap.Int("port", a.config.Server.Port))
	return a.server.Run()
}

// GracefulShutdown 先停止接收请求，再执行退出钩子
func (a *App) GracefulShutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		logger.Error(ctx, "Server forced to shutdown", zap.Error(err))
	}
	if err := a.execute(a.exitFuncs...); err != nil {
		logger.Error(ctx, "exit hook failed", zap.Error(err))
	}
}

func (a *App) Use(middlewares ...app.HandlerFunc) {
	a.server.Use(middlewares...)
}

func (a *App) Group(path string, middlewares ...app.HandlerFunc) *router.RouterGroup {
	return router.NewRouterGroup(a.server.Group(path, middlewares...))
}

// Engine 供测试直接发起请求
func (a *App) Engine() *route.Engine {
	return a.server.Engine
}

func (a *App) RegisterInit(initFuncs ...func() error) {
	a.initFuncs = append(a.initFuncs, initFuncs...)
}

func (a *App) RegisterExit(exitFuncs ...func() error) {
	a.exitFuncs = append(a.exitFuncs, exitFuncs...)
}

func (a *App) execute(funcs ...func() error) error {
	for _, fn := range funcs {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}
