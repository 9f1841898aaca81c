package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	myapp "github.com/ayxworxfr/gsms/internal/app"
	"github.com/ayxworxfr/gsms/internal/config"
	"github.com/ayxworxfr/gsms/internal/container"
	"github.com/ayxworxfr/gsms/internal/middleware/sentinel"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/ayxworxfr/gsms/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := InitConfig()
	InitLogger(cfg.Logger)
	ctx := context.Background()

	c, err := container.Build(cfg)
	if err != nil {
		logger.Error(ctx, "Failed to build container", zap.Error(err))
		os.Exit(1)
	}

	app := myapp.NewApp(cfg)
	app.RegisterInit(func() error {
		if cfg.Seed.Enabled {
			if err := c.Seed(ctx); err != nil {
				return errors.Wrap(err, "seed builtin data")
			}
		}
		c.Start(ctx)
		return nil
	})
	app.RegisterInit(func() error {
		provider, err := myapp.InitOpenTelemetry(ctx, cfg.OpenTelemetry)
		if err != nil {
			// 追踪不可用不影响服务
			logger.Error(ctx, "Failed to initialize OpenTelemetry", zap.Error(err))
			return nil
		}
		if provider != nil {
			app.RegisterExit(func() error { return provider.Shutdown(context.Background()) })
		}
		return nil
	})
	app.RegisterExit(c.Close)

	app.SetupMiddlewares(c, initSentinel(ctx, cfg))
	app.SetupRoutes(c)

	go startServer(app)
	gracefulShutdown(app)
}

func InitConfig() *config.Config {
	cfg, err := config.Load(utils.GetAbsPath("conf/config.yaml"))
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	return cfg
}

func InitLogger(cfg config.LoggerConfig) {
	logger.InitLogger(logger.Config{
		LogFile:    cfg.LogFile,
		Level:      cfg.Level,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		Console:    cfg.Console,
	})
}

// initSentinel 配置缺失或加载失败时返回 nil，服务不做流控
func initSentinel(ctx context.Context, cfg *config.Config) *sentinel.Guard {
	if cfg.Server.SentinelFile == "" {
		return nil
	}
	scfg, err := config.LoadSentinelConfig(utils.GetAbsPath(cfg.Server.SentinelFile))
	if err != nil {
		logger.Warn(ctx, "sentinel config not loaded, flow control disabled", zap.Error(err))
		return nil
	}
	guard, err := sentinel.Init(scfg)
	if err != nil {
		logger.Error(ctx, "Failed to initialize sentinel", zap.Error(err))
		return nil
	}
	return guard
}

func startServer(app *myapp.App) {
	if err := app.Run(); err != nil {
		logger.Error(context.Background(), "Server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func gracefulShutdown(app *myapp.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(context.Background(), "Shutting down server...")
	app.GracefulShutdown(shutdownTimeout)
	logger.Info(context.Background(), "Server exiting")
}
