package handler

import (
	"context"
	"time"

	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"go.uber.org/zap"
)

// Pinger 由 *xorm.Engine 实现
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler GET /health，供负载均衡与 health_check 定时任务探测
type HealthHandler struct {
	db      Pinger
	started time.Time
	timeout time.Duration
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now(), timeout: 2 * time.Second}
}

func (h *HealthHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/health", h.Health),
	}
}

func (h *HealthHandler) Health(c *mycontext.Context) *mycontext.Response {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		logger.Error(ctx, "database ping failed", zap.Error(err))
		return mycontext.Fail(errcode.ServiceUnavailable.WithMessage("数据库不可用"))
	}
	return mycontext.Success(map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Truncate(time.Second).String(),
	})
}
