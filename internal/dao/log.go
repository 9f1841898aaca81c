package dao

import (
	"context"
	"time"

	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/ayxworxfr/gsms/pkg/repository"
	"go.uber.org/zap"
	"xorm.io/xorm/contexts"
)

const slowThreshold = 100 * time.Millisecond

// XormLogger 记录每条 SQL，慢查询以 WARN 输出
type XormLogger struct {
	showSQL       bool
	slowThreshold time.Duration
}

func NewXormLogger(showSQL bool) *XormLogger {
	return &XormLogger{showSQL: showSQL, slowThreshold: slowThreshold}
}

func (s *XormLogger) BeforeProcess(c *contexts.ContextHook) (context.Context, error) {
	return c.Ctx, nil
}

func (s *XormLogger) AfterProcess(c *contexts.ContextHook) error {
	fields := []zap.Field{
		zap.String("sql", c.SQL),
		zap.Duration("cost", c.ExecuteTime),
	}
	if len(c.Args) > 0 {
		fields = append(fields, zap.Any("args", c.Args))
	}
	if c.Err != nil {
		fields = append(fields, zap.Error(c.Err))
	}

	switch {
	case c.ExecuteTime > s.slowThreshold:
		logger.Warn(c.Ctx, "slow sql", fields...)
	case s.showSQL:
		logger.Info(c.Ctx, "sql", fields...)
	}

	info := map[string]any{"sql": c.SQL, "duration": c.ExecuteTime}
	if len(c.Args) > 0 {
		info["args"] = c.Args
	}
	repository.RecordDbEvent(c.Ctx, info)
	return nil
}
