// Package cron 注册服务内置的定时任务。
package cron

import (
	"context"
	"time"

	"github.com/ayxworxfr/gsms/internal/config"
	"github.com/ayxworxfr/gsms/pkg/cron"
	"github.com/ayxworxfr/gsms/pkg/httpclient"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const taskTimeout = time.Minute

const (
	TaskCacheRefresh = "cache_refresh"
	TaskHealthCheck  = "health_check"
)

// CacheRefresher 用户、部门名称缓存
type CacheRefresher interface {
	Refresh(ctx context.Context) error
}

// NewScheduler 按配置装载任务但不启动；cache_refresh 未在 tasks 中声明时使用 cache.refresh_cron
func NewScheduler(cfg *config.Config, cache CacheRefresher, client *httpclient.Client) (*cron.TaskManager, error) {
	manager := cron.NewTaskManager(taskTimeout)

	registry := cron.NewTaskRegistry()
	registry.Register(TaskCacheRefresh, cache.Refresh)
	registry.Register(TaskHealthCheck, healthCheck(client))

	tasks := cfg.Tasks
	_, declared := lo.Find(tasks, func(t cron.TaskConfig) bool { return t.Name == TaskCacheRefresh })
	if !declared && cfg.Cache.RefreshCron != "" {
		tasks = append(tasks, cron.TaskConfig{Name: TaskCacheRefresh, CronExpr: cfg.Cache.RefreshCron})
	}
	if err := manager.LoadTasks(tasks, registry); err != nil {
		return nil, errors.Wrap(err, "load scheduled tasks")
	}
	return manager, nil
}
