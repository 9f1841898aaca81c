// Package cron 基于 robfig/cron 的定时任务管理，任务由 YAML 配置按名称绑定到注册的处理函数。
package cron

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// Job 任务处理函数
type Job func(ctx context.Context) error

// TaskStatus 任务状态
type TaskStatus string

const (
	StatusRunning  TaskStatus = "running"
	StatusPaused   TaskStatus = "paused"
	StatusNotExist TaskStatus = "not exist"
)

// TaskInfo 任务快照
type TaskInfo struct {
	Name     string     `json:"name"`
	CronExpr string     `json:"cron_expr"`
	Status   TaskStatus `json:"status"`
	NextRun  time.Time  `json:"next_run"`
	LastRun  time.Time  `json:"last_run"`
	LastErr  string     `json:"last_err,omitempty"`
}

type managedJob struct {
	entryID  cron.EntryID
	job      Job
	cronExpr string
	disabled bool
	lastRun  time.Time
	lastErr  error
}

// TaskManager 定时任务管理器
type TaskManager struct {
	scheduler *cron.Cron
	parser    cron.Parser
	tasks     map[string]*managedJob
	mu        sync.RWMutex
	timeout   time.Duration
}

// NewTaskManager 使用标准 5 段表达式，单次执行超时为 timeout（0 表示不限制）
func NewTaskManager(timeout time.Duration) *TaskManager {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &TaskManager{
		scheduler: cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cronLogger{}))),
		parser:    parser,
		tasks:     make(map[string]*managedJob),
		timeout:   timeout,
	}
}

// Start 启动调度
func (tm *TaskManager) Start() {
	tm.scheduler.Start()
	logger.Info(context.Background(), "scheduled tasks started", zap.Int("count", len(tm.tasks)))
}

// Stop 停止调度并等待运行中的任务结束
func (tm *TaskManager) Stop() {
	<-tm.scheduler.Stop().Done()
	logger.Info(context.Background(), "scheduled tasks stopped")
}

// AddTask 添加定时任务，名称重复或表达式非法时返回错误
func (tm *TaskManager) AddTask(name, cronExpr string, job Job) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if _, exists := tm.tasks[name]; exists {
		return fmt.Errorf("task %s already exists", name)
	}
	schedule, err := tm.parser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("failed to add task %s: %w", name, err)
	}

	mj := &managedJob{job: job, cronExpr: cronExpr}
	mj.entryID = tm.scheduler.Schedule(schedule, cron.FuncJob(func() { tm.run(name, false) }))
	tm.tasks[name] = mj

	logger.Info(context.Background(), "task added", zap.String("task", name), zap.String("cron", cronExpr))
	return nil
}

// RunNow 立即执行一次，不受暂停状态影响
func (tm *TaskManager) RunNow(name string) error {
	tm.mu.RLock()
	_, ok := tm.tasks[name]
	tm.mu.RUnlock()
	if !ok {
		return fmt.Errorf("task %s not exist", name)
	}
	return tm.run(name, true)
}

func (tm *TaskManager) run(name string, force bool) error {
	tm.mu.RLock()
	mj, ok := tm.tasks[name]
	if !ok || (mj.disabled && !force) {
		tm.mu.RUnlock()
		return nil
	}
	job := mj.job
	tm.mu.RUnlock()

	ctx := logger.WithContext(context.Background(), zap.String("task", name))
	if tm.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tm.timeout)
		defer cancel()
	}

	start := time.Now()
	err := job(ctx)
	if err != nil {
		logger.Error(ctx, "task failed", zap.Duration("cost", time.Since(start)), zap.Error(err))
	} else {
		logger.Debug(ctx, "task finished", zap.Duration("cost", time.Since(start)))
	}

	tm.mu.Lock()
	if cur, ok := tm.tasks[name]; ok {
		cur.lastRun, cur.lastErr = start, err
	}
	tm.mu.Unlock()
	return err
}

// RemoveTask 移除定时任务
func (tm *TaskManager) RemoveTask(name string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if job, exists := tm.tasks[name]; exists {
		tm.scheduler.Remove(job.entryID)
		delete(tm.tasks, name)
		return
	}
	logger.Warn(context.Background(), "remove non-existent task", zap.String("task", name))
}

// PauseTask 暂停定时任务
func (tm *TaskManager) PauseTask(name string) {
	tm.setDisabled(name, true)
}

// ResumeTask 恢复定时任务
func (tm *TaskManager) ResumeTask(name string) {
	tm.setDisabled(name, false)
}

func (tm *TaskManager) setDisabled(name string, disabled bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if job, exists := tm.tasks[name]; exists {
		job.disabled = disabled
		return
	}
	logger.Warn(context.Background(), "toggle non-existent task", zap.String("task", name))
}

// GetTaskStatus 获取任务状态
func (tm *TaskManager) GetTaskStatus(name string) TaskStatus {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	job, exists := tm.tasks[name]
	switch {
	case !exists:
		return StatusNotExist
	case job.disabled:
		return StatusPaused
	default:
		return StatusRunning
	}
}

// ListTasks 按名称排序返回所有任务
func (tm *TaskManager) ListTasks() []TaskInfo {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	now := time.Now()
	infos := make([]TaskInfo, 0, len(tm.tasks))
	for name, job := range tm.tasks {
		info := TaskInfo{Name: name, CronExpr: job.cronExpr, Status: StatusRunning, LastRun: job.lastRun}
		if job.disabled {
			info.Status = StatusPaused
		}
		if job.lastErr != nil {
			info.LastErr = job.lastErr.Error()
		}
		if schedule, err := tm.parser.Parse(job.cronExpr); err == nil {
			info.NextRun = schedule.Next(now)
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// TaskConfig YAML配置中的单个任务结构
type TaskConfig struct {
	Name     string `yaml:"name"`
	CronExpr string `yaml:"cron_expr"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// TaskRegistry 任务名称到处理函数的映射
type TaskRegistry struct {
	jobs map[string]Job
}

func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{jobs: make(map[string]Job)}
}

// Register 注册任务处理函数
func (tr *TaskRegistry) Register(name string, job Job) {
	tr.jobs[name] = job
}

// LoadTasksFromYAML 从YAML文件加载任务
func (tm *TaskManager) LoadTasksFromYAML(filePath string, registry *TaskRegistry) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	return tm.LoadTasksFromYAMLBytes(data, registry)
}

// LoadTasksFromYAMLBytes 严格解析，未知字段报错
func (tm *TaskManager) LoadTasksFromYAMLBytes(data []byte, registry *TaskRegistry) error {
	var taskConfigs []TaskConfig
	if err := yaml.UnmarshalStrict(data, &taskConfigs); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return tm.LoadTasks(taskConfigs, registry)
}

// LoadTasks 未注册或表达式非法的任务只记录日志并跳过
func (tm *TaskManager) LoadTasks(taskConfigs []TaskConfig, registry *TaskRegistry) error {
	ctx := context.Background()
	for _, cfg := range taskConfigs {
		if cfg.Disabled {
			logger.Info(ctx, "skip disabled task", zap.String("task", cfg.Name))
			continue
		}
		job, exists := registry.jobs[cfg.Name]
		if !exists {
			logger.Warn(ctx, "task has no registered handler", zap.String("task", cfg.Name))
			continue
		}
		if err := tm.AddTask(cfg.Name, cfg.CronExpr, job); err != nil {
			logger.Error(ctx, "load task failed", zap.String("task", cfg.Name), zap.Error(err))
		}
	}
	return nil
}

// cronLogger 将 robfig/cron 的日志接到 zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.FromContext(context.Background()).Sugar().Infow(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.FromContext(context.Background()).Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
