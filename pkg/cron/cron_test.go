package cron

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestTaskManager_AddTask(t *testing.T) {
	manager := NewTaskManager(0)
	require.NoError(t, manager.AddTask("test_task", "0 0 * * *", noop))

	tasks := manager.ListTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "test_task", tasks[0].Name)
	assert.False(t, tasks[0].NextRun.IsZero())

	assert.Error(t, manager.AddTask("test_task", "0 0 * * *", noop), "duplicate name")
	assert.Error(t, manager.AddTask("bad", "invalid_cron_expr", noop))
	assert.Error(t, manager.AddTask("seconds", "*/5 * * * * *", noop), "six fields not accepted")
}

func TestTaskManager_PauseResumeRemove(t *testing.T) {
	manager := NewTaskManager(0)
	require.NoError(t, manager.AddTask("task_a", "0 0 * * *", noop))
	require.NoError(t, manager.AddTask("task_b", "30 0 * * *", noop))

	manager.PauseTask("task_a")
	assert.Equal(t, StatusPaused, manager.GetTaskStatus("task_a"))
	assert.Equal(t, StatusRunning, manager.GetTaskStatus("task_b"))

	manager.ResumeTask("task_a")
	assert.Equal(t, StatusRunning, manager.GetTaskStatus("task_a"))

	manager.RemoveTask("task_a")
	assert.Equal(t, StatusNotExist, manager.GetTaskStatus("task_a"))
	tasks := manager.ListTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "task_b", tasks[0].Name)
}

func TestTaskManager_RunNow(t *testing.T) {
	manager := NewTaskManager(0)
	var calls int32
	boom := errors.New("boom")
	require.NoError(t, manager.AddTask("count", "0 0 * * *", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return boom
	}))

	manager.PauseTask("count")
	assert.ErrorIs(t, manager.RunNow("count"), boom)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	tasks := manager.ListTasks()
	assert.Equal(t, "boom", tasks[0].LastErr)
	assert.False(t, tasks[0].LastRun.IsZero())

	assert.Error(t, manager.RunNow("missing"))
}

func TestTaskManager_ScheduledRunSkipsPaused(t *testing.T) {
	manager := NewTaskManager(0)
	var calls int32
	require.NoError(t, manager.AddTask("count", "0 0 * * *", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))

	manager.PauseTask("count")
	require.NoError(t, manager.run("count", false))
	assert.Zero(t, atomic.LoadInt32(&calls))

	manager.ResumeTask("count")
	require.NoError(t, manager.run("count", false))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTaskManager_StartAndStop(t *testing.T) {
	manager := NewTaskManager(0)
	require.NoError(t, manager.AddTask("test_task", "@every 1h", noop))
	manager.Start()
	manager.Stop()
}

func TestTaskManager_LoadTasksFromYAML(t *testing.T) {
	registry := NewTaskRegistry()
	registry.Register("test_task", noop)

	tmpFile, err := os.CreateTemp(t.TempDir(), "tasks.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString("- name: test_task\n  cron_expr: 0 0 * * *\n")
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())

	manager := NewTaskManager(0)
	require.NoError(t, manager.LoadTasksFromYAML(tmpFile.Name(), registry))
	assert.Len(t, manager.ListTasks(), 1)
}

func TestTaskManager_LoadTasks(t *testing.T) {
	registry := NewTaskRegistry()
	registry.Register("enabled_task", noop)
	registry.Register("disabled_task", noop)
	registry.Register("broken_task", noop)

	manager := NewTaskManager(0)
	err := manager.LoadTasksFromYAMLBytes([]byte(`
- name: enabled_task
  cron_expr: "0 0 * * *"
- name: disabled_task
  cron_expr: "0 12 * * *"
  disabled: true
- name: undefined_task
  cron_expr: "0 0 * * *"
- name: broken_task
  cron_expr: invalid_cron_expr
`), registry)
	require.NoError(t, err)

	tasks := manager.ListTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "enabled_task", tasks[0].Name)
}

func TestTaskManager_LoadTasks_InvalidYAML(t *testing.T) {
	registry := NewTaskRegistry()
	registry.Register("test_task", noop)

	manager := NewTaskManager(0)
	err := manager.LoadTasksFromYAMLBytes([]byte(`
- name: test_task
  cron_expr: 0 0 * * *
  invalid_field: true
`), registry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Empty(t, manager.ListTasks())
}
