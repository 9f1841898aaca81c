package project

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/tasks", h.Page),
		router.GET("/tasks/search", h.Page),
		router.GET("/tasks/tree", h.Tree),
		router.GET("/tasks/:id", h.Get),
		router.GET("/tasks/:id/subtasks", h.Subtasks),
		router.POST("/tasks", h.Create),
		router.PUT("/tasks/:id", h.Update),
		router.PUT("/tasks/:id/status", h.UpdateStatus),
		router.DELETE("/tasks/:id", h.Delete),
	}
}

// Page 列表与搜索共用，结果限定在可见项目内
func (h *TaskHandler) Page(c *context.Context, req *params.TaskQuery) *context.Response {
	req.Normalize()
	records, total, err := h.tasks.Page(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.PageSuccess(records, total, req.PageNum, req.PageSize)
}

func (h *TaskHandler) Tree(c *context.Context, req *params.TaskTreeRequest) *context.Response {
	tree, err := h.tasks.Tree(c.Context(), req.ProjectID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(tree)
}

func (h *TaskHandler) Get(c *context.Context, req *params.IDRequest) *context.Response {
	task, err := h.tasks.Get(c.Context(), req.ID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(task)
}

func (h *TaskHandler) Subtasks(c *context.Context, req *params.IDRequest) *context.Response {
	list, err := h.tasks.Subtasks(c.Context(), req.ID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(list)
}

func (h *TaskHandler) Create(c *context.Context, req *params.CreateTaskRequest) *context.Response {
	task, err := h.tasks.Create(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(task)
}

func (h *TaskHandler) Update(c *context.Context, req *params.UpdateTaskRequest) *context.Response {
	task, err := h.tasks.Update(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(task)
}

// UpdateStatus 状态变化时自动维护实际开始、结束日期
func (h *TaskHandler) UpdateStatus(c *context.Context, req *params.UpdateTaskStatusRequest) *context.Response {
	task, err := h.tasks.UpdateStatus(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(task)
}

func (h *TaskHandler) Delete(c *context.Context, req *params.IDRequest) *context.Response {
	if err := h.tasks.Delete(c.Context(), req.ID); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}
