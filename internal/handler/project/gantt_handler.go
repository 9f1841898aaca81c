package project

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

// GanttHandler 甘特图读取、拖拽调整与依赖连线
type GanttHandler struct {
	gantt *service.GanttService
	tasks *service.TaskService
}

func NewGanttHandler(gantt *service.GanttService, tasks *service.TaskService) *GanttHandler {
	return &GanttHandler{gantt: gantt, tasks: tasks}
}

func (h *GanttHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/gantt/project/:id", h.Project),
		router.PUT("/gantt/task/:id/dates", h.UpdateDates),
		router.PUT("/gantt/task/:id/parent", h.ChangeParent),
		router.POST("/gantt/link", h.CreateLink),
		router.DELETE("/gantt/link/:id", h.DeleteLink),
	}
}

func (h *GanttHandler) Project(c *context.Context, req *params.GanttRequest) *context.Response {
	g, err := h.gantt.Project(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(g)
}

func (h *GanttHandler) UpdateDates(c *context.Context, req *params.UpdateTaskDatesRequest) *context.Response {
	task, err := h.tasks.UpdateDates(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(task)
}

// ChangeParent parent_id 为 0 时提升为顶层任务
func (h *GanttHandler) ChangeParent(c *context.Context, req *params.UpdateTaskParentRequest) *context.Response {
	task, err := h.tasks.ChangeParent(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(task)
}

func (h *GanttHandler) CreateLink(c *context.Context, req *params.CreateTaskLinkRequest) *context.Response {
	link, err := h.gantt.CreateLink(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(link)
}

func (h *GanttHandler) DeleteLink(c *context.Context, req *params.IDRequest) *context.Response {
	if err := h.gantt.DeleteLink(c.Context(), req.ID); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}
