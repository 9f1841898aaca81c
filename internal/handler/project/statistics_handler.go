package project

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

// StatisticsHandler 工时与进度统计，结果按可见项目过滤
type StatisticsHandler struct {
	stats *service.StatisticsService
}

func NewStatisticsHandler(stats *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{stats: stats}
}

func (h *StatisticsHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/statistics/project/:id/workhours", h.ProjectWorkHours),
		router.GET("/statistics/user/:id/workhours", h.UserWorkHours),
		router.GET("/statistics/department/:id/workhours", h.DepartmentWorkHours),
		router.GET("/statistics/task/:id/workhours", h.TaskWorkHours),
		router.GET("/statistics/project/:id/completion", h.ProjectCompletion),
		router.GET("/statistics/workhours/trend", h.Trend),
		router.GET("/statistics/dashboard", h.Dashboard),
	}
}

func (h *StatisticsHandler) ProjectWorkHours(c *context.Context, req *params.DateRangeRequest) *context.Response {
	return respond(h.stats.ProjectWorkHours(c.Context(), req))
}

func (h *StatisticsHandler) UserWorkHours(c *context.Context, req *params.DateRangeRequest) *context.Response {
	return respond(h.stats.UserWorkHours(c.Context(), req))
}

func (h *StatisticsHandler) DepartmentWorkHours(c *context.Context, req *params.DateRangeRequest) *context.Response {
	return respond(h.stats.DepartmentWorkHours(c.Context(), req))
}

func (h *StatisticsHandler) TaskWorkHours(c *context.Context, req *params.IDRequest) *context.Response {
	return respond(h.stats.TaskWorkHours(c.Context(), req.ID))
}

func (h *StatisticsHandler) ProjectCompletion(c *context.Context, req *params.IDRequest) *context.Response {
	return respond(h.stats.ProjectCompletion(c.Context(), req.ID))
}

// Trend 缺省最近 7 天
func (h *StatisticsHandler) Trend(c *context.Context, req *params.TrendRequest) *context.Response {
	return respond(h.stats.Trend(c.Context(), req))
}

func (h *StatisticsHandler) Dashboard(c *context.Context) *context.Response {
	return respond(h.stats.Dashboard(c.Context()))
}

func respond[T any](data T, err error) *context.Response {
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(data)
}
