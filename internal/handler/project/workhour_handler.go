package project

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

type WorkHourHandler struct {
	workHours *service.WorkHourService
}

func NewWorkHourHandler(workHours *service.WorkHourService) *WorkHourHandler {
	return &WorkHourHandler{workHours: workHours}
}

func (h *WorkHourHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/work-hours", h.Page),
		router.GET("/work-hours/:id", h.Get),
		router.POST("/work-hours", h.Create),
		router.PUT("/work-hours/:id", h.Update),
		router.PUT("/work-hours/:id/status", h.UpdateStatus),
		router.DELETE("/work-hours/:id", h.Delete),
	}
}

func (h *WorkHourHandler) Page(c *context.Context, req *params.WorkHourQuery) *context.Response {
	req.Normalize()
	records, total, err := h.workHours.Page(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.PageSuccess(records, total, req.PageNum, req.PageSize)
}

func (h *WorkHourHandler) Get(c *context.Context, req *params.IDRequest) *context.Response {
	wh, err := h.workHours.Get(c.Context(), req.ID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(wh)
}

// Create 单人单日累计不超过 24 小时
func (h *WorkHourHandler) Create(c *context.Context, req *params.CreateWorkHourRequest) *context.Response {
	wh, err := h.workHours.Create(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(wh)
}

func (h *WorkHourHandler) Update(c *context.Context, req *params.UpdateWorkHourRequest) *context.Response {
	wh, err := h.workHours.Update(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(wh)
}

func (h *WorkHourHandler) UpdateStatus(c *context.Context, req *params.UpdateWorkHourStatusRequest) *context.Response {
	wh, err := h.workHours.UpdateStatus(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(wh)
}

func (h *WorkHourHandler) Delete(c *context.Context, req *params.IDRequest) *context.Response {
	if err := h.workHours.Delete(c.Context(), req.ID); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}
