package project

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

type IterationHandler struct {
	iterations *service.IterationService
}

func NewIterationHandler(iterations *service.IterationService) *IterationHandler {
	return &IterationHandler{iterations: iterations}
}

func (h *IterationHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/iterations", h.Page),
		router.GET("/iterations/:id", h.Get),
		router.POST("/iterations", h.Create),
		router.PUT("/iterations/:id", h.Update),
		router.DELETE("/iterations/:id", h.Delete),
	}
}

func (h *IterationHandler) Page(c *context.Context, req *params.IterationQuery) *context.Response {
	req.Normalize()
	records, total, err := h.iterations.Page(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.PageSuccess(records, total, req.PageNum, req.PageSize)
}

func (h *IterationHandler) Get(c *context.Context, req *params.IDRequest) *context.Response {
	it, err := h.iterations.Get(c.Context(), req.ID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(it)
}

func (h *IterationHandler) Create(c *context.Context, req *params.CreateIterationRequest) *context.Response {
	it, err := h.iterations.Create(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(it)
}

func (h *IterationHandler) Update(c *context.Context, req *params.UpdateIterationRequest) *context.Response {
	it, err := h.iterations.Update(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(it)
}

func (h *IterationHandler) Delete(c *context.Context, req *params.IDRequest) *context.Response {
	if err := h.iterations.Delete(c.Context(), req.ID); err != nil {
		return context.Fail(err)
	}
	return context.Success(nil)
}
