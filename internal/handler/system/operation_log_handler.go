package system

import (
	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/context"
)

// OperationLogHandler 操作日志只读
type OperationLogHandler struct {
	logs *service.OperationLogService
}

func NewOperationLogHandler(logs *service.OperationLogService) *OperationLogHandler {
	return &OperationLogHandler{logs: logs}
}

func (h *OperationLogHandler) Routes() []*router.Router {
	return []*router.Router{
		router.GET("/operation-logs", h.Page),
		router.GET("/operation-logs/:id", h.Get),
	}
}

func (h *OperationLogHandler) Page(c *context.Context, req *params.OperationLogQuery) *context.Response {
	req.Normalize()
	records, total, err := h.logs.Page(c.Context(), req)
	if err != nil {
		return context.Fail(err)
	}
	return context.PageSuccess(records, total, req.PageNum, req.PageSize)
}

func (h *OperationLogHandler) Get(c *context.Context, req *params.IDRequest) *context.Response {
	entry, err := h.logs.Get(c.Context(), req.ID)
	if err != nil {
		return context.Fail(err)
	}
	return context.Success(entry)
}
