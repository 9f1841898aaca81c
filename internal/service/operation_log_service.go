package service

import (
	"context"
	"sync"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"go.uber.org/zap"
)

type OperationLogStore interface {
	Get(ctx context.Context, id uint64) (*models.OperationLog, error)
	Create(ctx context.Context, m *models.OperationLog) error
	Page(ctx context.Context, q *params.OperationLogQuery, start, end string) ([]models.OperationLog, int64, error)
}

// OperationLogService 异步写审计日志，写入失败只记日志不影响业务
type OperationLogService struct {
	store OperationLogStore
	wg    sync.WaitGroup
}

func NewOperationLogService(store OperationLogStore) *OperationLogService {
	return &OperationLogService{store: store}
}

// Record 在请求 ctx 上取身份与请求信息，后台 goroutine 落库
func (s *OperationLogService) Record(ctx context.Context, module enums.OperationModule, op enums.OperationType, description string, err error) {
	meta := mycontext.RequestMetaFrom(ctx)
	entry := &models.OperationLog{
		OperationType: op,
		Module:        module,
		Description:   description,
		Method:        meta.Method,
		Path:          meta.Path,
		IP:            meta.IP,
		Status:        enums.OperationSuccess,
	}
	if id, ok := mycontext.IdentityFrom(ctx); ok {
		entry.UserID, entry.Username = id.UserID, id.Username
		if id.IP != "" {
			entry.IP = id.IP
		}
	}
	if err != nil {
		entry.Status = enums.OperationFailed
		entry.ErrorMsg = err.Error()
	}

	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.store.Create(bg, entry); err != nil {
			logger.Warn(bg, "write operation log failed",
				zap.Error(err), zap.String("module", module.String()), zap.String("operation", op.String()))
		}
	}()
}

// Wait 等待尚未落库的日志，停机时调用
func (s *OperationLogService) Wait() {
	s.wg.Wait()
}

func (s *OperationLogService) Page(ctx context.Context, q *params.OperationLogQuery) ([]*vo.OperationLog, int64, error) {
	start, err := parseDateTime("start_time", q.StartTime, false)
	if err != nil {
		return nil, 0, err
	}
	end, err := parseDateTime("end_time", q.EndTime, true)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := s.store.Page(ctx, q, start, end)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "page operation logs")
	}
	out, err := vo.CopySlice[models.OperationLog, vo.OperationLog](rows)
	if err != nil {
		return nil, 0, err
	}
	for _, v := range out {
		decorateOperationLog(v)
	}
	return out, total, nil
}

func (s *OperationLogService) Get(ctx context.Context, id uint64) (*vo.OperationLog, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get operation log", zap.Uint64("id", id))
	}
	if m == nil {
		return nil, errcode.OperationLogNotFound
	}
	out := new(vo.OperationLog)
	if err := vo.Copy(out, m); err != nil {
		return nil, err
	}
	decorateOperationLog(out)
	return out, nil
}

func decorateOperationLog(v *vo.OperationLog) {
	v.OperationTypeDesc = v.OperationType.String()
	v.ModuleDesc = v.Module.String()
}
