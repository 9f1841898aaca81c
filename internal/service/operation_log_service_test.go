package service

import (
	"context"
	"sync"
	"testing"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLogStore release 关闭前 Create 阻塞
type fakeLogStore struct {
	release chan struct{}
	fail    error

	mu   sync.Mutex
	rows []models.OperationLog
}

func (s *fakeLogStore) Get(context.Context, uint64) (*models.OperationLog, error) { return nil, nil }

func (s *fakeLogStore) Create(_ context.Context, m *models.OperationLog) error {
	<-s.release
	if s.fail != nil {
		return s.fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, *m)
	return nil
}

func (s *fakeLogStore) Page(context.Context, *params.OperationLogQuery, string, string) ([]models.OperationLog, int64, error) {
	return nil, 0, nil
}

func (s *fakeLogStore) written() []models.OperationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.OperationLog(nil), s.rows...)
}

func TestOperationLogRecordIsAsync(t *testing.T) {
	store := &fakeLogStore{release: make(chan struct{})}
	svc := NewOperationLogService(store)

	ctx := mycontext.WithRequestMeta(context.Background(), mycontext.RequestMeta{Method: "DELETE", Path: "/api/users/9", IP: "10.0.0.1"})
	ctx = mycontext.WithIdentity(ctx, mycontext.Identity{UserID: adminID, Username: "admin", IP: "10.1.1.1"})
	reqCtx, cancel := context.WithCancel(ctx)

	svc.Record(reqCtx, enums.ModuleUser, enums.OperationDelete, "删除用户 bob", nil)
	svc.Record(reqCtx, enums.ModuleUser, enums.OperationDelete, "删除用户 carol", errcode.UserInUse)
	cancel()
	assert.Empty(t, store.written(), "Record returns before the write")

	close(store.release)
	svc.Wait()

	rows := store.written()
	require.Len(t, rows, 2)
	byDesc := map[string]models.OperationLog{}
	for _, r := range rows {
		byDesc[r.Description] = r
	}
	ok := byDesc["删除用户 bob"]
	assert.Equal(t, enums.OperationSuccess, ok.Status)
	assert.Equal(t, adminID, ok.UserID)
	assert.Equal(t, "admin", ok.Username)
	assert.Equal(t, "DELETE", ok.Method)
	assert.Equal(t, "/api/users/9", ok.Path)
	assert.Equal(t, "10.1.1.1", ok.IP)

	failed := byDesc["删除用户 carol"]
	assert.Equal(t, enums.OperationFailed, failed.Status)
	assert.Equal(t, errcode.UserInUse.Error(), failed.ErrorMsg)
}

func TestOperationLogWriteFailureIsSwallowed(t *testing.T) {
	release := make(chan struct{})
	close(release)
	store := &fakeLogStore{release: release, fail: assert.AnError}
	svc := NewOperationLogService(store)

	svc.Record(asUser(worker), enums.ModuleTask, enums.OperationCreate, "创建任务", nil)
	svc.Wait()
	assert.Empty(t, store.written())
}
