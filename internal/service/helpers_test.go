package service

import (
	"context"
	"sync"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/ayxworxfr/gsms/pkg/repository"
)

func asUser(userID uint64) context.Context {
	return mycontext.WithIdentity(context.Background(), mycontext.Identity{UserID: userID, Username: "tester"})
}

type fakeTx struct{ calls int }

func (f *fakeTx) Transaction(ctx context.Context, fn repository.TransactionFunc) (any, error) {
	f.calls++
	return fn(ctx)
}

// fakeAuth system 中的用户为系统级，其余按 projects 成员关系受限；
// taskProjects、workHourProjects 中有记录的用户单独覆盖对应范围
type fakeAuth struct {
	system           map[uint64]bool
	projects         map[uint64][]uint64
	perms            map[uint64][]string
	taskProjects     map[uint64][]uint64
	workHourProjects map[uint64][]uint64
}

func (f *fakeAuth) HasPermission(_ context.Context, userID uint64, code string) bool {
	for _, p := range f.perms[userID] {
		if p == code {
			return true
		}
	}
	return false
}

func (f *fakeAuth) IsSystemLevel(_ context.Context, userID uint64) (bool, error) {
	return f.system[userID], nil
}

func (f *fakeAuth) AccessibleProjects(_ context.Context, userID uint64) (authz.ProjectScope, error) {
	if f.system[userID] {
		return authz.Unrestricted(), nil
	}
	return authz.Restricted(f.projects[userID]...), nil
}

func (f *fakeAuth) TaskScope(ctx context.Context, userID uint64) (authz.ProjectScope, error) {
	if ids, ok := f.taskProjects[userID]; ok {
		return authz.Restricted(ids...), nil
	}
	return f.AccessibleProjects(ctx, userID)
}

func (f *fakeAuth) WorkHourScope(ctx context.Context, userID uint64) (authz.ProjectScope, error) {
	if ids, ok := f.workHourProjects[userID]; ok {
		return authz.Restricted(ids...), nil
	}
	return f.AccessibleProjects(ctx, userID)
}

type auditEntry struct {
	module enums.OperationModule
	op     enums.OperationType
	err    error
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (f *fakeAudit) Record(_ context.Context, module enums.OperationModule, op enums.OperationType, _ string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, auditEntry{module: module, op: op, err: err})
}

type fakeNames struct{}

func (fakeNames) UserName(context.Context, uint64) string       { return "" }
func (fakeNames) DepartmentName(context.Context, uint64) string { return "" }

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) Invalidate() { f.calls++ }
