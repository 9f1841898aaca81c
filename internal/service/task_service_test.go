package service

import (
	"context"
	"testing"
	"time"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskStore struct {
	rows      map[uint64]*models.Task
	nextID    uint64
	deleted   []uint64
	updates   int
	lastScope authz.ProjectScope
}

func newFakeTaskStore(rows ...models.Task) *fakeTaskStore {
	s := &fakeTaskStore{rows: map[uint64]*models.Task{}, nextID: 100}
	for i := range rows {
		s.rows[rows[i].ID] = &rows[i]
	}
	return s
}

func (s *fakeTaskStore) Get(_ context.Context, id uint64) (*models.Task, error) {
	if m, ok := s.rows[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeTaskStore) Create(_ context.Context, m *models.Task) error {
	s.nextID++
	m.ID = s.nextID
	cp := *m
	s.rows[m.ID] = &cp
	return nil
}

func (s *fakeTaskStore) Update(_ context.Context, m *models.Task, _ ...string) error {
	s.updates++
	cp := *m
	s.rows[m.ID] = &cp
	return nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id uint64) error {
	s.deleted = append(s.deleted, id)
	delete(s.rows, id)
	return nil
}

// Page 模拟 dao：先按 scope 过滤，再按负责人过滤
func (s *fakeTaskStore) Page(_ context.Context, q *params.TaskQuery, scope authz.ProjectScope) ([]models.Task, int64, error) {
	s.lastScope = scope
	var out []models.Task
	for _, m := range s.rows {
		if !scope.Contains(m.ProjectID) {
			continue
		}
		if q.AssigneeID != 0 && m.AssigneeID != q.AssigneeID {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (s *fakeTaskStore) ListByProject(_ context.Context, projectID uint64) ([]models.Task, error) {
	var out []models.Task
	for _, m := range s.rows {
		if m.ProjectID == projectID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) ListChildren(_ context.Context, parentID uint64) ([]models.Task, error) {
	var out []models.Task
	for _, m := range s.rows {
		if m.ParentID == parentID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) CountChildren(ctx context.Context, parentID uint64) (int64, error) {
	rows, _ := s.ListChildren(ctx, parentID)
	return int64(len(rows)), nil
}

type fakeLinkCleaner struct{ tasks []uint64 }

func (f *fakeLinkCleaner) DeleteByTask(_ context.Context, taskID uint64) error {
	f.tasks = append(f.tasks, taskID)
	return nil
}

type fakeIterations map[uint64]*models.Iteration

func (f fakeIterations) Get(_ context.Context, id uint64) (*models.Iteration, error) {
	return f[id], nil
}

type taskFixture struct {
	svc   *TaskService
	store *fakeTaskStore
	links *fakeLinkCleaner
	now   time.Time
}

// 项目 A：1 -> 2 -> 3 的父子链，4 为顶层；项目 B：5
func newTaskFixture() *taskFixture {
	store := newFakeTaskStore(
		models.Task{ID: 1, ProjectID: projectA, Title: "epic", AssigneeID: worker},
		models.Task{ID: 2, ProjectID: projectA, ParentID: 1, Title: "story", AssigneeID: worker},
		models.Task{ID: 3, ProjectID: projectA, ParentID: 2, Title: "sub", AssigneeID: outside},
		models.Task{ID: 4, ProjectID: projectA, Title: "other",
			StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local),
			DueDate:   time.Date(2024, 5, 10, 0, 0, 0, 0, time.Local)},
		models.Task{ID: 5, ProjectID: projectB, Title: "foreign", AssigneeID: outside},
	)
	links := &fakeLinkCleaner{}
	members := fakeMembers{
		projectA: {worker: enums.ProjectMemberMember, manager: enums.ProjectMemberManager},
		projectB: {outside: enums.ProjectMemberMember},
	}
	auth := &fakeAuth{
		system: map[uint64]bool{adminID: true},
		projects: map[uint64][]uint64{
			worker:  {projectA},
			manager: {projectA},
			outside: {projectB},
		},
	}
	projects := fakeProjects{projectA: {ID: projectA}, projectB: {ID: projectB}}
	iterations := fakeIterations{20: {ID: 20, ProjectID: projectA}, 21: {ID: 21, ProjectID: projectB}}
	svc := NewTaskService(&fakeTx{}, store, links, projects, iterations, members, auth, &fakeAudit{}, fakeNames{})
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }
	return &taskFixture{svc: svc, store: store, links: links, now: now}
}

func TestTaskReparentAcrossProjectsRejected(t *testing.T) {
	f := newTaskFixture()
	_, err := f.svc.ChangeParent(asUser(adminID), &params.UpdateTaskParentRequest{ID: 4, ParentID: 5})
	assert.True(t, errcode.Is(err, errcode.TaskParentInvalid))
	assert.Zero(t, f.store.updates)
}

func TestTaskReparentCycleRejected(t *testing.T) {
	f := newTaskFixture()

	_, err := f.svc.ChangeParent(asUser(worker), &params.UpdateTaskParentRequest{ID: 1, ParentID: 3})
	assert.True(t, errcode.Is(err, errcode.TaskParentCycle), "grandchild as parent")

	_, err = f.svc.ChangeParent(asUser(worker), &params.UpdateTaskParentRequest{ID: 2, ParentID: 2})
	assert.True(t, errcode.Is(err, errcode.TaskParentInvalid), "self as parent")
	assert.Zero(t, f.store.updates)
}

func TestTaskReparentAndDetach(t *testing.T) {
	f := newTaskFixture()

	_, err := f.svc.ChangeParent(asUser(worker), &params.UpdateTaskParentRequest{ID: 3, ParentID: 4})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), f.store.rows[3].ParentID)

	_, err = f.svc.ChangeParent(asUser(worker), &params.UpdateTaskParentRequest{ID: 3, ParentID: 0})
	require.NoError(t, err)
	assert.Zero(t, f.store.rows[3].ParentID)
}

func TestTaskReparentChecksParentDates(t *testing.T) {
	f := newTaskFixture()
	f.store.rows[2].DueDate = time.Date(2024, 5, 20, 0, 0, 0, 0, time.Local)

	_, err := f.svc.ChangeParent(asUser(worker), &params.UpdateTaskParentRequest{ID: 2, ParentID: 4})
	assert.True(t, errcode.Is(err, errcode.TaskDateOutOfParent))
}

func TestTaskPageByAssigneeStaysScoped(t *testing.T) {
	f := newTaskFixture()

	rows, total, err := f.svc.Page(asUser(worker), &params.TaskQuery{AssigneeID: outside})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, uint64(3), rows[0].ID, "task 5 of project B must not leak")
	assert.Equal(t, []uint64{projectA}, f.store.lastScope.IDs())

	_, _, err = f.svc.Page(asUser(worker), &params.TaskQuery{ProjectID: projectB})
	require.NoError(t, err)
	assert.True(t, f.store.lastScope.IsEmpty())

	_, total, err = f.svc.Page(asUser(adminID), &params.TaskQuery{AssigneeID: outside})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.True(t, f.store.lastScope.IsUnrestricted())
}

func TestTaskGetOutsideScope(t *testing.T) {
	f := newTaskFixture()
	_, err := f.svc.Get(asUser(worker), 5)
	assert.True(t, errcode.Is(err, errcode.ProjectAccessDenied))

	_, err = f.svc.Get(asUser(worker), 404)
	assert.True(t, errcode.Is(err, errcode.TaskNotFound))
}

func TestTaskStatusMaintainsActualDates(t *testing.T) {
	f := newTaskFixture()
	ctx := asUser(worker)
	set := func(s enums.TaskStatus) *models.Task {
		_, err := f.svc.UpdateStatus(ctx, &params.UpdateTaskStatusRequest{ID: 4, Status: int(s)})
		require.NoError(t, err)
		return f.store.rows[4]
	}

	m := set(enums.TaskStatusInProgress)
	assert.Equal(t, f.now, m.ActualStart)
	assert.True(t, m.ActualEnd.IsZero())

	m = set(enums.TaskStatusDone)
	assert.Equal(t, f.now, m.ActualEnd)

	m = set(enums.TaskStatusInProgress)
	assert.True(t, m.ActualEnd.IsZero(), "leaving done clears actual end")
	assert.False(t, m.ActualStart.IsZero())

	m = set(enums.TaskStatusTodo)
	assert.True(t, m.ActualStart.IsZero())

	_, err := f.svc.UpdateStatus(ctx, &params.UpdateTaskStatusRequest{ID: 4, Status: 7})
	assert.True(t, errcode.Is(err, errcode.TaskStatusInvalid))
}

func TestTaskCreateValidation(t *testing.T) {
	f := newTaskFixture()
	ctx := asUser(worker)
	base := func() *params.CreateTaskRequest {
		return &params.CreateTaskRequest{ProjectID: projectA, TaskFields: params.TaskFields{Title: "new"}}
	}

	req := base()
	req.Title = "  "
	_, err := f.svc.Create(ctx, req)
	assert.True(t, errcode.Is(err, errcode.TaskTitleEmpty))

	req = base()
	req.AssigneeID = outside
	_, err = f.svc.Create(ctx, req)
	assert.True(t, errcode.Is(err, errcode.TaskAssigneeInvalid))

	req = base()
	req.IterationID = 21
	_, err = f.svc.Create(ctx, req)
	assert.True(t, errcode.Is(err, errcode.TaskIterationInvalid))

	req = base()
	req.StartDate = types.NewDate(2024, 5, 9)
	req.DueDate = types.NewDate(2024, 5, 1)
	_, err = f.svc.Create(ctx, req)
	assert.True(t, errcode.Is(err, errcode.TaskDateInvalid))

	req = base()
	req.ParentID = 4
	req.StartDate = types.NewDate(2024, 4, 30)
	_, err = f.svc.Create(ctx, req)
	assert.True(t, errcode.Is(err, errcode.TaskDateOutOfParent))

	req = base()
	req.ProjectID = projectB
	_, err = f.svc.Create(ctx, req)
	assert.True(t, errcode.Is(err, errcode.ProjectAccessDenied))

	req = base()
	req.AssigneeID = manager
	req.IterationID = 20
	req.Status = int(enums.TaskStatusDone)
	got, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, enums.TaskPriorityMedium, got.Priority)
	assert.Equal(t, enums.TaskTypeTask, got.TaskType)
	require.NotNil(t, got.ActualEnd)
	assert.Equal(t, worker, got.CreatorID)
}

func TestTaskDelete(t *testing.T) {
	f := newTaskFixture()

	err := f.svc.Delete(asUser(worker), 2)
	assert.True(t, errcode.Is(err, errcode.TaskHasChildren))
	assert.Empty(t, f.store.deleted)

	require.NoError(t, f.svc.Delete(asUser(worker), 3))
	assert.Equal(t, []uint64{3}, f.store.deleted)
	assert.Equal(t, []uint64{3}, f.links.tasks)
}

func TestTaskTree(t *testing.T) {
	f := newTaskFixture()
	forest, err := f.svc.Tree(asUser(worker), projectA)
	require.NoError(t, err)
	require.Len(t, forest, 2)
	assert.Equal(t, uint64(1), forest[0].ID)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, uint64(3), forest[0].Children[0].Children[0].ID)
}
