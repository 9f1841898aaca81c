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

type fakeProjectStore struct {
	rows    map[uint64]*models.Project
	nextID  uint64
	deleted []uint64
}

func (s *fakeProjectStore) Get(_ context.Context, id uint64) (*models.Project, error) {
	if m, ok := s.rows[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeProjectStore) find(match func(*models.Project) bool) *models.Project {
	for _, m := range s.rows {
		if match(m) {
			cp := *m
			return &cp
		}
	}
	return nil
}

func (s *fakeProjectStore) GetByCode(_ context.Context, code string) (*models.Project, error) {
	return s.find(func(m *models.Project) bool { return m.Code == code }), nil
}

func (s *fakeProjectStore) GetByName(_ context.Context, name string) (*models.Project, error) {
	return s.find(func(m *models.Project) bool { return m.Name == name }), nil
}

func (s *fakeProjectStore) Create(_ context.Context, m *models.Project) error {
	s.nextID++
	m.ID = s.nextID
	cp := *m
	s.rows[m.ID] = &cp
	return nil
}

func (s *fakeProjectStore) Update(_ context.Context, m *models.Project, _ ...string) error {
	cp := *m
	s.rows[m.ID] = &cp
	return nil
}

func (s *fakeProjectStore) Delete(_ context.Context, id uint64) error {
	delete(s.rows, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeProjectStore) Page(_ context.Context, _ *params.ProjectQuery, scope authz.ProjectScope) ([]models.Project, int64, error) {
	var out []models.Project
	for id := uint64(1); id <= s.nextID; id++ {
		if m, ok := s.rows[id]; ok && scope.Contains(id) {
			out = append(out, *m)
		}
	}
	return out, int64(len(out)), nil
}

// fakeRoster 可变的成员表
type fakeRoster struct {
	rows []models.ProjectMember
}

func (f *fakeRoster) index(projectID, userID uint64) int {
	for i, m := range f.rows {
		if m.ProjectID == projectID && m.UserID == userID {
			return i
		}
	}
	return -1
}

func (f *fakeRoster) Get(_ context.Context, projectID, userID uint64) (*models.ProjectMember, error) {
	if i := f.index(projectID, userID); i >= 0 {
		cp := f.rows[i]
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRoster) IsMember(_ context.Context, projectID, userID uint64) (bool, error) {
	return f.index(projectID, userID) >= 0, nil
}

func (f *fakeRoster) ListByProject(_ context.Context, projectID uint64) ([]models.ProjectMember, error) {
	var out []models.ProjectMember
	for _, m := range f.rows {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRoster) Add(_ context.Context, members []*models.ProjectMember) error {
	for _, m := range members {
		f.rows = append(f.rows, *m)
	}
	return nil
}

func (f *fakeRoster) UpdateRole(_ context.Context, m *models.ProjectMember) error {
	if i := f.index(m.ProjectID, m.UserID); i >= 0 {
		f.rows[i].Role = m.Role
	}
	return nil
}

func (f *fakeRoster) Remove(_ context.Context, projectID, userID uint64) (int64, error) {
	i := f.index(projectID, userID)
	if i < 0 {
		return 0, nil
	}
	f.rows = append(f.rows[:i], f.rows[i+1:]...)
	return 1, nil
}

func (f *fakeRoster) RemoveProject(_ context.Context, projectID uint64) error {
	kept := f.rows[:0]
	for _, m := range f.rows {
		if m.ProjectID != projectID {
			kept = append(kept, m)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeRoster) role(projectID, userID uint64) enums.ProjectMemberRole {
	if i := f.index(projectID, userID); i >= 0 {
		return f.rows[i].Role
	}
	return 0
}

type fakeUsers map[uint64]*models.User

func (f fakeUsers) Get(_ context.Context, id uint64) (*models.User, error) {
	return f[id], nil
}

func (f fakeUsers) ListByIDs(_ context.Context, ids []uint64) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeCounter map[uint64]int64

func (f fakeCounter) CountByProject(_ context.Context, projectID uint64) (int64, error) {
	return f[projectID], nil
}

type projectFixture struct {
	svc        *ProjectService
	store      *fakeProjectStore
	roster     *fakeRoster
	auth       *fakeAuth
	iterations fakeCounter
	tasks      fakeCounter
	workHours  fakeCounter
}

func newProjectFixture() *projectFixture {
	store := &fakeProjectStore{rows: map[uint64]*models.Project{
		projectA: {ID: projectA, Name: "alpha", Code: "A", ManagerID: manager, Status: enums.ProjectStatusInProgress},
		projectB: {ID: projectB, Name: "beta", Code: "B", ManagerID: outside},
	}, nextID: projectB}
	roster := &fakeRoster{rows: []models.ProjectMember{
		{ProjectID: projectA, UserID: manager, Role: enums.ProjectMemberManager},
		{ProjectID: projectA, UserID: worker, Role: enums.ProjectMemberMember},
		{ProjectID: projectB, UserID: outside, Role: enums.ProjectMemberManager},
	}}
	users := fakeUsers{
		adminID: {ID: adminID, Username: "admin", Status: enums.UserStatusNormal},
		worker:  {ID: worker, Username: "worker", Status: enums.UserStatusNormal},
		manager: {ID: manager, Username: "manager", Status: enums.UserStatusNormal},
		outside: {ID: outside, Username: "outside", Status: enums.UserStatusNormal},
		99:      {ID: 99, Username: "gone", Status: enums.UserStatusDisabled},
	}
	auth := &fakeAuth{
		system: map[uint64]bool{adminID: true},
		projects: map[uint64][]uint64{
			worker:  {projectA},
			manager: {projectA},
			outside: {projectB},
		},
	}
	f := &projectFixture{
		store:      store,
		roster:     roster,
		auth:       auth,
		iterations: fakeCounter{},
		tasks:      fakeCounter{},
		workHours:  fakeCounter{},
	}
	f.svc = NewProjectService(&fakeTx{}, store, roster, users, f.iterations, f.tasks, f.workHours, auth, &fakeAudit{}, fakeNames{})
	return f
}

func TestProjectPageIsScoped(t *testing.T) {
	f := newProjectFixture()

	rows, total, err := f.svc.Page(asUser(worker), &params.ProjectQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, projectA, rows[0].ID)
	assert.Equal(t, "进行中", rows[0].StatusDesc)

	_, total, err = f.svc.Page(asUser(adminID), &params.ProjectQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestProjectGet(t *testing.T) {
	f := newProjectFixture()

	_, err := f.svc.Get(asUser(worker), &params.GetProjectRequest{ID: projectB})
	assert.True(t, errcode.Is(err, errcode.ProjectAccessDenied))

	_, err = f.svc.Get(asUser(worker), &params.GetProjectRequest{ID: 42})
	assert.True(t, errcode.Is(err, errcode.ProjectNotFound))

	_, err = f.svc.Get(asUser(worker), &params.GetProjectRequest{ID: projectA, Flags: 1 << 10})
	assert.True(t, errcode.Is(err, errcode.ParamInvalid))

	got, err := f.svc.Get(asUser(worker), &params.GetProjectRequest{ID: projectA, Flags: int(params.IncludeMembers)})
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
	assert.Equal(t, "manager", got.Members[0].Username)
	assert.Equal(t, "项目经理", got.Members[0].RoleDesc)
}

func TestProjectCreateAddsManagers(t *testing.T) {
	f := newProjectFixture()

	got, err := f.svc.Create(asUser(worker), &params.CreateProjectRequest{
		Code:          "GAMMA",
		ProjectFields: params.ProjectFields{Name: "gamma", ManagerID: manager},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ProjectTypeSchedule, got.ProjectType)
	assert.Equal(t, enums.ProjectStatusNotStarted, got.Status)
	assert.Equal(t, worker, got.CreatorID)
	assert.Equal(t, enums.ProjectMemberManager, f.roster.role(got.ID, worker))
	assert.Equal(t, enums.ProjectMemberManager, f.roster.role(got.ID, manager))

	own, err := f.svc.Create(asUser(worker), &params.CreateProjectRequest{
		Code:          "DELTA",
		ProjectFields: params.ProjectFields{Name: "delta"},
	})
	require.NoError(t, err)
	assert.Equal(t, worker, own.ManagerID)
	members, err := f.roster.ListByProject(context.Background(), own.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestProjectCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     *params.CreateProjectRequest
		wantErr *errcode.Error
	}{
		{"duplicate code", &params.CreateProjectRequest{Code: "A", ProjectFields: params.ProjectFields{Name: "x"}}, errcode.ProjectCodeExists},
		{"duplicate name", &params.CreateProjectRequest{Code: "X", ProjectFields: params.ProjectFields{Name: "alpha"}}, errcode.ProjectNameExists},
		{"bad status", &params.CreateProjectRequest{Code: "X", ProjectFields: params.ProjectFields{Name: "x", Status: 9}}, errcode.ProjectStatusInvalid},
		{"disabled manager", &params.CreateProjectRequest{Code: "X", ProjectFields: params.ProjectFields{Name: "x", ManagerID: 99}}, errcode.ProjectManagerInvalid},
		{"unknown manager", &params.CreateProjectRequest{Code: "X", ProjectFields: params.ProjectFields{Name: "x", ManagerID: 404}}, errcode.ProjectManagerInvalid},
		{"end before start", &params.CreateProjectRequest{Code: "X", ProjectFields: params.ProjectFields{
			Name:      "x",
			StartDate: types.NewDate(2024, time.May, 10),
			EndDate:   types.NewDate(2024, time.May, 1),
		}}, errcode.ProjectDateInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProjectFixture()
			_, err := f.svc.Create(asUser(worker), tt.req)
			assert.True(t, errcode.Is(err, tt.wantErr), "got %v", err)
			assert.Len(t, f.store.rows, 2)
		})
	}
}

func TestProjectUpdateRequiresManager(t *testing.T) {
	f := newProjectFixture()
	req := &params.UpdateProjectRequest{ID: projectA, ProjectFields: params.ProjectFields{Name: "alpha2"}}

	_, err := f.svc.Update(asUser(worker), req)
	assert.True(t, errcode.Is(err, errcode.Forbidden))

	got, err := f.svc.Update(asUser(manager), req)
	require.NoError(t, err)
	assert.Equal(t, "alpha2", got.Name)
	assert.Equal(t, manager, got.ManagerID)
}

func TestProjectUpdatePromotesNewManager(t *testing.T) {
	f := newProjectFixture()

	_, err := f.svc.Update(asUser(adminID), &params.UpdateProjectRequest{
		ID:            projectA,
		ProjectFields: params.ProjectFields{Name: "alpha", ManagerID: worker},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ProjectMemberManager, f.roster.role(projectA, worker))

	_, err = f.svc.Update(asUser(adminID), &params.UpdateProjectRequest{
		ID:            projectA,
		ProjectFields: params.ProjectFields{Name: "alpha", ManagerID: outside},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ProjectMemberManager, f.roster.role(projectA, outside))
}

func TestProjectDeleteChecksReferences(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*projectFixture)
		wantErr *errcode.Error
	}{
		{"iterations", func(f *projectFixture) { f.iterations[projectA] = 1 }, errcode.ProjectHasIterations},
		{"tasks", func(f *projectFixture) { f.tasks[projectA] = 3 }, errcode.ProjectHasTasks},
		{"work hours", func(f *projectFixture) { f.workHours[projectA] = 2 }, errcode.ProjectHasWorkHours},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProjectFixture()
			tt.prepare(f)
			err := f.svc.Delete(asUser(adminID), projectA)
			assert.True(t, errcode.Is(err, tt.wantErr), "got %v", err)
			assert.Empty(t, f.store.deleted)
		})
	}

	f := newProjectFixture()
	require.NoError(t, f.svc.Delete(asUser(manager), projectA))
	assert.Equal(t, []uint64{projectA}, f.store.deleted)
	members, err := f.roster.ListByProject(context.Background(), projectA)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestProjectAddMembers(t *testing.T) {
	f := newProjectFixture()

	_, err := f.svc.AddMembers(asUser(outside), &params.AddMembersRequest{ProjectID: projectA, UserIDs: []uint64{outside}})
	assert.True(t, errcode.Is(err, errcode.ProjectAccessDenied))

	_, err = f.svc.AddMembers(asUser(worker), &params.AddMembersRequest{ProjectID: projectA, UserIDs: []uint64{outside, 404}})
	assert.True(t, errcode.Is(err, errcode.UserNotFound))

	_, err = f.svc.AddMembers(asUser(worker), &params.AddMembersRequest{ProjectID: projectA, UserIDs: []uint64{outside}, Role: 7})
	assert.True(t, errcode.Is(err, errcode.ProjectMemberRoleError))

	got, err := f.svc.AddMembers(asUser(worker), &params.AddMembersRequest{ProjectID: projectA, UserIDs: []uint64{outside, worker, outside}})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, enums.ProjectMemberMember, f.roster.role(projectA, outside))
	assert.Equal(t, enums.ProjectMemberMember, f.roster.role(projectA, worker))
}

func TestProjectUpdateAndRemoveMember(t *testing.T) {
	f := newProjectFixture()

	got, err := f.svc.UpdateMember(asUser(manager), &params.UpdateMemberRequest{
		ProjectID: projectA, UserID: worker, Role: int(enums.ProjectMemberManager),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ProjectMemberManager, got.Role)

	_, err = f.svc.UpdateMember(asUser(manager), &params.UpdateMemberRequest{ProjectID: projectA, UserID: outside, Role: 2})
	assert.True(t, errcode.Is(err, errcode.ProjectMemberNotFound))

	_, err = f.svc.UpdateMember(asUser(manager), &params.UpdateMemberRequest{ProjectID: projectA, UserID: worker})
	assert.True(t, errcode.Is(err, errcode.ProjectMemberRoleError))

	require.NoError(t, f.svc.RemoveMember(asUser(manager), &params.MemberPathRequest{ProjectID: projectA, UserID: worker}))
	err = f.svc.RemoveMember(asUser(manager), &params.MemberPathRequest{ProjectID: projectA, UserID: worker})
	assert.True(t, errcode.Is(err, errcode.ProjectMemberNotFound))
}
