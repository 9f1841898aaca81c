package service

import (
	"context"
	"testing"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIterationStore struct {
	fakeIterations
	nextID  uint64
	deleted []uint64
}

func (s *fakeIterationStore) Create(_ context.Context, m *models.Iteration) error {
	s.nextID++
	m.ID = s.nextID
	cp := *m
	s.fakeIterations[m.ID] = &cp
	return nil
}

func (s *fakeIterationStore) Update(_ context.Context, m *models.Iteration, _ ...string) error {
	cp := *m
	s.fakeIterations[m.ID] = &cp
	return nil
}

func (s *fakeIterationStore) Delete(_ context.Context, id uint64) error {
	s.deleted = append(s.deleted, id)
	delete(s.fakeIterations, id)
	return nil
}

func (s *fakeIterationStore) Page(context.Context, *params.IterationQuery, authz.ProjectScope) ([]models.Iteration, int64, error) {
	return nil, 0, nil
}

// fakeIterationTasks 迭代 id 到任务数
type fakeIterationTasks map[uint64]int64

func (f fakeIterationTasks) CountByIteration(_ context.Context, iterationID uint64) (int64, error) {
	return f[iterationID], nil
}

func newIterationFixture() (*IterationService, *fakeIterationStore, *fakeAudit) {
	store := &fakeIterationStore{nextID: 100, fakeIterations: fakeIterations{
		20: {ID: 20, ProjectID: projectA, Name: "sprint 1", Status: enums.IterationStatusInProgress},
		21: {ID: 21, ProjectID: projectA, Name: "sprint 2", Status: enums.IterationStatusNotStarted},
	}}
	projects := fakeProjects{projectA: {ID: projectA, Name: "alpha"}, projectB: {ID: projectB, Name: "beta"}}
	auth := &fakeAuth{projects: map[uint64][]uint64{worker: {projectA}, outside: {projectB}}}
	audit := &fakeAudit{}
	svc := NewIterationService(store, projects, fakeIterationTasks{20: 3}, auth, audit)
	return svc, store, audit
}

func TestIterationDeleteWithTasksIsRejected(t *testing.T) {
	svc, store, audit := newIterationFixture()

	err := svc.Delete(asUser(worker), 20)

	assert.True(t, errcode.Is(err, errcode.IterationHasTasks))
	assert.Empty(t, store.deleted)
	assert.Contains(t, store.fakeIterations, uint64(20))
	assert.Empty(t, audit.entries)
}

func TestIterationDelete(t *testing.T) {
	svc, store, audit := newIterationFixture()

	err := svc.Delete(asUser(outside), 21)
	assert.True(t, errcode.Is(err, errcode.ProjectAccessDenied))

	require.NoError(t, svc.Delete(asUser(worker), 21))
	assert.Equal(t, []uint64{21}, store.deleted)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, enums.OperationDelete, audit.entries[0].op)

	err = svc.Delete(asUser(worker), 21)
	assert.True(t, errcode.Is(err, errcode.IterationNotFound))
}

func TestIterationCreateChecksNameWithinProject(t *testing.T) {
	svc, _, _ := newIterationFixture()

	_, err := svc.Create(asUser(worker), &params.CreateIterationRequest{
		ProjectID: projectA, IterationFields: params.IterationFields{Name: " sprint 1 "},
	})
	assert.True(t, errcode.Is(err, errcode.IterationNameExists))

	got, err := svc.Create(asUser(worker), &params.CreateIterationRequest{
		ProjectID: projectA, IterationFields: params.IterationFields{Name: "sprint 3"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.ProjectName)
	assert.Equal(t, enums.IterationStatusNotStarted, got.Status)

	_, err = svc.Create(asUser(outside), &params.CreateIterationRequest{
		ProjectID: projectA, IterationFields: params.IterationFields{Name: "sprint 4"},
	})
	assert.True(t, errcode.Is(err, errcode.ProjectAccessDenied))
}
