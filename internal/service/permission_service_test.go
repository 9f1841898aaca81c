package service

import (
	"context"
	"testing"

	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePermissionStore struct {
	rows    map[uint64]*models.Permission
	nextID  uint64
	deleted []uint64
}

func newFakePermissionStore(rows ...models.Permission) *fakePermissionStore {
	s := &fakePermissionStore{rows: map[uint64]*models.Permission{}, nextID: 100}
	for i := range rows {
		s.rows[rows[i].ID] = &rows[i]
	}
	return s
}

func (s *fakePermissionStore) find(match func(*models.Permission) bool) *models.Permission {
	for _, m := range s.rows {
		if match(m) {
			cp := *m
			return &cp
		}
	}
	return nil
}

func (s *fakePermissionStore) Get(_ context.Context, id uint64) (*models.Permission, error) {
	return s.find(func(m *models.Permission) bool { return m.ID == id }), nil
}

func (s *fakePermissionStore) GetByCode(_ context.Context, code string) (*models.Permission, error) {
	return s.find(func(m *models.Permission) bool { return m.Code == code }), nil
}

func (s *fakePermissionStore) GetByName(_ context.Context, name string) (*models.Permission, error) {
	return s.find(func(m *models.Permission) bool { return m.Name == name }), nil
}

func (s *fakePermissionStore) ListByIDs(_ context.Context, ids []uint64) ([]models.Permission, error) {
	var out []models.Permission
	for _, id := range ids {
		if m, ok := s.rows[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *fakePermissionStore) Create(_ context.Context, m *models.Permission) error {
	s.nextID++
	m.ID = s.nextID
	cp := *m
	s.rows[m.ID] = &cp
	return nil
}

func (s *fakePermissionStore) Update(_ context.Context, m *models.Permission, _ ...string) error {
	cp := *m
	s.rows[m.ID] = &cp
	return nil
}

func (s *fakePermissionStore) Delete(_ context.Context, id uint64) error {
	s.deleted = append(s.deleted, id)
	delete(s.rows, id)
	return nil
}

func (s *fakePermissionStore) Page(context.Context, *params.PermissionQuery) ([]models.Permission, int64, error) {
	return nil, 0, nil
}

func (s *fakePermissionStore) ListAll(context.Context) ([]models.Permission, error) {
	out := make([]models.Permission, 0, len(s.rows))
	for _, m := range s.rows {
		out = append(out, *m)
	}
	return out, nil
}

type permissionFixture struct {
	svc   *PermissionService
	store *fakePermissionStore
	cache *fakePermissionCache
}

func newPermissionFixture() *permissionFixture {
	store := newFakePermissionStore(
		models.Permission{ID: 10, Code: "REPORT_VIEW", Name: "查看报表"},
		models.Permission{ID: 11, Code: "REPORT_EXPORT", Name: "导出报表"},
		models.Permission{ID: 12, Code: "REPORT_SHARE", Name: "分享报表"},
	)
	roles := newFakeRoleStore()
	roles.perms[3] = []uint64{10}
	roles.perms[5] = []uint64{10, 11}
	auth := &fakeAuth{
		system: map[uint64]bool{adminID: true},
		perms:  map[uint64][]string{manager: {models.PermUserManage}},
	}
	cache := &fakePermissionCache{}
	svc := NewPermissionService(store, roles, auth, cache, &fakeAudit{})
	return &permissionFixture{svc: svc, store: store, cache: cache}
}

func TestPermissionDeleteInUse(t *testing.T) {
	f := newPermissionFixture()

	err := f.svc.Delete(asUser(adminID), 10)

	require.True(t, errcode.Is(err, errcode.PermissionInUse))
	assert.Contains(t, err.Error(), "[3 5]")
	assert.Empty(t, f.store.deleted)
	assert.Zero(t, f.cache.all)
}

func TestPermissionChangesInvalidateAll(t *testing.T) {
	f := newPermissionFixture()

	require.NoError(t, f.svc.Delete(asUser(manager), 12))
	assert.Equal(t, []uint64{12}, f.store.deleted)
	assert.Equal(t, 1, f.cache.all)

	got, err := f.svc.Update(asUser(adminID), &params.UpdatePermissionRequest{
		ID: 11, Code: "REPORT_DOWNLOAD", PermissionFields: params.PermissionFields{Name: "下载报表"},
	})
	require.NoError(t, err)
	assert.Equal(t, "REPORT_DOWNLOAD", got.Code)
	assert.Equal(t, 2, f.cache.all)

	_, err = f.svc.Update(asUser(adminID), &params.UpdatePermissionRequest{
		ID: 11, Code: "REPORT_VIEW", PermissionFields: params.PermissionFields{Name: "下载报表"},
	})
	assert.True(t, errcode.Is(err, errcode.PermissionCodeExists))
	assert.Equal(t, 2, f.cache.all)

	err = f.svc.Delete(asUser(worker), 11)
	assert.True(t, errcode.Is(err, errcode.Forbidden))
}

func TestPermissionDeleteBatchCollectsFailures(t *testing.T) {
	f := newPermissionFixture()

	err := f.svc.DeleteBatch(asUser(adminID), []uint64{10, 12, 404})

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.True(t, errcode.Is(merr.Errors[0], errcode.PermissionInUse))
	assert.True(t, errcode.Is(merr.Errors[1], errcode.PermissionNotFound))
	assert.Equal(t, []uint64{12}, f.store.deleted)
}
