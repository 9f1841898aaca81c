package service

import (
	"context"
	"testing"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMenuStore struct {
	rows     map[uint64]*models.Menu
	perms    map[uint64][]uint64
	nextID   uint64
	replaced int
	deleted  []uint64
}

func newFakeMenuStore(rows ...models.Menu) *fakeMenuStore {
	s := &fakeMenuStore{rows: map[uint64]*models.Menu{}, perms: map[uint64][]uint64{}}
	for i := range rows {
		m := rows[i]
		s.rows[m.ID] = &m
		if m.ID > s.nextID {
			s.nextID = m.ID
		}
	}
	return s
}

func (s *fakeMenuStore) Get(_ context.Context, id uint64) (*models.Menu, error) {
	if m, ok := s.rows[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeMenuStore) Create(_ context.Context, m *models.Menu) error {
	s.nextID++
	m.ID = s.nextID
	cp := *m
	s.rows[m.ID] = &cp
	return nil
}

func (s *fakeMenuStore) Update(_ context.Context, m *models.Menu, _ ...string) error {
	cp := *m
	s.rows[m.ID] = &cp
	return nil
}

func (s *fakeMenuStore) Page(ctx context.Context, _ *params.MenuQuery) ([]models.Menu, int64, error) {
	rows, _ := s.ListAll(ctx)
	return rows, int64(len(rows)), nil
}

func (s *fakeMenuStore) ListAll(context.Context) ([]models.Menu, error) {
	var out []models.Menu
	for id := uint64(1); id <= s.nextID; id++ {
		if m, ok := s.rows[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *fakeMenuStore) CountChildren(_ context.Context, id uint64) (int64, error) {
	var n int64
	for _, m := range s.rows {
		if m.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (s *fakeMenuStore) PermissionIDsOfMenu(_ context.Context, menuID uint64) ([]uint64, error) {
	return s.perms[menuID], nil
}

func (s *fakeMenuStore) ListMenuPermissions(context.Context) ([]models.MenuPermission, error) {
	var out []models.MenuPermission
	for menuID, ids := range s.perms {
		for _, id := range ids {
			out = append(out, models.MenuPermission{MenuID: menuID, PermissionID: id})
		}
	}
	return out, nil
}

func (s *fakeMenuStore) ReplacePermissions(_ context.Context, menuID uint64, ids []uint64) error {
	s.replaced++
	s.perms[menuID] = ids
	return nil
}

func (s *fakeMenuStore) DeleteWithPermissions(_ context.Context, menuID uint64) error {
	delete(s.rows, menuID)
	delete(s.perms, menuID)
	s.deleted = append(s.deleted, menuID)
	return nil
}

type fakeCatalog []models.Permission

func (f fakeCatalog) ListByIDs(_ context.Context, ids []uint64) ([]models.Permission, error) {
	var out []models.Permission
	for _, p := range f {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f fakeCatalog) ListAll(context.Context) ([]models.Permission, error) { return f, nil }

// fakeResolver userID -> 权限编码
type fakeResolver map[uint64][]string

func (f fakeResolver) RoleCodes(context.Context, uint64) ([]string, error) { return nil, nil }

func (f fakeResolver) PermissionCodes(_ context.Context, userID uint64) ([]string, error) {
	return f[userID], nil
}

// 菜单结构：
//
//	1 系统管理
//	├── 2 用户管理 (USER_MANAGE)
//	└── 3 日志 (停用)
//	    └── 5 日志详情
//	4 工作台
func newMenuFixture() (*MenuService, *fakeMenuStore) {
	store := newFakeMenuStore(
		models.Menu{ID: 1, Name: "系统管理", Sort: 2, Status: enums.MenuStatusEnabled},
		models.Menu{ID: 2, ParentID: 1, Name: "用户管理", Status: enums.MenuStatusEnabled},
		models.Menu{ID: 3, ParentID: 1, Name: "日志", Status: enums.MenuStatusDisabled},
		models.Menu{ID: 4, Name: "工作台", Sort: 1, Status: enums.MenuStatusEnabled},
		models.Menu{ID: 5, ParentID: 3, Name: "日志详情", Status: enums.MenuStatusEnabled},
	)
	store.perms[2] = []uint64{100}
	catalog := fakeCatalog{{ID: 100, Code: models.PermUserManage}, {ID: 101, Code: "TASK_EDIT"}}
	auth := &fakeAuth{system: map[uint64]bool{adminID: true}, perms: map[uint64][]string{manager: {models.PermUserManage}}}
	codes := fakeResolver{manager: {models.PermUserManage}}
	return NewMenuService(&fakeTx{}, store, catalog, auth, codes, &fakeAudit{}), store
}

func menuNames(nodes []*vo.Menu) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Name)
		out = append(out, menuNames(n.Children)...)
	}
	return out
}

func TestMenuTreeSortsSiblings(t *testing.T) {
	svc, _ := newMenuFixture()

	forest, err := svc.Tree(asUser(worker))
	require.NoError(t, err)
	require.Len(t, forest, 2)
	assert.Equal(t, []string{"工作台", "系统管理", "用户管理", "日志", "日志详情"}, menuNames(forest))
}

func TestMenuUserTree(t *testing.T) {
	svc, _ := newMenuFixture()

	got, err := svc.UserTree(asUser(worker))
	require.NoError(t, err)
	assert.Equal(t, []string{"工作台", "系统管理"}, menuNames(got))

	got, err = svc.UserTree(asUser(manager))
	require.NoError(t, err)
	assert.Equal(t, []string{"工作台", "系统管理", "用户管理"}, menuNames(got))

	got, err = svc.UserTree(asUser(adminID))
	require.NoError(t, err)
	assert.Equal(t, []string{"工作台", "系统管理", "用户管理"}, menuNames(got))
}

func TestMenuCreate(t *testing.T) {
	svc, store := newMenuFixture()

	_, err := svc.Create(asUser(worker), &params.CreateMenuRequest{MenuFields: params.MenuFields{Name: "x"}})
	assert.True(t, errcode.Is(err, errcode.Forbidden))

	_, err = svc.Create(asUser(adminID), &params.CreateMenuRequest{MenuFields: params.MenuFields{Name: "x", ParentID: 42}})
	assert.True(t, errcode.Is(err, errcode.ParentMenuNotFound))

	_, err = svc.Create(asUser(adminID), &params.CreateMenuRequest{MenuFields: params.MenuFields{Name: "x"}, PermissionIDs: []uint64{999}})
	assert.True(t, errcode.Is(err, errcode.PermissionNotFound))

	got, err := svc.Create(asUser(manager), &params.CreateMenuRequest{
		MenuFields:    params.MenuFields{Name: "角色管理", ParentID: 1},
		PermissionIDs: []uint64{100, 100, 101},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.ParentID)
	assert.Equal(t, enums.MenuTypeMenu, got.MenuType)
	assert.True(t, got.Visible)
	assert.ElementsMatch(t, []uint64{100, 101}, got.PermissionIDs)
	assert.Equal(t, 1, store.replaced)
}

func TestMenuUpdateRejectsCycles(t *testing.T) {
	svc, _ := newMenuFixture()

	for _, parent := range []uint64{1, 3, 5} {
		_, err := svc.Update(asUser(adminID), &params.UpdateMenuRequest{ID: 1, MenuFields: params.MenuFields{Name: "系统管理", ParentID: parent}})
		assert.True(t, errcode.Is(err, errcode.ParentMenuCannotBeSelf), "parent %d", parent)
	}

	_, err := svc.Update(asUser(adminID), &params.UpdateMenuRequest{ID: 2, MenuFields: params.MenuFields{Name: "用户管理", ParentID: 42}})
	assert.True(t, errcode.Is(err, errcode.ParentMenuNotFound))

	got, err := svc.Update(asUser(adminID), &params.UpdateMenuRequest{ID: 2, MenuFields: params.MenuFields{Name: "用户", ParentID: 4}})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), got.ParentID)
	assert.Equal(t, []uint64{100}, got.PermissionIDs)
}

func TestMenuDelete(t *testing.T) {
	svc, store := newMenuFixture()

	err := svc.Delete(asUser(adminID), 1)
	assert.True(t, errcode.Is(err, errcode.MenuHasChildren))

	err = svc.Delete(asUser(adminID), 42)
	assert.True(t, errcode.Is(err, errcode.MenuNotFound))

	require.NoError(t, svc.Delete(asUser(adminID), 2))
	assert.Equal(t, []uint64{2}, store.deleted)
	assert.Empty(t, store.perms[2])
}

func TestMenuAssignPermissionsReplaces(t *testing.T) {
	svc, store := newMenuFixture()

	got, err := svc.AssignPermissions(asUser(adminID), &params.AssignMenuPermissionsRequest{MenuID: 2, PermissionIDs: []uint64{101}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{101}, got.PermissionIDs)

	_, err = svc.AssignPermissions(asUser(adminID), &params.AssignMenuPermissionsRequest{MenuID: 2})
	require.NoError(t, err)
	assert.Empty(t, store.perms[2])
}
