package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/ayxworxfr/gsms/pkg/tree"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type MenuStore interface {
	Get(ctx context.Context, id uint64) (*models.Menu, error)
	Create(ctx context.Context, m *models.Menu) error
	Update(ctx context.Context, m *models.Menu, cols ...string) error
	Page(ctx context.Context, q *params.MenuQuery) ([]models.Menu, int64, error)
	ListAll(ctx context.Context) ([]models.Menu, error)
	CountChildren(ctx context.Context, id uint64) (int64, error)
	PermissionIDsOfMenu(ctx context.Context, menuID uint64) ([]uint64, error)
	ListMenuPermissions(ctx context.Context) ([]models.MenuPermission, error)
	ReplacePermissions(ctx context.Context, menuID uint64, permissionIDs []uint64) error
	DeleteWithPermissions(ctx context.Context, menuID uint64) error
}

// PermissionCatalog 权限编码与 id 的对照
type PermissionCatalog interface {
	PermissionReader
	ListAll(ctx context.Context) ([]models.Permission, error)
}

var menuAccessor = tree.Accessor[uint64, models.Menu]{
	ID:       func(m models.Menu) uint64 { return m.ID },
	ParentID: func(m models.Menu) uint64 { return m.ParentID },
	Sort:     func(m models.Menu) int { return m.Sort },
}

var menuUpdateCols = []string{"parent_id", "name", "path", "component", "icon", "menu_type", "sort", "visible", "status"}

type MenuService struct {
	tx          Transactor
	store       MenuStore
	permissions PermissionCatalog
	auth        Authorizer
	codes       RoleResolver
	audit       Auditor
}

func NewMenuService(tx Transactor, store MenuStore, permissions PermissionCatalog, auth Authorizer, codes RoleResolver, audit Auditor) *MenuService {
	return &MenuService{tx: tx, store: store, permissions: permissions, auth: auth, codes: codes, audit: audit}
}

// Tree 全部菜单
func (s *MenuService) Tree(ctx context.Context) ([]*vo.Menu, error) {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list menus")
	}
	return menuForest(rows)
}

// UserTree 当前用户可见的启用菜单。
// 未绑定权限的菜单对所有人可见；可见菜单的祖先一并返回。
func (s *MenuService) UserTree(ctx context.Context) ([]*vo.Menu, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list menus")
	}
	enabled := enabledMenus(rows)

	system, err := s.auth.IsSystemLevel(ctx, user.UserID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve role level")
	}
	if system {
		return menuForest(enabled)
	}

	granted, err := s.grantedPermissionIDs(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	links, err := s.store.ListMenuPermissions(ctx)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list menu permissions")
	}
	required := lo.GroupBy(links, func(l models.MenuPermission) uint64 { return l.MenuID })

	byID := lo.KeyBy(enabled, func(m models.Menu) uint64 { return m.ID })
	keep := map[uint64]bool{}
	for _, m := range enabled {
		need := required[m.ID]
		if len(need) > 0 && !lo.ContainsBy(need, func(l models.MenuPermission) bool { return granted[l.PermissionID] }) {
			continue
		}
		// 沿祖先链向上补齐，遇到已保留的节点即停止
		for cur, ok := m, true; ok && !keep[cur.ID]; cur, ok = byID[cur.ParentID] {
			keep[cur.ID] = true
		}
	}
	return menuForest(lo.Filter(enabled, func(m models.Menu, _ int) bool { return keep[m.ID] }))
}

// enabledMenus 自身及所有祖先均为启用状态的菜单
func enabledMenus(rows []models.Menu) []models.Menu {
	byID := lo.KeyBy(rows, func(m models.Menu) uint64 { return m.ID })
	return lo.Filter(rows, func(m models.Menu, _ int) bool {
		seen := map[uint64]bool{}
		for cur, ok := m, true; ok && !seen[cur.ID]; cur, ok = byID[cur.ParentID] {
			if cur.Status != enums.MenuStatusEnabled {
				return false
			}
			seen[cur.ID] = true
		}
		return true
	})
}

func (s *MenuService) grantedPermissionIDs(ctx context.Context, userID uint64) (map[uint64]bool, error) {
	codes, err := s.codes.PermissionCodes(ctx, userID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve permission codes")
	}
	all, err := s.permissions.ListAll(ctx)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list permissions")
	}
	held := lo.SliceToMap(codes, func(c string) (string, bool) { return c, true })
	out := map[uint64]bool{}
	for _, p := range all {
		if held[p.Code] {
			out[p.ID] = true
		}
	}
	return out, nil
}

func menuForest(rows []models.Menu) ([]*vo.Menu, error) {
	var convErr error
	forest := tree.Map(tree.Build(rows, menuAccessor), func(m models.Menu, children []*vo.Menu) *vo.Menu {
		out := new(vo.Menu)
		if err := vo.Copy(out, &m); err != nil && convErr == nil {
			convErr = err
		}
		out.Children = children
		return out
	})
	if convErr != nil {
		return nil, convErr
	}
	return forest, nil
}

func (s *MenuService) Page(ctx context.Context, q *params.MenuQuery) ([]*vo.Menu, int64, error) {
	rows, total, err := s.store.Page(ctx, q)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "page menus")
	}
	out, err := vo.CopySlice[models.Menu, vo.Menu](rows)
	return out, total, err
}

// Get 附带菜单绑定的权限 id
func (s *MenuService) Get(ctx context.Context, id uint64) (*vo.Menu, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withPermissions(ctx, m)
}

func (s *MenuService) get(ctx context.Context, id uint64) (*models.Menu, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get menu", zap.Uint64("id", id))
	}
	if m == nil {
		return nil, errcode.MenuNotFound
	}
	return m, nil
}

func (s *MenuService) withPermissions(ctx context.Context, m *models.Menu) (*vo.Menu, error) {
	out := new(vo.Menu)
	if err := vo.Copy(out, m); err != nil {
		return nil, err
	}
	ids, err := s.store.PermissionIDsOfMenu(ctx, m.ID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list menu permissions")
	}
	out.PermissionIDs = ids
	return out, nil
}

func (s *MenuService) Create(ctx context.Context, req *params.CreateMenuRequest) (*vo.Menu, error) {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return nil, err
	}
	if req.ParentID != 0 {
		parent, err := s.store.Get(ctx, req.ParentID)
		if err != nil {
			return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get parent menu")
		}
		if parent == nil {
			return nil, errcode.ParentMenuNotFound
		}
	}
	m := &models.Menu{MenuType: enums.MenuTypeMenu, Status: enums.MenuStatusEnabled, Visible: true}
	if err := applyMenu(m, &req.MenuFields); err != nil {
		return nil, err
	}
	permIDs, err := s.checkPermissions(ctx, req.PermissionIDs)
	if err != nil {
		return nil, err
	}

	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		if err := s.store.Create(txCtx, m); err != nil {
			return nil, err
		}
		if len(permIDs) == 0 {
			return nil, nil
		}
		return nil, s.store.ReplacePermissions(txCtx, m.ID, permIDs)
	})
	s.audit.Record(ctx, enums.ModuleSystem, enums.OperationCreate, "创建菜单 "+m.Name, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.MenuCreateFailed, "create menu", zap.String("name", m.Name))
	}
	return s.withPermissions(ctx, m)
}

// Update 上级不能是自身或后代
func (s *MenuService) Update(ctx context.Context, req *params.UpdateMenuRequest) (*vo.Menu, error) {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return nil, err
	}
	m, err := s.get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.ParentID != m.ParentID {
		if err := s.checkParent(ctx, m.ID, req.ParentID); err != nil {
			return nil, err
		}
	}
	if err := applyMenu(m, &req.MenuFields); err != nil {
		return nil, err
	}
	err = s.store.Update(ctx, m, menuUpdateCols...)
	s.audit.Record(ctx, enums.ModuleSystem, enums.OperationUpdate, "修改菜单 "+m.Name, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.MenuUpdateFailed, "update menu", zap.Uint64("id", m.ID))
	}
	return s.withPermissions(ctx, m)
}

func (s *MenuService) checkParent(ctx context.Context, id, parentID uint64) error {
	if parentID == id {
		return errcode.ParentMenuCannotBeSelf
	}
	if parentID == 0 {
		return nil
	}
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "list menus")
	}
	parents := lo.SliceToMap(rows, func(m models.Menu) (uint64, uint64) { return m.ID, m.ParentID })
	if _, ok := parents[parentID]; !ok {
		return errcode.ParentMenuNotFound
	}
	parentOf := func(k uint64) (uint64, bool) {
		p, ok := parents[k]
		return p, ok
	}
	if tree.WouldCreateCycle(parentOf, id, parentID) {
		return errcode.ParentMenuCannotBeSelf
	}
	return nil
}

// applyMenu 类型、状态为 0 时保持原值
func applyMenu(m *models.Menu, f *params.MenuFields) error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return errcode.ParamInvalid.WithMessage("menu name must not be empty")
	}
	if f.MenuType != 0 {
		typ, err := enums.ParseMenuType(f.MenuType)
		if err != nil {
			return err
		}
		m.MenuType = typ
	}
	if f.Status != 0 {
		status, err := enums.ParseMenuStatus(f.Status)
		if err != nil {
			return err
		}
		m.Status = status
	}
	if f.Visible != nil {
		m.Visible = *f.Visible
	}
	m.ParentID = f.ParentID
	m.Name = name
	m.Path = f.Path
	m.Component = f.Component
	m.Icon = f.Icon
	m.Sort = f.Sort
	return nil
}

func (s *MenuService) Delete(ctx context.Context, id uint64) error {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return err
	}
	m, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.store.CountChildren(ctx, id)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "count child menus", zap.Uint64("id", id))
	}
	if n > 0 {
		return errcode.MenuHasChildren
	}
	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, s.store.DeleteWithPermissions(txCtx, id)
	})
	s.audit.Record(ctx, enums.ModuleSystem, enums.OperationDelete, "删除菜单 "+m.Name, err)
	return wrapFailure(ctx, err, errcode.MenuDeleteFailed, "delete menu", zap.Uint64("id", id))
}

// AssignPermissions 覆盖式绑定
func (s *MenuService) AssignPermissions(ctx context.Context, req *params.AssignMenuPermissionsRequest) (*vo.Menu, error) {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return nil, err
	}
	m, err := s.get(ctx, req.MenuID)
	if err != nil {
		return nil, err
	}
	ids, err := s.checkPermissions(ctx, req.PermissionIDs)
	if err != nil {
		return nil, err
	}
	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, s.store.ReplacePermissions(txCtx, m.ID, ids)
	})
	s.audit.Record(ctx, enums.ModuleSystem, enums.OperationAssign,
		fmt.Sprintf("菜单 %s 绑定权限 %v", m.Name, ids), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.MenuUpdateFailed, "assign menu permissions", zap.Uint64("id", m.ID))
	}
	return s.withPermissions(ctx, m)
}

func (s *MenuService) checkPermissions(ctx context.Context, ids []uint64) ([]uint64, error) {
	ids = lo.Uniq(lo.Without(ids, 0))
	if len(ids) == 0 {
		return ids, nil
	}
	rows, err := s.permissions.ListByIDs(ctx, ids)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list permissions")
	}
	if len(rows) != len(ids) {
		found := lo.Map(rows, func(p models.Permission, _ int) uint64 { return p.ID })
		missing, _ := lo.Difference(ids, found)
		return nil, errcode.PermissionNotFound.WithMessagef("permissions %v do not exist", missing)
	}
	return ids, nil
}
