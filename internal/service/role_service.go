package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// codePattern 角色与权限编码：大写字母和下划线
var codePattern = regexp.MustCompile(`^[A-Z_]+$`)

type RoleStore interface {
	RoleLister
	Get(ctx context.Context, id uint64) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, m *models.Role) error
	Update(ctx context.Context, m *models.Role, cols ...string) error
	Page(ctx context.Context, q *params.RoleQuery) ([]models.Role, int64, error)
	PermissionIDsOfRole(ctx context.Context, roleID uint64) ([]uint64, error)
	ReplacePermissions(ctx context.Context, roleID uint64, permissionIDs []uint64) error
	RemovePermission(ctx context.Context, roleID, permissionID uint64) (int64, error)
	DeleteWithPermissions(ctx context.Context, roleID uint64) error
}

type RoleUsers interface {
	UserIDsOfRole(ctx context.Context, roleID uint64) ([]uint64, error)
	CountUsersOfRole(ctx context.Context, roleID uint64) (int64, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]models.User, error)
}

type PermissionReader interface {
	ListByIDs(ctx context.Context, ids []uint64) ([]models.Permission, error)
}

// PermissionCacheInvalidator 角色→权限缓存失效，由 authz.Resolver 实现
type PermissionCacheInvalidator interface {
	InvalidateRoles(ctx context.Context, roleIDs ...uint64)
	InvalidateAll(ctx context.Context)
}

type RoleService struct {
	tx          Transactor
	store       RoleStore
	users       RoleUsers
	permissions PermissionReader
	auth        Authorizer
	cache       PermissionCacheInvalidator
	audit       Auditor
	names       NameLookup
}

func NewRoleService(tx Transactor, store RoleStore, users RoleUsers, permissions PermissionReader,
	auth Authorizer, cache PermissionCacheInvalidator, audit Auditor, names NameLookup) *RoleService {
	return &RoleService{
		tx:          tx,
		store:       store,
		users:       users,
		permissions: permissions,
		auth:        auth,
		cache:       cache,
		audit:       audit,
		names:       names,
	}
}

func (s *RoleService) Page(ctx context.Context, q *params.RoleQuery) ([]*vo.Role, int64, error) {
	rows, total, err := s.store.Page(ctx, q)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "page roles")
	}
	out, err := roleVOs(rows)
	return out, total, err
}

// Get 附带角色的权限
func (s *RoleService) Get(ctx context.Context, id uint64) (*vo.Role, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := roleVO(m)
	if err != nil {
		return nil, err
	}
	ids, err := s.store.PermissionIDsOfRole(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list role permissions")
	}
	if out.Permissions, err = s.permissionsOf(ctx, ids); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RoleService) get(ctx context.Context, id uint64) (*models.Role, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get role", zap.Uint64("id", id))
	}
	if m == nil {
		return nil, errcode.RoleNotFound
	}
	return m, nil
}

func (s *RoleService) permissionsOf(ctx context.Context, ids []uint64) ([]*vo.Permission, error) {
	if len(ids) == 0 {
		return []*vo.Permission{}, nil
	}
	perms, err := s.permissions.ListByIDs(ctx, ids)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list permissions")
	}
	return permissionVOs(perms)
}

func (s *RoleService) Create(ctx context.Context, req *params.CreateRoleRequest) (*vo.Role, error) {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.Code)
	if !codePattern.MatchString(code) {
		return nil, errcode.RoleCodeInvalid
	}
	if err := s.checkUnique(ctx, 0, code, req.Name); err != nil {
		return nil, err
	}
	level, err := parseRoleLevel(req.RoleLevel)
	if err != nil {
		return nil, err
	}
	if level == enums.RoleLevelSystem {
		if err := s.requireSystemCaller(ctx); err != nil {
			return nil, err
		}
	}
	permissionIDs, err := s.checkPermissions(ctx, req.PermissionIDs)
	if err != nil {
		return nil, err
	}

	m := &models.Role{
		Name:        req.Name,
		Code:        code,
		Description: req.Description,
		RoleType:    enums.RoleTypeCustom,
		RoleLevel:   level,
	}
	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		if err := s.store.Create(txCtx, m); err != nil {
			return nil, err
		}
		if len(permissionIDs) == 0 {
			return nil, nil
		}
		return nil, s.store.ReplacePermissions(txCtx, m.ID, permissionIDs)
	})
	s.audit.Record(ctx, enums.ModuleRole, enums.OperationCreate, "创建角色 "+m.Code, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.RoleCreateFailed, "create role", zap.String("code", code))
	}
	logger.Info(ctx, "role created", zap.Uint64("id", m.ID), zap.String("code", m.Code))
	return roleVO(m)
}

// Update 内置角色不可修改编码与级别
func (s *RoleService) Update(ctx context.Context, req *params.UpdateRoleRequest) (*vo.Role, error) {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return nil, err
	}
	m, err := s.get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = m.Code
	}
	if !codePattern.MatchString(code) {
		return nil, errcode.RoleCodeInvalid
	}
	level := m.RoleLevel
	if req.RoleLevel != 0 {
		if level, err = parseRoleLevel(req.RoleLevel); err != nil {
			return nil, err
		}
	}
	if m.Builtin() && (code != m.Code || level != m.RoleLevel) {
		return nil, errcode.RoleImmutable
	}
	if level != m.RoleLevel {
		if err := s.requireSystemCaller(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.checkUnique(ctx, m.ID, code, req.Name); err != nil {
		return nil, err
	}

	m.Name = req.Name
	m.Code = code
	m.Description = req.Description
	m.RoleLevel = level
	err = s.store.Update(ctx, m, "name", "code", "description", "role_level")
	s.audit.Record(ctx, enums.ModuleRole, enums.OperationUpdate, "修改角色 "+m.Code, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.RoleUpdateFailed, "update role", zap.Uint64("id", m.ID))
	}
	return roleVO(m)
}

// requireSystemCaller 只有系统级用户能授予或收回系统级
func (s *RoleService) requireSystemCaller(ctx context.Context) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	system, err := s.auth.IsSystemLevel(ctx, user.UserID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "resolve role level")
	}
	if !system {
		return errcode.Forbidden.WithMessage("only system level users can change role level")
	}
	return nil
}

func (s *RoleService) checkUnique(ctx context.Context, selfID uint64, code, name string) error {
	byCode, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get role by code")
	}
	if byCode != nil && byCode.ID != selfID {
		return errcode.RoleCodeExists
	}
	byName, err := s.store.GetByName(ctx, name)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get role by name")
	}
	if byName != nil && byName.ID != selfID {
		return errcode.RoleNameExists
	}
	return nil
}

func (s *RoleService) Delete(ctx context.Context, id uint64) error {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return err
	}
	m, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if m.Builtin() {
		return errcode.RoleImmutable
	}
	n, err := s.users.CountUsersOfRole(ctx, id)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "count role users")
	}
	if n > 0 {
		return errcode.RoleInUse
	}
	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, s.store.DeleteWithPermissions(txCtx, id)
	})
	s.audit.Record(ctx, enums.ModuleRole, enums.OperationDelete, "删除角色 "+m.Code, err)
	if err != nil {
		return wrapFailure(ctx, err, errcode.RoleDeleteFailed, "delete role", zap.Uint64("id", id))
	}
	s.cache.InvalidateRoles(ctx, id)
	return nil
}

// AssignPermissions 覆盖式分配
func (s *RoleService) AssignPermissions(ctx context.Context, req *params.AssignRolePermissionsRequest) (*vo.Role, error) {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return nil, err
	}
	m, err := s.get(ctx, req.RoleID)
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
	s.audit.Record(ctx, enums.ModuleRole, enums.OperationAssign,
		fmt.Sprintf("为角色 %s 分配权限 %v", m.Code, ids), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.RoleUpdateFailed, "assign role permissions", zap.Uint64("id", m.ID))
	}
	s.cache.InvalidateRoles(ctx, m.ID)
	return s.Get(ctx, m.ID)
}

func (s *RoleService) RemovePermission(ctx context.Context, req *params.RemoveRolePermissionRequest) error {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return err
	}
	m, err := s.get(ctx, req.RoleID)
	if err != nil {
		return err
	}
	n, err := s.store.RemovePermission(ctx, req.RoleID, req.PermissionID)
	s.audit.Record(ctx, enums.ModuleRole, enums.OperationRemove,
		fmt.Sprintf("移除角色 %s 的权限 %d", m.Code, req.PermissionID), err)
	if err != nil {
		return wrapFailure(ctx, err, errcode.RoleUpdateFailed, "remove role permission")
	}
	if n == 0 {
		return errcode.PermissionNotFound.WithMessage("permission is not assigned to the role")
	}
	s.cache.InvalidateRoles(ctx, m.ID)
	return nil
}

// Users 持有该角色的用户
func (s *RoleService) Users(ctx context.Context, roleID uint64) ([]*vo.User, error) {
	if _, err := s.get(ctx, roleID); err != nil {
		return nil, err
	}
	ids, err := s.users.UserIDsOfRole(ctx, roleID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list role users")
	}
	if len(ids) == 0 {
		return []*vo.User{}, nil
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list users")
	}
	out := make([]*vo.User, 0, len(users))
	for i := range users {
		v, err := userVO(ctx, s.names, &users[i])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *RoleService) checkPermissions(ctx context.Context, ids []uint64) ([]uint64, error) {
	ids = lo.Uniq(lo.Without(ids, 0))
	if len(ids) == 0 {
		return ids, nil
	}
	perms, err := s.permissions.ListByIDs(ctx, ids)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list permissions")
	}
	if len(perms) != len(ids) {
		found := lo.Map(perms, func(p models.Permission, _ int) uint64 { return p.ID })
		missing, _ := lo.Difference(ids, found)
		return nil, errcode.PermissionNotFound.WithMessagef("permissions %v do not exist", missing)
	}
	return ids, nil
}

// parseRoleLevel 0 表示默认的项目级
func parseRoleLevel(code int) (enums.RoleLevel, error) {
	if code == 0 {
		return enums.RoleLevelProject, nil
	}
	level, err := enums.ParseRoleLevel(code)
	if err != nil {
		return 0, errcode.RoleLevelInvalid
	}
	return level, nil
}

func roleVO(m *models.Role) (*vo.Role, error) {
	out := &vo.Role{}
	if err := vo.Copy(out, m); err != nil {
		return nil, err
	}
	out.RoleLevelDesc = m.RoleLevel.String()
	return out, nil
}

func roleVOs(rows []models.Role) ([]*vo.Role, error) {
	out := make([]*vo.Role, 0, len(rows))
	for i := range rows {
		v, err := roleVO(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
