package service

import (
	"context"
	"strings"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

type PermissionStore interface {
	PermissionReader
	Get(ctx context.Context, id uint64) (*models.Permission, error)
	GetByCode(ctx context.Context, code string) (*models.Permission, error)
	GetByName(ctx context.Context, name string) (*models.Permission, error)
	Create(ctx context.Context, m *models.Permission) error
	Update(ctx context.Context, m *models.Permission, cols ...string) error
	Delete(ctx context.Context, id uint64) error
	Page(ctx context.Context, q *params.PermissionQuery) ([]models.Permission, int64, error)
	ListAll(ctx context.Context) ([]models.Permission, error)
}

// PermissionHolders 查询持有权限的角色
type PermissionHolders interface {
	RoleIDsWithPermission(ctx context.Context, permissionID uint64) ([]uint64, error)
}

// PermissionService 权限管理，任何变更都会清空角色权限缓存
type PermissionService struct {
	store   PermissionStore
	holders PermissionHolders
	auth    Authorizer
	cache   PermissionCacheInvalidator
	audit   Auditor
}

func NewPermissionService(store PermissionStore, holders PermissionHolders, auth Authorizer,
	cache PermissionCacheInvalidator, audit Auditor) *PermissionService {
	return &PermissionService{store: store, holders: holders, auth: auth, cache: cache, audit: audit}
}

func (s *PermissionService) Page(ctx context.Context, q *params.PermissionQuery) ([]*vo.Permission, int64, error) {
	rows, total, err := s.store.Page(ctx, q)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "page permissions")
	}
	out, err := permissionVOs(rows)
	return out, total, err
}

func (s *PermissionService) All(ctx context.Context) ([]*vo.Permission, error) {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list permissions")
	}
	return permissionVOs(rows)
}

func (s *PermissionService) Get(ctx context.Context, id uint64) (*vo.Permission, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return permissionVO(m)
}

func (s *PermissionService) get(ctx context.Context, id uint64) (*models.Permission, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get permission", zap.Uint64("id", id))
	}
	if m == nil {
		return nil, errcode.PermissionNotFound
	}
	return m, nil
}

func (s *PermissionService) Create(ctx context.Context, req *params.CreatePermissionRequest) (*vo.Permission, error) {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.Code)
	if !codePattern.MatchString(code) {
		return nil, errcode.PermissionCodeInvalid
	}
	if err := s.checkUnique(ctx, 0, code, req.Name); err != nil {
		return nil, err
	}
	typ, err := parsePermissionType(req.PermissionType)
	if err != nil {
		return nil, err
	}

	m := &models.Permission{Name: req.Name, Code: code, Description: req.Description, PermissionType: typ}
	err = s.store.Create(ctx, m)
	s.audit.Record(ctx, enums.ModulePermission, enums.OperationCreate, "创建权限 "+m.Code, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.PermissionCreateFailed, "create permission", zap.String("code", code))
	}
	return permissionVO(m)
}

func (s *PermissionService) Update(ctx context.Context, req *params.UpdatePermissionRequest) (*vo.Permission, error) {
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
		return nil, errcode.PermissionCodeInvalid
	}
	if err := s.checkUnique(ctx, m.ID, code, req.Name); err != nil {
		return nil, err
	}
	if req.PermissionType != 0 {
		if m.PermissionType, err = parsePermissionType(req.PermissionType); err != nil {
			return nil, err
		}
	}

	m.Name = req.Name
	m.Code = code
	m.Description = req.Description
	err = s.store.Update(ctx, m, "name", "code", "description", "permission_type")
	s.audit.Record(ctx, enums.ModulePermission, enums.OperationUpdate, "修改权限 "+m.Code, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.PermissionUpdateFailed, "update permission", zap.Uint64("id", m.ID))
	}
	s.cache.InvalidateAll(ctx)
	return permissionVO(m)
}

func (s *PermissionService) checkUnique(ctx context.Context, selfID uint64, code, name string) error {
	byCode, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get permission by code")
	}
	if byCode != nil && byCode.ID != selfID {
		return errcode.PermissionCodeExists
	}
	byName, err := s.store.GetByName(ctx, name)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get permission by name")
	}
	if byName != nil && byName.ID != selfID {
		return errcode.PermissionNameExists
	}
	return nil
}

// Delete 仍被角色持有时拒绝
func (s *PermissionService) Delete(ctx context.Context, id uint64) error {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return err
	}
	m, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	roles, err := s.holders.RoleIDsWithPermission(ctx, id)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "list permission holders")
	}
	if len(roles) > 0 {
		return errcode.PermissionInUse.WithMessagef("permission is held by roles %v", roles)
	}
	err = s.store.Delete(ctx, id)
	s.audit.Record(ctx, enums.ModulePermission, enums.OperationDelete, "删除权限 "+m.Code, err)
	if err != nil {
		return wrapFailure(ctx, err, errcode.PermissionDeleteFailed, "delete permission", zap.Uint64("id", id))
	}
	s.cache.InvalidateAll(ctx)
	return nil
}

// DeleteBatch 逐个删除，汇总全部失败
func (s *PermissionService) DeleteBatch(ctx context.Context, ids []uint64) error {
	var errs *multierror.Error
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// parsePermissionType 0 表示功能权限
func parsePermissionType(code int) (enums.PermissionType, error) {
	if code == 0 {
		return enums.PermissionTypeFunctional, nil
	}
	return enums.ParsePermissionType(code)
}

func permissionVO(m *models.Permission) (*vo.Permission, error) {
	out := &vo.Permission{}
	if err := vo.Copy(out, m); err != nil {
		return nil, err
	}
	out.PermissionTypeDesc = m.PermissionType.String()
	return out, nil
}

func permissionVOs(rows []models.Permission) ([]*vo.Permission, error) {
	out := make([]*vo.Permission, 0, len(rows))
	for i := range rows {
		v, err := permissionVO(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
