package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	"github.com/ayxworxfr/gsms/pkg/crypter"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type UserStore interface {
	AccountStore
	Page(ctx context.Context, q *params.UserQuery) ([]models.User, int64, error)
	RoleIDsOfUser(ctx context.Context, userID uint64) ([]uint64, error)
	DeleteWithRoles(ctx context.Context, userID uint64) error
}

type RoleLister interface {
	RoleFinder
	ListByIDs(ctx context.Context, ids []uint64) ([]models.Role, error)
}

// UserReferences 返回仍引用用户的数据类别，为空表示可以删除
type UserReferences interface {
	UserReferences(ctx context.Context, userID uint64) (string, error)
}

type DepartmentReader interface {
	Get(ctx context.Context, id uint64) (*models.Department, error)
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9-]{5,20}$`)
)

var userUpdateCols = []string{"nickname", "email", "phone", "department_id", "status"}

type UserService struct {
	tx          Transactor
	store       UserStore
	roles       RoleLister
	departments DepartmentReader
	refs        UserReferences
	hasher      crypter.Crypter
	auth        Authorizer
	codes       RoleResolver
	audit       Auditor
	names       NameLookup
	cache       CacheInvalidator
}

func NewUserService(tx Transactor, store UserStore, roles RoleLister, departments DepartmentReader, refs UserReferences,
	hasher crypter.Crypter, auth Authorizer, codes RoleResolver, audit Auditor, names NameLookup, cache CacheInvalidator) *UserService {
	return &UserService{
		tx:          tx,
		store:       store,
		roles:       roles,
		departments: departments,
		refs:        refs,
		hasher:      hasher,
		auth:        auth,
		codes:       codes,
		audit:       audit,
		names:       names,
		cache:       cache,
	}
}

func (s *UserService) Page(ctx context.Context, q *params.UserQuery) ([]*vo.User, int64, error) {
	rows, total, err := s.store.Page(ctx, q)
	if err != nil {
		return nil, 0, wrapFailure(ctx, err, errcode.DatabaseError, "page users")
	}
	out := make([]*vo.User, 0, len(rows))
	for i := range rows {
		v, err := userVO(ctx, s.names, &rows[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, nil
}

// Get flags 控制是否附带角色与权限编码
func (s *UserService) Get(ctx context.Context, req *params.GetUserRequest) (*vo.User, error) {
	flags := params.NewResponseFlags(req.Flags)
	if err := flags.Validate(params.AllUserFlags); err != nil {
		return nil, errcode.ParamInvalid.WithMessage(err.Error())
	}
	m, err := s.get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	out, err := userVO(ctx, s.names, m)
	if err != nil {
		return nil, err
	}
	if flags.Has(params.IncludeRoles) {
		if out.Roles, err = s.rolesOf(ctx, m.ID); err != nil {
			return nil, err
		}
	}
	if flags.Has(params.IncludePermissions) {
		if out.Permissions, err = s.codes.PermissionCodes(ctx, m.ID); err != nil {
			return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve permission codes")
		}
	}
	return out, nil
}

func (s *UserService) get(ctx context.Context, id uint64) (*models.User, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get user", zap.Uint64("id", id))
	}
	if m == nil {
		return nil, errcode.UserNotFound
	}
	return m, nil
}

func (s *UserService) rolesOf(ctx context.Context, userID uint64) ([]*vo.Role, error) {
	ids, err := s.store.RoleIDsOfUser(ctx, userID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list user roles")
	}
	if len(ids) == 0 {
		return []*vo.Role{}, nil
	}
	roles, err := s.roles.ListByIDs(ctx, ids)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list roles")
	}
	return roleVOs(roles)
}

func (s *UserService) Create(ctx context.Context, req *params.CreateUserRequest) (*vo.User, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return nil, err
	}
	existing, err := s.store.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get user by username")
	}
	if existing != nil {
		return nil, errcode.UsernameExists
	}

	m := &models.User{Username: req.Username, Status: enums.UserStatusNormal, CreateUserID: user.UserID}
	if err := s.apply(ctx, m, &req.UserFields); err != nil {
		return nil, err
	}
	roleIDs, err := s.checkRoles(ctx, req.RoleIDs)
	if err != nil {
		return nil, err
	}
	if len(roleIDs) == 0 {
		role, err := s.roles.GetByCode(ctx, models.DefaultRoleCode)
		if err != nil {
			return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get default role")
		}
		if role == nil {
			return nil, errcode.DefaultRoleNotFound
		}
		roleIDs = []uint64{role.ID}
	}
	if m.Password, err = s.hasher.Encrypt(req.Password); err != nil {
		return nil, errcode.ParamInvalid.WithMessage(err.Error())
	}

	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		if err := s.store.Create(txCtx, m); err != nil {
			return nil, err
		}
		return nil, s.store.ReplaceRoles(txCtx, m.ID, roleIDs)
	})
	s.audit.Record(ctx, enums.ModuleUser, enums.OperationCreate, "创建用户 "+m.Username, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.UserCreateFailed, "create user", zap.String("username", m.Username))
	}
	s.cache.Invalidate()
	logger.Info(ctx, "user created", zap.Uint64("id", m.ID), zap.String("username", m.Username))
	return userVO(ctx, s.names, m)
}

// Update 本人可改资料，状态只能由管理员修改
func (s *UserService) Update(ctx context.Context, req *params.UpdateUserRequest) (*vo.User, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	manager := requireSystemOr(ctx, s.auth, models.PermUserManage) == nil
	if !manager && user.UserID != req.ID {
		return nil, errcode.Forbidden
	}
	m, err := s.get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	status := m.Status
	if err := s.apply(ctx, m, &req.UserFields); err != nil {
		return nil, err
	}
	if !manager && m.Status != status {
		return nil, errcode.Forbidden.WithMessage("only administrators can change user status")
	}

	err = s.store.Update(ctx, m, userUpdateCols...)
	s.audit.Record(ctx, enums.ModuleUser, enums.OperationUpdate, "修改用户 "+m.Username, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.UserUpdateFailed, "update user", zap.Uint64("id", m.ID))
	}
	s.cache.Invalidate()
	return userVO(ctx, s.names, m)
}

// apply 状态为 0 时保持原值
func (s *UserService) apply(ctx context.Context, m *models.User, f *params.UserFields) error {
	if f.Email != "" && !emailPattern.MatchString(f.Email) {
		return errcode.EmailFormatError
	}
	if f.Phone != "" && !phonePattern.MatchString(f.Phone) {
		return errcode.PhoneFormatError
	}
	if f.Status != 0 {
		status, err := enums.ParseUserStatus(f.Status)
		if err != nil {
			return err
		}
		m.Status = status
	}
	if f.DepartmentID != 0 && f.DepartmentID != m.DepartmentID {
		dept, err := s.departments.Get(ctx, f.DepartmentID)
		if err != nil {
			return wrapFailure(ctx, err, errcode.DatabaseError, "get department")
		}
		if dept == nil {
			return errcode.DepartmentNotFound
		}
	}
	m.Nickname = f.Nickname
	m.Email = f.Email
	m.Phone = f.Phone
	m.DepartmentID = f.DepartmentID
	return nil
}

func (s *UserService) Delete(ctx context.Context, id uint64) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return err
	}
	if user.UserID == id {
		return errcode.UserInUse.WithMessage("cannot delete the current user")
	}
	m, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	ref, err := s.refs.UserReferences(ctx, id)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "count user references", zap.Uint64("id", id))
	}
	if ref != "" {
		return errcode.UserInUse.WithMessagef("user is still referenced as %s", ref)
	}
	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, s.store.DeleteWithRoles(txCtx, id)
	})
	s.audit.Record(ctx, enums.ModuleUser, enums.OperationDelete, "删除用户 "+m.Username, err)
	if err != nil {
		return wrapFailure(ctx, err, errcode.UserDeleteFailed, "delete user", zap.Uint64("id", id))
	}
	s.cache.Invalidate()
	return nil
}

// AssignRoles 覆盖式分配，空列表表示清空
func (s *UserService) AssignRoles(ctx context.Context, req *params.AssignRolesRequest) ([]*vo.Role, error) {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return nil, err
	}
	m, err := s.get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	roleIDs, err := s.checkRoles(ctx, req.RoleIDs)
	if err != nil {
		return nil, err
	}
	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, s.store.ReplaceRoles(txCtx, m.ID, roleIDs)
	})
	s.audit.Record(ctx, enums.ModuleUser, enums.OperationAssign,
		fmt.Sprintf("为用户 %s 分配角色 %v", m.Username, roleIDs), err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.UserUpdateFailed, "assign user roles", zap.Uint64("id", m.ID))
	}
	return s.rolesOf(ctx, m.ID)
}

// checkRoles 去重并确认角色都存在
func (s *UserService) checkRoles(ctx context.Context, ids []uint64) ([]uint64, error) {
	ids = lo.Uniq(lo.Without(ids, 0))
	if len(ids) == 0 {
		return ids, nil
	}
	roles, err := s.roles.ListByIDs(ctx, ids)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "list roles")
	}
	if len(roles) != len(ids) {
		found := lo.Map(roles, func(r models.Role, _ int) uint64 { return r.ID })
		missing, _ := lo.Difference(ids, found)
		return nil, errcode.RoleNotFound.WithMessagef("roles %v do not exist", missing)
	}
	return ids, nil
}
