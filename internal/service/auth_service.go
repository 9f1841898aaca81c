package service

import (
	"context"
	"time"

	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/internal/domain/params"
	"github.com/ayxworxfr/gsms/internal/domain/vo"
	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/ayxworxfr/gsms/pkg/crypter"
	"github.com/ayxworxfr/gsms/pkg/jwtauth"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type AccountStore interface {
	Get(ctx context.Context, id uint64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, m *models.User) error
	Update(ctx context.Context, m *models.User, cols ...string) error
	ReplaceRoles(ctx context.Context, userID uint64, roleIDs []uint64) error
}

type RoleFinder interface {
	GetByCode(ctx context.Context, code string) (*models.Role, error)
}

// TokenIssuer 令牌签发，由 jwtauth.JWT 实现
type TokenIssuer interface {
	GenerateToken(userID uint64, username string) (*jwtauth.TokenPair, error)
	RefreshToken(refreshToken string) (*jwtauth.TokenPair, error)
}

// RoleResolver 当前用户的角色与权限编码
type RoleResolver interface {
	RoleCodes(ctx context.Context, userID uint64) ([]string, error)
	PermissionCodes(ctx context.Context, userID uint64) ([]string, error)
}

// AuthService 登录注册与本人账户操作
type AuthService struct {
	tx     Transactor
	users  AccountStore
	roles  RoleFinder
	hasher crypter.Crypter
	tokens TokenIssuer
	auth   Authorizer
	codes  RoleResolver
	audit  Auditor
	names  NameLookup
	cache  CacheInvalidator
	now    func() time.Time
}

func NewAuthService(tx Transactor, users AccountStore, roles RoleFinder, hasher crypter.Crypter, tokens TokenIssuer,
	auth Authorizer, codes RoleResolver, audit Auditor, names NameLookup, cache CacheInvalidator) *AuthService {
	return &AuthService{
		tx:     tx,
		users:  users,
		roles:  roles,
		hasher: hasher,
		tokens: tokens,
		auth:   auth,
		codes:  codes,
		audit:  audit,
		names:  names,
		cache:  cache,
		now:    time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, req *params.LoginRequest) (*vo.LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get user by username")
	}
	// 登录前没有身份，审计时按尝试的用户名记录
	auditCtx := mycontext.WithIdentity(ctx, mycontext.Identity{Username: req.Username})
	if user != nil {
		auditCtx = mycontext.WithIdentity(ctx, mycontext.Identity{UserID: user.ID, Username: user.Username})
	}
	fail := func(err error) (*vo.LoginResult, error) {
		s.audit.Record(auditCtx, enums.ModuleUser, enums.OperationLogin, "用户登录", err)
		return nil, err
	}

	if user == nil {
		return fail(errcode.UserNotFound)
	}
	if !user.Enabled() {
		return fail(errcode.UserDisabled)
	}
	if err := s.hasher.Verify(req.Password, user.Password); err != nil {
		if errors.Is(err, crypter.ErrPasswordMismatch) || errors.Is(err, crypter.ErrEmptyStoredHash) {
			logger.Warn(ctx, "invalid password", zap.String("username", req.Username))
			return fail(errcode.PasswordError)
		}
		return fail(wrapFailure(ctx, err, errcode.InternalError, "verify password"))
	}

	pair, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return fail(wrapFailure(ctx, err, errcode.InternalError, "generate token"))
	}
	user.LastLoginTime = s.now()
	if err := s.users.Update(ctx, user, "last_login_time"); err != nil {
		logger.Warn(ctx, "update last login time", zap.Uint64("user_id", user.ID), zap.Error(err))
	}
	s.audit.Record(auditCtx, enums.ModuleUser, enums.OperationLogin, "用户登录", nil)
	logger.Info(ctx, "login successful", zap.String("username", user.Username))

	out, err := userVO(ctx, s.names, user)
	if err != nil {
		return nil, err
	}
	return &vo.LoginResult{
		Token:        pair.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         out,
	}, nil
}

// Register 新用户绑定默认角色
func (s *AuthService) Register(ctx context.Context, req *params.RegisterRequest) (*vo.User, error) {
	existing, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get user by username")
	}
	if existing != nil {
		return nil, errcode.UsernameExists
	}
	role, err := s.roles.GetByCode(ctx, models.DefaultRoleCode)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get default role")
	}
	if role == nil {
		return nil, errcode.DefaultRoleNotFound
	}
	hashed, err := s.hasher.Encrypt(req.Password)
	if err != nil {
		return nil, errcode.ParamInvalid.WithMessage(err.Error())
	}

	m := &models.User{
		Username: req.Username,
		Password: hashed,
		Nickname: req.Nickname,
		Email:    req.Email,
		Phone:    req.Phone,
		Status:   enums.UserStatusNormal,
	}
	_, err = s.tx.Transaction(ctx, func(txCtx context.Context) (any, error) {
		if err := s.users.Create(txCtx, m); err != nil {
			return nil, err
		}
		return nil, s.users.ReplaceRoles(txCtx, m.ID, []uint64{role.ID})
	})
	auditCtx := mycontext.WithIdentity(ctx, mycontext.Identity{UserID: m.ID, Username: m.Username})
	s.audit.Record(auditCtx, enums.ModuleUser, enums.OperationCreate, "用户注册 "+m.Username, err)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.UserCreateFailed, "register user", zap.String("username", req.Username))
	}
	s.cache.Invalidate()
	return userVO(ctx, s.names, m)
}

func (s *AuthService) RefreshToken(ctx context.Context, req *params.RefreshTokenRequest) (*vo.LoginResult, error) {
	pair, err := s.tokens.RefreshToken(req.RefreshToken)
	switch {
	case errors.Is(err, jwtauth.ErrTokenExpired):
		return nil, errcode.TokenExpired
	case err != nil:
		logger.Warn(ctx, "refresh token rejected", zap.Error(err))
		return nil, errcode.Unauthorized
	}
	return &vo.LoginResult{
		Token:        pair.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}, nil
}

// Info 当前用户及其角色、权限编码
func (s *AuthService) Info(ctx context.Context) (*vo.UserInfo, error) {
	identity, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Get(ctx, identity.UserID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "get current user")
	}
	if user == nil {
		return nil, errcode.UserNotFound
	}
	out, err := userVO(ctx, s.names, user)
	if err != nil {
		return nil, err
	}
	roles, err := s.codes.RoleCodes(ctx, user.ID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve role codes")
	}
	perms, err := s.codes.PermissionCodes(ctx, user.ID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve permission codes")
	}
	system, err := s.auth.IsSystemLevel(ctx, user.ID)
	if err != nil {
		return nil, wrapFailure(ctx, err, errcode.DatabaseError, "resolve role level")
	}
	return &vo.UserInfo{User: out, Roles: roles, Permissions: perms, SystemLevel: system}, nil
}

func (s *AuthService) PermissionCodes(ctx context.Context) ([]string, error) {
	identity, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	codes, err := s.codes.PermissionCodes(ctx, identity.UserID)
	return codes, wrapFailure(ctx, err, errcode.DatabaseError, "resolve permission codes")
}

func (s *AuthService) RoleCodes(ctx context.Context) ([]string, error) {
	identity, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	codes, err := s.codes.RoleCodes(ctx, identity.UserID)
	return codes, wrapFailure(ctx, err, errcode.DatabaseError, "resolve role codes")
}

func (s *AuthService) ChangePassword(ctx context.Context, req *params.ChangePasswordRequest) error {
	identity, err := currentUser(ctx)
	if err != nil {
		return err
	}
	user, err := s.users.Get(ctx, identity.UserID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get current user")
	}
	if user == nil {
		return errcode.UserNotFound
	}
	if err := s.hasher.Verify(req.OldPassword, user.Password); err != nil {
		return errcode.OldPasswordError
	}
	return s.setPassword(ctx, user, req.NewPassword, "修改密码")
}

// ResetPassword 需要系统级角色或用户管理权限
func (s *AuthService) ResetPassword(ctx context.Context, req *params.ResetPasswordRequest) error {
	if err := requireSystemOr(ctx, s.auth, models.PermUserManage); err != nil {
		return err
	}
	user, err := s.users.Get(ctx, req.UserID)
	if err != nil {
		return wrapFailure(ctx, err, errcode.DatabaseError, "get user", zap.Uint64("id", req.UserID))
	}
	if user == nil {
		return errcode.UserNotFound
	}
	return s.setPassword(ctx, user, req.NewPassword, "重置密码 "+user.Username)
}

func (s *AuthService) setPassword(ctx context.Context, user *models.User, password, description string) error {
	hashed, err := s.hasher.Encrypt(password)
	if err != nil {
		return errcode.ParamInvalid.WithMessage(err.Error())
	}
	user.Password = hashed
	err = s.users.Update(ctx, user, "password")
	s.audit.Record(ctx, enums.ModuleUser, enums.OperationUpdate, description, err)
	return wrapFailure(ctx, err, errcode.UserUpdateFailed, "update password", zap.Uint64("id", user.ID))
}

// userVO 填充状态描述与部门名称
func userVO(ctx context.Context, names NameLookup, m *models.User) (*vo.User, error) {
	out := &vo.User{}
	if err := vo.Copy(out, m); err != nil {
		return nil, err
	}
	out.LastLoginTime = vo.TimePtr(m.LastLoginTime)
	out.StatusDesc = m.Status.String()
	out.DepartmentName = names.DepartmentName(ctx, m.DepartmentID)
	return out, nil
}
