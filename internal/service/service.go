// Package service 业务规则层：参数校验、可见范围、事务与审计都在这里完成。
package service

import (
	"context"
	"strings"
	"time"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/domain/enums"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/ayxworxfr/gsms/pkg/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Transactor 事务边界，fn 内的 ctx 携带事务会话
type Transactor interface {
	Transaction(ctx context.Context, fn repository.TransactionFunc) (any, error)
}

// Authorizer 权限与可见范围
type Authorizer interface {
	HasPermission(ctx context.Context, userID uint64, code string) bool
	IsSystemLevel(ctx context.Context, userID uint64) (bool, error)
	AccessibleProjects(ctx context.Context, userID uint64) (authz.ProjectScope, error)
	TaskScope(ctx context.Context, userID uint64) (authz.ProjectScope, error)
	WorkHourScope(ctx context.Context, userID uint64) (authz.ProjectScope, error)
}

// Auditor 操作日志，调用方不关心写入结果
type Auditor interface {
	Record(ctx context.Context, module enums.OperationModule, op enums.OperationType, description string, err error)
}

// NameLookup 用户昵称与部门名称，用于装饰视图对象
type NameLookup interface {
	UserName(ctx context.Context, userID uint64) string
	DepartmentName(ctx context.Context, departmentID uint64) string
}

// currentUser 当前登录用户，未认证返回 UNAUTHORIZED
func currentUser(ctx context.Context) (mycontext.Identity, error) {
	id, ok := mycontext.IdentityFrom(ctx)
	if !ok {
		return mycontext.Identity{}, errcode.Unauthorized
	}
	return id, nil
}

// requireProject 项目不在可见范围内时返回 PROJECT_ACCESS_DENIED
func requireProject(ctx context.Context, auth Authorizer, projectID uint64) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	scope, err := auth.AccessibleProjects(ctx, user.UserID)
	if err != nil {
		return errors.Wrap(err, "resolve accessible projects")
	}
	if !scope.Contains(projectID) {
		return errcode.ProjectAccessDenied
	}
	return nil
}

// requireSystemOr 系统级用户或持有 code 权限
func requireSystemOr(ctx context.Context, auth Authorizer, code string) error {
	user, err := currentUser(ctx)
	if err != nil {
		return err
	}
	system, err := auth.IsSystemLevel(ctx, user.UserID)
	if err != nil {
		return errors.Wrap(err, "resolve role level")
	}
	if system || auth.HasPermission(ctx, user.UserID, code) {
		return nil
	}
	return errcode.Forbidden
}

// parseDate 空串返回零值
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, errcode.ParamInvalid.WithMessagef("%s must be yyyy-MM-dd", field)
	}
	return t, nil
}

// parseDateTime 接受 yyyy-MM-dd 或 yyyy-MM-dd HH:mm:ss，返回标准化字符串。
// endOfDay 为真且只给了日期时取当天最后一秒。
func parseDateTime(field, s string, endOfDay bool) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if t, err := time.ParseInLocation(time.DateTime, s, time.Local); err == nil {
		return t.Format(time.DateTime), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return "", errcode.ParamInvalid.WithMessagef("%s must be yyyy-MM-dd[ HH:mm:ss]", field)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t.Format(time.DateTime), nil
}

// wrapFailure 非业务错误记录日志后转换为 *_FAILED
func wrapFailure(ctx context.Context, err error, failure *errcode.Error, msg string, fields ...zap.Field) error {
	if err == nil {
		return nil
	}
	if _, ok := errcode.From(err); ok {
		return err
	}
	logger.Error(ctx, msg, append(fields, zap.Error(err))...)
	return errors.Wrap(failure, err.Error())
}

// CacheInvalidator 数据变更后使缓存失效
type CacheInvalidator interface {
	Invalidate()
}
