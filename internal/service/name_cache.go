package service

import (
	"context"
	"sync"

	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type UserLister interface {
	ListAll(ctx context.Context) ([]models.User, error)
}

type DepartmentLister interface {
	ListAll(ctx context.Context) ([]models.Department, error)
}

// NameCache 用户昵称与部门名称的进程内缓存，由定时任务刷新，增删改后失效
type NameCache struct {
	users UserLister
	depts DepartmentLister

	mu        sync.RWMutex
	loaded    bool
	userNames map[uint64]string
	deptNames map[uint64]string
	active    map[uint64]bool
}

func NewNameCache(users UserLister, depts DepartmentLister) *NameCache {
	return &NameCache{users: users, depts: depts}
}

// Refresh 全量重载，任一来源失败时保留旧数据
func (c *NameCache) Refresh(ctx context.Context) error {
	var result *multierror.Error
	users, err := c.users.ListAll(ctx)
	if err != nil {
		result = multierror.Append(result, errors.Wrap(err, "load users"))
	}
	depts, err := c.depts.ListAll(ctx)
	if err != nil {
		result = multierror.Append(result, errors.Wrap(err, "load departments"))
	}
	if result != nil {
		return result.ErrorOrNil()
	}

	userNames := make(map[uint64]string, len(users))
	active := make(map[uint64]bool, len(users))
	for _, u := range users {
		active[u.ID] = u.Enabled()
		name := u.Nickname
		if name == "" {
			name = u.Username
		}
		userNames[u.ID] = name
	}
	deptNames := make(map[uint64]string, len(depts))
	for _, d := range depts {
		deptNames[d.ID] = d.Name
	}

	c.mu.Lock()
	c.userNames, c.deptNames, c.active, c.loaded = userNames, deptNames, active, true
	c.mu.Unlock()
	logger.Debug(ctx, "name cache refreshed", zap.Int("users", len(userNames)), zap.Int("departments", len(deptNames)))
	return nil
}

// Invalidate 下次读取时重新加载
func (c *NameCache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

func (c *NameCache) ensure(ctx context.Context) {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return
	}
	if err := c.Refresh(ctx); err != nil {
		logger.Warn(ctx, "name cache reload failed", zap.Error(err))
	}
}

func (c *NameCache) UserName(ctx context.Context, userID uint64) string {
	if userID == 0 {
		return ""
	}
	c.ensure(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userNames[userID]
}

// ActiveUser 用户存在且未被禁用；删除、禁用用户后缓存已失效，下次读取即生效
func (c *NameCache) ActiveUser(ctx context.Context, userID uint64) bool {
	c.ensure(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active[userID]
}

func (c *NameCache) DepartmentName(ctx context.Context, departmentID uint64) string {
	if departmentID == 0 {
		return ""
	}
	c.ensure(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deptNames[departmentID]
}
