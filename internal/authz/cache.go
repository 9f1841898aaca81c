package authz

import (
	"context"
	"slices"
	"sync"
	"time"
)

// PermissionCache 角色到权限编码的读穿缓存，角色或权限变更时必须失效
type PermissionCache interface {
	Get(ctx context.Context, roleID uint64) ([]string, bool)
	Set(ctx context.Context, roleID uint64, codes []string)
	Invalidate(ctx context.Context, roleIDs ...uint64)
	Clear(ctx context.Context)
}

type memoryEntry struct {
	codes    []string
	expireAt time.Time
}

// MemoryPermissionCache 进程内缓存，ttl 为兜底过期时间
type MemoryPermissionCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uint64]memoryEntry
	now     func() time.Time
}

func NewMemoryPermissionCache(ttl time.Duration) *MemoryPermissionCache {
	return &MemoryPermissionCache{
		ttl:     ttl,
		entries: make(map[uint64]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryPermissionCache) Get(_ context.Context, roleID uint64) ([]string, bool) {
	c.mu.RLock()
	e, ok := c.entries[roleID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().After(e.expireAt) {
		c.mu.Lock()
		delete(c.entries, roleID)
		c.mu.Unlock()
		return nil, false
	}
	return slices.Clone(e.codes), true
}

func (c *MemoryPermissionCache) Set(_ context.Context, roleID uint64, codes []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[roleID] = memoryEntry{codes: slices.Clone(codes), expireAt: c.now().Add(c.ttl)}
}

func (c *MemoryPermissionCache) Invalidate(_ context.Context, roleIDs ...uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range roleIDs {
		delete(c.entries, id)
	}
}

func (c *MemoryPermissionCache) Clear(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]memoryEntry)
}
