package authz

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeySegment = "perm:role:"

// RedisPermissionCache 多实例部署时共享的权限缓存，redis 异常按未命中处理
type RedisPermissionCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisPermissionCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisPermissionCache {
	return &RedisPermissionCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisPermissionCache) key(roleID uint64) string {
	return c.prefix + redisKeySegment + strconv.FormatUint(roleID, 10)
}

func (c *RedisPermissionCache) Get(ctx context.Context, roleID uint64) ([]string, bool) {
	data, err := c.client.Get(ctx, c.key(roleID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn(ctx, "permission cache get failed", zap.Uint64("role_id", roleID), zap.Error(err))
		}
		return nil, false
	}
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		logger.Warn(ctx, "permission cache decode failed", zap.Uint64("role_id", roleID), zap.Error(err))
		return nil, false
	}
	return codes, true
}

func (c *RedisPermissionCache) Set(ctx context.Context, roleID uint64, codes []string) {
	if codes == nil {
		codes = []string{}
	}
	data, err := json.Marshal(codes)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(roleID), data, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "permission cache set failed", zap.Uint64("role_id", roleID), zap.Error(err))
	}
}

func (c *RedisPermissionCache) Invalidate(ctx context.Context, roleIDs ...uint64) {
	if len(roleIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		keys = append(keys, c.key(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Error(ctx, "permission cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Clear 扫描删除全部角色权限键
func (c *RedisPermissionCache) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, c.prefix+redisKeySegment+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Error(ctx, "permission cache scan failed", zap.Error(err))
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			logger.Error(ctx, "permission cache clear failed", zap.Error(err))
		}
	}
}
