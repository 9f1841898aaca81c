package container

import (
	"testing"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/config"
	"github.com/ayxworxfr/gsms/internal/middleware"
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"xorm.io/xorm"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.JWT.Secret = "container-test"
	cfg.Database.DBName = "gsms_test"
	return cfg
}

// xorm.NewEngine 只打开连接池，不会真正连接
func newEngine(t *testing.T, cfg *config.Config) *xorm.Engine {
	t.Helper()
	engine, err := xorm.NewEngine("mysql", cfg.Database.DSN())
	require.NoError(t, err)
	return engine
}

func TestNewWiresServices(t *testing.T) {
	cfg := testConfig()
	c, err := New(cfg, newEngine(t, cfg))
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Redis)
	assert.Nil(t, c.Limiter)
	for name, svc := range map[string]any{
		"auth": c.Auth, "users": c.Users, "roles": c.Roles, "permissions": c.Permissions,
		"departments": c.Departments, "menus": c.Menus, "projects": c.Projects,
		"iterations": c.Iterations, "tasks": c.Tasks, "gantt": c.Gantt,
		"work_hours": c.WorkHours, "statistics": c.Statistics, "audit": c.Audit,
	} {
		assert.NotNil(t, svc, name)
	}
	assert.NotEmpty(t, c.Scheduler.ListTasks())
}

func TestNewSelectsBackends(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	c, err := New(cfg, newEngine(t, cfg))
	require.NoError(t, err)
	assert.IsType(t, &middleware.MemoryLimiter{}, c.Limiter)
	assert.IsType(t, &authz.MemoryPermissionCache{}, c.permissionCache())
	require.NoError(t, c.Close())

	cfg.Redis.Enabled = true
	c, err = New(cfg, newEngine(t, cfg))
	require.NoError(t, err)
	assert.NotNil(t, c.Redis)
	assert.IsType(t, &middleware.RedisLimiter{}, c.Limiter)
	assert.IsType(t, &authz.RedisPermissionCache{}, c.permissionCache())
	_ = c.Close()
}

func TestNewRejectsBadJWTConfig(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTokenExp = "soon"
	_, err := New(cfg, newEngine(t, cfg))
	assert.Error(t, err)
}
