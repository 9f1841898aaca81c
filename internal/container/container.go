// Package container 组合根：按配置创建数据访问、权限解析、缓存与全部业务服务。
package container

import (
	"context"
	"time"

	"github.com/ayxworxfr/gsms/internal/authz"
	"github.com/ayxworxfr/gsms/internal/config"
	"github.com/ayxworxfr/gsms/internal/cron"
	"github.com/ayxworxfr/gsms/internal/dao"
	"github.com/ayxworxfr/gsms/internal/middleware"
	"github.com/ayxworxfr/gsms/internal/service"
	"github.com/ayxworxfr/gsms/pkg/crypter"
	pkgcron "github.com/ayxworxfr/gsms/pkg/cron"
	"github.com/ayxworxfr/gsms/pkg/jwtauth"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"xorm.io/xorm"
)

const limiterSweepInterval = time.Minute

type Container struct {
	Config   *config.Config
	Engine   *xorm.Engine
	DAO      *dao.DAO
	Redis    redis.UniversalClient // redis.enabled 为假时为 nil
	Resolver *authz.Resolver
	Names    *service.NameCache
	Tokens   *jwtauth.JWT
	Limiter  middleware.Limiter // rate_limit.enabled 为假时为 nil

	Audit       *service.OperationLogService
	Auth        *service.AuthService
	Users       *service.UserService
	Roles       *service.RoleService
	Permissions *service.PermissionService
	Departments *service.DepartmentService
	Menus       *service.MenuService
	Projects    *service.ProjectService
	Iterations  *service.IterationService
	Tasks       *service.TaskService
	Gantt       *service.GanttService
	WorkHours   *service.WorkHourService
	Statistics  *service.StatisticsService

	Scheduler *pkgcron.TaskManager

	hasher crypter.Crypter
	cancel context.CancelFunc
}

// Build 连接数据库后组装
func Build(cfg *config.Config) (*Container, error) {
	engine, err := dao.NewEngine(cfg.Database, cfg.Logger.Level)
	if err != nil {
		return nil, err
	}
	c, err := New(cfg, engine)
	if err != nil {
		_ = engine.Close()
		return nil, err
	}
	return c, nil
}

// New 使用已有引擎组装，不发起任何连接
func New(cfg *config.Config, engine *xorm.Engine) (*Container, error) {
	tokens, err := jwtauth.NewJWT(cfg.JWT.Secret, cfg.JWT.AccessTokenExp, cfg.JWT.RefreshTokenExp)
	if err != nil {
		return nil, errors.Wrap(err, "init jwt")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Container{
		Config: cfg,
		Engine: engine,
		DAO:    dao.New(engine),
		Tokens: tokens,
		cancel: cancel,
	}
	if cfg.Redis.Enabled {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	c.Resolver = authz.NewResolver(c.DAO.AuthzStore(), c.permissionCache())
	c.Names = service.NewNameCache(c.DAO.Users, c.DAO.Departments)
	c.Limiter = c.rateLimiter(ctx)
	c.hasher = crypter.NewBcryptCrypter(cfg.Security.BcryptCost)
	c.wireServices(c.hasher)

	c.Scheduler, err = cron.NewScheduler(cfg, c.Names, cron.NewHealthClient(cfg.Server.Port))
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "init scheduler")
	}
	return c, nil
}

func (c *Container) permissionCache() authz.PermissionCache {
	ttl := time.Duration(c.Config.Cache.PermissionTTL) * time.Second
	if c.Redis != nil {
		return authz.NewRedisPermissionCache(c.Redis, c.Config.Redis.Prefix, ttl)
	}
	return authz.NewMemoryPermissionCache(ttl)
}

func (c *Container) rateLimiter(ctx context.Context) middleware.Limiter {
	rl := c.Config.RateLimit
	if !rl.Enabled {
		return nil
	}
	if c.Redis != nil {
		return middleware.NewRedisLimiter(c.Redis, c.Config.Redis.Prefix, rl.QPS, rl.Burst)
	}
	l := middleware.NewMemoryLimiter(rl.QPS, rl.Burst, 10*time.Minute)
	go l.Run(ctx, limiterSweepInterval)
	return l
}

func (c *Container) wireServices(hasher crypter.Crypter) {
	d := c.DAO
	auth, names := c.Resolver, c.Names

	c.Audit = service.NewOperationLogService(d.OperationLogs)
	audit := c.Audit

	c.Auth = service.NewAuthService(d.Tx, d.Users, d.Roles, hasher, c.Tokens, auth, auth, audit, names, names)
	c.Users = service.NewUserService(d.Tx, d.Users, d.Roles, d.Departments, d.UserRefs(), hasher, auth, auth, audit, names, names)
	c.Roles = service.NewRoleService(d.Tx, d.Roles, d.Users, d.Permissions, auth, auth, audit, names)
	c.Permissions = service.NewPermissionService(d.Permissions, d.Roles, auth, auth, audit)
	c.Departments = service.NewDepartmentService(d.Tx, d.Departments, d.Users, auth, audit, names)
	c.Menus = service.NewMenuService(d.Tx, d.Menus, d.Permissions, auth, auth, audit)
	c.Projects = service.NewProjectService(d.Tx, d.Projects, d.Members, d.Users,
		d.Iterations, d.Tasks, d.WorkHours, auth, audit, names)
	c.Iterations = service.NewIterationService(d.Iterations, d.Projects, d.Tasks, auth, audit)
	c.Tasks = service.NewTaskService(d.Tx, d.Tasks, d.TaskLinks, d.Projects, d.Iterations, d.Members, auth, audit, names)
	c.Gantt = service.NewGanttService(d.Projects, d.Iterations, d.Tasks, d.TaskLinks, auth, audit, names)
	c.WorkHours = service.NewWorkHourService(d.Tx, d.WorkHours, d.Projects, d.Tasks, d.Members, auth, audit, names)
	c.Statistics = service.NewStatisticsService(d.WorkHours, d.Projects, d.Tasks, d.Users, d.Users, d.Departments, auth, names)
}

// Seed 写入内置角色、权限与管理员账号
func (c *Container) Seed(ctx context.Context) error {
	seed := c.Config.Seed
	admin := dao.SeedAdmin{Username: seed.AdminUsername}
	if seed.AdminPassword != "" {
		hashed, err := c.hasher.Encrypt(seed.AdminPassword)
		if err != nil {
			return errors.Wrap(err, "hash admin password")
		}
		admin.PasswordHash = hashed
	}
	return dao.Seed(ctx, c.DAO, admin)
}

// Start 预热名称缓存并启动定时任务，预热失败只记录日志
func (c *Container) Start(ctx context.Context) {
	if err := c.Names.Refresh(ctx); err != nil {
		logger.Warn(ctx, "warm up name cache failed", zap.Error(err))
	}
	c.Scheduler.Start()
}

// Close 停止定时任务，等待审计日志写完后释放连接
func (c *Container) Close() error {
	c.cancel()
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.Audit != nil {
		c.Audit.Wait()
	}
	var result *multierror.Error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "close redis"))
		}
	}
	if err := c.Engine.Close(); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "close database"))
	}
	return result.ErrorOrNil()
}
