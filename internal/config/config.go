package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ayxworxfr/gsms/pkg/cron"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Config 结构体用于存储所有配置
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	JWT           JWTConfig           `yaml:"jwt"`
	Security      SecurityConfig      `yaml:"security"`
	Logger        LoggerConfig        `yaml:"logger"`
	OpenTelemetry OpenTelemetryConfig `yaml:"opentelemetry"`
	Cache         CacheConfig         `yaml:"cache"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Tasks         []cron.TaskConfig   `yaml:"tasks"`
	Seed          SeedConfig          `yaml:"seed"`
}

// ServerConfig 存储服务器相关配置
type ServerConfig struct {
	Port         int      `yaml:"port"`
	SentinelFile string   `yaml:"sentinel_file"`
	AllowOrigins []string `yaml:"allow_origins"` // 为空时允许任意来源
}

// DatabaseConfig 存储数据库相关配置
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 秒
	ShowSQL         bool   `yaml:"show_sql"`
	SyncSchema      bool   `yaml:"sync_schema"`
}

// DSN mysql 连接串
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// RedisConfig 开启后权限缓存与限流计数使用 redis
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	TTL      int    `yaml:"ttl"` // 秒
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig 存储 JWT 相关配置
type JWTConfig struct {
	Secret          string `yaml:"secret"`
	AccessTokenExp  string `yaml:"access_token_exp"`
	RefreshTokenExp string `yaml:"refresh_token_exp"`
}

type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

// LoggerConfig 存储日志相关配置
type LoggerConfig struct {
	LogFile    string `yaml:"log_file"`
	Level      string `yaml:"level"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"`
}

// SeedConfig 启动时写入内置角色与权限，AdminPassword 非空时同时创建管理员
type SeedConfig struct {
	Enabled       bool   `yaml:"enabled"`
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

// CacheConfig 本地缓存
type CacheConfig struct {
	RefreshCron   string `yaml:"refresh_cron"`
	PermissionTTL int    `yaml:"permission_ttl"` // 秒
}

// RateLimitConfig 单 IP 令牌桶
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	QPS     float64 `yaml:"qps"`
	Burst   int     `yaml:"burst"`
}

// Default 带默认值的配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, SentinelFile: "conf/sentinel.yaml"},
		Database: DatabaseConfig{
			Host:            "127.0.0.1",
			Port:            3306,
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: 3600,
		},
		Redis:         RedisConfig{Host: "127.0.0.1", Port: 6379, Prefix: "gsms:", TTL: 1800},
		JWT:           JWTConfig{AccessTokenExp: "24h", RefreshTokenExp: "7d"},
		Security:      SecurityConfig{BcryptCost: 12},
		Logger:        LoggerConfig{Level: "info", Console: true},
		OpenTelemetry: NewOpenTelemetryConfig(),
		Cache:         CacheConfig{RefreshCron: "*/5 * * * *", PermissionTTL: 1800},
		RateLimit:     RateLimitConfig{QPS: 50, Burst: 100},
		Seed:          SeedConfig{Enabled: true, AdminUsername: "admin"},
	}
}

// Load 读取 YAML 配置并应用环境变量覆盖
func Load(filename string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filename, err)
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if instanceID := os.Getenv("INSTANCE_ID"); instanceID != "" {
		cfg.OpenTelemetry.Service = instanceID
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.OpenTelemetry.Endpoint = endpoint
	}
	if protocol := os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"); protocol != "" {
		cfg.OpenTelemetry.Protocol = protocol
	}
	if secret := os.Getenv("GSMS_JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if password := os.Getenv("GSMS_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if password := os.Getenv("GSMS_ADMIN_PASSWORD"); password != "" {
		cfg.Seed.AdminPassword = password
	}
	if port, err := strconv.Atoi(os.Getenv("GSMS_SERVER_PORT")); err == nil && port > 0 {
		cfg.Server.Port = port
	}
}

// Validate 检查必填项
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.JWT.Secret == "" {
		result = multierror.Append(result, fmt.Errorf("jwt.secret is required"))
	}
	if c.Database.DBName == "" {
		result = multierror.Append(result, fmt.Errorf("database.dbname is required"))
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		result = multierror.Append(result, fmt.Errorf("security.bcrypt_cost %d out of range", c.Security.BcryptCost))
	}
	return result.ErrorOrNil()
}
