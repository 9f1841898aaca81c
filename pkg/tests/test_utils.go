// Package tests 集成测试工具：连接 conf/config_test.yaml 指定的 mysql，
// 未设置 GSMS_INTEGRATION=1 时相关测试跳过。
package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/ayxworxfr/gsms/internal/app"
	"github.com/ayxworxfr/gsms/internal/config"
	"github.com/ayxworxfr/gsms/internal/container"
	"github.com/ayxworxfr/gsms/internal/dao"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/ayxworxfr/gsms/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/require"
)

const IntegrationEnv = "GSMS_INTEGRATION"

var once sync.Once

func InitConfig() *config.Config {
	cfg, err := config.Load(utils.GetAbsPath("conf/config_test.yaml"))
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	return cfg
}

func InitLogger(cfg config.LoggerConfig) {
	logger.InitLogger(logger.Config{
		LogFile:    cfg.LogFile,
		Level:      cfg.Level,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		Console:    cfg.Console,
	})
}

// Server 完整装配的服务，请求直接走 hertz 引擎
type Server struct {
	Container *container.Container
	engine    *route.Engine
}

// NewServer 重建测试库表结构后装配服务
func NewServer(t *testing.T) *Server {
	t.Helper()
	if os.Getenv(IntegrationEnv) != "1" {
		t.Skipf("set %s=1 to run against mysql", IntegrationEnv)
	}
	cfg := InitConfig()
	once.Do(func() { InitLogger(cfg.Logger) })

	engine, err := dao.NewEngine(cfg.Database, cfg.Logger.Level)
	require.NoError(t, err)
	require.NoError(t, dao.SyncDB(context.Background(), engine, true))

	c, err := container.New(cfg, engine)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Seed(context.Background()))

	a := app.NewApp(cfg)
	a.SetupMiddlewares(c, nil)
	a.SetupRoutes(c)
	return &Server{Container: c, engine: a.Engine()}
}

// Envelope 统一响应
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Do 发送 JSON 请求，token 为空时不带 Authorization
func (s *Server) Do(t *testing.T, method, url, token string, body any) (int, Envelope) {
	t.Helper()
	headers := []ut.Header{{Key: "Content-Type", Value: "application/json"}}
	if token != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + token})
	}
	var reqBody *ut.Body
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = &ut.Body{Body: strings.NewReader(string(raw)), Len: len(raw)}
	}
	rsp := ut.PerformRequest(s.engine, method, url, reqBody, headers...).Result()
	var env Envelope
	require.NoError(t, json.Unmarshal(rsp.Body(), &env), string(rsp.Body()))
	return rsp.StatusCode(), env
}

// Login 返回 access token
func (s *Server) Login(t *testing.T, username, password string) string {
	t.Helper()
	status, env := s.Do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.NotEmpty(t, result.Token)
	return result.Token
}
