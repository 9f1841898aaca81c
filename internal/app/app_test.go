package app

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/ayxworxfr/gsms/internal/config"
	"github.com/ayxworxfr/gsms/internal/container"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/cloudwego/hertz/pkg/common/ut"
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"xorm.io/xorm"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.JWT.Secret = "app-test"
	cfg.Database.DBName = "gsms_test"
	engine, err := xorm.NewEngine("mysql", cfg.Database.DSN())
	require.NoError(t, err)
	c, err := container.New(cfg, engine)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	a := NewApp(cfg)
	a.SetupMiddlewares(c, nil)
	require.NotPanics(t, func() { a.SetupRoutes(c) })
	return a
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)

	for _, url := range []string{"/api/projects", "/api/users/info", "/api/statistics/dashboard", "/api/gantt/project/1"} {
		rsp := ut.PerformRequest(a.server.Engine, http.MethodGet, url, nil).Result()
		assert.Equal(t, http.StatusUnauthorized, rsp.StatusCode(), url)
		var env struct {
			Code int `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rsp.Body(), &env))
		assert.Equal(t, errcode.Unauthorized.Code, env.Code, url)
	}
}

func TestPublicRoutesSkipToken(t *testing.T) {
	a := newTestApp(t)

	body := `{"username":"alice"}`
	rsp := ut.PerformRequest(a.server.Engine, http.MethodPost, "/api/users/login",
		&ut.Body{Body: strings.NewReader(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	).Result()
	assert.Equal(t, http.StatusBadRequest, rsp.StatusCode())

	rsp = ut.PerformRequest(a.server.Engine, http.MethodOptions, "/api/projects", nil).Result()
	assert.Equal(t, http.StatusNoContent, rsp.StatusCode())
}
