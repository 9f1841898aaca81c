package sentinel

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ayxworxfr/gsms/internal/config"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardResource(t *testing.T) {
	g, err := Load(&config.SentinelConfig{Resources: []config.SentinelResource{
		{Name: "global", Path: config.GlobalResource, Enabled: true},
		{Name: "project_detail", Path: "/api/projects/:id", Enabled: true},
		{Name: "disabled", Path: "/api/tasks", Enabled: false},
	}})
	require.NoError(t, err)

	name, ok := g.Resource("/api/projects/:id")
	assert.True(t, ok)
	assert.Equal(t, "project_detail", name)

	name, ok = g.Resource("/api/tasks")
	assert.True(t, ok)
	assert.Equal(t, "global", name)

	g, err = Load(&config.SentinelConfig{})
	require.NoError(t, err)
	_, ok = g.Resource("/api/tasks")
	assert.False(t, ok)
}

func TestGuardBlocksOverThreshold(t *testing.T) {
	g, err := Load(&config.SentinelConfig{Resources: []config.SentinelResource{{
		Name:    "guard_test_login",
		Path:    "/login",
		Enabled: true,
		Flow:    &config.FlowRule{Threshold: 1},
	}}})
	require.NoError(t, err)

	h := server.New()
	h.Use(g.Middleware())
	h.GET("/login", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, mycontext.Success(nil))
	})
	h.GET("/free", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, mycontext.Success(nil))
	})

	first := ut.PerformRequest(h.Engine, http.MethodGet, "/login", nil).Result()
	assert.Equal(t, http.StatusOK, first.StatusCode())

	second := ut.PerformRequest(h.Engine, http.MethodGet, "/login", nil).Result()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode())
	var env struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(second.Body(), &env))
	assert.Equal(t, errcode.TooManyRequests.Code, env.Code)

	for i := 0; i < 3; i++ {
		rsp := ut.PerformRequest(h.Engine, http.MethodGet, "/free", nil).Result()
		assert.Equal(t, http.StatusOK, rsp.StatusCode())
	}
}
