package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	var down bool
	h := server.New()
	router.Register(router.NewRouterGroup(h.Group("")), NewHealthHandler(pingFunc(func(ctx context.Context) error {
		if down {
			return errors.New("connection refused")
		}
		return nil
	})))

	rsp := ut.PerformRequest(h.Engine, http.MethodGet, "/health", nil).Result()
	require.Equal(t, http.StatusOK, rsp.StatusCode())
	var env struct {
		Code int            `json:"code"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rsp.Body(), &env))
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "ok", env.Data["status"])

	down = true
	rsp = ut.PerformRequest(h.Engine, http.MethodGet, "/health", nil).Result()
	assert.Equal(t, http.StatusInternalServerError, rsp.StatusCode())
	require.NoError(t, json.Unmarshal(rsp.Body(), &env))
	assert.Equal(t, errcode.ServiceUnavailable.Code, env.Code)
}
