package router

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemRequest struct {
	ID uint64 `path:"id" vd:"$>0"`
}

type itemHandler struct{}

func (h *itemHandler) GetItem(c *mycontext.Context, req *itemRequest) *mycontext.Response {
	if req.ID == 404 {
		return mycontext.Fail(errcode.ProjectNotFound)
	}
	return mycontext.Success(map[string]any{"id": req.ID, "user": c.GetUserID()})
}

func (h *itemHandler) Boom(c *mycontext.Context) *mycontext.Response {
	return mycontext.Fail(context.DeadlineExceeded)
}

func (h *itemHandler) Routes() []*Router {
	return []*Router{
		GET("/items/:id", h.GetItem),
		GET("/boom", h.Boom),
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *server.Hertz {
	t.Helper()
	h := server.New()
	api := NewRouterGroup(h.Group("/api"))
	api.Use(func(ctx context.Context, c *app.RequestContext) {
		c.Next(mycontext.WithIdentity(ctx, mycontext.Identity{UserID: 7, Username: "alice"}))
	})
	Register(api, &itemHandler{})
	return h
}

func perform(t *testing.T, h *server.Hertz, url string) (int, envelope) {
	t.Helper()
	w := ut.PerformRequest(h.Engine, http.MethodGet, url, nil)
	rsp := w.Result()
	var env envelope
	require.NoError(t, json.Unmarshal(rsp.Body(), &env))
	return rsp.StatusCode(), env
}

func TestAdaptBindsAndPropagatesContext(t *testing.T) {
	h := newTestServer(t)

	status, env := perform(t, h, "/api/items/5")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, mycontext.CodeSuccess, env.Code)
	assert.JSONEq(t, `{"id":5,"user":7}`, string(env.Data))
}

func TestAdaptErrors(t *testing.T) {
	h := newTestServer(t)

	status, env := perform(t, h, "/api/items/0")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, mycontext.CodeParamError, env.Code)

	status, env = perform(t, h, "/api/items/404")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, errcode.ProjectNotFound.Code, env.Code)

	status, env = perform(t, h, "/api/boom")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, mycontext.MessageInternalError, env.Message)
}

func TestFindRouter(t *testing.T) {
	h := server.New()
	api := NewRouterGroup(h.Group("/api"))
	Register(api, &itemHandler{})

	r, ok := api.FindRouter("GET", "/items/:id")
	require.True(t, ok)
	assert.Equal(t, MethodGet, r.GetMethod())
	_, ok = api.FindRouter("POST", "/items/:id")
	assert.False(t, ok)
	assert.Len(t, api.GetRouter(), 2)
}

func TestAdaptRejectsBadSignatures(t *testing.T) {
	assert.Panics(t, func() { adapt(func(int) {}) })
	assert.Panics(t, func() { adapt(func(*mycontext.Context, int) *mycontext.Response { return nil }) })
	assert.Panics(t, func() { adapt(func(*mycontext.Context) error { return nil }) })
	assert.NotPanics(t, func() { adapt(func(*mycontext.Context) {}) })
}
