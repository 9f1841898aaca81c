package project

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ayxworxfr/gsms/internal/app/router"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tables() []router.RouteTable {
	return []router.RouteTable{
		NewProjectHandler(nil),
		NewIterationHandler(nil),
		NewTaskHandler(nil),
		NewGanttHandler(nil, nil),
		NewWorkHourHandler(nil),
		NewStatisticsHandler(nil),
	}
}

func TestRoutesRegister(t *testing.T) {
	h := server.New()
	group := router.NewRouterGroup(h.Group("/api"))
	require.NotPanics(t, func() { router.Register(group, tables()...) })

	for _, want := range [][2]string{
		{http.MethodGet, "/projects/:id/members"},
		{http.MethodDelete, "/projects/:id/members/:userId"},
		{http.MethodGet, "/tasks/search"},
		{http.MethodPut, "/gantt/task/:id/parent"},
		{http.MethodPut, "/work-hours/:id/status"},
		{http.MethodGet, "/statistics/workhours/trend"},
	} {
		_, ok := group.FindRouter(want[0], want[1])
		assert.True(t, ok, "%s %s", want[0], want[1])
	}
}

// 参数校验在调用服务之前完成
func TestRoutesRejectInvalidPath(t *testing.T) {
	h := server.New()
	router.Register(router.NewRouterGroup(h.Group("/api")), tables()...)

	for _, url := range []string{
		"/api/projects/0",
		"/api/projects/abc/members",
		"/api/statistics/project/0/completion",
		"/api/tasks/tree",
	} {
		rsp := ut.PerformRequest(h.Engine, http.MethodGet, url, nil).Result()
		assert.Equal(t, http.StatusBadRequest, rsp.StatusCode(), url)
		var env struct {
			Code int `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rsp.Body(), &env))
		assert.Equal(t, 1001, env.Code, url)
	}
}
