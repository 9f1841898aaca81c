package context

import (
	"context"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_ClientIP(t *testing.T) {
	c := createTestContext()
	c.Request.Header.Set("X-Forwarded-For", "10.0.0.1, 192.168.1.1")
	c.Request.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.1", c.ClientIP())

	c.Request.Header.Del("X-Forwarded-For")
	assert.Equal(t, "10.0.0.2", c.ClientIP())
}

func TestContext_Identity(t *testing.T) {
	c := createTestContext()
	assert.Zero(t, c.GetUserID())
	_, ok := c.Identity()
	assert.False(t, ok)

	c = NewContext(WithIdentity(context.Background(), Identity{UserID: 7, Username: "alice"}), c.RequestContext)
	id, ok := c.Identity()
	require.True(t, ok)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, uint64(7), c.GetUserID())
}

type codedErr struct{}

func (codedErr) Error() string        { return "[3305] has children" }
func (codedErr) ErrorCode() int       { return 3305 }
func (codedErr) HTTPStatus() int      { return http.StatusBadRequest }
func (codedErr) ErrorMessage() string { return "has children" }

func TestFail(t *testing.T) {
	rsp := Fail(errors.Wrap(codedErr{}, "delete department"))
	assert.Equal(t, 3305, rsp.Code)
	assert.Equal(t, "has children", rsp.Message)
	assert.Equal(t, http.StatusBadRequest, rsp.Status())
	assert.Nil(t, rsp.Data)

	rsp = Fail(errors.New("dial tcp: connection refused"))
	assert.Equal(t, CodeInternalError, rsp.Code)
	assert.Equal(t, MessageInternalError, rsp.Message)
	assert.Equal(t, http.StatusInternalServerError, rsp.Status())
	assert.Error(t, rsp.Err())
}

func TestSuccess(t *testing.T) {
	rsp := PageSuccess([]int{1, 2}, 12, 2, 10)
	assert.Equal(t, CodeSuccess, rsp.Code)
	assert.Equal(t, http.StatusOK, rsp.Status())
	page, ok := rsp.Data.(*PageResult)
	require.True(t, ok)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 2, page.PageNum)
}

func createTestContext() *Context {
	h := app.NewContext(0)
	h.Request.Header.SetMethod("GET")
	h.Request.SetRequestURI("/test")
	return &Context{RequestContext: h}
}
