package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calc struct {
	base int
}

type addRequest struct {
	A, B int
}

func (c *calc) Add(req *addRequest) int {
	return c.base + req.A + req.B
}

func (c *calc) Fail() (*addRequest, error) {
	return nil, errors.New("boom")
}

func TestNewFuncInvoker(t *testing.T) {
	_, err := NewFuncInvoker(42)
	assert.Error(t, err)

	var nilFn func()
	_, err = NewFuncInvoker(nilFn)
	assert.Error(t, err)

	inv, err := NewFuncInvoker((&calc{}).Add)
	require.NoError(t, err)
	assert.Equal(t, "Add", inv.Name())
	assert.Equal(t, 1, inv.NumIn())
	assert.Equal(t, 1, inv.NumOut())
	assert.False(t, inv.ReturnsError())
}

func TestFuncInvokerCall(t *testing.T) {
	inv, err := NewFuncInvoker((&calc{base: 10}).Add)
	require.NoError(t, err)

	arg := inv.NewArg(0)
	req, ok := arg.(*addRequest)
	require.True(t, ok)
	req.A, req.B = 1, 2

	out, err := inv.Call(arg)
	require.NoError(t, err)
	assert.Equal(t, []any{13}, out)

	_, err = inv.Call("wrong")
	assert.Error(t, err)
	_, err = inv.Call()
	assert.Error(t, err)
}

func TestFuncInvokerNilResults(t *testing.T) {
	inv, err := NewFuncInvoker((&calc{}).Fail)
	require.NoError(t, err)
	assert.True(t, inv.ReturnsError())

	out, err := inv.Call()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Nil(t, out[0])
	assert.EqualError(t, out[1].(error), "boom")
}

func TestFuncName(t *testing.T) {
	assert.Equal(t, "TestFuncName", FuncName(TestFuncName))
	assert.Equal(t, "Fail", FuncName((&calc{}).Fail))
	assert.Equal(t, "", FuncName("x"))
}

func TestGetAbsPath(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "etc", "gsms.yaml")
	assert.Equal(t, abs, GetAbsPath(abs))

	root := ProjectRoot()
	_, err := os.Stat(filepath.Join(root, "go.mod"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "conf", "config.yaml"), GetAbsPath("conf/config.yaml"))

	t.Setenv(RootEnv, "/srv/gsms")
	assert.Equal(t, filepath.Join("/srv/gsms", "conf"), GetAbsPath("conf"))
}
