package context

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
)

// Context 是对 Hertz 的 app.RequestContext 的封装，同时持有请求级 context.Context
type Context struct {
	ctx context.Context
	*app.RequestContext
}

// NewContext 创建一个新的 Context
func NewContext(ctx context.Context, c *app.RequestContext) *Context {
	return &Context{ctx: ctx, RequestContext: c}
}

// Context 返回原始的 context.Context，身份信息也在其中
func (ctx *Context) Context() context.Context {
	if ctx.ctx == nil {
		return context.Background()
	}
	return ctx.ctx
}

// Identity 当前登录身份
func (ctx *Context) Identity() (Identity, bool) {
	return IdentityFrom(ctx.Context())
}

// GetUserID 未登录时返回 0
func (ctx *Context) GetUserID() uint64 {
	return UserIDFrom(ctx.Context())
}

// ClientIP 依次取 X-Forwarded-For 首个地址、X-Real-IP、连接地址
func (ctx *Context) ClientIP() string {
	return ClientIP(ctx.RequestContext)
}

func ClientIP(c *app.RequestContext) string {
	if xff := string(c.Request.Header.Peek("X-Forwarded-For")); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" && !strings.EqualFold(ip, "unknown") {
			return ip
		}
	}
	if ip := strings.TrimSpace(string(c.Request.Header.Peek("X-Real-IP"))); ip != "" && !strings.EqualFold(ip, "unknown") {
		return ip
	}
	return c.ClientIP()
}
