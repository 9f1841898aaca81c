package context

import "context"

// Identity 当前请求的登录身份
type Identity struct {
	UserID   uint64
	Username string
	IP       string
}

type identityKey struct{}

// WithIdentity 将身份写入 context，由认证中间件调用
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom 读取身份，未认证的请求返回 ok=false
func IdentityFrom(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != 0
}

// UserIDFrom 未认证时返回 0
func UserIDFrom(ctx context.Context) uint64 {
	id, _ := IdentityFrom(ctx)
	return id.UserID
}

// RequestMeta 请求方法、路径与客户端 IP，所有路由都会写入
type RequestMeta struct {
	Method string
	Path   string
	IP     string
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

// RequestMetaFrom 非 HTTP 调用返回零值
func RequestMetaFrom(ctx context.Context) RequestMeta {
	if ctx == nil {
		return RequestMeta{}
	}
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}
