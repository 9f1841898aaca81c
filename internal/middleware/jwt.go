package middleware

import (
	"context"

	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/ayxworxfr/gsms/pkg/jwtauth"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ClaimsKey 解析后的 claims 在 RequestContext 中的键
const ClaimsKey = "jwt_claims"

// TokenParser 校验 access token，由 jwtauth.JWT 实现
type TokenParser interface {
	ParseAccessToken(token string) (*jwtauth.Claims, error)
}

// UserGate 令牌签发后用户可能被禁用或删除，每次请求复核
type UserGate interface {
	ActiveUser(ctx context.Context, userID uint64) bool
}

// JWTMiddleware 校验 Bearer 令牌并把登录身份写入 context，
// 挂在受保护的路由分组上
func JWTMiddleware(tokens TokenParser, users UserGate) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		token, ok := jwtauth.ExtractBearer(string(c.Request.Header.Peek("Authorization")))
		if !ok {
			abort(ctx, c, errcode.Unauthorized.WithMessage("缺少访问令牌"))
			return
		}

		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			logger.Debug(ctx, "reject token", zap.Error(err))
			if errors.Is(err, jwtauth.ErrTokenExpired) {
				abort(ctx, c, errcode.TokenExpired)
				return
			}
			abort(ctx, c, errcode.Unauthorized.WithMessage("访问令牌无效"))
			return
		}
		if !users.ActiveUser(ctx, claims.UserID) {
			logger.Info(ctx, "reject token of inactive user", zap.Uint64("user_id", claims.UserID))
			abort(ctx, c, errcode.Unauthorized.WithMessage("用户不存在或已禁用"))
			return
		}
		c.Set(ClaimsKey, claims)

		id := mycontext.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			IP:       mycontext.ClientIP(c),
		}
		ctx = mycontext.WithIdentity(ctx, id)
		ctx = logger.WithContext(ctx, zap.Uint64("user_id", id.UserID))
		c.Next(ctx)
	}
}

func abort(ctx context.Context, c *app.RequestContext, err error) {
	mycontext.Fail(err).Write(mycontext.NewContext(ctx, c))
	c.Abort()
}
