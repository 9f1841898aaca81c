package middleware

import (
	"context"
	"runtime/debug"

	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"
)

// GlobalErrorHandlerMiddleware 捕获 panic，客户端只收到统一的 500 响应
func GlobalErrorHandlerMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(ctx, "Panic occurred",
					zap.Any("error", err),
					zap.String("url", string(c.Request.URI().FullURI())),
					zap.String("method", string(c.Request.Method())),
					zap.String("stack", string(debug.Stack())),
				)

				c.Response.ResetBody()
				mycontext.InternalError().Write(mycontext.NewContext(ctx, c))
				c.Abort()
			}
		}()

		c.Next(ctx)
	}
}
