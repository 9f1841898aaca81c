package middleware

import (
	"context"

	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/cloudwego/hertz/pkg/app"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TraceContextMiddleware 把追踪 id 和请求信息写入 context，后续日志与操作日志都从这里取
func TraceContextMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		spanContext := trace.SpanFromContext(ctx).SpanContext()
		meta := mycontext.RequestMeta{
			Method: string(c.Method()),
			Path:   string(c.Path()),
			IP:     mycontext.ClientIP(c),
		}

		newCtx := logger.WithContext(ctx,
			zap.String("trace_id", spanContext.TraceID().String()),
			zap.String("span_id", spanContext.SpanID().String()),
			zap.String("method", meta.Method),
			zap.String("path", meta.Path),
			zap.String("client_ip", meta.IP),
		)
		newCtx = mycontext.WithRequestMeta(newCtx, meta)

		c.Next(newCtx)
	}
}
