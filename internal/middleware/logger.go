package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maskedValue = "****"

func LogMiddleware() app.HandlerFunc {
	return NewLogger().Logger()
}

// LoggerConfig 请求日志参数
type LoggerConfig struct {
	MaxBodySize     int    // 请求体、响应体记录的最大字节数
	TruncatedSuffix string // 截断后缀
	SensitiveFields []string
}

// LoggerMiddleware 日志中间件结构体
type LoggerMiddleware struct {
	config LoggerConfig
}

// NewLogger 未设置的配置项使用默认值
func NewLogger(config ...LoggerConfig) *LoggerMiddleware {
	cfg := LoggerConfig{
		MaxBodySize:     1024 * 8,
		TruncatedSuffix: "[TRUNCATED]",
		SensitiveFields: []string{"password", "token", "secret"},
	}
	if len(config) > 0 {
		userCfg := config[0]
		if userCfg.MaxBodySize > 0 {
			cfg.MaxBodySize = userCfg.MaxBodySize
		}
		if userCfg.TruncatedSuffix != "" {
			cfg.TruncatedSuffix = userCfg.TruncatedSuffix
		}
		if len(userCfg.SensitiveFields) > 0 {
			cfg.SensitiveFields = userCfg.SensitiveFields
		}
	}
	return &LoggerMiddleware{config: cfg}
}

// Logger 记录请求开始与结束，请求参数和响应体中的敏感字段脱敏
func (l *LoggerMiddleware) Logger() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		span := trace.SpanFromContext(ctx)

		requestParams := l.requestParams(c)
		logger.Info(ctx, "Request started",
			zap.String("user_agent", string(c.Request.Header.UserAgent())),
			zap.Int("request_size_bytes", len(c.Request.Body())),
			zap.Any("request_params", requestParams),
		)

		c.Next(ctx)

		latency := time.Since(start)
		statusCode := c.Response.StatusCode()
		body := l.responseBody(c)
		fields := []zap.Field{
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
			zap.Int("response_size_bytes", len(c.Response.Body())),
			zap.String("response_body", body),
		}

		if statusCode >= consts.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(statusCode))
			logger.Warn(ctx, "Request completed with error", fields...)
		} else {
			span.SetStatus(codes.Ok, "")
			logger.Info(ctx, "Request completed successfully", fields...)
		}
		span.AddEvent("request_completed", trace.WithAttributes(
			attribute.Int("http.status_code", statusCode),
			attribute.Int64("http.latency_ms", latency.Milliseconds()),
			attribute.String("http.request.params", fmt.Sprintf("%v", requestParams)),
		))
	}
}

// requestParams 合并查询参数与 JSON 请求体
func (l *LoggerMiddleware) requestParams(c *app.RequestContext) map[string]any {
	params := make(map[string]any)
	c.QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if l.isSensitive(k) {
			params[k] = maskedValue
			return
		}
		params[k] = l.truncate(value)
	})

	body := c.Request.Body()
	if len(body) == 0 || !strings.Contains(string(c.Request.Header.ContentType()), "application/json") {
		return params
	}
	if len(body) > l.config.MaxBodySize {
		params["_body"] = l.truncate(body)
		return params
	}
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		params["_json_parse_error"] = err.Error()
		return params
	}
	for k, v := range data {
		if _, ok := params[k]; !ok {
			params[k] = l.mask(k, v)
		}
	}
	return params
}

func (l *LoggerMiddleware) responseBody(c *app.RequestContext) string {
	body := c.Response.Body()
	if len(body) == 0 {
		return ""
	}
	if len(body) > l.config.MaxBodySize {
		return l.truncate(body)
	}
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	masked, err := json.Marshal(l.mask("", data))
	if err != nil {
		return string(body)
	}
	return string(masked)
}

// mask 递归脱敏，key 为当前值所在字段名
func (l *LoggerMiddleware) mask(key string, v any) any {
	if key != "" && l.isSensitive(key) {
		return maskedValue
	}
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = l.mask(k, item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = l.mask("", item)
		}
		return out
	default:
		return v
	}
}

func (l *LoggerMiddleware) isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, field := range l.config.SensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func (l *LoggerMiddleware) truncate(b []byte) string {
	if len(b) <= l.config.MaxBodySize {
		return string(b)
	}
	return string(b[:l.config.MaxBodySize]) + l.config.TruncatedSuffix
}
