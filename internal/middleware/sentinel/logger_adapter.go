package sentinel

import (
	"github.com/alibaba/sentinel-golang/logging"
	"go.uber.org/zap"
)

// zapLogger 把 sentinel 内部日志转到 zap
type zapLogger struct {
	l *zap.Logger
}

func newZapLogger(l *zap.Logger) logging.Logger {
	return &zapLogger{l: l.Named("sentinel").WithOptions(zap.AddCallerSkip(1))}
}

func (z *zapLogger) Debug(msg string, kv ...any) { z.l.Debug(msg, fields(kv)...) }
func (z *zapLogger) Info(msg string, kv ...any)  { z.l.Info(msg, fields(kv)...) }
func (z *zapLogger) Warn(msg string, kv ...any)  { z.l.Warn(msg, fields(kv)...) }

func (z *zapLogger) Error(err error, msg string, kv ...any) {
	z.l.Error(msg, append(fields(kv), zap.Error(err))...)
}

func (z *zapLogger) DebugEnabled() bool { return z.l.Core().Enabled(zap.DebugLevel) }
func (z *zapLogger) InfoEnabled() bool  { return z.l.Core().Enabled(zap.InfoLevel) }
func (z *zapLogger) WarnEnabled() bool  { return z.l.Core().Enabled(zap.WarnLevel) }
func (z *zapLogger) ErrorEnabled() bool { return z.l.Core().Enabled(zap.ErrorLevel) }

// fields 键值对转 zap.Field，非字符串键忽略
func fields(kv []any) []zap.Field {
	out := make([]zap.Field, 0, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		var v any
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		out = append(out, zap.Any(key, v))
	}
	return out
}
