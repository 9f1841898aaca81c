package sentinel

import (
	"context"
	"net/http"

	"github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/circuitbreaker"
	sconfig "github.com/alibaba/sentinel-golang/core/config"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/alibaba/sentinel-golang/logging"
	"github.com/ayxworxfr/gsms/internal/config"
	"github.com/ayxworxfr/gsms/internal/domain/errcode"
	mycontext "github.com/ayxworxfr/gsms/pkg/context"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Guard 按路由模板匹配 sentinel 资源，做流控与熔断
type Guard struct {
	resources map[string]string // 路由模板 -> 资源名
	fallback  string            // 全局资源名，未配置时为空
}

// Init 初始化 sentinel 运行时并加载规则，进程内只调用一次
func Init(cfg *config.SentinelConfig) (*Guard, error) {
	sc := sconfig.NewDefaultConfig()
	sc.Sentinel.App.Name = cfg.AppName
	if cfg.LogDir != "" {
		sc.Sentinel.Log.Dir = cfg.LogDir
	}
	logging.ResetGlobalLogger(newZapLogger(logger.Instance))
	if err := api.InitWithConfig(sc); err != nil {
		return nil, errors.Wrap(err, "init sentinel")
	}
	return Load(cfg)
}

// Load 只加载规则，不初始化运行时
func Load(cfg *config.SentinelConfig) (*Guard, error) {
	g := &Guard{resources: make(map[string]string)}
	var flows []*flow.Rule
	var breakers []*circuitbreaker.Rule
	for _, r := range cfg.Resources {
		if !r.Enabled {
			continue
		}
		if r.Path == config.GlobalResource {
			g.fallback = r.Name
		} else {
			g.resources[r.Path] = r.Name
		}
		flows = append(flows, r.FlowRules()...)
		breakers = append(breakers, r.BreakerRules(cfg.Breaker)...)
	}
	if _, err := flow.LoadRules(flows); err != nil {
		return nil, errors.Wrap(err, "load flow rules")
	}
	if _, err := circuitbreaker.LoadRules(breakers); err != nil {
		return nil, errors.Wrap(err, "load circuit breaker rules")
	}
	return g, nil
}

// Resource 返回路由模板对应的资源名
func (g *Guard) Resource(fullPath string) (string, bool) {
	if name, ok := g.resources[fullPath]; ok {
		return name, true
	}
	return g.fallback, g.fallback != ""
}

// Middleware 未匹配资源的请求直接放行，5xx 响应计入熔断错误
func (g *Guard) Middleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		name, ok := g.Resource(c.FullPath())
		if !ok {
			c.Next(ctx)
			return
		}

		entry, blockErr := api.Entry(name, api.WithTrafficType(base.Inbound))
		if blockErr != nil {
			logger.Warn(ctx, "Request blocked by sentinel",
				zap.String("resource", name),
				zap.String("block_type", blockErr.BlockType().String()),
			)
			rejected := errcode.TooManyRequests
			if blockErr.BlockType() == base.BlockTypeCircuitBreaking {
				rejected = errcode.ServiceUnavailable
			}
			mycontext.Fail(rejected).Write(mycontext.NewContext(ctx, c))
			c.Abort()
			return
		}
		defer entry.Exit()

		c.Next(ctx)
		if status := c.Response.StatusCode(); status >= http.StatusInternalServerError {
			api.TraceError(entry, errors.New(http.StatusText(status)))
		}
	}
}
