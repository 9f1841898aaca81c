package config

import (
	"os"

	"github.com/alibaba/sentinel-golang/core/circuitbreaker"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// GlobalResource 路径为 * 的资源作用于所有未单独配置的路由
const GlobalResource = "*"

// SentinelConfig conf/sentinel.yaml
type SentinelConfig struct {
	AppName   string             `yaml:"app_name"`
	LogDir    string             `yaml:"log_dir"`
	Breaker   BreakerDefaults    `yaml:"circuit_breaker"`
	Resources []SentinelResource `yaml:"resources"`
}

// BreakerDefaults 熔断规则未填写时的默认值
type BreakerDefaults struct {
	RetryTimeoutMs   uint32 `yaml:"retry_timeout_ms"`
	MinRequestAmount uint64 `yaml:"min_request_amount"`
	StatIntervalMs   uint32 `yaml:"stat_interval_ms"`
}

// SentinelResource Path 为路由模板，如 /api/projects/:id
type SentinelResource struct {
	Name    string       `yaml:"name"`
	Path    string       `yaml:"path"`
	Enabled bool         `yaml:"enabled"`
	Flow    *FlowRule    `yaml:"flow"`
	Breaker *BreakerRule `yaml:"circuit_breaker"`
}

type FlowRule struct {
	Threshold         float64 `yaml:"threshold"`
	ControlBehavior   string  `yaml:"control_behavior"` // reject | throttle
	MaxQueueingTimeMs uint32  `yaml:"max_queueing_time_ms"`
}

type BreakerRule struct {
	Strategy         string  `yaml:"strategy"` // slow_request_ratio | error_ratio | error_count
	Threshold        float64 `yaml:"threshold"`
	MaxAllowedRtMs   uint64  `yaml:"max_allowed_rt_ms"`
	RetryTimeoutMs   uint32  `yaml:"retry_timeout_ms"`
	MinRequestAmount uint64  `yaml:"min_request_amount"`
	StatIntervalMs   uint32  `yaml:"stat_interval_ms"`
}

func LoadSentinelConfig(path string) (*SentinelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read sentinel config %s", path)
	}
	cfg := &SentinelConfig{AppName: "gsms"}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse sentinel config %s", path)
	}
	return cfg, nil
}

// FlowRules 未启用或未配置限流时返回 nil
func (r SentinelResource) FlowRules() []*flow.Rule {
	if !r.Enabled || r.Flow == nil {
		return nil
	}
	behavior := flow.Reject
	if r.Flow.ControlBehavior == "throttle" {
		behavior = flow.Throttling
	}
	return []*flow.Rule{{
		Resource:               r.Name,
		TokenCalculateStrategy: flow.Direct,
		ControlBehavior:        behavior,
		Threshold:              r.Flow.Threshold,
		MaxQueueingTimeMs:      r.Flow.MaxQueueingTimeMs,
		StatIntervalInMs:       1000,
	}}
}

// BreakerRules 规则中为 0 的字段依次取 defaults、内置默认值
func (r SentinelResource) BreakerRules(defaults BreakerDefaults) []*circuitbreaker.Rule {
	if !r.Enabled || r.Breaker == nil {
		return nil
	}
	b := r.Breaker

	strategy := circuitbreaker.SlowRequestRatio
	switch b.Strategy {
	case "error_ratio":
		strategy = circuitbreaker.ErrorRatio
	case "error_count":
		strategy = circuitbreaker.ErrorCount
	}

	return []*circuitbreaker.Rule{{
		Resource:         r.Name,
		Strategy:         strategy,
		RetryTimeoutMs:   firstNonZero(b.RetryTimeoutMs, defaults.RetryTimeoutMs, 5000),
		MinRequestAmount: firstNonZero(b.MinRequestAmount, defaults.MinRequestAmount, 10),
		StatIntervalMs:   firstNonZero(b.StatIntervalMs, defaults.StatIntervalMs, 5000),
		MaxAllowedRtMs:   b.MaxAllowedRtMs,
		Threshold:        b.Threshold,
	}}
}

func firstNonZero[T uint32 | uint64](values ...T) T {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
